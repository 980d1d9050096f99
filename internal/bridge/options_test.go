package bridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptions_SetDefaults(t *testing.T) {
	var o Options
	o.setDefaults()
	assert.Equal(t, 10, o.BulkSize)
	assert.Equal(t, 50*time.Millisecond, o.PollInterval)
	assert.NotEmpty(t, o.ListenHost)
	assert.NotEmpty(t, o.AddrDir)
	assert.Equal(t, 250*time.Millisecond, o.Linger)
	assert.Equal(t, 0, o.HighWaterMark)
}

func TestOptions_SetDefaultsPreservesExplicitValues(t *testing.T) {
	o := Options{
		BulkSize:      3,
		AddrDir:       "/tmp/x",
		PollInterval:  time.Second,
		ListenHost:    "0.0.0.0",
		Linger:        time.Second,
		HighWaterMark: 7,
	}
	o.setDefaults()
	assert.Equal(t, 3, o.BulkSize)
	assert.Equal(t, "/tmp/x", o.AddrDir)
	assert.Equal(t, time.Second, o.PollInterval)
	assert.Equal(t, "0.0.0.0", o.ListenHost)
	assert.Equal(t, time.Second, o.Linger)
	assert.Equal(t, 7, o.HighWaterMark)
}
