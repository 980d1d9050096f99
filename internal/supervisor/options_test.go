package supervisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptions_SetDefaults(t *testing.T) {
	var o Options
	o.setDefaults()
	assert.Equal(t, 5*time.Second, o.StartTimeout)
	assert.Equal(t, 5*time.Second, o.StopTimeout)
	assert.Equal(t, 500*time.Millisecond, o.WatchInterval)
}

func TestOptions_SetDefaultsPreservesExplicitValues(t *testing.T) {
	o := Options{StartTimeout: time.Second, StopTimeout: 2 * time.Second, WatchInterval: 10 * time.Millisecond}
	o.setDefaults()
	assert.Equal(t, time.Second, o.StartTimeout)
	assert.Equal(t, 2*time.Second, o.StopTimeout)
	assert.Equal(t, 10*time.Millisecond, o.WatchInterval)
}
