package supervisor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageTrail_SnapshotEmpty(t *testing.T) {
	var trail messageTrail
	assert.Nil(t, trail.snapshot(10))
}

func TestMessageTrail_SnapshotNewestFirst(t *testing.T) {
	var trail messageTrail
	trail.append("first")
	trail.append("second")
	trail.append("third")

	got := trail.snapshot(10)
	assert.Equal(t, []string{"third", "second", "first"}, got)
}

func TestMessageTrail_SnapshotRespectsLimit(t *testing.T) {
	var trail messageTrail
	trail.append("a")
	trail.append("b")
	trail.append("c")

	got := trail.snapshot(2)
	assert.Equal(t, []string{"c", "b"}, got)
}

func TestMessageTrail_WrapsAfterCapacity(t *testing.T) {
	var trail messageTrail
	for i := 0; i < 500+10; i++ {
		trail.append(fmt.Sprintf("msg-%d", i))
	}

	got := trail.snapshot(3)
	assert.Equal(t, []string{"msg-509", "msg-508", "msg-507"}, got)

	full := trail.snapshot(0)
	assert.Len(t, full, 500)
	assert.Equal(t, "msg-10", full[len(full)-1])
}
