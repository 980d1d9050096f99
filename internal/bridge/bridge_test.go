package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridge_PutThenGetDeliversBulk(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := New(ctx, "test-channel", nil, Options{AddrDir: dir, BulkSize: 5, PollInterval: 10 * time.Millisecond})
	require.NoError(t, err)
	defer b.Close()

	putter, err := NewPutter(ctx, "test-channel", dir)
	require.NoError(t, err)
	defer putter.Close()

	getter, err := NewGetter(ctx, "test-channel", dir)
	require.NoError(t, err)
	defer getter.Close()

	require.NoError(t, putter.Put("hello"))
	require.NoError(t, putter.Put("world"))

	bulk, err := getter.Get()
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{"hello", "world"}, bulk)
}

func TestBridge_BulkSizeCapsDelivery(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := New(ctx, "capped-channel", nil, Options{AddrDir: dir, BulkSize: 2, PollInterval: 10 * time.Millisecond})
	require.NoError(t, err)
	defer b.Close()

	putter, err := NewPutter(ctx, "capped-channel", dir)
	require.NoError(t, err)
	defer putter.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, putter.Put(i))
	}

	getter, err := NewGetter(ctx, "capped-channel", dir)
	require.NoError(t, err)
	defer getter.Close()

	first, err := getter.Get()
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := getter.Get()
	require.NoError(t, err)
	assert.Len(t, second, 2)
}

func TestBridge_WaitReturnsFalseBeforeCloseAndTrueAfter(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := New(ctx, "wait-channel", nil, Options{AddrDir: dir})
	require.NoError(t, err)

	assert.False(t, b.Wait(20*time.Millisecond))

	require.NoError(t, b.Close())
	assert.True(t, b.Wait(time.Second))
}

func TestBridge_HighWaterMarkBacksPressureInput(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := New(ctx, "hwm-channel", nil, Options{
		AddrDir:       dir,
		BulkSize:      10,
		PollInterval:  10 * time.Millisecond,
		HighWaterMark: 2,
	})
	require.NoError(t, err)
	defer b.Close()

	putter, err := NewPutter(ctx, "hwm-channel", dir)
	require.NoError(t, err)
	defer putter.Close()

	for i := 0; i < 2; i++ {
		require.NoError(t, putter.Put(i))
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && b.bufLen() < 2 {
		time.Sleep(10 * time.Millisecond)
	}
	require.Equal(t, 2, b.bufLen())

	// a third message should not be absorbed into the buffer while it
	// sits at the configured high water mark.
	require.NoError(t, putter.Put(2))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 2, b.bufLen())

	getter, err := NewGetter(ctx, "hwm-channel", dir)
	require.NoError(t, err)
	defer getter.Close()

	bulk, err := getter.Get()
	require.NoError(t, err)
	assert.Len(t, bulk, 2)
}

func TestGetter_RejectsOverlappingRequests(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := New(ctx, "guard-channel", nil, Options{AddrDir: dir})
	require.NoError(t, err)
	defer b.Close()

	getter, err := NewGetter(ctx, "guard-channel", dir)
	require.NoError(t, err)
	defer getter.Close()

	require.NoError(t, getter.sendRequest())
	err = getter.sendRequest()
	assert.ErrorIs(t, err, ErrRequestInFlight)
}
