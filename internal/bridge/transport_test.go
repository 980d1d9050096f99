package bridge

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry_SucceedsWithoutRetrying(t *testing.T) {
	calls := 0
	err := withRetry(func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_RetriesOnEINTR(t *testing.T) {
	calls := 0
	err := withRetry(func() error {
		calls++
		if calls < 3 {
			return syscall.EINTR
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	err := withRetry(func() error {
		calls++
		return syscall.EINTR
	})
	require.Error(t, err)
	assert.Equal(t, maxTransportRetries, calls)
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.True(t, te.Fatal)
}

func TestWithRetry_NonInterruptedErrorIsFatalImmediately(t *testing.T) {
	calls := 0
	sentinel := errors.New("boom")
	err := withRetry(func() error {
		calls++
		return sentinel
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, ErrTransportFatal)
}
