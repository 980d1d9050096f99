package bridge

import (
	"errors"
	"syscall"
)

// maxTransportRetries bounds the retry loop around a single socket
// operation, adapted from the source's _uninterruptible, which gave up
// and raised after roughly ten retries of an EINTR-interrupted zmq call.
const maxTransportRetries = 10

// withRetry runs op, retrying while it fails with an interrupted-syscall
// condition, up to maxTransportRetries times. Any other failure, or
// exhausting the retry budget, is reported as a fatal TransportError.
func withRetry(op func() error) error {
	var lastErr error
	for i := 0; i < maxTransportRetries; i++ {
		err := op()
		if err == nil {
			return nil
		}
		if !isInterrupted(err) {
			return &TransportError{Cause: err, Fatal: true}
		}
		lastErr = err
	}
	return &TransportError{Cause: lastErr, Fatal: true}
}

func isInterrupted(err error) bool {
	return errors.Is(err, syscall.EINTR)
}
