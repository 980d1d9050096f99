package bridge

import (
	"errors"
	"fmt"
)

var (
	ErrClosed              = errors.New("bridge: closed")
	ErrTransportInterrupted = errors.New("bridge: transport interrupted")
	ErrTransportFatal       = errors.New("bridge: transport fatal")
	ErrAddressNotFound      = errors.New("bridge: channel address file not found")
	ErrRequestInFlight      = errors.New("bridge: a Get request is already awaiting its reply")
)

// TransportError wraps a socket I/O failure, distinguishing a retried
// interrupted syscall from one the retry budget gave up on, mirroring
// the source's _uninterruptible helper.
type TransportError struct {
	Cause error
	Fatal bool
}

func (e *TransportError) Error() string {
	if e.Fatal {
		return fmt.Sprintf("bridge: transport failed fatally: %v", e.Cause)
	}
	return fmt.Sprintf("bridge: transport interrupted: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	if e.Fatal {
		return ErrTransportFatal
	}
	return ErrTransportInterrupted
}
