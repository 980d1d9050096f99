package bridge

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-zeromq/zmq4"
	"github.com/google/uuid"
)

// Getter is a fan-out client served fairly, in arrival order, by the
// bridge's REP socket. Grounded on radical.utils.zmq.queue.Getter,
// including its request/reply alternation guard (there `_requested`
// under an RLock, here requestPending under mu).
type Getter struct {
	uid string
	sck zmq4.Socket

	mu             sync.Mutex
	requestPending bool
}

// NewGetter dials the GET endpoint published for channel under dir.
func NewGetter(ctx context.Context, channel, dir string) (*Getter, error) {
	ep, err := readAddressFile(dir, channel)
	if err != nil {
		return nil, err
	}
	sck := zmq4.NewReq(ctx)
	if err := sck.Dial(ep.get); err != nil {
		_ = sck.Close()
		return nil, fmt.Errorf("bridge: dial get endpoint %s: %w", ep.get, err)
	}
	return &Getter{uid: "getter." + uuid.NewString(), sck: sck}, nil
}

// UID identifies this Getter instance, for correlating it against
// relay-side debug logs.
func (g *Getter) UID() string { return g.uid }

// Get blocks until the bridge delivers a bulk of buffered items
// (spec.md section 5.1: Get returns the full bulk, not just its first
// element, resolving the source's get()/get_nowait() split in favor of
// the caller deciding how to consume it).
func (g *Getter) Get() ([]any, error) {
	if err := g.sendRequest(); err != nil {
		return nil, err
	}
	return g.awaitReply()
}

// GetNoWait sends a request and waits up to timeout for a reply,
// returning (nil, nil) if nothing arrives in time — the non-blocking
// counterpart the source exposed as get_nowait, layered here over Get's
// strict request/reply alternation rather than a raw zmq poll.
func (g *Getter) GetNoWait(timeout time.Duration) ([]any, error) {
	if err := g.sendRequest(); err != nil {
		return nil, err
	}

	type result struct {
		bulk []any
		err  error
	}
	done := make(chan result, 1)
	go func() {
		bulk, err := g.awaitReply()
		done <- result{bulk, err}
	}()

	select {
	case r := <-done:
		return r.bulk, r.err
	case <-time.After(timeout):
		return nil, nil
	}
}

func (g *Getter) sendRequest() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.requestPending {
		return ErrRequestInFlight
	}
	// The tag's content is opaque to the relay (spec.md section 6); the
	// wire format is still "Request <pid>" per the external interface.
	tag := fmt.Sprintf("Request %d", os.Getpid())
	if err := withRetry(func() error { return g.sck.Send(zmq4.NewMsg([]byte(tag))) }); err != nil {
		return err
	}
	g.requestPending = true
	return nil
}

func (g *Getter) awaitReply() ([]any, error) {
	var msg zmq4.Msg
	err := withRetry(func() error {
		var rErr error
		msg, rErr = g.sck.Recv()
		return rErr
	})

	g.mu.Lock()
	g.requestPending = false
	g.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return unmarshalBulk(msg.Bytes())
}

func (g *Getter) Close() error {
	return g.sck.Close()
}
