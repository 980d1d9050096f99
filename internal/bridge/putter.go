package bridge

import (
	"context"
	"fmt"

	"github.com/go-zeromq/zmq4"
	"github.com/google/uuid"
)

// Putter is a fan-in client: many Putters may write to the same
// channel concurrently, grounded on radical.utils.zmq.queue.Putter.
type Putter struct {
	uid string
	sck zmq4.Socket
}

// NewPutter dials the PUT endpoint published for channel under dir,
// resolving the address via the singleflight-collapsed address cache.
// Each Putter gets a unique id, mirroring the source's generate_id call
// on every Putter/Getter, surfaced here in logs rather than on the wire.
func NewPutter(ctx context.Context, channel, dir string) (*Putter, error) {
	ep, err := readAddressFile(dir, channel)
	if err != nil {
		return nil, err
	}
	sck := zmq4.NewPush(ctx)
	if err := sck.Dial(ep.put); err != nil {
		_ = sck.Close()
		return nil, fmt.Errorf("bridge: dial put endpoint %s: %w", ep.put, err)
	}
	return &Putter{uid: "putter." + uuid.NewString(), sck: sck}, nil
}

// UID identifies this Putter instance, for correlating it against
// relay-side debug logs.
func (p *Putter) UID() string { return p.uid }

// Put enqueues v on the channel's buffer. v must be msgpack-encodable.
func (p *Putter) Put(v any) error {
	payload, err := marshalItem(v)
	if err != nil {
		return fmt.Errorf("bridge: marshal put payload: %w", err)
	}
	return withRetry(func() error { return p.sck.Send(zmq4.NewMsg(payload)) })
}

func (p *Putter) Close() error {
	return p.sck.Close()
}
