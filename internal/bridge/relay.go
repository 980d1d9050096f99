package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/go-zeromq/zmq4"
	"go.uber.org/zap"
)

// inputLoop continuously drains Put deliveries off the PULL socket and
// appends them to the buffer, one goroutine per direction in place of
// the source's single-threaded poll-both-sockets loop
// (_bridge_work) — the same one-goroutine-per-stream shape the teacher
// uses for stdout/stderr in processmgr/process.go's supervise().
func (b *Bridge) inputLoop(ctx context.Context) error {
	ticker := time.NewTicker(b.opts.PollInterval)
	defer ticker.Stop()

	for {
		// high_water_mark caps how many buffered-but-undelivered items
		// this relay holds at once (spec.md section 3); above the cap,
		// the loop stops draining the PULL socket, which backs up
		// delivery to the transport and applies backpressure to Putters
		// the same way a libzmq HWM would, rather than dropping messages.
		if b.opts.HighWaterMark > 0 && b.bufLen() >= b.opts.HighWaterMark {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				continue
			}
		}

		var msg zmq4.Msg
		var err error
		if rErr := withRetry(func() error {
			msg, err = b.in.Recv()
			return err
		}); rErr != nil {
			if ctx.Err() != nil {
				return nil
			}
			b.log.Error("input recv failed", zap.Error(rErr))
			return rErr
		}

		item, err := unmarshalItem(msg.Bytes())
		if err != nil {
			b.log.Warn("dropping malformed put payload", zap.Error(err))
			continue
		}

		n := b.bufAppend(item)
		b.log.Debug("buffered put", zap.Int("buf_len", n))
	}
}

// outputLoop answers Get requests in arrival order. A REP socket must
// recv before it may send, so the loop only consumes a pending request
// once the buffer has something to offer it, matching the source's
// behavior of leaving a Getter's request queued by zmq until there is
// data (spec.md section 5.1).
func (b *Bridge) outputLoop(ctx context.Context) error {
	ticker := time.NewTicker(b.opts.PollInterval)
	defer ticker.Stop()

	for {
		if b.bufLen() == 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				continue
			}
		}

		var req zmq4.Msg
		var err error
		if rErr := withRetry(func() error {
			req, err = b.out.Recv()
			return err
		}); rErr != nil {
			if ctx.Err() != nil {
				return nil
			}
			b.log.Error("output recv failed", zap.Error(rErr))
			return rErr
		}
		_ = req // request payload carries no data; its arrival is the signal

		bulk := b.bufTake(b.opts.BulkSize)
		logBulkDelivery(b.log, bulk)

		payload, err := marshalBulk(bulk)
		if err != nil {
			return errors.New("bridge: marshal bulk: " + err.Error())
		}
		if rErr := withRetry(func() error { return b.out.Send(zmq4.NewMsg(payload)) }); rErr != nil {
			if ctx.Err() != nil {
				return nil
			}
			b.log.Error("output send failed", zap.Error(rErr))
			return rErr
		}
	}
}
