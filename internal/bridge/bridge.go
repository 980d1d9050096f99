// Package bridge implements the message queue bridge: a fan-in/fan-out
// relay that lets many Putters feed an ordered buffer and many Getters
// drain it in bounded bulk, discovered via a published address file.
// Grounded on radical.utils.zmq.queue.Queue, reimplemented over
// go-zeromq/zmq4 and vmihailenco/msgpack rather than pyzmq+msgpack.
package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-zeromq/zmq4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Bridge owns one channel's buffer and the two sockets Putters and
// Getters connect to: a PULL socket fanning in Put calls, and a REP
// socket fairly servicing Get requests in FIFO order.
type Bridge struct {
	channel string
	opts    Options
	log     *zap.Logger

	in  zmq4.Socket
	out zmq4.Socket

	mu  sync.Mutex
	buf []any

	cancel  context.CancelFunc
	group   *errgroup.Group
	done    chan struct{}
	closeMu sync.Mutex
	closed  bool
}

// New binds a bridge for the given logical channel name (typically
// ClientQueue or AgentQueue, see ChannelName), publishes its address
// file, and starts the relay goroutines. The returned Bridge must be
// closed to release its sockets and remove the address file.
func New(ctx context.Context, channel string, log *zap.Logger, opts Options) (*Bridge, error) {
	opts.setDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("bridge").With(zap.String("channel", channel))

	runCtx, cancel := context.WithCancel(ctx)

	in := zmq4.NewPull(runCtx)
	if err := in.Listen(fmt.Sprintf("tcp://%s:0", opts.ListenHost)); err != nil {
		cancel()
		return nil, fmt.Errorf("bridge: listen input: %w", err)
	}

	out := zmq4.NewRep(runCtx)
	if err := out.Listen(fmt.Sprintf("tcp://%s:0", opts.ListenHost)); err != nil {
		cancel()
		_ = in.Close()
		return nil, fmt.Errorf("bridge: listen output: %w", err)
	}

	inAddr := socketAddr(in)
	outAddr := socketAddr(out)

	if err := writeAddressFile(opts.AddrDir, channel, inAddr, outAddr); err != nil {
		cancel()
		_ = in.Close()
		_ = out.Close()
		return nil, fmt.Errorf("bridge: publish address: %w", err)
	}

	b := &Bridge{
		channel: channel,
		opts:    opts,
		log:     log,
		in:      in,
		out:     out,
		cancel:  cancel,
	}

	g, gCtx := errgroup.WithContext(runCtx)
	b.group = g
	g.Go(func() error { return b.inputLoop(gCtx) })
	g.Go(func() error { return b.outputLoop(gCtx) })

	b.done = make(chan struct{})
	go func() {
		_ = b.group.Wait()
		close(b.done)
	}()

	log.Info("bridge listening", zap.String("put", inAddr), zap.String("get", outAddr))
	return b, nil
}

// Wait blocks up to timeout or until the relay goroutines have both
// returned (because Close was called or a relay goroutine hit a fatal
// transport error), returning true iff the bridge has stopped within
// that window. spec.md section 4.2's public contract.
func (b *Bridge) Wait(timeout time.Duration) bool {
	select {
	case <-b.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// socketAddr extracts the resolved listen address from a bound socket,
// needed because Listen("tcp://host:0") binds an ephemeral port that
// the caller must read back before it can be published.
func socketAddr(sck zmq4.Socket) string {
	if a := sck.Addr(); a != nil {
		return "tcp://" + a.String()
	}
	return ""
}

// Close stops the relay goroutines, closes both sockets, and removes
// the published address file. It is safe to call more than once. This
// explicit teardown is a supplemented feature: the source relied on
// process exit to release its zmq context.
func (b *Bridge) Close() error {
	b.closeMu.Lock()
	defer b.closeMu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	b.waitForDrain(b.opts.Linger)

	b.cancel()
	_ = b.group.Wait()

	var errs []error
	if err := b.in.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := b.out.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := removeAddressFile(b.opts.AddrDir, b.channel); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("bridge: close: %v", errs)
	}
	return nil
}

// waitForDrain gives the relay up to linger to empty the buffer before
// Close tears down the sockets, so messages already accepted from a
// Putter get a chance to reach a waiting Getter first (spec.md section 3's
// linger tuning parameter). The pure-Go zmq4 transport this package uses
// has no libzmq-style LINGER socket option of its own — both sides are
// plain TCP connections managed by the library's own I/O loop rather than
// an in-process message queue that needs an explicit drain wait — so this
// reimplements the same effect at the buffer level instead.
func (b *Bridge) waitForDrain(linger time.Duration) {
	if linger <= 0 || b.bufLen() == 0 {
		return
	}
	deadline := time.Now().Add(linger)
	for time.Now().Before(deadline) {
		if b.bufLen() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// bufLen and bufTake give the relay loops a small, lock-scoped view
// into the shared buffer without leaking the mutex outside this file.
func (b *Bridge) bufLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}

func (b *Bridge) bufAppend(item any) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, item)
	return len(b.buf)
}

func (b *Bridge) bufTake(n int) []any {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n > len(b.buf) {
		n = len(b.buf)
	}
	taken := make([]any, n)
	copy(taken, b.buf[:n])
	b.buf = b.buf[n:]
	return taken
}
