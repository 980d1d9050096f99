//go:build linux

package supervisor

import (
	"errors"
	"io"
	"net"
	"time"

	"go.uber.org/zap"
)

// watch is the single goroutine that owns this side's lifeline end. It
// alternates between reading inbound records (with a deadline of
// WatchInterval, so a quiet peer doesn't block sends forever) and
// draining any outbound records queued by enqueueSend. On the parent
// side, the first phase additionally resolves the Start handshake via
// aliveCh; once that resolves (or Start gives up), the loop continues
// in steady state until terminateFlag is set or the lifeline hangs up.
func (p *Process) watch() {
	defer close(p.watcherDone)
	defer p.lifeline.close()

	awaitingAlive := p.role == RoleParent

	for {
		if p.terminateFlag.Load() {
			p.drainSends()
			return
		}

		if err := p.lifeline.conn.SetReadDeadline(time.Now().Add(p.opts.WatchInterval)); err != nil {
			p.log.Error("set read deadline", zap.Error(err))
			return
		}

		line, err := p.lifeline.recv()
		switch {
		case err == nil:
			if awaitingAlive {
				awaitingAlive = false
				if line != aliveMessage {
					p.aliveCh <- aliveResult{payload: line}
					continue
				}
				p.handleMessage(line)
				p.aliveCh <- aliveResult{}
			} else {
				p.handleMessage(line)
			}

		case isTimeout(err):
			// nothing to read this tick; fall through to drain sends

		case errors.Is(err, io.EOF), isConnReset(err):
			if awaitingAlive {
				p.aliveCh <- aliveResult{err: &StartupError{Name: p.name, Payload: "lifeline closed before alive"}}
			}
			p.terminateFlag.Store(true)
			return

		default:
			p.log.Warn("lifeline recv failed", zap.Error(err))
			if awaitingAlive {
				p.aliveCh <- aliveResult{err: err}
			}
			p.terminateFlag.Store(true)
			return
		}

		p.drainSends()
	}
}

// drainSends flushes every record currently queued on sendCh without
// blocking, preserving the single-owner invariant on the lifeline conn.
func (p *Process) drainSends() {
	for {
		select {
		case msg := <-p.sendCh:
			if err := p.lifeline.send(msg); err != nil {
				p.log.Warn("lifeline send failed", zap.Error(err))
				return
			}
		default:
			return
		}
	}
}

// handleMessage routes one received record to the message trail and the
// worker's OnMessage hook.
func (p *Process) handleMessage(msg string) {
	if p.messages != nil {
		p.messages.append(msg)
	}
	peer := RoleChild
	if p.role == RoleChild {
		peer = RoleParent
	}
	if p.worker.OnMessage == nil {
		p.log.Debug("lifeline message", zap.Stringer("from", peer), zap.String("msg", msg))
	}
	p.worker.onMessage(peer, msg)
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isConnReset(err error) bool {
	var se *net.OpError
	return errors.As(err, &se)
}
