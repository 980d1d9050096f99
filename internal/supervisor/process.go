//go:build linux

// Package supervisor implements a cooperative parent/child process
// abstraction: a bidirectional lifeline detects peer death in both
// directions, a startup handshake bounds how long a parent waits for its
// child to become ready, and shutdown is bounded to a small constant
// multiple of a configured timeout. See SPEC_FULL.md section 4.
package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rupsys/rup/internal/diagx"
)

const (
	parentPIDEnvVar     = "RUP_SUPERVISOR_PARENT_PID"
	watchIntervalEnvVar = "RUP_SUPERVISOR_WATCH_INTERVAL"
	nameEnvVar          = "RUP_SUPERVISOR_NAME"
)

// aliveResult is what the watcher reports back to Start via aliveCh
// while it is still in the "awaiting alive" phase of the startup
// handshake.
type aliveResult struct {
	// payload is set (and err is nil) when the child sent something
	// other than the alive sentinel — a reported initializer failure.
	payload string
	// err is set when the lifeline failed before any message arrived
	// (e.g. the child crashed without reporting).
	err error
}

// Process is one side of a supervised parent/child pair. A Process
// value is constructed in the would-be parent; Start re-execs the
// current binary as the child and blocks for the startup handshake.
// The registered child entrypoint (see Register) receives its own
// Process value, bootstrapped by MaybeRunChild, with role already set
// to RoleChild.
type Process struct {
	name      string
	entryName string
	worker    Worker
	opts      Options
	log       *zap.Logger

	role Role

	lifeline    *lifeline
	messages    *messageTrail
	sendCh      chan string
	watcherDone chan struct{}
	aliveCh     chan aliveResult

	terminateFlag atomic.Bool

	// parent-side only
	cmd     *exec.Cmd
	exited  chan struct{}
	waitErr error
	alive   atomic.Bool
	// group coordinates the watcher goroutine and the cmd.Wait()
	// goroutine: both are registered with it so their errors surface
	// through one join point instead of two independently-managed
	// goroutines.
	group *errgroup.Group

	// child-side only
	parentPID int

	mu        sync.Mutex
	startOnce sync.Once
	startErr  error
	stopOnce  sync.Once
	stopErr   error
}

// NewProcess constructs a supervisor handle in the prospective parent.
// entryName must have been passed to Register (in an init() function or
// before NewProcess is called) so that the re-exec'd child can find its
// way back to the same Worker configuration.
func NewProcess(name, entryName string, worker Worker, log *zap.Logger, opts Options) *Process {
	opts.setDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Process{
		name:      name,
		entryName: entryName,
		worker:    worker,
		opts:      opts,
		log:       log.Named("supervisor").With(zap.String("process", name)),
	}
}

// Start forks the child (by re-exec), waits for the child's alive
// signal, and returns once both sides have completed their respective
// initializers. timeout overrides Options.StartTimeout when positive.
//
// On any failure, Start guarantees no lingering child process: it
// invokes Stop internally before returning.
func (p *Process) Start(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = p.opts.StartTimeout
	}

	p.startOnce.Do(func() {
		p.startErr = p.start(ctx, timeout)
	})
	return p.startErr
}

func (p *Process) start(ctx context.Context, timeout time.Duration) error {
	parentFile, childFile, err := newLifelinePair()
	if err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		_ = parentFile.Close()
		_ = childFile.Close()
		return fmt.Errorf("supervisor: resolve executable: %w", err)
	}

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = []*os.File{childFile}
	cmd.Env = append(os.Environ(),
		childEnvVar+"="+p.entryName,
		nameEnvVar+"="+p.name,
		parentPIDEnvVar+"="+strconv.Itoa(os.Getpid()),
		watchIntervalEnvVar+"="+p.opts.WatchInterval.String(),
	)
	setSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		_ = parentFile.Close()
		_ = childFile.Close()
		return fmt.Errorf("supervisor: spawn child: %w", err)
	}
	_ = childFile.Close() // the child's copy of its own fd lives in cmd now

	p.cmd = cmd
	p.role = RoleParent
	p.alive.Store(true)
	p.exited = make(chan struct{})
	p.group, _ = errgroup.WithContext(context.Background())
	p.group.Go(func() error {
		err := cmd.Wait()
		p.waitErr = err
		p.alive.Store(false)
		close(p.exited)
		return err
	})

	ll, err := newLifeline(parentFile)
	if err != nil {
		_ = cmd.Process.Kill()
		<-p.exited
		return err
	}
	p.lifeline = ll
	p.messages = &messageTrail{}
	p.sendCh = make(chan string, 8)
	p.watcherDone = make(chan struct{})
	p.aliveCh = make(chan aliveResult, 1)

	p.group.Go(func() error {
		p.watch()
		return nil
	})

	if err := safeCall(func() error { return p.worker.initializeCommon(ctx) }); err != nil {
		_ = p.Stop(ctx, p.opts.StopTimeout)
		return fmt.Errorf("supervisor: initialize_common: %w", err)
	}
	if err := safeCall(func() error { return p.worker.initializeParent(ctx) }); err != nil {
		_ = p.Stop(ctx, p.opts.StopTimeout)
		return fmt.Errorf("supervisor: initialize_parent: %w", err)
	}

	select {
	case res := <-p.aliveCh:
		if res.err != nil {
			p.log.Error("startup failed", zap.String("chain", diagx.ErrChain(res.err)))
			_ = p.Stop(ctx, p.opts.StopTimeout)
			return res.err
		}
		if res.payload != "" {
			startupErr := &StartupError{Name: p.name, Payload: res.payload}
			p.log.Error("startup failed", zap.String("chain", diagx.ErrChain(startupErr)))
			_ = p.Stop(ctx, p.opts.StopTimeout)
			return startupErr
		}
		p.log.Debug("child process started")
		return nil

	case <-time.After(timeout):
		_ = p.Stop(ctx, p.opts.StopTimeout)
		return &StartupTimeoutError{Name: p.name, Timeout: timeout.String()}
	}
}

// Stop may only be called by the parent. It runs the parent finalizers,
// requests the watcher to stop, waits for graceful child exit, then
// forcibly terminates and waits again. Total wall time is bounded at
// 3*timeout in the worst case (spec.md section 4.1).
func (p *Process) Stop(ctx context.Context, timeout time.Duration) error {
	if p.role == RoleChild {
		return &ProtocolViolationError{Detail: "Stop called from the child; only the parent may call Stop"}
	}
	if timeout <= 0 {
		timeout = p.opts.StopTimeout
	}

	p.stopOnce.Do(func() {
		p.stopErr = p.stop(timeout)
	})
	return p.stopErr
}

func (p *Process) stop(timeout time.Duration) error {
	func() {
		defer func() {
			if r := recover(); r != nil {
				p.log.Error("finalize_parent/finalize_common panicked", zap.Any("recover", r))
			}
		}()
		p.worker.finalizeParent()
		p.worker.finalizeCommon()
	}()

	p.terminateFlag.Store(true)

	if p.watcherDone != nil {
		select {
		case <-p.watcherDone:
		case <-time.After(timeout):
			p.log.Warn("watcher did not join within stop timeout")
		}
	}

	if p.cmd == nil || p.cmd.Process == nil || p.exited == nil {
		return nil
	}

	select {
	case <-p.exited:
		p.joinGroup()
		return nil
	case <-time.After(timeout):
	}

	p.log.Warn("child still alive after graceful window; sending hard kill", zap.Int("pid", p.cmd.Process.Pid))
	_ = killGroup(p.cmd.Process.Pid, syscall.SIGKILL)

	select {
	case <-p.exited:
		p.joinGroup()
		return nil
	case <-time.After(timeout):
		return &StopFailedError{Name: p.name, PID: p.cmd.Process.Pid}
	}
}

// joinGroup waits for the errgroup coordinating the watcher and
// cmd.Wait() goroutines to fully return, logging either's error, once
// both have already signaled completion via watcherDone/exited — it is
// only called from points where that is already known, so it never
// reintroduces an unbounded wait into Stop's timeout budget.
func (p *Process) joinGroup() {
	if p.group == nil {
		return
	}
	if err := p.group.Wait(); err != nil {
		p.log.Debug("process goroutines finished", zap.Error(err))
	}
}

// Join waits for natural child exit. It does not send any termination
// signal.
func (p *Process) Join(ctx context.Context, timeout time.Duration) error {
	if p.exited == nil {
		return nil
	}
	if timeout <= 0 {
		timeout = p.opts.StopTimeout
	}
	select {
	case <-p.exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(timeout):
		return fmt.Errorf("supervisor: join timed out after %s", timeout)
	}
}

// IsAlive reports whether the OS child process exists and has not been
// reaped. Only meaningful on the parent side.
func (p *Process) IsAlive() bool {
	if p.role != RoleParent {
		return false
	}
	return p.alive.Load()
}

// Role reports which side of the pair this Process instance represents.
func (p *Process) Role() Role { return p.role }

// Messages returns a snapshot of the last diagnostic records received
// on the lifeline (newest first), the supplemented message-trail
// feature from SPEC_FULL.md section 4.4.
func (p *Process) Messages(lines int) []string {
	if p.messages == nil {
		return nil
	}
	return p.messages.snapshot(lines)
}

// enqueueSend hands a record to the watcher for transmission. Per
// spec.md's single-owner rule, no other goroutine writes to the
// lifeline directly.
func (p *Process) enqueueSend(msg string) {
	select {
	case p.sendCh <- msg:
	default:
		p.log.Warn("lifeline send queue full; dropping message", zap.String("msg", msg))
	}
}

// safeCall converts a panic raised by a hook into an error, mirroring
// the source's broad `except BaseException` around initializers/work.
func safeCall(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return f()
}
