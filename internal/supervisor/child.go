//go:build linux

package supervisor

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// lifelineFD is the descriptor number ExtraFiles always assigns the
// child's single extra file in this package's usage: fd 0-2 are
// stdio, so the first (and only) ExtraFiles entry lands at fd 3.
const lifelineFD = 3

// bootstrapChild reconstructs a child-side Process from the environment
// and file descriptor the parent's Start prepared. It does not start the
// watcher or run any worker hooks; the caller (the registered
// entrypoint, via RunChild) drives the rest of the lifecycle.
func bootstrapChild(name string) (*Process, error) {
	f := os.NewFile(uintptr(lifelineFD), "lifeline-child")
	if f == nil {
		return nil, fmt.Errorf("supervisor: child fd %d not open", lifelineFD)
	}
	ll, err := newLifeline(f)
	if err != nil {
		return nil, err
	}

	ppidStr := os.Getenv(parentPIDEnvVar)
	ppid, err := strconv.Atoi(ppidStr)
	if err != nil {
		return nil, fmt.Errorf("supervisor: bad %s=%q: %w", parentPIDEnvVar, ppidStr, err)
	}

	var watchInterval time.Duration
	if s := os.Getenv(watchIntervalEnvVar); s != "" {
		watchInterval, err = time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("supervisor: bad %s=%q: %w", watchIntervalEnvVar, s, err)
		}
	}
	opts := Options{WatchInterval: watchInterval}
	opts.setDefaults()

	procName := os.Getenv(nameEnvVar)
	if procName == "" {
		procName = name
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		log = zap.NewNop()
	}

	return &Process{
		name:      procName,
		entryName: name,
		role:      RoleChild,
		opts:      opts,
		log:       log.Named("supervisor").With(zap.String("process", procName), zap.String("role", "child")),
		lifeline:  ll,
		parentPID: ppid,
		messages:  &messageTrail{},
		sendCh:    make(chan string, 8),
	}, nil
}

// RunChild drives the full child-side lifecycle against an already
// bootstrapped Process: common/child initializers, the alive handshake,
// the repeated Work loop gated on both the local terminate flag and the
// parent's liveness, then child/common finalizers. It returns the
// process exit code a registered entrypoint should pass to os.Exit.
//
// worker always replaces p.worker, letting a single registered
// entrypoint reuse the same bootstrap for different workers; in normal
// use the entrypoint simply passes the Worker it closed over.
func RunChild(p *Process, worker Worker) int {
	p.worker = worker
	p.watcherDone = make(chan struct{})
	ctx := context.Background()

	go p.watch()

	exitCode := 0
	failed := false

	if err := safeCall(func() error { return p.worker.initializeCommon(ctx) }); err != nil {
		p.log.Error("initialize_common failed", zap.Error(err))
		p.enqueueSend(truncate(err.Error()))
		failed = true
	}
	if !failed {
		if err := safeCall(func() error { return p.worker.initializeChild(ctx) }); err != nil {
			p.log.Error("initialize_child failed", zap.Error(err))
			p.enqueueSend(truncate(err.Error()))
			failed = true
		}
	}

	if !failed {
		p.enqueueSend(aliveMessage)

		for {
			if p.terminateFlag.Load() {
				break
			}
			if !parentIsAlive(p.parentPID) {
				p.log.Warn("parent no longer alive; terminating")
				break
			}

			action, err := safeCall2(func() (Action, error) { return p.worker.work(ctx) })
			if err != nil {
				p.log.Error("work failed", zap.Error(err))
				p.enqueueSend(truncate(err.Error()))
				exitCode = 1
				break
			}
			if action == Stop {
				break
			}
		}
	} else {
		exitCode = 1
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				p.log.Error("finalize_child/finalize_common panicked", zap.Any("recover", r))
				p.enqueueSend(truncate(fmt.Sprintf("%v", r)))
				exitCode = 1
			}
		}()
		p.worker.finalizeChild()
		p.worker.finalizeCommon()
	}()

	p.enqueueSend("terminating")
	p.terminateFlag.Store(true)

	select {
	case <-p.watcherDone:
	case <-time.After(p.opts.WatchInterval * 4):
	}

	return exitCode
}

// parentIsAlive wraps the platform liveness probe with the PID-reuse
// caveat spec.md calls out: a false "alive" from a recycled PID is
// treated as acceptable slack since the watcher's hangup detection on
// the lifeline is the authoritative signal.
func parentIsAlive(pid int) bool {
	return signalAlive(pid)
}

func truncate(s string) string {
	if len(s) <= maxRecordSize {
		return s
	}
	return s[:maxRecordSize]
}

func safeCall2(f func() (Action, error)) (action Action, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return f()
}
