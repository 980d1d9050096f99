package supervisor

import (
	"fmt"
	"os"
	"sync"
)

// childEnvVar tells a re-exec'd binary which registered entrypoint to
// run instead of its normal main. Set by Start in the child's cmd.Env,
// read by MaybeRunChild.
const childEnvVar = "RUP_SUPERVISOR_CHILD"

// childFDEnvVar names an environment variable for the lifeline's file
// descriptor number in the child. Start does not set it and
// bootstrapChild does not read it: after ExtraFiles remapping the
// child's lifeline end is always at lifelineFD (3).
const childFDEnvVar = "RUP_SUPERVISOR_LIFELINE_FD"

var (
	registryMu sync.Mutex
	registry   = map[string]func(*Process) int{}
)

// Register associates a name with a child entrypoint: a function
// receiving the already-bootstrapped child-side Process (role set,
// lifeline connected, watcher not yet started) that runs the child main
// loop and returns the process exit code. Call this from an init()
// function or before main() does any other work, on both the parent and
// the child code paths — re-exec means the same binary runs both.
//
// A given name must be registered before MaybeRunChild or Process.Start is
// called for it.
func Register(name string, entry func(p *Process) int) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("supervisor: child entrypoint %q already registered", name))
	}
	registry[name] = entry
}

// MaybeRunChild must be the first statement in main() of any program
// that uses supervisor.Process. If the process was re-exec'd as a
// supervised child (RUP_SUPERVISOR_CHILD is set), it runs the
// registered entrypoint and calls os.Exit — it never returns. Otherwise
// it returns immediately and the caller's normal main proceeds as the
// prospective parent.
func MaybeRunChild() {
	name := os.Getenv(childEnvVar)
	if name == "" {
		return
	}

	registryMu.Lock()
	entry, ok := registry[name]
	registryMu.Unlock()
	if !ok {
		fmt.Fprintf(os.Stderr, "supervisor: no child entrypoint registered for %q\n", name)
		os.Exit(1)
	}

	p, err := bootstrapChild(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "supervisor: child bootstrap failed: %v\n", err)
		os.Exit(1)
	}

	os.Exit(entry(p))
}
