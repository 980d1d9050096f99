package supervisor

import "context"

// Worker is the language-neutral mapping of the source's overridable
// virtual methods (spec.md "Re-architecture points"): a configuration
// record whose fields are callables. The supervisor invokes each hook at
// the documented point; a nil field is a no-op.
//
// InitializeCommon runs once on both sides, before the side-specific
// initializer. InitializeParent/InitializeChild run once, on their
// respective side: the child's before it sends the alive message, the
// parent's before Start waits for that message. Work is invoked repeatedly on the child side only, and MUST
// NOT busy-spin — implementers enforce their own rate control, as
// spec.md's work() contract requires. FinalizeChild/FinalizeParent then
// FinalizeCommon run on every termination path, even after a panic
// recovered from Work or an initializer.
type Worker struct {
	InitializeCommon func(ctx context.Context) error
	InitializeParent func(ctx context.Context) error
	InitializeChild  func(ctx context.Context) error

	// Work is the child's main loop body, called repeatedly until it
	// returns Stop or a non-nil error, or the process is asked to
	// terminate. A nil Work immediately stops the loop, which is
	// correct for the parent-side Worker value (Work is never called
	// there) but a configuration mistake for a child entrypoint.
	Work func(ctx context.Context) (Action, error)

	FinalizeCommon func()
	FinalizeParent func()
	FinalizeChild  func()

	// OnMessage is invoked by the watcher for every record received on
	// the lifeline, including the alive sentinel; a non-alive first
	// record on the parent side goes to Start as a startup failure
	// instead. Every such record is appended to the message trail
	// whether or not OnMessage is set; when it is nil, the record is
	// logged at debug level.
	OnMessage func(role Role, msg string)
}

func (w Worker) initializeCommon(ctx context.Context) error {
	if w.InitializeCommon == nil {
		return nil
	}
	return w.InitializeCommon(ctx)
}

func (w Worker) initializeParent(ctx context.Context) error {
	if w.InitializeParent == nil {
		return nil
	}
	return w.InitializeParent(ctx)
}

func (w Worker) initializeChild(ctx context.Context) error {
	if w.InitializeChild == nil {
		return nil
	}
	return w.InitializeChild(ctx)
}

func (w Worker) finalizeCommon() {
	if w.FinalizeCommon != nil {
		w.FinalizeCommon()
	}
}

func (w Worker) finalizeParent() {
	if w.FinalizeParent != nil {
		w.FinalizeParent()
	}
}

func (w Worker) finalizeChild() {
	if w.FinalizeChild != nil {
		w.FinalizeChild()
	}
}

func (w Worker) work(ctx context.Context) (Action, error) {
	if w.Work == nil {
		return Stop, nil
	}
	return w.Work(ctx)
}

func (w Worker) onMessage(role Role, msg string) {
	if w.OnMessage != nil {
		w.OnMessage(role, msg)
	}
}
