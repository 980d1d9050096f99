package supervisor

// Role identifies which side of a supervised pair a Process instance is
// playing. It is Uninitialized until Start (parent) or the re-exec child
// entrypoint (child) assigns it, and is never Uninitialized again
// afterwards.
type Role int

const (
	RoleUninitialized Role = iota
	RoleParent
	RoleChild
)

func (r Role) String() string {
	switch r {
	case RoleParent:
		return "parent"
	case RoleChild:
		return "child"
	default:
		return "uninitialized"
	}
}

// Action is returned by Worker.Work to tell the child main loop whether
// to keep looping or begin finalization.
type Action int

const (
	// Continue keeps the child's work loop running.
	Continue Action = iota
	// Stop begins child finalization on the next loop check.
	Stop
)
