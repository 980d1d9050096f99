//go:build linux

package supervisor

import (
	"os/exec"
	"syscall"
)

// setSysProcAttr isolates the re-exec'd child into its own process
// group (so a signal to the group doesn't also hit the parent) and asks
// the kernel to SIGKILL it if the parent dies before the lifeline even
// gets a chance to notice — defense in depth alongside the lifeline
// hangup detection spec.md already mandates. Grounded verbatim on the
// teacher's internal/infrastructure/processmgr/process.go newProcess.
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGKILL,
	}
}

// killGroup sends sig to the child's entire process group.
func killGroup(pid int, sig syscall.Signal) error {
	return syscall.Kill(-pid, sig)
}

// signalAlive reports whether the OS process identified by pid appears
// to still be running, per spec.md's "send signal 0" liveness probe.
// Any error (including a permission error) is treated as "dead", to
// avoid false positives from PID-reuse races (spec.md section 4.1).
func signalAlive(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}
