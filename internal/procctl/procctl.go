// Package procctl wraps the handful of process-group/terminal-control
// syscalls the executor and job-control built-ins share: Getpgid lookup,
// Tcsetpgrp/Tcgetpgrp for foreground handoff, and signal delivery to a
// whole process group. Built entirely on the stdlib syscall package, matching
// every process-supervision example in the corpus (none of which reaches
// for golang.org/x/sys/unix for this).
package procctl

import "syscall"

// SetForeground gives the controlling terminal at fd to process group
// pgid. Errors are ignored by callers when fd is not a real tty (e.g. in
// tests or when stdin has been redirected), matching the source's own
// "ignore errors if not running in a TTY" policy for fg.
func SetForeground(fd int, pgid int) error {
	return tcsetpgrp(fd, pgid)
}

// Foreground returns the pgid currently allowed to read from fd.
func Foreground(fd int) (int, error) {
	return tcgetpgrp(fd)
}

// SignalGroup sends sig to every process in pgid (kill(-pgid, sig)).
func SignalGroup(pgid int, sig syscall.Signal) error {
	return syscall.Kill(-pgid, sig)
}

// Getpgid returns the process group id of pid.
func Getpgid(pid int) (int, error) {
	return syscall.Getpgid(pid)
}
