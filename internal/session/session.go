// Package session defines the single Session value threaded through every
// component: global state lives on fields of one Session value passed to
// every component, rather than ambient singletons, except for the
// genuinely process-global items (pid, signal disposition).
package session

import (
	"io"
	"os"

	"rush/internal/config"
	"rush/internal/jobtable"
	"rush/internal/variables"
)

// Session owns everything a running shell needs: the variable store, the
// job table, the process-global CWD and last exit code, and the I/O
// streams builtins read/write (overridable for built-ins executed with a
// redirection, and for tests).
type Session struct {
	Vars *variables.Store
	Jobs *jobtable.Table

	Settings config.Settings

	// Cwd is the shell process's own working directory; `cd` mutates it
	// and the executor starts every external child in it (exec.Cmd.Dir).
	Cwd string

	// LastExit is $?.
	LastExit int

	// Pid is the shell's own process id ($$).
	Pid int

	// ShellPgid is the shell's own process group id, restored as terminal
	// foreground on every exit path from foreground waiting.
	ShellPgid int

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New constructs a Session seeded from the real process environment and
// standard streams.
func New(settings config.Settings) *Session {
	home, _ := os.Getwd()
	return &Session{
		Vars:     variables.NewFromEnviron(os.Environ()),
		Jobs:     jobtable.New(),
		Settings: settings,
		Cwd:      home,
		Pid:      os.Getpid(),
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}

// Home returns $HOME, falling back to os.UserHomeDir.
func (s *Session) Home() string {
	if v, ok := s.Vars.Get("HOME"); ok && v != "" {
		return v
	}
	home, _ := os.UserHomeDir()
	return home
}
