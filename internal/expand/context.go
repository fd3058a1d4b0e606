// Package expand implements the word expansion engine: tilde expansion,
// variable/parameter expansion, and glob expansion, applied in that order
// to each simple command's words.
package expand

import "rush/internal/variables"

// Context carries everything expansion needs beyond the raw token text:
// the variable store, the shell's own pid, the last exit code (for $?),
// and the resolved home directory (for tilde expansion and $HOME-less
// environments).
type Context struct {
	Vars     *variables.Store
	Pid      int
	LastExit int
	Home     string
	// Getwd returns the current working directory for glob matching.
	// Defaults to os.Getwd when nil (set explicitly in tests).
	Getwd func() (string, error)
	// Stderr receives messages from `${var:?word}` when var is unset/null.
	Stderr func(msg string)
}
