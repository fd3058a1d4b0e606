// Package style provides the shell's ANSI output styling: plain fmt to
// stdout/stderr, gated on NO_COLOR / TERM=dumb / terminal detection, with
// no logging framework underneath.
package style

import (
	"os"
	"strings"

	"golang.org/x/term"
)

var enabled = initEnabled()

func initEnabled() bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" || strings.TrimSpace(os.Getenv("RUSH_NO_COLOR")) != "" {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv("TERM")), "dumb") {
		return false
	}
	if force := strings.TrimSpace(os.Getenv("RUSH_COLOR")); force != "" {
		return force == "1" || strings.EqualFold(force, "true")
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Enabled reports whether ANSI styling is currently active.
func Enabled() bool { return enabled }

// SetEnabled overrides the autodetected setting. Nothing in rush calls it;
// the editor host's dim hints follow the autodetected value.
func SetEnabled(v bool) { enabled = v }

func ansi(codes ...string) string {
	return "\x1b[" + strings.Join(codes, ";") + "m"
}

func colorize(s string, codes ...string) string {
	if !enabled || s == "" {
		return s
	}
	return ansi(codes...) + s + ansi("0")
}

func Dim(s string) string     { return colorize(s, "90") }
func Error(s string) string   { return colorize(s, "31") }
func Warn(s string) string    { return colorize(s, "33") }
func Info(s string) string    { return colorize(s, "36") }
func Success(s string) string { return colorize(s, "32") }
func Heading(s string) string { return colorize(s, "1", "36") }
