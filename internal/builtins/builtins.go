// Package builtins implements C4: the registry of commands the shell
// handles itself rather than by forking, dispatched by name against a
// mutable session handle.
package builtins

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"rush/internal/expand"
	"rush/internal/jobtable"
	"rush/internal/procctl"
	"rush/internal/session"
	"rush/internal/shellerr"
	"rush/internal/variables"
)

// Handler runs one built-in's invocation and returns its exit code.
type Handler func(sess *session.Session, args []string) int

var registry = map[string]Handler{
	"cd":      cdBuiltin,
	"export":  exportBuiltin,
	"set":     setBuiltin,
	"jobs":    jobsBuiltin,
	"fg":      fgBuiltin,
	"bg":      bgBuiltin,
	"exit":    exitBuiltin,
	"echo":    echoBuiltin,
	"pwd":     pwdBuiltin,
	"unset":   unsetBuiltin,
	"history": historyBuiltin,
	"type":    typeBuiltin,
}

// IsBuiltin reports whether name is a registered built-in.
func IsBuiltin(name string) bool {
	_, ok := registry[name]
	return ok
}

// Names returns every registered built-in name, sorted, used by C7's
// command completer alongside PATH executables.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Dispatch runs the named built-in. Callers must check IsBuiltin first.
func Dispatch(sess *session.Session, name string, args []string) int {
	h, ok := registry[name]
	if !ok {
		fmt.Fprintf(sess.Stderr, "%s: command not found\n", name)
		return 127
	}
	return h(sess, args)
}

// ExitRequest is how `exit` terminates the REPL loop: there is no clean
// exit-code return path through Dispatch for an operation that must end
// the process rather than return to its caller, so it unwinds via panic
// and is recovered in the REPL's main loop.
type ExitRequest struct {
	Code int
}

// HistoryClearRequest signals the REPL to clear the line editor host's
// persisted history; the built-in itself cannot reach into C7 without
// builtins depending on editorhost.
type HistoryClearRequest struct{}

func cdBuiltin(sess *session.Session, args []string) int {
	target := sess.Home()
	if len(args) > 0 {
		target = args[0]
	}
	if strings.HasPrefix(target, "~") {
		target = sess.Home() + strings.TrimPrefix(target, "~")
	}
	if !strings.HasPrefix(target, "/") {
		target = sess.Cwd + "/" + target
	}
	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		fmt.Fprintf(sess.Stderr, "cd: %s: No such file or directory\n", target)
		return 1
	}
	// Chdir the real process, not just sess.Cwd: every relative-path lookup
	// downstream (redirection targets, resolvePath on a name containing
	// '/', tab-completion) resolves against the OS working directory, and
	// every child exec'd afterward inherits it at fork time.
	if err := os.Chdir(target); err != nil {
		fmt.Fprintf(sess.Stderr, "cd: %s: %v\n", target, err)
		return 1
	}
	sess.Cwd = target
	return 0
}

func exportBuiltin(sess *session.Session, args []string) int {
	if len(args) == 0 {
		for _, kv := range sess.Vars.IterExported() {
			fmt.Fprintf(sess.Stdout, "export %s=%s\n", kv[0], kv[1])
		}
		return 0
	}
	for _, arg := range args {
		name, value, hasEq := strings.Cut(arg, "=")
		if !variables.ValidName(name) {
			err := shellerr.New(shellerr.KindInvalidName, "export: %s: not a valid identifier", name)
			fmt.Fprintln(sess.Stderr, err.Error())
			return err.Kind.ExitCode()
		}
		if hasEq {
			expanded, err := expand.String(value, exportCtx(sess))
			if err != nil {
				fmt.Fprintf(sess.Stderr, "export: %v\n", err)
				return 1
			}
			sess.Vars.Set(name, expanded)
		} else if _, ok := sess.Vars.Get(name); !ok {
			sess.Vars.Set(name, "")
		}
		sess.Vars.Export(name)
	}
	return 0
}

func setBuiltin(sess *session.Session, args []string) int {
	names := sess.Vars.Names()
	sort.Strings(names)
	for _, name := range names {
		v, _ := sess.Vars.Get(name)
		fmt.Fprintf(sess.Stdout, "%s=%s\n", name, v)
	}
	return 0
}

func jobsBuiltin(sess *session.Session, args []string) int {
	sess.Jobs.Reap()
	for _, j := range sess.Jobs.List() {
		fmt.Fprintf(sess.Stdout, "%s\n", j.StatusLine())
	}
	return 0
}

func resolveJobArg(jobs *jobtable.Table, args []string) (*jobtable.Job, *shellerr.Error) {
	if len(args) > 0 {
		id, err := strconv.Atoi(strings.TrimPrefix(args[0], "%"))
		if err != nil {
			return nil, shellerr.New(shellerr.KindJobNotFound, "invalid job id: %s", args[0])
		}
		j, ok := jobs.Get(id)
		if !ok {
			return nil, shellerr.New(shellerr.KindJobNotFound, "no such job: %s", args[0])
		}
		return j, nil
	}
	id, ok := jobs.LastID()
	if !ok {
		return nil, shellerr.New(shellerr.KindJobNotFound, "no current job")
	}
	j, _ := jobs.Get(id)
	return j, nil
}

// fgBuiltin performs the full foreground resume sequence: tcsetpgrp to
// the job, SIGCONT if stopped, blocking wait, then restore the shell's
// own terminal foreground on every exit path.
func fgBuiltin(sess *session.Session, args []string) int {
	job, err := resolveJobArg(sess.Jobs, args)
	if err != nil {
		fmt.Fprintf(sess.Stderr, "fg: %v\n", err)
		return err.Kind.ExitCode()
	}
	const ttyFD = 0
	_ = procctl.SetForeground(ttyFD, job.Pgid)
	if job.Status == jobtable.Stopped {
		_ = procctl.SignalGroup(job.Pgid, sigCont)
		job.Status = jobtable.Running
	}
	defer func() { _ = procctl.SetForeground(ttyFD, sess.ShellPgid) }()
	code, _ := sess.Jobs.WaitForeground(job)
	return code
}

func bgBuiltin(sess *session.Session, args []string) int {
	job, err := resolveJobArg(sess.Jobs, args)
	if err != nil {
		fmt.Fprintf(sess.Stderr, "bg: %v\n", err)
		return err.Kind.ExitCode()
	}
	if job.Status == jobtable.Stopped {
		_ = procctl.SignalGroup(job.Pgid, sigCont)
	}
	job.Status = jobtable.Running
	return 0
}

func exitBuiltin(sess *session.Session, args []string) int {
	code := sess.LastExit
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			code = n
		}
	}
	panic(ExitRequest{Code: code})
}

func echoBuiltin(sess *session.Session, args []string) int {
	fmt.Fprintf(sess.Stdout, "%s\n", strings.Join(args, " "))
	return 0
}

func pwdBuiltin(sess *session.Session, args []string) int {
	fmt.Fprintf(sess.Stdout, "%s\n", sess.Cwd)
	return 0
}

func unsetBuiltin(sess *session.Session, args []string) int {
	for _, name := range args {
		if !variables.ValidName(name) {
			err := shellerr.New(shellerr.KindInvalidName, "unset: %s: not a valid identifier", name)
			fmt.Fprintln(sess.Stderr, err.Error())
			return err.Kind.ExitCode()
		}
		sess.Vars.Unset(name)
	}
	return 0
}

// historyBuiltin: `history -c` requests a clear (see HistoryClearRequest).
// Any other invocation, including bare `history`, prints nothing and
// exits 0; listing the stored entries is not implemented.
func historyBuiltin(sess *session.Session, args []string) int {
	if len(args) == 1 && args[0] == "-c" {
		panic(HistoryClearRequest{})
	}
	return 0
}

func typeBuiltin(sess *session.Session, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(sess.Stderr, "type: usage: type NAME")
		return 1
	}
	name := args[0]
	if IsBuiltin(name) {
		fmt.Fprintf(sess.Stdout, "%s is a shell builtin\n", name)
		return 0
	}
	pathVar, _ := sess.Vars.Get("PATH")
	for _, dir := range strings.Split(pathVar, ":") {
		if dir == "" {
			continue
		}
		candidate := dir + "/" + name
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() && info.Mode()&0o111 != 0 {
			fmt.Fprintf(sess.Stdout, "%s is %s\n", name, candidate)
			return 0
		}
	}
	notFoundErr := shellerr.New(shellerr.KindNotFound, "type: %s: not found", name)
	fmt.Fprintln(sess.Stderr, notFoundErr.Error())
	// A failed built-in exits 1; 127 is reserved for a command that could
	// not be executed at all.
	return 1
}

func exportCtx(sess *session.Session) *expand.Context {
	return &expand.Context{
		Vars:     sess.Vars,
		Pid:      sess.Pid,
		LastExit: sess.LastExit,
		Home:     sess.Home(),
		Getwd:    func() (string, error) { return sess.Cwd, nil },
		Stderr:   func(msg string) { fmt.Fprintln(sess.Stderr, msg) },
	}
}

// sigCont is the signal fg/bg send to resume a stopped job. Its number
// differs by OS (18 on Linux, 19 on Darwin), so it comes from syscall.
const sigCont = syscall.SIGCONT
