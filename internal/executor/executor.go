// Package executor implements C6: resolving built-ins vs external
// commands, wiring pipes and redirections across a pipeline's stages,
// process-group formation, foreground terminal handoff, and the wait loop.
package executor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"rush/internal/builtins"
	"rush/internal/jobtable"
	"rush/internal/lexparse"
	"rush/internal/procctl"
	"rush/internal/session"
	"rush/internal/shellerr"
	"rush/internal/style"
)

// Stage is one pipeline stage after word expansion: the final argv plus
// its redirections.
type Stage struct {
	Argv   []string
	Stdin  *lexparse.Redirect
	Stdout *lexparse.Redirect
	Mode   lexparse.RedirMode
}

// StagesFromPipeline pairs a parsed Pipeline's redirections with the
// already-expanded argv for each of its stages.
func StagesFromPipeline(p *lexparse.Pipeline, argvs [][]string) []Stage {
	stages := make([]Stage, len(p.Commands))
	for i, cmd := range p.Commands {
		stages[i] = Stage{Argv: argvs[i], Stdin: cmd.Stdin, Stdout: cmd.Stdout, Mode: cmd.Mode}
	}
	return stages
}

// reexecBuiltinEnv signals cmd/rush's entrypoint to run a single builtin
// in-process and exit, standing in for a true fork() of a builtin (Go has
// no safe in-runtime fork+continue); see cmd/rush/main.go.
const reexecBuiltinEnv = "RUSH_EXEC_BUILTIN"

// Run executes one parsed+expanded pipeline. Foreground pipelines block
// until the last stage exits or stops; background pipelines register the
// job and return immediately with exit code 0.
func Run(sess *session.Session, stages []Stage, background bool) (int, error) {
	if len(stages) == 0 {
		return 0, nil
	}

	if len(stages) == 1 && !background && len(stages[0].Argv) > 0 && builtins.IsBuiltin(stages[0].Argv[0]) {
		return runBuiltinInProcess(sess, stages[0])
	}

	return runPipeline(sess, stages, background)
}

func runBuiltinInProcess(sess *session.Session, st Stage) (int, error) {
	restoreStdout, err := applyStdoutRedirect(sess, st)
	if err != nil {
		redirErr := shellerr.New(shellerr.KindRedirFailure, "%v", err)
		fmt.Fprintln(sess.Stderr, style.Error(redirErr.Error()))
		return redirErr.Kind.ExitCode(), nil
	}
	defer restoreStdout()

	restoreStdin, err := applyStdinRedirect(sess, st)
	if err != nil {
		redirErr := shellerr.New(shellerr.KindRedirFailure, "%v", err)
		fmt.Fprintln(sess.Stderr, style.Error(redirErr.Error()))
		return redirErr.Kind.ExitCode(), nil
	}
	defer restoreStdin()

	return builtins.Dispatch(sess, st.Argv[0], st.Argv[1:]), nil
}

func applyStdoutRedirect(sess *session.Session, st Stage) (func(), error) {
	if st.Stdout == nil {
		return func() {}, nil
	}
	flags := os.O_WRONLY | os.O_CREATE
	if st.Mode == lexparse.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(st.Stdout.Path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", st.Stdout.Path, err)
	}
	prev := sess.Stdout
	sess.Stdout = f
	return func() {
		f.Close()
		sess.Stdout = prev
	}, nil
}

func applyStdinRedirect(sess *session.Session, st Stage) (func(), error) {
	if st.Stdin == nil {
		return func() {}, nil
	}
	f, err := os.Open(st.Stdin.Path)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", st.Stdin.Path, err)
	}
	prev := sess.Stdin
	sess.Stdin = f
	return func() {
		f.Close()
		sess.Stdin = prev
	}, nil
}

// runPipeline forks N children (one per stage), wires pipes/redirections,
// forms a single process group, and either waits in the foreground or
// registers the job and returns immediately in the background.
func runPipeline(sess *session.Session, stages []Stage, background bool) (int, error) {
	n := len(stages)
	readers := make([]*os.File, n-1)
	writers := make([]*os.File, n-1)
	for i := 0; i < n-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			closeAll(readers, writers)
			pipeErr := shellerr.New(shellerr.KindForkFailure, "pipe: %v", err)
			fmt.Fprintln(sess.Stderr, style.Error(pipeErr.Error()))
			return pipeErr.Kind.ExitCode(), nil
		}
		readers[i] = r
		writers[i] = w
	}

	cmds := make([]*exec.Cmd, n)
	var pgid int

	for k, st := range stages {
		cmd, err := buildCmd(sess, st)
		if err != nil {
			closeAll(readers, writers)
			redirErr := shellerr.New(shellerr.KindRedirFailure, "%v", err)
			fmt.Fprintln(sess.Stderr, style.Error(redirErr.Error()))
			return redirErr.Kind.ExitCode(), nil
		}
		if cmd.Err != nil {
			closeAll(readers, writers)
			killStarted(cmds[:k])
			notFoundErr := shellerr.New(shellerr.KindNotFound, "%s: command not found", st.Argv[0])
			fmt.Fprintln(sess.Stderr, style.Error(notFoundErr.Error()))
			return notFoundErr.Kind.ExitCode(), nil
		}

		if k > 0 {
			cmd.Stdin = readers[k-1]
		} else if st.Stdin == nil {
			cmd.Stdin = os.Stdin
		}
		if k < n-1 {
			cmd.Stdout = writers[k]
		} else if st.Stdout == nil {
			cmd.Stdout = os.Stdout
		}
		if cmd.Stderr == nil {
			cmd.Stderr = os.Stderr
		}

		sysAttr := &syscall.SysProcAttr{Setpgid: true}
		if k > 0 {
			sysAttr.Pgid = pgid
		}
		cmd.SysProcAttr = sysAttr

		if err := cmd.Start(); err != nil {
			closeAll(readers, writers)
			killStarted(cmds[:k])
			forkErr := shellerr.New(shellerr.KindForkFailure, "fork: %v", err)
			fmt.Fprintln(sess.Stderr, style.Error(forkErr.Error()))
			return forkErr.Kind.ExitCode(), nil
		}
		if k == 0 {
			pgid = cmd.Process.Pid
		}
		// Race-free job control (APUE 9.11): both parent and child call
		// setpgid on the child. One of the two calls is redundant but
		// harmless; ignore errors (child may have already exited, or may
		// already have set it itself).
		_ = syscall.Setpgid(cmd.Process.Pid, pgid)

		cmds[k] = cmd
	}

	// Parent closes every pipe fd; only the children need them open.
	closeAll(readers, writers)

	pids := make([]int, n)
	for i, cmd := range cmds {
		pids[i] = cmd.Process.Pid
	}
	cmdline := commandLine(stages)
	job := sess.Jobs.AddJob(pgid, cmdline, pids)

	if background {
		fmt.Fprintf(sess.Stdout, "[%d] %d\n", job.ID, pgid)
		return 0, nil
	}

	return foregroundWait(sess, job)
}

// foregroundWait hands the terminal to pgid, blocks for the job to finish
// or stop, then always restores terminal control to the shell's own pgid
// on any exit path from foreground waiting.
func foregroundWait(sess *session.Session, job *jobtable.Job) (int, error) {
	const ttyFD = 0
	_ = procctl.SetForeground(ttyFD, job.Pgid)
	defer func() {
		_ = procctl.SetForeground(ttyFD, sess.ShellPgid)
	}()

	code, _ := sess.Jobs.WaitForeground(job)
	return code, nil
}

func buildCmd(sess *session.Session, st Stage) (*exec.Cmd, error) {
	if len(st.Argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	var cmd *exec.Cmd
	switch {
	case builtins.IsBuiltin(st.Argv[0]):
		cmd = reexecBuiltin(st)
	default:
		path, err := resolvePath(sess, st.Argv[0])
		if err != nil {
			return reexecNotFound(st.Argv[0]), nil
		}
		cmd = exec.Command(path, st.Argv[1:]...)
		cmd.Env = sess.Vars.Environ()
		cmd.Dir = sess.Cwd
	}

	if st.Stdin != nil {
		f, err := os.Open(st.Stdin.Path)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", st.Stdin.Path, err)
		}
		cmd.Stdin = f
	}
	if st.Stdout != nil {
		flags := os.O_WRONLY | os.O_CREATE
		if st.Mode == lexparse.Append {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		f, err := os.OpenFile(st.Stdout.Path, flags, 0o644)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", st.Stdout.Path, err)
		}
		cmd.Stdout = f
	}

	return cmd, nil
}

// reexecBuiltin builds a command that re-invokes the rush binary itself to
// run a single built-in and exit, standing in for forking the running
// shell process to execute a built-in inside a pipeline stage (Go has no
// safe fork()-and-continue; see reexecBuiltinEnv).
func reexecBuiltin(st Stage) *exec.Cmd {
	self, err := os.Executable()
	if err != nil {
		self = os.Args[0]
	}
	cmd := exec.Command(self, st.Argv...)
	cmd.Env = append(os.Environ(), reexecBuiltinEnv+"=1")
	return cmd
}

func reexecNotFound(name string) *exec.Cmd {
	// A command that cannot be resolved on PATH still needs a *exec.Cmd
	// placeholder so the pipeline's fd wiring stays uniform; Start will
	// fail and the caller reports "command not found" / exit 127.
	cmd := exec.Command(name)
	cmd.Err = fmt.Errorf("%s: not found", name)
	return cmd
}

// resolvePath implements the shell's executable lookup: a name containing
// '/' is used directly; otherwise each PATH entry is tried left to right
// for an existing, executable file.
func resolvePath(sess *session.Session, name string) (string, error) {
	if builtins.IsBuiltin(name) {
		return name, nil
	}
	if strings.Contains(name, "/") {
		if isExecutable(name) {
			return name, nil
		}
		return "", fmt.Errorf("%s: not found", name)
	}
	pathVar, _ := sess.Vars.Get("PATH")
	for _, dir := range strings.Split(pathVar, ":") {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s: not found", name)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}

func closeAll(groups ...[]*os.File) {
	for _, g := range groups {
		for _, f := range g {
			if f != nil {
				f.Close()
			}
		}
	}
}

func killStarted(cmds []*exec.Cmd) {
	for _, cmd := range cmds {
		if cmd != nil && cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
	}
}

func commandLine(stages []Stage) string {
	parts := make([]string, len(stages))
	for i, st := range stages {
		parts[i] = strings.Join(st.Argv, " ")
	}
	return strings.Join(parts, " | ")
}

