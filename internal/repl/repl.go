// Package repl implements C8: the interactive loop that wires every other
// component together — line editor, parser, expander, executor, job
// table — around one Session.
package repl

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"rush/internal/builtins"
	"rush/internal/editorhost"
	"rush/internal/executor"
	"rush/internal/expand"
	"rush/internal/lexparse"
	"rush/internal/procctl"
	"rush/internal/session"
	"rush/internal/style"
)

// REPL owns one interactive run: the session plus its line editor host.
type REPL struct {
	Sess *session.Session
	Host *editorhost.Host
}

// New wires a REPL from an already-constructed session and host.
func New(sess *session.Session, host *editorhost.Host) *REPL {
	return &REPL{Sess: sess, Host: host}
}

// SetupTerminal places the shell in its own process group and takes
// terminal control, diverting the job-control signals to a drained
// channel so the shell process itself survives Ctrl-C/Ctrl-Z/TTOU/TTIN
// without dying.
//
// signal.Notify, not signal.Ignore, is what this needs: SIG_IGN survives
// fork+exec (POSIX), so a child spawned afterward via os/exec would
// inherit these as ignored and keep them ignored across its own exec —
// Ctrl-C would never reach a foreground child. A *caught* disposition
// (even one whose handler does nothing but drain a channel) resets to
// SIG_DFL across exec, which is exactly what a foreground child needs.
func SetupTerminal() (shellPgid int) {
	pid := syscall.Getpid()
	_ = syscall.Setpgid(0, pid)

	ch := make(chan os.Signal, 16)
	signal.Notify(ch, syscall.SIGTTOU, syscall.SIGTTIN, syscall.SIGTSTP, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		for range ch {
		}
	}()

	_ = procctl.SetForeground(0, pid)
	return pid
}

// Run executes the REPL loop until exit or EOF, returning the process
// exit code.
func (r *REPL) Run() (exitCode int) {
	defer func() {
		if rec := recover(); rec != nil {
			switch v := rec.(type) {
			case builtins.ExitRequest:
				exitCode = v.Code
			default:
				panic(rec)
			}
		}
	}()

	for {
		r.reapAndNotify()

		prompt := r.Sess.Settings.Prompt
		result, err := r.Host.ReadLine(prompt)
		if err != nil {
			fmt.Fprintln(r.Sess.Stderr, style.Error(err.Error()))
			return 1
		}

		switch result.Kind {
		case editorhost.Interrupt:
			continue
		case editorhost.EOF:
			return 0
		}

		line := result.Text
		if strings.TrimSpace(line) == "" {
			continue
		}

		r.runLine(line)
	}
}

func (r *REPL) runLine(line string) {
	defer func() {
		if rec := recover(); rec != nil {
			switch rec.(type) {
			case builtins.HistoryClearRequest:
				if r.Host.History != nil {
					r.Host.History.Clear()
				}
			default:
				panic(rec)
			}
		}
	}()

	pipeline, err := lexparse.Parse(line)
	if err != nil {
		fmt.Fprintln(r.Sess.Stderr, style.Error(err.Error()))
		r.Sess.LastExit = 2
		r.appendHistory(line)
		return
	}
	if pipeline == nil {
		return
	}

	argvs := make([][]string, len(pipeline.Commands))
	ctx := &expand.Context{
		Vars:     r.Sess.Vars,
		Pid:      r.Sess.Pid,
		LastExit: r.Sess.LastExit,
		Home:     r.Sess.Home(),
		Getwd:    func() (string, error) { return r.Sess.Cwd, nil },
		Stderr:   func(msg string) { fmt.Fprintln(r.Sess.Stderr, style.Error(msg)) },
	}
	for i, cmd := range pipeline.Commands {
		argv, err := expand.Words(cmd.Words, ctx)
		if err != nil {
			fmt.Fprintln(r.Sess.Stderr, style.Error(err.Error()))
			r.Sess.LastExit = 2
			r.appendHistory(line)
			return
		}
		argvs[i] = argv
	}

	stages := executor.StagesFromPipeline(pipeline, argvs)
	code, _ := executor.Run(r.Sess, stages, pipeline.Background)
	r.Sess.LastExit = code

	r.appendHistory(line)
}

func (r *REPL) appendHistory(line string) {
	if r.Host.History != nil {
		r.Host.History.Append(line)
	}
}

// reapAndNotify runs before every prompt: nonblocking-reap finished
// background jobs and print their completion.
func (r *REPL) reapAndNotify() {
	for _, job := range r.Sess.Jobs.Reap() {
		fmt.Fprintf(r.Sess.Stdout, "[%d]  Done(%d)\t%s\n", job.ID, job.DoneCode, job.Command)
	}
}
