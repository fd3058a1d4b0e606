// Command rush is an interactive POSIX-style shell.
package main

import (
	"fmt"
	"os"

	"rush/internal/builtins"
	"rush/internal/config"
	"rush/internal/editorhost"
	"rush/internal/repl"
	"rush/internal/session"
)

// reexecBuiltinEnv mirrors executor.reexecBuiltinEnv: when set, this
// process is a one-shot re-exec of a single built-in running as a
// pipeline stage, not the interactive shell (see internal/executor).
const reexecBuiltinEnv = "RUSH_EXEC_BUILTIN"

func main() {
	if os.Getenv(reexecBuiltinEnv) != "" {
		os.Exit(runReexecedBuiltin())
	}
	os.Exit(runInteractive())
}

func runReexecedBuiltin() int {
	if len(os.Args) < 2 {
		return 1
	}
	sess := session.New(config.Default())
	return builtins.Dispatch(sess, os.Args[1], os.Args[2:])
}

func runInteractive() int {
	settings, err := config.Load(config.DefaultPath())
	if err != nil {
		fmt.Fprintln(os.Stderr, "rush: config:", err)
		settings = config.Default()
	}

	sess := session.New(settings)
	sess.Vars.Set("RUSH_VERSION", "0.1.0")
	sess.Vars.Export("RUSH_VERSION")
	sess.ShellPgid = repl.SetupTerminal()

	history := editorhost.NewHistory(expandHistoryPath(settings.HistoryFile, sess.Home()), settings.HistorySize)
	host := editorhost.New(history)
	host.Hint = history.PrefixHint
	host.Complete = func(line string, cursor int) editorhost.Completion {
		cmdCompleter := editorhost.CommandCompleter(builtins.Names, func() []string { return pathDirs(sess) })
		pathCompleter := editorhost.PathCompleter(sess.Home())
		flagCompleter := editorhost.FlagCompleter(nil)
		return editorhost.Dispatch(line, cursor, cmdCompleter, pathCompleter, flagCompleter)
	}

	r := repl.New(sess, host)
	return r.Run()
}

func pathDirs(sess *session.Session) []string {
	pathVar, _ := sess.Vars.Get("PATH")
	var dirs []string
	start := 0
	for i, r := range pathVar {
		if r == ':' {
			dirs = append(dirs, pathVar[start:i])
			start = i + 1
		}
	}
	dirs = append(dirs, pathVar[start:])
	return dirs
}

func expandHistoryPath(path, home string) string {
	if len(path) > 0 && path[0] == '~' {
		return home + path[1:]
	}
	return path
}
