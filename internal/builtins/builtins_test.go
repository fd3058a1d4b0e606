package builtins

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"rush/internal/config"
	"rush/internal/session"
)

func newTestSession(t *testing.T) (*session.Session, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	sess := session.New(config.Default())
	var out, errOut bytes.Buffer
	sess.Stdout = &out
	sess.Stderr = &errOut
	return sess, &out, &errOut
}

func TestEchoJoinsWithSpaces(t *testing.T) {
	sess, out, _ := newTestSession(t)
	code := Dispatch(sess, "echo", []string{"a", "b", "c"})
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if out.String() != "a b c\n" {
		t.Fatalf("output = %q", out.String())
	}
}

func TestPwdPrintsCwd(t *testing.T) {
	sess, out, _ := newTestSession(t)
	sess.Cwd = "/tmp"
	Dispatch(sess, "pwd", nil)
	if out.String() != "/tmp\n" {
		t.Fatalf("output = %q", out.String())
	}
}

func TestCdNoArgGoesHome(t *testing.T) {
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(orig) })

	sess, _, _ := newTestSession(t)
	home := t.TempDir()
	sess.Vars.Set("HOME", home)
	code := Dispatch(sess, "cd", nil)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if sess.Cwd != home {
		t.Fatalf("Cwd = %q, want %q", sess.Cwd, home)
	}
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if cwd != home {
		t.Fatalf("os working directory = %q, want %q (cd must chdir the real process)", cwd, home)
	}
}

func TestCdMissingDirFails(t *testing.T) {
	sess, _, errOut := newTestSession(t)
	code := Dispatch(sess, "cd", []string{"/no/such/dir"})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if errOut.Len() == 0 {
		t.Fatal("expected an error message")
	}
}

func TestExportNoArgsListsSorted(t *testing.T) {
	sess, out, _ := newTestSession(t)
	sess.Vars.Set("ZVAR", "z")
	sess.Vars.Export("ZVAR")
	sess.Vars.Set("AVAR", "a")
	sess.Vars.Export("AVAR")
	Dispatch(sess, "export", nil)
	got := out.String()
	wantA := "export AVAR=a\n"
	wantZ := "export ZVAR=z\n"
	if got != wantA+wantZ {
		t.Fatalf("output = %q, want %q", got, wantA+wantZ)
	}
}

func TestExportSetsAndExpands(t *testing.T) {
	sess, _, _ := newTestSession(t)
	sess.Vars.Set("BASE", "hi")
	Dispatch(sess, "export", []string{"FOO=$BASE-there"})
	v, ok := sess.Vars.Get("FOO")
	if !ok || v != "hi-there" {
		t.Fatalf("FOO = %q, %v", v, ok)
	}
	if !sess.Vars.IsExported("FOO") {
		t.Fatal("FOO should be exported")
	}
}

func TestExportInvalidNameFails(t *testing.T) {
	sess, _, _ := newTestSession(t)
	code := Dispatch(sess, "export", []string{"1BAD=x"})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}

func TestUnsetRemovesVariable(t *testing.T) {
	sess, _, _ := newTestSession(t)
	sess.Vars.Set("FOO", "bar")
	Dispatch(sess, "unset", []string{"FOO"})
	if _, ok := sess.Vars.Get("FOO"); ok {
		t.Fatal("FOO should be unset")
	}
}

func TestExitPanicsWithCode(t *testing.T) {
	sess, _, _ := newTestSession(t)
	sess.LastExit = 7
	defer func() {
		r := recover()
		req, ok := r.(ExitRequest)
		if !ok {
			t.Fatalf("recovered %v, want ExitRequest", r)
		}
		if req.Code != 7 {
			t.Fatalf("code = %d, want 7 (from $?)", req.Code)
		}
	}()
	Dispatch(sess, "exit", nil)
}

func TestExitWithExplicitCode(t *testing.T) {
	sess, _, _ := newTestSession(t)
	defer func() {
		req := recover().(ExitRequest)
		if req.Code != 42 {
			t.Fatalf("code = %d, want 42", req.Code)
		}
	}()
	Dispatch(sess, "exit", []string{"42"})
}

func TestTypeReportsBuiltin(t *testing.T) {
	sess, out, _ := newTestSession(t)
	Dispatch(sess, "type", []string{"cd"})
	if out.String() != "cd is a shell builtin\n" {
		t.Fatalf("output = %q", out.String())
	}
}

func TestTypeReportsPathExecutable(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "mytool")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	sess, out, _ := newTestSession(t)
	sess.Vars.Set("PATH", dir)
	Dispatch(sess, "type", []string{"mytool"})
	if out.String() != "mytool is "+exe+"\n" {
		t.Fatalf("output = %q", out.String())
	}
}

func TestTypeNotFound(t *testing.T) {
	sess, _, errOut := newTestSession(t)
	sess.Vars.Set("PATH", t.TempDir())
	code := Dispatch(sess, "type", []string{"nonexistent-cmd"})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if errOut.Len() == 0 {
		t.Fatal("expected an error message")
	}
}

func TestDispatchUnknownBuiltin(t *testing.T) {
	sess, _, _ := newTestSession(t)
	code := Dispatch(sess, "not-a-builtin", nil)
	if code != 127 {
		t.Fatalf("exit code = %d, want 127", code)
	}
}
