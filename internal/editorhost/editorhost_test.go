package editorhost

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestHistoryAppendAndPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	h := NewHistory(path, 10)
	h.Append("echo one")
	h.Append("echo two")

	reloaded := NewHistory(path, 10)
	entries := reloaded.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Line != "echo one" || entries[1].Line != "echo two" {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].SessionID == "" {
		t.Fatal("expected a non-empty session id")
	}
}

func TestHistoryCapacityBounded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	h := NewHistory(path, 2)
	h.Append("a")
	h.Append("b")
	h.Append("c")
	entries := h.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Line != "b" || entries[1].Line != "c" {
		t.Fatalf("entries = %+v, want [b c]", entries)
	}
}

func TestHistoryClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	h := NewHistory(path, 10)
	h.Append("echo one")
	h.Clear()
	if len(h.Entries()) != 0 {
		t.Fatal("expected empty history after Clear")
	}
	reloaded := NewHistory(path, 10)
	if len(reloaded.Entries()) != 0 {
		t.Fatal("expected cleared history to persist across reload")
	}
}

func TestPrefixHintSkipsExactMatch(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "history"), 10)
	h.Append("git status")
	h.Append("git commit -m wip")

	if got := h.PrefixHint("git s"); got != "tatus" {
		t.Fatalf("hint = %q, want %q", got, "tatus")
	}
	if got := h.PrefixHint("git commit -m wip"); got != "" {
		t.Fatalf("hint = %q, want empty for exact match", got)
	}
	if got := h.PrefixHint("nomatch"); got != "" {
		t.Fatalf("hint = %q, want empty", got)
	}
}

func TestCommandCompleterMatchesBuiltinsAndPath(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "catfish")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	completer := CommandCompleter(
		func() []string { return []string{"cd", "cat"} },
		func() []string { return []string{dir} },
	)
	comp := completer("cat", 3)
	if len(comp.Candidates) != 2 {
		t.Fatalf("candidates = %v, want 2 (cat, catfish)", comp.Candidates)
	}
}

func TestCommandCompleterIgnoresNonFirstWord(t *testing.T) {
	completer := CommandCompleter(func() []string { return []string{"cd"} }, func() []string { return nil })
	comp := completer("echo cd", 7)
	if comp.Candidates != nil {
		t.Fatalf("candidates = %v, want none for non-first word", comp.Candidates)
	}
}

func TestPathCompleterFiltersHiddenAndQuotesSpaces(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"visible.txt", ".hidden", "has space.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	completer := PathCompleter("/home/nobody")
	line := "cat " + dir + "/"
	comp := completer(line, len(line))
	var sawSpace, sawHidden bool
	for _, c := range comp.Candidates {
		if c == dir+"/\"has space.txt\"" {
			sawSpace = true
		}
		if filepathBase(c) == ".hidden" {
			sawHidden = true
		}
	}
	if !sawSpace {
		t.Fatalf("candidates = %v, want a quoted space entry", comp.Candidates)
	}
	if sawHidden {
		t.Fatalf("candidates = %v, hidden file should be filtered", comp.Candidates)
	}
}

func filepathBase(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return s[i+1:]
		}
	}
	return s
}

func TestFlagCompleterEmptyTableReturnsNone(t *testing.T) {
	completer := FlagCompleter(nil)
	comp := completer("ls -", 4)
	if comp.Candidates != nil {
		t.Fatalf("candidates = %v, want none for empty table", comp.Candidates)
	}
}

func TestReadLineNonTTYEcho(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	host := &Host{In: r, Out: &out}
	go func() {
		w.Write([]byte("echo hi\n"))
		w.Close()
	}()
	result, err := host.ReadLine("$ ")
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if result.Kind != Line || result.Text != "echo hi" {
		t.Fatalf("result = %+v", result)
	}
}

func TestReadLineNonTTYEOFOnEmpty(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	w.Close()
	var out bytes.Buffer
	host := &Host{In: r, Out: &out}
	result, err := host.ReadLine("$ ")
	if err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	if result.Kind != EOF {
		t.Fatalf("result = %+v, want EOF", result)
	}
}
