package editorhost

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is one accepted command line: timestamp, text, and the
// session id of the shell that recorded it.
type HistoryEntry struct {
	Time      time.Time
	Line      string
	SessionID string
}

// History is a capacity-bounded, disk-persisted command log. Format is a
// simple line-oriented file (tab-separated timestamp/session/line) kept
// deliberately plain: the shell core only requires it round-trip through
// the same host, and treats the on-disk format as opaque otherwise.
type History struct {
	Path      string
	Capacity  int
	SessionID string

	entries []HistoryEntry
}

// NewHistory loads path (if present) and returns a History ready to
// append to, generating a fresh session id for this run's entries.
func NewHistory(path string, capacity int) *History {
	h := &History{Path: path, Capacity: capacity, SessionID: uuid.NewString()}
	h.load()
	return h
}

func (h *History) load() {
	f, err := os.Open(h.Path)
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		entry, ok := parseHistoryLine(scanner.Text())
		if ok {
			h.entries = append(h.entries, entry)
		}
	}
	h.trim()
}

func parseHistoryLine(raw string) (HistoryEntry, bool) {
	parts := strings.SplitN(raw, "\t", 3)
	if len(parts) != 3 {
		return HistoryEntry{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return HistoryEntry{}, false
	}
	return HistoryEntry{Time: ts, SessionID: parts[1], Line: parts[2]}, true
}

func (e HistoryEntry) render() string {
	return fmt.Sprintf("%s\t%s\t%s", e.Time.Format(time.RFC3339Nano), e.SessionID, e.Line)
}

// Append records line (even if it duplicates the previous entry; the
// only exclusion is a wholly empty accepted line, which the REPL never
// passes here) and persists the file.
func (h *History) Append(line string) {
	if line == "" {
		return
	}
	h.entries = append(h.entries, HistoryEntry{Time: time.Now(), Line: line, SessionID: h.SessionID})
	h.trim()
	h.save()
}

func (h *History) trim() {
	if h.Capacity > 0 && len(h.entries) > h.Capacity {
		h.entries = h.entries[len(h.entries)-h.Capacity:]
	}
}

func (h *History) save() error {
	if h.Path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.Path), 0o700); err != nil {
		return err
	}
	var b strings.Builder
	for _, e := range h.entries {
		b.WriteString(e.render())
		b.WriteByte('\n')
	}
	return os.WriteFile(h.Path, []byte(b.String()), 0o600)
}

// Clear empties history in memory and on disk (`history -c`).
func (h *History) Clear() {
	h.entries = nil
	h.save()
}

// Entries returns every stored entry, oldest first.
func (h *History) Entries() []HistoryEntry {
	return h.entries
}

// PrefixHint implements C7's hinter: the suffix of the most recent entry
// whose line begins with prefix, skipping an exact match.
func (h *History) PrefixHint(prefix string) string {
	if prefix == "" {
		return ""
	}
	for i := len(h.entries) - 1; i >= 0; i-- {
		line := h.entries[i].Line
		if line == prefix {
			continue
		}
		if strings.HasPrefix(line, prefix) {
			return line[len(prefix):]
		}
	}
	return ""
}
