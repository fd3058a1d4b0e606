// Package editorhost implements C7: the line-editor host the REPL reads
// input through. Raw-mode key-at-a-time editing brackets MakeRaw/Restore
// around a byte-reading loop with manual backspace/CRLF handling,
// generalized here with cursor movement, history recall, and
// completion/hint hooks a one-shot prompt reader never needs.
package editorhost

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"rush/internal/style"
)

// ResultKind classifies one ReadLine outcome.
type ResultKind int

const (
	Line ResultKind = iota
	EOF
	Interrupt
)

// Result is what ReadLine returns: a completed line, end-of-input on an
// empty buffer, or a keyboard interrupt.
type Result struct {
	Kind ResultKind
	Text string
}

// Host owns the terminal, history, and pluggable providers for one
// interactive shell run.
type Host struct {
	In  *os.File
	Out io.Writer

	History *History
	Hint    func(line string) string
	Complete func(line string, cursor int) Completion
}

// New returns a Host reading from stdin and writing to stdout.
func New(history *History) *Host {
	return &Host{In: os.Stdin, Out: os.Stdout, History: history}
}

// ReadLine renders prompt, then reads and edits one line of input in raw
// mode, returning once the user accepts (Enter), cancels (Ctrl-C), or
// signals end of input (Ctrl-D on an empty buffer).
func (h *Host) ReadLine(prompt string) (Result, error) {
	fd := int(h.In.Fd())
	if !term.IsTerminal(fd) {
		return h.readLineNonTTY(prompt)
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return h.readLineNonTTY(prompt)
	}
	defer func() { _ = term.Restore(fd, state) }()

	fmt.Fprint(h.Out, prompt)

	buf := []rune{}
	cursor := 0
	histIdx := -1 // -1 = not browsing history
	one := make([]byte, 1)

	redraw := func() {
		fmt.Fprint(h.Out, "\r\x1b[K", prompt, string(buf))
		hint := h.renderHint(string(buf), cursor)
		if hint != "" {
			fmt.Fprint(h.Out, hint)
		}
		back := runewidth.StringWidth(string(buf[cursor:])) + runewidth.StringWidth(hint)
		if back > 0 {
			fmt.Fprintf(h.Out, "\x1b[%dD", back)
		}
	}

	for {
		n, err := h.In.Read(one)
		if err != nil {
			if err == io.EOF && len(buf) == 0 {
				fmt.Fprint(h.Out, "\r\n")
				return Result{Kind: EOF}, nil
			}
			return Result{}, err
		}
		if n == 0 {
			continue
		}
		b := one[0]
		switch b {
		case '\r', '\n':
			fmt.Fprint(h.Out, "\r\n")
			return Result{Kind: Line, Text: string(buf)}, nil
		case 3: // Ctrl-C
			fmt.Fprint(h.Out, "\r\n")
			return Result{Kind: Interrupt}, nil
		case 4: // Ctrl-D
			if len(buf) == 0 {
				fmt.Fprint(h.Out, "\r\n")
				return Result{Kind: EOF}, nil
			}
		case 0x7f, 0x08: // Backspace
			if cursor > 0 {
				buf = append(buf[:cursor-1], buf[cursor:]...)
				cursor--
				redraw()
			}
		case '\t':
			h.applyCompletion(&buf, &cursor)
			redraw()
		case 0x1b: // escape sequence: arrow keys
			seq, ok := h.readEscapeSeq()
			if !ok {
				continue
			}
			switch seq {
			case "[C": // right
				if cursor < len(buf) {
					cursor++
					redraw()
				}
			case "[D": // left
				if cursor > 0 {
					cursor--
					redraw()
				}
			case "[A": // up: older history
				buf, cursor, histIdx = h.historyUp(buf, histIdx)
				redraw()
			case "[B": // down: newer history
				buf, cursor, histIdx = h.historyDown(histIdx)
				redraw()
			}
		default:
			if b >= 0x20 && b != 0x7f {
				r := rune(b)
				if b >= 0x80 {
					// Multi-byte UTF-8: read the rest of the sequence.
					seq := []byte{b}
					for !utf8.FullRune(seq) {
						if n, err := h.In.Read(one); err != nil || n == 0 {
							break
						}
						seq = append(seq, one[0])
					}
					r, _ = utf8.DecodeRune(seq)
				}
				buf = append(buf[:cursor], append([]rune{r}, buf[cursor:]...)...)
				cursor++
				redraw()
			}
		}
	}
}

func (h *Host) readEscapeSeq() (string, bool) {
	one := make([]byte, 1)
	n, err := h.In.Read(one)
	if err != nil || n == 0 || one[0] != '[' {
		return "", false
	}
	n, err = h.In.Read(one)
	if err != nil || n == 0 {
		return "", false
	}
	return "[" + string(one[0]), true
}

func (h *Host) historyUp(buf []rune, histIdx int) ([]rune, int, int) {
	if h.History == nil || len(h.History.entries) == 0 {
		return buf, len(buf), histIdx
	}
	if histIdx == -1 {
		histIdx = len(h.History.entries)
	}
	if histIdx > 0 {
		histIdx--
	}
	line := []rune(h.History.entries[histIdx].Line)
	return line, len(line), histIdx
}

func (h *Host) historyDown(histIdx int) ([]rune, int, int) {
	if h.History == nil || histIdx == -1 {
		return []rune{}, 0, -1
	}
	histIdx++
	if histIdx >= len(h.History.entries) {
		return []rune{}, 0, -1
	}
	line := []rune(h.History.entries[histIdx].Line)
	return line, len(line), histIdx
}

func (h *Host) applyCompletion(buf *[]rune, cursor *int) {
	if h.Complete == nil {
		return
	}
	// Completers work in byte offsets of line; buf and cursor are in runes.
	line := string(*buf)
	comp := h.Complete(line, len(string((*buf)[:*cursor])))
	if len(comp.Candidates) != 1 {
		return
	}
	start := utf8.RuneCountInString(line[:comp.Start])
	end := utf8.RuneCountInString(line[:comp.End])
	repl := []rune(comp.Candidates[0])
	newBuf := append([]rune{}, (*buf)[:start]...)
	newBuf = append(newBuf, repl...)
	newBuf = append(newBuf, (*buf)[end:]...)
	*buf = newBuf
	*cursor = start + len(repl)
}

// renderHint applies the §4.7 hinter policy: only at end of line, only on
// a nonempty, non-exact-match buffer, styled dim.
func (h *Host) renderHint(line string, cursor int) string {
	if h.Hint == nil || line == "" || cursor != len([]rune(line)) {
		return ""
	}
	hint := h.Hint(line)
	if hint == "" {
		return ""
	}
	return style.Dim(hint)
}

// readLineNonTTY supports piped/non-interactive stdin (scripts, tests):
// a plain buffered read to newline, with no editing features.
func (h *Host) readLineNonTTY(prompt string) (Result, error) {
	fmt.Fprint(h.Out, prompt)
	var sb strings.Builder
	one := make([]byte, 1)
	read := false
	for {
		n, err := h.In.Read(one)
		if n > 0 {
			read = true
			if one[0] == '\n' {
				return Result{Kind: Line, Text: strings.TrimSuffix(sb.String(), "\r")}, nil
			}
			sb.WriteByte(one[0])
		}
		if err != nil {
			if err == io.EOF {
				if !read || sb.Len() == 0 {
					return Result{Kind: EOF}, nil
				}
				return Result{Kind: Line, Text: sb.String()}, nil
			}
			return Result{}, err
		}
	}
}
