package editorhost

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Completion is one completer's proposal: the candidates plus the byte
// span of line they replace.
type Completion struct {
	Candidates []string
	Start, End int
}

// Completer returns completion candidates for line given the cursor
// position (byte offset).
type Completer func(line string, cursor int) Completion

const maxPathResults = 50

// wordAt returns the bounds (start, end) of the word touching cursor and
// reports whether it is the first word of line.
func wordAt(line string, cursor int) (start, end int, isFirst bool) {
	start = cursor
	for start > 0 && line[start-1] != ' ' {
		start--
	}
	end = cursor
	for end < len(line) && line[end] != ' ' {
		end++
	}
	isFirst = strings.TrimLeft(line[:start], " ") == ""
	return start, end, isFirst
}

// CommandCompleter offers built-in names and PATH executables for the
// first word of a line, ranked by prefix match.
func CommandCompleter(builtinNames func() []string, pathDirs func() []string) Completer {
	return func(line string, cursor int) Completion {
		start, end, isFirst := wordAt(line, cursor)
		if !isFirst {
			return Completion{}
		}
		prefix := line[start:end]
		seen := map[string]bool{}
		var candidates []string
		for _, name := range builtinNames() {
			if strings.HasPrefix(name, prefix) && !seen[name] {
				seen[name] = true
				candidates = append(candidates, name)
			}
		}
		for _, dir := range pathDirs() {
			entries, err := os.ReadDir(dir)
			if err != nil {
				continue
			}
			for _, e := range entries {
				name := e.Name()
				if !strings.HasPrefix(name, prefix) || seen[name] {
					continue
				}
				info, err := e.Info()
				if err != nil || info.IsDir() || info.Mode()&0o111 == 0 {
					continue
				}
				seen[name] = true
				candidates = append(candidates, name)
			}
		}
		sort.Strings(candidates)
		return Completion{Candidates: candidates, Start: start, End: end}
	}
}

// PathCompleter offers filesystem entries for a non-first word, honoring
// tilde expansion of the parent directory, hidden-file filtering, a
// directory-suffix "/", and quoting of entries containing spaces. It caps
// results at maxPathResults, returning none when that cap is exceeded.
func PathCompleter(home string) Completer {
	return func(line string, cursor int) Completion {
		start, end, isFirst := wordAt(line, cursor)
		if isFirst {
			return Completion{}
		}
		word := line[start:end]
		dir, prefix := filepath.Split(word)
		lookupDir := dir
		if lookupDir == "" {
			lookupDir = "."
		}
		if strings.HasPrefix(lookupDir, "~") {
			lookupDir = home + strings.TrimPrefix(lookupDir, "~")
		}
		entries, err := os.ReadDir(lookupDir)
		if err != nil {
			return Completion{}
		}
		showHidden := strings.HasPrefix(prefix, ".")
		var matches []string
		for _, e := range entries {
			name := e.Name()
			if !showHidden && strings.HasPrefix(name, ".") {
				continue
			}
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			entry := name
			if e.IsDir() {
				entry += "/"
			}
			if strings.ContainsRune(entry, ' ') {
				entry = "\"" + entry + "\""
			}
			matches = append(matches, dir+entry)
		}
		if len(matches) > maxPathResults {
			return Completion{Start: start, End: end}
		}
		sort.Strings(matches)
		return Completion{Candidates: matches, Start: start, End: end}
	}
}

// FlagEntry is one flag a command accepts, with its help text.
type FlagEntry struct {
	Flag        string
	Description string
}

// FlagCompleter offers a static per-command flag table for tokens
// starting with '-'. The table is empty by default.
func FlagCompleter(table map[string][]FlagEntry) Completer {
	return func(line string, cursor int) Completion {
		start, end, isFirst := wordAt(line, cursor)
		if isFirst {
			return Completion{}
		}
		word := line[start:end]
		if !strings.HasPrefix(word, "-") {
			return Completion{}
		}
		cmdStart, cmdEnd, _ := wordAt(line, 0)
		cmd := line[cmdStart:cmdEnd]
		flags, ok := table[cmd]
		if !ok {
			return Completion{}
		}
		var candidates []string
		for _, f := range flags {
			if strings.HasPrefix(f.Flag, word) {
				candidates = append(candidates, f.Flag)
			}
		}
		return Completion{Candidates: candidates, Start: start, End: end}
	}
}

// Dispatch selects and runs the completer matching the cursor context:
// flag-looking tokens route to the flag table, the first word routes to
// command completion, everything else routes to path completion.
func Dispatch(line string, cursor int, cmdCompleter, pathCompleter Completer, flagCompleter Completer) Completion {
	start, end, isFirst := wordAt(line, cursor)
	word := line[start:end]
	switch {
	case !isFirst && strings.HasPrefix(word, "-"):
		return flagCompleter(line, cursor)
	case isFirst:
		return cmdCompleter(line, cursor)
	default:
		return pathCompleter(line, cursor)
	}
}
