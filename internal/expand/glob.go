package expand

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// hasUnescapedGlobChars reports whether runes contains an unescaped *, ?,
// or [ — the trigger for attempting glob expansion on a word.
func hasUnescapedGlobChars(runes []rune, escaped []bool) bool {
	for i, r := range runes {
		if escaped[i] {
			continue
		}
		if r == '*' || r == '?' || r == '[' {
			return true
		}
	}
	return false
}

// globLiteral reconstructs the literal word (escaped glob chars matching
// literally, backslashes already stripped by the lexer) used both as the
// match target's literal fallback and as the pattern source.
func globLiteral(runes []rune, escaped []bool) string {
	return string(runes)
}

// expandGlob expands an unquoted word containing glob metacharacters
// against the filesystem. On no match (or an invalid pattern), the literal
// pattern text is returned unchanged, per POSIX "nullglob off" semantics.
func expandGlob(runes []rune, escaped []bool, getwd func() (string, error)) []string {
	pattern := globLiteral(runes, escaped)

	dir, base := filepath.Split(pattern)
	baseEscaped := escapedSuffix(escaped, len([]rune(dir)))

	matchDir := dir
	absolute := filepath.IsAbs(pattern)
	if !absolute {
		cwd := "."
		if getwd != nil {
			if wd, err := getwd(); err == nil {
				cwd = wd
			}
		}
		if dir == "" {
			matchDir = cwd
		} else {
			matchDir = filepath.Join(cwd, dir)
		}
	} else if dir == "" {
		matchDir = "/"
	}

	entries, err := os.ReadDir(matchDir)
	if err != nil {
		return []string{pattern}
	}

	compiled, err := glob.Compile(escapeGlobLiteralRuns(base, baseEscaped))
	if err != nil {
		return []string{pattern}
	}

	hiddenOK := strings.HasPrefix(base, ".")

	var matches []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") && !hiddenOK {
			continue
		}
		if !compiled.Match(name) {
			continue
		}
		matches = append(matches, filepath.Join(dir, name))
	}
	if len(matches) == 0 {
		return []string{pattern}
	}
	sort.Slice(matches, func(i, j int) bool {
		return strings.ToLower(matches[i]) < strings.ToLower(matches[j])
	})
	return matches
}

// escapedSuffix returns the tail of an escaped mask starting at byte/rune
// offset n of the original rune slice that dir/base were split from. Since
// dir is a pure prefix of pattern in rune terms (filepath.Split operates on
// bytes but our patterns are ASCII-path-safe in practice), offset n maps
// 1:1 onto the escaped slice index.
func escapedSuffix(escaped []bool, n int) []bool {
	if n > len(escaped) {
		n = len(escaped)
	}
	return escaped[n:]
}

// escapeGlobLiteralRuns rewrites base so that runes marked escaped are
// passed through glob.Compile as literal (gobwas/glob treats a backslash
// before a metacharacter as an escape, matching shell semantics for
// \*, \?, \[).
func escapeGlobLiteralRuns(base string, escaped []bool) string {
	runes := []rune(base)
	var out strings.Builder
	for i, r := range runes {
		esc := i < len(escaped) && escaped[i]
		if esc && (r == '*' || r == '?' || r == '[' || r == ']' || r == '\\') {
			out.WriteByte('\\')
		}
		out.WriteRune(r)
	}
	return out.String()
}
