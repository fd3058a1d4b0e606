package expand

import (
	"os"

	"rush/internal/lexparse"
)

// Words expands a simple command's word tokens into the final argv,
// applying tilde, variable/parameter, then glob expansion in order, and
// dropping tokens that became empty unless they were explicitly quoted.
func Words(tokens []lexparse.Token, ctx *Context) ([]string, error) {
	if ctx.Getwd == nil {
		ctx.Getwd = os.Getwd
	}
	var out []string
	for _, tok := range tokens {
		expanded, err := expandOne(tok, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

// String expands only variable/parameter references in s, with no tilde
// or glob handling. Used by built-ins like `export NAME=value`, where
// variable expansion applies to the value side of a plain string rather
// than a lexed word.
func String(s string, ctx *Context) (string, error) {
	if ctx.Getwd == nil {
		ctx.Getwd = os.Getwd
	}
	runes := []rune(s)
	return expandDollars(runes, make([]bool, len(runes)), ctx, true)
}

func expandOne(tok lexparse.Token, ctx *Context) ([]string, error) {
	runes := []rune(tok.Text)
	escaped := tok.Escaped
	if len(escaped) != len(runes) {
		escaped = make([]bool, len(runes))
	}

	if tok.Quoting == lexparse.SingleQuoted {
		if tok.Text == "" {
			return []string{""}, nil
		}
		return []string{tok.Text}, nil
	}

	if tok.Quoting == lexparse.Bare {
		runes, escaped = expandTilde(runes, escaped, ctx.Home)
	}

	allowBraces := true
	value, err := expandDollars(runes, escaped, ctx, allowBraces)
	if err != nil {
		return nil, err
	}

	if tok.Quoting == lexparse.DoubleQuoted {
		if value == "" {
			return []string{""}, nil
		}
		return []string{value}, nil
	}

	// Bare word: glob expansion may apply. Variable expansion can change
	// the word's length, so the escaped mask is re-derived for the
	// expanded text (see rebuildEscapedForGlob). Glob metacharacters that
	// came from a substituted value are globbed like any other unquoted
	// text.
	valueRunes, valueEscaped := rebuildEscapedForGlob(runes, escaped, value)
	if hasUnescapedGlobChars(valueRunes, valueEscaped) {
		matches := expandGlob(valueRunes, valueEscaped, ctx.Getwd)
		return matches, nil
	}
	if value == "" {
		return nil, nil
	}
	return []string{value}, nil
}

// rebuildEscapedForGlob re-derives a per-rune escaped mask for the fully
// expanded value of a Bare word. Because variable expansion can change the
// token's length, we cannot reuse the pre-expansion escaped slice
// positionally; instead we conservatively mark every rune that differs
// from a straight pass-through of the original literal (i.e. anything
// introduced by substitution) as non-special for glob purposes only when
// the text is unchanged from the original (the common case: no $ in the
// word at all). When substitution did occur, glob metacharacters that
// originated from substituted variable values are still evaluated as
// part of the expanded word (expansion happens before glob,
// and the result is globbed like any other unquoted word) — only
// explicitly backslash-escaped metacharacters from the literal source
// text keep their literal-match meaning. We track original escapes by
// replaying the scan and only consuming an escaped flag when the output
// rune could only have come from the literal (non-$) source, which holds
// because expandDollars never emits a backslash itself.
func rebuildEscapedForGlob(origRunes []rune, origEscaped []bool, value string) ([]rune, []bool) {
	valueRunes := []rune(value)
	if len(origRunes) == len(valueRunes) {
		same := true
		for i := range origRunes {
			if origRunes[i] != valueRunes[i] {
				same = false
				break
			}
		}
		if same {
			return valueRunes, origEscaped
		}
	}
	// Substitution changed the text: nothing left to treat as
	// shell-escaped; glob sees the expanded text as ordinary unquoted
	// text.
	return valueRunes, make([]bool, len(valueRunes))
}
