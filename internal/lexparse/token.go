// Package lexparse tokenizes a shell input line and parses it into a
// pipeline AST: quoting/escaping rules, operators (|, <, >, >>, &), and
// comments, per the rush grammar.
package lexparse

// Quoting records how a word token was written, which governs which
// expansions (§ expand package) apply to it.
type Quoting int

const (
	// Bare: unquoted word. Tilde, variable, and glob expansion all apply.
	Bare Quoting = iota
	// DoubleQuoted: variable expansion only, no glob expansion.
	DoubleQuoted
	// SingleQuoted: no expansion at all.
	SingleQuoted
)

// Token is one word or operator produced by the lexer.
type Token struct {
	// Text is the raw (post-escape, pre-expansion) token text for words,
	// or the operator string for operators.
	Text string
	// Quoting describes the word's origin; zero value for operators.
	Quoting Quoting
	// IsOperator marks |, <, >, >>, & tokens.
	IsOperator bool
	// Escaped marks, per rune of Text (len(Escaped) == len([]rune(Text))),
	// which runes arrived via a backslash escape (outside quotes), a
	// quoted \$, \", \\ sequence inside double quotes, or a single-quoted
	// segment. An escaped '$' must not trigger variable expansion and an
	// escaped glob metacharacter must not trigger glob expansion, even
	// though by the time Text is built the backslash itself is gone. For a
	// SingleQuoted token the mask is not consulted (the whole token
	// already skips expansion).
	Escaped []bool
}
