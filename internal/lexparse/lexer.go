package lexparse

import (
	"fmt"
	"strings"
)

// ParseError is returned by Tokenize/Parse on any grammar violation; its
// Message is printed verbatim to stderr by the REPL and $? is set to 2.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string { return e.Message }

func parseErrorf(format string, args ...interface{}) error {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}

const operatorChars = "|<>&"

// Tokenize splits line into word and operator tokens, honoring single and
// double quoting, backslash escaping, the unquoted '#' comment rule, and
// operator recognition at token boundaries.
func Tokenize(line string) ([]Token, error) {
	var tokens []Token
	runes := []rune(line)
	i := 0
	n := len(runes)

	for i < n {
		// Skip whitespace between tokens.
		for i < n && isSpace(runes[i]) {
			i++
		}
		if i >= n {
			break
		}

		// Unquoted comment: discard to end of line.
		if runes[i] == '#' {
			break
		}

		// Operators: >>, >, <, |, &.
		if strings.ContainsRune(operatorChars, runes[i]) {
			if runes[i] == '>' && i+1 < n && runes[i+1] == '>' {
				tokens = append(tokens, Token{Text: ">>", IsOperator: true})
				i += 2
				continue
			}
			tokens = append(tokens, Token{Text: string(runes[i]), IsOperator: true})
			i++
			continue
		}

		// Word token: accumulate until whitespace or an unquoted operator.
		// quoteLevel tracks the strictest quoting seen in this token: a
		// token containing any single-quoted segment is treated as fully
		// single-quoted (safest: never expanded), otherwise any
		// double-quoted segment makes it double-quoted.
		var buf strings.Builder
		var escaped []bool
		emit := func(r rune, esc bool) {
			buf.WriteRune(r)
			escaped = append(escaped, esc)
		}
		quoteLevel := 0 // 0=bare, 1=double, 2=single
		sawQuote := false
		for i < n {
			c := runes[i]
			if isSpace(c) || strings.ContainsRune(operatorChars, c) {
				break
			}
			switch c {
			case '\'':
				sawQuote = true
				if quoteLevel < 2 {
					quoteLevel = 2
				}
				i++
				closed := false
				for i < n {
					if runes[i] == '\'' {
						closed = true
						i++
						break
					}
					emit(runes[i], true)
					i++
				}
				if !closed {
					return nil, parseErrorf("unterminated quote: '")
				}
			case '"':
				sawQuote = true
				if quoteLevel < 1 {
					quoteLevel = 1
				}
				i++
				closed := false
				for i < n {
					if runes[i] == '"' {
						closed = true
						i++
						break
					}
					if runes[i] == '\\' && i+1 < n && (runes[i+1] == '$' || runes[i+1] == '"' || runes[i+1] == '\\') {
						emit(runes[i+1], true)
						i += 2
						continue
					}
					emit(runes[i], false)
					i++
				}
				if !closed {
					return nil, parseErrorf("unterminated quote: \"")
				}
			case '\\':
				if i+1 >= n {
					return nil, parseErrorf("trailing backslash")
				}
				emit(runes[i+1], true)
				i += 2
			case '#':
				// A bare '#' mid-word (not preceded by whitespace) is
				// still a literal character per POSIX word rules; only a
				// '#' that starts a new token begins a comment (handled
				// above at the top of the outer loop).
				emit(c, false)
				i++
			default:
				emit(c, false)
				i++
			}
		}
		quoting := Bare
		switch quoteLevel {
		case 2:
			quoting = SingleQuoted
		case 1:
			quoting = DoubleQuoted
		}
		text := buf.String()
		if text == "" && !sawQuote {
			continue
		}
		tokens = append(tokens, Token{Text: text, Quoting: quoting, Escaped: escaped})
	}

	return tokens, nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}
