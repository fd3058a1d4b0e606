package expand

import (
	"fmt"
	"strconv"
	"strings"
)

// expandDollars scans runes/escaped for unescaped '$' parameter references
// and returns the expanded string. allowBraces controls whether ${...}
// forms are interpreted; when false (used while expanding the default/
// alternate/assign "word" of an enclosing ${...} modifier), a nested "${"
// sequence is copied through literally instead of being parsed: nested
// default expansion (`${a:-${b:-final}}`) is deliberately not supported.
func expandDollars(runes []rune, escaped []bool, ctx *Context, allowBraces bool) (string, error) {
	var out strings.Builder
	i := 0
	n := len(runes)
	for i < n {
		if escaped[i] || runes[i] != '$' {
			out.WriteRune(runes[i])
			i++
			continue
		}
		if i+1 >= n {
			out.WriteByte('$')
			i++
			continue
		}
		next := runes[i+1]
		switch {
		case next == '{':
			if !allowBraces {
				out.WriteByte('$')
				i++
				continue
			}
			val, newIdx, err := expandBraced(runes, escaped, i, ctx)
			if err != nil {
				return "", err
			}
			out.WriteString(val)
			i = newIdx
		case next == '$':
			out.WriteString(strconv.Itoa(ctx.Pid))
			i += 2
		case next == '?':
			out.WriteString(strconv.Itoa(ctx.LastExit))
			i += 2
		case next == '#':
			out.WriteString("0")
			i += 2
		case next == '0':
			out.WriteString("rush")
			i += 2
		case next >= '1' && next <= '9':
			i += 2
		case isNameStart(next):
			j := i + 1
			for j < n && isNameRune(runes[j]) {
				j++
			}
			name := string(runes[i+1 : j])
			val, _ := ctx.Vars.Get(name)
			out.WriteString(val)
			i = j
		default:
			out.WriteByte('$')
			i++
		}
	}
	return out.String(), nil
}

func isNameStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isNameRune(r rune) bool {
	return isNameStart(r) || (r >= '0' && r <= '9')
}

// expandBraced handles one "${...}" reference starting at runes[start]
// (runes[start]=='$', runes[start+1]=='{'). It returns the replacement
// text and the index just past the closing brace.
func expandBraced(runes []rune, escaped []bool, start int, ctx *Context) (string, int, error) {
	depth := 0
	i := start + 1 // at '{'
	innerStart := i + 1
	for i < len(runes) {
		if !escaped[i] {
			switch runes[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					inner := runes[innerStart:i]
					innerEsc := escaped[innerStart:i]
					val, err := evalParam(inner, innerEsc, ctx)
					if err != nil {
						return "", 0, err
					}
					return val, i + 1, nil
				}
			}
		}
		i++
	}
	return "", 0, parseErrorf("unterminated ${ reference")
}

func parseErrorf(format string, args ...interface{}) error {
	return &BadSubstitution{Message: fmt.Sprintf(format, args...)}
}

// BadSubstitution reports a malformed ${...} expression.
type BadSubstitution struct{ Message string }

func (e *BadSubstitution) Error() string { return e.Message }
