package expand

import "strconv"

// evalParam interprets the contents of one "${...}" reference (the part
// between the braces), given the parallel escaped mask for those runes.
func evalParam(runes []rune, escaped []bool, ctx *Context) (string, error) {
	if len(runes) == 0 {
		return "", parseErrorf("bad substitution: empty ${}")
	}

	// ${#var}: byte length of value, 0 if unset.
	if runes[0] == '#' && !escaped[0] {
		name := string(runes[1:])
		val, _ := ctx.Vars.Get(name)
		return strconv.Itoa(len(val)), nil
	}

	// Split off the name: leading identifier runes.
	j := 0
	for j < len(runes) && isNameRune(runes[j]) && (j > 0 || isNameStart(runes[j])) {
		j++
	}
	if j == 0 {
		return "", parseErrorf("bad substitution: missing name")
	}
	name := string(runes[:j])
	rest := runes[j:]
	restEsc := escaped[j:]

	if len(rest) == 0 {
		val, _ := ctx.Vars.Get(name)
		return val, nil
	}

	// Array access: name[idx]
	if rest[0] == '[' && !restEsc[0] {
		close := -1
		for k := 1; k < len(rest); k++ {
			if rest[k] == ']' && !restEsc[k] {
				close = k
				break
			}
		}
		if close == -1 {
			return "", parseErrorf("bad substitution: unterminated %s[", name)
		}
		idx := string(rest[1:close])
		return evalArrayIndex(ctx, name, idx)
	}

	// Modifier forms. Disambiguate ':' substring from ':'-prefixed
	// null-or-unset modifiers by checking the character after ':'.
	op := rest[0]
	nullAware := false
	body := rest
	bodyEsc := restEsc
	if op == ':' {
		if len(rest) >= 2 && isModifierOp(rest[1]) {
			nullAware = true
			op = rest[1]
			body = rest[2:]
			bodyEsc = restEsc[2:]
		} else {
			// Substring form: name:offset[:length]
			return evalSubstring(ctx, name, string(rest[1:]))
		}
	} else if isModifierOp(op) {
		body = rest[1:]
		bodyEsc = restEsc[1:]
	} else {
		return "", parseErrorf("bad substitution: unexpected %q after %s", string(op), name)
	}

	val, isSet := ctx.Vars.Get(name)
	isNull := val == ""
	trigger := func() bool {
		if nullAware {
			return !isSet || isNull
		}
		return !isSet
	}

	switch op {
	case '-':
		if trigger() {
			return expandDollars(body, bodyEsc, ctx, false)
		}
		return val, nil
	case '=':
		if trigger() {
			def, err := expandDollars(body, bodyEsc, ctx, false)
			if err != nil {
				return "", err
			}
			if err := ctx.Vars.Set(name, def); err != nil {
				return "", err
			}
			return def, nil
		}
		return val, nil
	case '?':
		if trigger() {
			msg, err := expandDollars(body, bodyEsc, ctx, false)
			if err != nil {
				return "", err
			}
			if msg == "" {
				msg = name + ": parameter null or not set"
			}
			if ctx.Stderr != nil {
				ctx.Stderr(name + ": " + msg)
			}
			return "", nil
		}
		return val, nil
	case '+':
		if !trigger() {
			return expandDollars(body, bodyEsc, ctx, false)
		}
		return "", nil
	}
	return "", parseErrorf("bad substitution: unknown modifier %q", string(op))
}

func isModifierOp(r rune) bool {
	return r == '-' || r == '=' || r == '?' || r == '+'
}

func evalArrayIndex(ctx *Context, name, idx string) (string, error) {
	switch idx {
	case "@", "*":
		items, _ := ctx.Vars.GetArray(name)
		out := ""
		for i, it := range items {
			if i > 0 {
				out += " "
			}
			out += it
		}
		return out, nil
	default:
		i, err := strconv.Atoi(idx)
		if err != nil || i < 0 {
			return "", parseErrorf("bad array index %q", idx)
		}
		val, _ := ctx.Vars.ArrayGet(name, i)
		return val, nil
	}
}

func evalSubstring(ctx *Context, name, spec string) (string, error) {
	val, _ := ctx.Vars.Get(name)
	offsetStr, lengthStr, hasLength := cutColon(spec)
	offset, err := strconv.Atoi(offsetStr)
	if err != nil {
		return "", parseErrorf("bad substring offset %q", offsetStr)
	}
	n := len(val)
	if offset < 0 {
		offset = n + offset
	}
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if hasLength {
		length, err := strconv.Atoi(lengthStr)
		if err != nil {
			return "", parseErrorf("bad substring length %q", lengthStr)
		}
		if length < 0 {
			end = n + length
		} else {
			end = offset + length
		}
	}
	if end > n {
		end = n
	}
	if end < offset {
		end = offset
	}
	return val[offset:end], nil
}

// cutColon splits "offset" or "offset:length" on the first unescaped
// colon that is not part of a leading '-' sign.
func cutColon(spec string) (offset, length string, hasLength bool) {
	for i := 1; i < len(spec); i++ {
		if spec[i] == ':' {
			return spec[:i], spec[i+1:], true
		}
	}
	return spec, "", false
}
