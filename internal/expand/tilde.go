package expand

// expandTilde applies tilde expansion to a Bare token's rune/escaped pair:
// a leading unescaped '~' that is either the whole word or immediately
// followed by '/' is replaced with the home directory. Quoted tokens and
// escaped leading tildes are left untouched by the caller (Bare-only check
// happens in expand.go).
func expandTilde(runes []rune, escaped []bool, home string) ([]rune, []bool) {
	if len(runes) == 0 || runes[0] != '~' || escaped[0] {
		return runes, escaped
	}
	if len(runes) > 1 && runes[1] != '/' {
		// "~bob" (other user's home) is not supported; leave literal.
		return runes, escaped
	}
	homeRunes := []rune(home)
	homeEscaped := make([]bool, len(homeRunes))
	for i := range homeEscaped {
		homeEscaped[i] = true
	}
	outRunes := append(append([]rune{}, homeRunes...), runes[1:]...)
	outEscaped := append(append([]bool{}, homeEscaped...), escaped[1:]...)
	return outRunes, outEscaped
}
