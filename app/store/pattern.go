package store

// matchPattern reports whether name matches a KEYS glob: '*' any run, '?'
// any byte, '[...]' a class with optional '^' negation and 'a-z' ranges, and
// '\' escaping the next byte. Unlike path.Match, '*' also spans '/'.
func matchPattern(pattern, name string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			for len(pattern) > 1 && pattern[1] == '*' {
				pattern = pattern[1:]
			}
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(name); i++ {
				if matchPattern(pattern[1:], name[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(name) == 0 {
				return false
			}
			name = name[1:]
			pattern = pattern[1:]
		case '[':
			if len(name) == 0 {
				return false
			}
			rest, ok := matchClass(pattern[1:], name[0])
			if !ok {
				return false
			}
			pattern = rest
			name = name[1:]
		case '\\':
			if len(pattern) >= 2 {
				pattern = pattern[1:]
			}
			fallthrough
		default:
			if len(name) == 0 || pattern[0] != name[0] {
				return false
			}
			name = name[1:]
			pattern = pattern[1:]
		}
	}
	return len(name) == 0
}

// matchClass matches c against the class body starting after '['. It returns
// the pattern past the closing ']'.
func matchClass(pattern string, c byte) (string, bool) {
	negate := false
	if len(pattern) > 0 && pattern[0] == '^' {
		negate = true
		pattern = pattern[1:]
	}

	matched := false
	for len(pattern) > 0 && pattern[0] != ']' {
		switch {
		case pattern[0] == '\\' && len(pattern) >= 2:
			if pattern[1] == c {
				matched = true
			}
			pattern = pattern[2:]
		case len(pattern) >= 3 && pattern[1] == '-' && pattern[2] != ']':
			lo, hi := pattern[0], pattern[2]
			if lo > hi {
				lo, hi = hi, lo
			}
			if c >= lo && c <= hi {
				matched = true
			}
			pattern = pattern[3:]
		default:
			if pattern[0] == c {
				matched = true
			}
			pattern = pattern[1:]
		}
	}
	if len(pattern) > 0 {
		pattern = pattern[1:]
	}
	return pattern, matched != negate
}

// validatePattern rejects patterns with an unterminated class.
func validatePattern(pattern string) error {
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '[':
			j := i + 1
			for j < len(pattern) && pattern[j] != ']' {
				if pattern[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(pattern) {
				return ErrBadPattern
			}
			i = j
		}
	}
	return nil
}
