// preprocess.go - comment removal and literal substitution (spec.md §4.3)

package script

import "strconv"

// stripComments removes // and /* */ comments while leaving string
// contents untouched; the newline ending a // comment is kept, while a
// /* */ comment is dropped whole, newlines included. It tracks four
// exclusive states exactly
// as spec.md §4.3 step 1 describes: a comment delimiter seen while inside
// a string is literal, and vice versa.
func stripComments(src string) string {
	out := make([]byte, 0, len(src))
	const (
		stateCode = iota
		stateSingleQuote
		stateDoubleQuote
		stateLineComment
		stateBlockComment
	)
	state := stateCode
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch state {
		case stateSingleQuote:
			out = append(out, c)
			if c == '\'' {
				state = stateCode
			}
		case stateDoubleQuote:
			out = append(out, c)
			if c == '"' {
				state = stateCode
			}
		case stateLineComment:
			if c == '\n' {
				out = append(out, c)
				state = stateCode
			}
		case stateBlockComment:
			if c == '*' && i+1 < len(src) && src[i+1] == '/' {
				state = stateCode
				i++
			}
		default: // stateCode
			switch {
			case c == '\'':
				out = append(out, c)
				state = stateSingleQuote
			case c == '"':
				out = append(out, c)
				state = stateDoubleQuote
			case c == '/' && i+1 < len(src) && src[i+1] == '/':
				state = stateLineComment
				i++
			case c == '/' && i+1 < len(src) && src[i+1] == '*':
				state = stateBlockComment
				i++
			default:
				out = append(out, c)
			}
		}
	}
	return string(out)
}

// substituteLiterals replaces every string literal and every
// $-prefixed hex integer literal with "%N%" where N is a freshly interned
// constant-pool index (spec.md §4.3 step 2). Inside strings the opposite
// quote character is literal, matching the original grammar's single- and
// double-quoted string forms.
func substituteLiterals(pool *Pool, src string) (string, error) {
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '\'' || c == '"':
			quote := c
			j := i + 1
			for j < len(src) && src[j] != quote {
				j++
			}
			if j >= len(src) {
				return "", errAt(i, "unterminated string literal")
			}
			idx, err := pool.InternString([]byte(src[i+1 : j]))
			if err != nil {
				return "", err
			}
			out = append(out, '%')
			out = append(out, []byte(strconv.Itoa(idx))...)
			out = append(out, '%')
			i = j + 1
		case c == '$':
			j := i + 1
			for j < len(src) && isHexDigit(src[j]) {
				j++
			}
			if j == i+1 {
				out = append(out, c)
				i++
				continue
			}
			n, err := strconv.ParseUint(src[i+1:j], 16, 64)
			if err != nil {
				return "", errAt(i, "invalid hex literal")
			}
			idx, err := pool.InternDouble(float64(n))
			if err != nil {
				return "", err
			}
			out = append(out, '%')
			out = append(out, []byte(strconv.Itoa(idx))...)
			out = append(out, '%')
			i = j
		default:
			out = append(out, c)
			i++
		}
	}
	return string(out), nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// preprocess runs both passes. Per spec.md §4.3, nested re-entry during
// compilation (a "session") skips preprocessing, since the source has
// already been through it once at the top level.
func preprocess(pool *Pool, src string, session bool) (string, error) {
	if session {
		return src, nil
	}
	return substituteLiterals(pool, stripComments(src))
}
