package parsing

import "strings"

// Repair applies a lenient single-pass cleanup to almost-JSON text: trailing
// commas are dropped, unquoted object keys are quoted, and single-quoted
// strings are rewritten with double quotes. It does not attempt structural
// fixes; output may still be invalid JSON and must be reparsed.
func Repair(s string) string {
	var out strings.Builder
	out.Grow(len(s) + 16)

	i := 0
	for i < len(s) {
		c := s[i]

		switch {
		case c == '"':
			i = copyDoubleQuoted(&out, s, i)

		case c == '\'':
			i = rewriteSingleQuoted(&out, s, i)

		case c == ',':
			// Drop the comma when the next significant character closes the
			// containing object or array.
			if next, ok := nextSignificant(s, i+1); ok && (next == '}' || next == ']') {
				i++
				continue
			}
			out.WriteByte(c)
			i++

		case isIdentStart(c):
			i = copyIdentifier(&out, s, i)

		default:
			out.WriteByte(c)
			i++
		}
	}

	return out.String()
}

// copyDoubleQuoted copies a double-quoted string verbatim, honoring escapes.
func copyDoubleQuoted(out *strings.Builder, s string, start int) int {
	out.WriteByte('"')
	i := start + 1
	escaped := false
	for i < len(s) {
		c := s[i]
		out.WriteByte(c)
		i++
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '"' {
			break
		}
	}
	return i
}

// rewriteSingleQuoted converts a single-quoted string to a double-quoted one,
// escaping interior double quotes and unescaping \' sequences.
func rewriteSingleQuoted(out *strings.Builder, s string, start int) int {
	out.WriteByte('"')
	i := start + 1
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			if s[i+1] == '\'' {
				out.WriteByte('\'')
			} else {
				out.WriteByte('\\')
				out.WriteByte(s[i+1])
			}
			i += 2
			continue
		}
		if c == '\'' {
			i++
			break
		}
		if c == '"' {
			out.WriteString(`\"`)
			i++
			continue
		}
		out.WriteByte(c)
		i++
	}
	out.WriteByte('"')
	return i
}

// copyIdentifier copies a bare identifier, quoting it when it turns out to be
// an object key (followed by a colon). Bare values such as true, false, and
// null pass through untouched.
func copyIdentifier(out *strings.Builder, s string, start int) int {
	i := start
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	ident := s[start:i]

	if next, ok := nextSignificant(s, i); ok && next == ':' {
		out.WriteByte('"')
		out.WriteString(ident)
		out.WriteByte('"')
		return i
	}

	out.WriteString(ident)
	return i
}

// nextSignificant returns the first non-whitespace byte at or after pos.
func nextSignificant(s string, pos int) (byte, bool) {
	for i := pos; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			return s[i], true
		}
	}
	return 0, false
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
