package glob

import (
	"path/filepath"
	"strings"
)

// IsDynamicPattern reports whether pattern contains wildcard syntax (an
// unescaped "*", "?" or "["). A leading negation marker is not wildcard
// syntax. Static patterns are resolved by a single existence check instead
// of a directory walk.
func IsDynamicPattern(pattern string) bool {
	pattern = strings.TrimPrefix(pattern, "!")

	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++ // the next byte is literal
		case '*', '?', '[':
			return true
		}
	}
	return false
}

// EscapePath turns a literal path into a pattern that matches only that
// path. The platform separator is converted to "/", every "*", "?", "[",
// "]" and "\" is escaped, and so is a leading "!".
//
// The escaped set is exactly the set Compile accepts after a backslash.
func EscapePath(path string) string {
	path = filepath.ToSlash(path)

	var b strings.Builder
	b.Grow(len(path) + 4)
	for i := 0; i < len(path); i++ {
		c := path[i]
		switch {
		case c == '!' && i == 0:
			b.WriteByte('\\')
		case c != '!' && isEscapable(c):
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}
