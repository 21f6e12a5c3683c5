package glob

import (
	"bytes"
	"path/filepath"
	"strings"
)

// normalizePath converts an OS path into the slash-separated form used for
// matching. It converts the platform separator to "/", collapses repeated
// slashes, strips leading "./" and removes a trailing slash (but keeps a
// lone root "/").
func normalizePath(p string) string {
	p = filepath.ToSlash(p)
	p = collapseSlashes(p)

	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	if p == "." {
		return ""
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}

	return p
}

func collapseSlashes(p string) string {
	if !strings.Contains(p, "//") {
		return p
	}

	var b strings.Builder
	b.Grow(len(p))
	prevSlash := false
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			if !prevSlash {
				b.WriteByte('/')
			}
			prevSlash = true
		} else {
			b.WriteByte(p[i])
			prevSlash = false
		}
	}
	return b.String()
}

// joinPath appends a directory entry name to a slash path produced by the
// walker. The empty string is the traversal base of a relative pattern.
func joinPath(parent, name string) string {
	switch parent {
	case "":
		return name
	case "/":
		return "/" + name
	default:
		return parent + "/" + name
	}
}

// normalizeContent normalizes pattern file content for parsing.
// It handles platform-specific encoding variations.
//
// Normalization steps (applied in order):
//  1. Strip UTF-8 BOM if present (EF BB BF) - loops for idempotency
//  2. Normalize CRLF to LF (Windows line endings)
//  3. Normalize standalone CR to LF (old Mac format)
func normalizeContent(content []byte) []byte {
	if len(content) == 0 {
		return content
	}

	for len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}

	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	content = bytes.ReplaceAll(content, []byte("\r"), []byte("\n"))

	return content
}

// trimTrailingWhitespace removes trailing spaces and tabs from a line,
// respecting a backslash-escaped final space:
//   - "foo "    → "foo"
//   - "foo\ "   → "foo "   (escaped space preserved, backslash removed)
//   - "foo\\ "  → "foo\\"  (escaped backslash, unescaped trailing space stripped)
func trimTrailingWhitespace(line string) string {
	end := len(line)
	for end > 0 && (line[end-1] == ' ' || line[end-1] == '\t') {
		end--
	}

	if end == len(line) {
		return line
	}

	bs := 0
	for i := end - 1; i >= 0 && line[i] == '\\'; i-- {
		bs++
	}

	if bs%2 == 1 && line[end] == ' ' {
		return line[:end-1] + " "
	}

	return line[:end]
}
