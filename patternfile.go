package glob

import (
	"fmt"
	"os"
	"os/user"
	"strings"
)

// ParsePatternFile parses pattern file content: one pattern per line.
//
// Input normalization (applied automatically):
//   - UTF-8 BOM is stripped if present
//   - CRLF and CR line endings are normalized to LF
//   - Trailing whitespace on each line is trimmed ("\ " keeps one space)
//
// Blank lines and lines starting with "#" are skipped; a leading "\#"
// stands for a literal "#". Patterns are returned uncompiled, in file order;
// a line such as "!build/**" keeps its negation.
func ParsePatternFile(content []byte) []string {
	content = normalizeContent(content)

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = trimTrailingWhitespace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, `\#`) {
			line = line[1:]
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// ReadPatternFile reads and parses the pattern file at path. A leading "~"
// or "~user" in path is expanded to the home directory.
func ReadPatternFile(path string) ([]string, error) {
	expanded, err := expandTilde(path)
	if err != nil {
		return nil, fmt.Errorf("resolving pattern file %s: %w", path, err)
	}

	content, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("reading pattern file %s: %w", expanded, err)
	}

	return ParsePatternFile(content), nil
}

// expandTilde expands ~ and ~user prefixes in a path.
func expandTilde(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	// Split at first separator
	var userPart, rest string
	if i := strings.IndexByte(path, '/'); i >= 0 {
		userPart = path[:i]
		rest = path[i:]
	} else {
		userPart = path
		rest = ""
	}

	var homeDir string
	if userPart == "~" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding ~: %w", err)
		}
		homeDir = dir
	} else {
		username := userPart[1:]
		u, err := user.Lookup(username)
		if err != nil {
			return "", fmt.Errorf("expanding %s: %w", userPart, err)
		}
		homeDir = u.HomeDir
	}

	return homeDir + rest, nil
}
