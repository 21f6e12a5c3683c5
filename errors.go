package glob

import (
	"fmt"
)

// PatternSyntaxError reports a malformed pattern. It is returned by Compile
// and by Glob/GlobSync before any filesystem access takes place.
type PatternSyntaxError struct {
	Pattern string // The offending pattern as given
	Pos     int    // Byte offset of the problem within Pattern
	Msg     string // Human-readable description
}

func (e *PatternSyntaxError) Error() string {
	return fmt.Sprintf("glob: syntax error in pattern %q at offset %d: %s", e.Pattern, e.Pos, e.Msg)
}

// RootNotFoundError reports that the target of a static pattern does not
// exist. It is only surfaced when Options.Strict is set; otherwise a missing
// static path simply contributes no matches.
type RootNotFoundError struct {
	Pattern string
	Path    string
}

func (e *RootNotFoundError) Error() string {
	return fmt.Sprintf("glob: %s: no such file or directory (pattern %q)", e.Path, e.Pattern)
}

// PermissionError reports a directory or entry that could not be read due to
// access restrictions. Suppressed unless Options.Strict is set.
type PermissionError struct {
	Path string
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("glob: permission denied reading %s: %v", e.Path, e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// FileSystemError wraps any other I/O failure encountered during traversal.
// It always aborts the call.
type FileSystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("glob: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error { return e.Err }
