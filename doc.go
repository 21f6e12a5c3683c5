// Package glob finds filesystem paths matching glob patterns.
//
// Patterns are compiled into segments, matched segment by segment, and
// resolved against the live filesystem by a walker that starts at each
// pattern's literal prefix and reads only the directories a pattern can
// still reach.
//
// # Basic Usage
//
//	// Concurrent, cancellable
//	files, err := glob.Glob(ctx, []string{"src/**/*.ts", "!**/*.test.ts"}, glob.Options{})
//
//	// Blocking, same results in the same order
//	files, err = glob.GlobSync([]string{"src/**/*.ts"}, glob.Options{
//	    Ignore:   []string{"**/*.d.ts"},
//	    Absolute: true,
//	})
//
// # Supported Syntax
//
//   - "*" matches any run of characters inside one path segment
//   - "?" matches exactly one character
//   - "[abc]", "[a-z]", "[!0-9]", "[^0-9]" match one character of a set
//   - "**" as a whole segment matches zero or more segments
//   - "\" escapes one of * ? [ ] \ !
//   - A leading "!" turns the pattern into an exclusion rule
//   - A trailing "/" matches directories only
//
// Brace expansion ("{a,b}") is not supported; braces are literal.
//
// # Dotfiles
//
// Names beginning with "." are only matched by a wildcard when Options.Dot
// is set, or when the pattern segment itself starts with "." (".*",
// ".github"). Exclusion rules always see dotfiles.
//
// # Ordering
//
// Results are deduplicated and ordered by pattern, then breadth-first by
// directory, then by name. Glob and GlobSync return identical slices for an
// unchanged filesystem.
//
// # Errors
//
// Syntax errors (*PatternSyntaxError) are reported before any I/O. An
// unreadable directory is logged and skipped unless Options.Strict is set;
// any other I/O failure aborts the call with a *FileSystemError. Partial
// results are never returned alongside an error.
//
// # Helpers
//
//	glob.IsDynamicPattern("a/b.txt")        // false
//	glob.EscapePath("src/[special]/file.ts") // `src/\[special\]/file.ts`
package glob
