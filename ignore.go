package glob

import (
	"strings"

	"go.uber.org/multierr"
)

// IgnoreFilter holds compiled ignore patterns. It answers two questions for
// the walker: whether an entry must be excluded from the results, and
// whether a directory's whole subtree can be skipped without being read.
//
// Ignore patterns always match dotfiles: "**/*.log" excludes ".cache/a.log"
// even when the include patterns were given without Dot.
//
// An IgnoreFilter is immutable after construction and safe for concurrent
// use.
type IgnoreFilter struct {
	patterns []*Pattern

	// Subtree prunes, derived from patterns ending in "/**" (not "/**/").
	prefixes map[string]struct{} // literal heads ("dist", "/tmp/cache"), looked up without matching
	heads    []*Pattern          // dynamic heads ("**/node_modules"), matched against directories
	pruneRel bool                // "**": every relative directory
	pruneAbs bool                // "/**": every absolute directory

	opts MatchOptions
}

// NewIgnoreFilter compiles patterns into an IgnoreFilter. A leading "!" on a
// pattern is accepted and ignored, so negated include patterns can be passed
// as they were written. cache may be nil.
func NewIgnoreFilter(patterns []string, cache *Cache, caseInsensitive bool) (*IgnoreFilter, error) {
	if cache == nil {
		cache = NewCache()
	}

	compiled := make([]*Pattern, 0, len(patterns))
	var errs error
	for _, raw := range patterns {
		p, err := cache.Compile(raw)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		compiled = append(compiled, p)
	}
	if errs != nil {
		return nil, errs
	}

	return newIgnoreFilter(compiled, caseInsensitive), nil
}

func newIgnoreFilter(patterns []*Pattern, caseInsensitive bool) *IgnoreFilter {
	f := &IgnoreFilter{
		patterns: patterns,
		prefixes: make(map[string]struct{}),
		opts:     MatchOptions{CaseInsensitive: caseInsensitive, Dot: true},
	}

	for _, p := range patterns {
		n := len(p.segments)
		// A directory-only rule leaves the files below it in the results,
		// so it can never skip a read.
		if n == 0 || p.dirOnly || !p.segments[n-1].globstar {
			continue
		}
		// Strip every trailing globstar: "a/**/**" prunes "a" too.
		for n > 0 && p.segments[n-1].globstar {
			n--
		}

		if n == 0 {
			if p.absolute {
				f.pruneAbs = true
			} else {
				f.pruneRel = true
			}
			continue
		}

		head := &Pattern{
			raw:      p.raw,
			segments: p.segments[:n],
			absolute: p.absolute,
		}
		head.finish()

		if !head.dynamic {
			f.prefixes[f.key(head.base)] = struct{}{}
			continue
		}
		f.heads = append(f.heads, head)
	}

	return f
}

func (f *IgnoreFilter) key(path string) string {
	if f.opts.CaseInsensitive {
		return strings.ToLower(path)
	}
	return path
}

// Len returns the number of ignore patterns.
func (f *IgnoreFilter) Len() int {
	return len(f.patterns)
}

// Excludes reports whether path (slash-separated, relative to the working
// directory or absolute) is matched by any ignore pattern.
func (f *IgnoreFilter) Excludes(path string, isDir bool) bool {
	path = normalizePath(path)
	return f.excludes(splitPath(path), strings.HasPrefix(path, "/"), isDir)
}

func (f *IgnoreFilter) excludes(segs []string, absolute, isDir bool) bool {
	for _, p := range f.patterns {
		if p.absolute != absolute {
			continue
		}
		if p.dirOnly && !isDir {
			continue
		}
		if matchSegments(p.segments, segs, f.opts) {
			return true
		}
	}
	return false
}

// Prunes reports whether the subtree below directory dir is entirely
// ignored, so the directory does not need to be read.
func (f *IgnoreFilter) Prunes(dir string) bool {
	dir = normalizePath(dir)
	return f.prunes(dir, splitPath(dir), strings.HasPrefix(dir, "/"))
}

func (f *IgnoreFilter) prunes(dir string, segs []string, absolute bool) bool {
	if absolute && f.pruneAbs || !absolute && f.pruneRel {
		return true
	}
	if _, ok := f.prefixes[f.key(dir)]; ok {
		return true
	}
	for _, h := range f.heads {
		if h.absolute == absolute && matchSegments(h.segments, segs, f.opts) {
			return true
		}
	}
	return false
}

// covers reports whether dir or any of its ancestors is pruned. The walker
// checks this once for each traversal root.
func (f *IgnoreFilter) covers(dir string) bool {
	dir = normalizePath(dir)
	absolute := strings.HasPrefix(dir, "/")
	segs := splitPath(dir)

	for i := 1; i <= len(segs); i++ {
		prefix := strings.Join(segs[:i], "/")
		if absolute {
			prefix = "/" + prefix
		}
		if f.prunes(prefix, segs[:i], absolute) {
			return true
		}
	}
	return false
}
