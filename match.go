package glob

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MatchOptions controls how a compiled pattern is compared against a path.
type MatchOptions struct {
	// CaseInsensitive folds case for literal text and character classes.
	// Default: false (case-sensitive).
	CaseInsensitive bool

	// Dot allows wildcards and globstars to match names beginning with ".".
	// A segment that itself starts with a literal "." always may.
	Dot bool
}

// Match reports whether path matches the pattern. path uses "/" as the
// separator (the platform separator is also accepted); isDir tells
// directory-only patterns whether the path names a directory. The negation
// marker does not invert the result: Match answers "does the path fit the
// pattern".
func (p *Pattern) Match(path string, isDir bool, opts MatchOptions) bool {
	path = normalizePath(path)
	if strings.HasPrefix(path, "/") != p.absolute {
		return false
	}
	if p.dirOnly && !isDir {
		return false
	}
	return p.MatchSegments(splitPath(path), opts)
}

// MatchSegments reports whether the already split path segments match the
// pattern. Directory-only and absolute flags are not consulted.
func (p *Pattern) MatchSegments(path []string, opts MatchOptions) bool {
	return matchSegments(p.segments, path, opts)
}

// matchSegments matches pattern segments against path segments exactly.
func matchSegments(pattern []segment, path []string, opts MatchOptions) bool {
	m := matcher{pattern: pattern, path: path, opts: opts}
	return m.run(false)
}

// matchPartial reports whether some descendant of the directory whose
// segments are path could still match pattern. The walker uses it to avoid
// reading directories no pattern can reach.
func matchPartial(pattern []segment, path []string, opts MatchOptions) bool {
	m := matcher{pattern: pattern, path: path, opts: opts}
	return m.run(true)
}

// matcher holds the state of a single pattern/path comparison.
type matcher struct {
	pattern []segment
	path    []string
	opts    MatchOptions
	steps   int // states expanded, bounded by (len(pattern)+1)*(len(path)+1)
}

// run performs the comparison. In partial mode it succeeds when the path is
// exhausted while pattern segments remain.
func (m *matcher) run(partial bool) bool {
	if !hasGlobstar(m.pattern) {
		return m.runLinear(partial)
	}
	return m.runSearch(partial)
}

// runLinear handles patterns without globstars: segment i of the pattern
// can only ever face segment i of the path.
func (m *matcher) runLinear(partial bool) bool {
	if partial {
		if len(m.path) >= len(m.pattern) {
			return false
		}
	} else if len(m.path) != len(m.pattern) {
		return false
	}

	for i, name := range m.path {
		m.steps++
		if !m.matchSegment(&m.pattern[i], name) {
			return false
		}
	}
	return true
}

// runSearch explores (pattern-position, path-position) states with an
// explicit stack. Each state is pushed at most once, so a failed state is
// never revisited and the cost is O(len(pattern) * len(path)) segment
// comparisons however many globstars the pattern contains.
func (m *matcher) runSearch(partial bool) bool {
	np, ns := len(m.pattern), len(m.path)
	width := ns + 1
	visited := make([]uint64, ((np+1)*width+63)/64)
	stack := make([]int, 0, np+ns+1)

	push := func(pi, si int) {
		st := pi*width + si
		if visited[st/64]&(1<<(st%64)) != 0 {
			return
		}
		visited[st/64] |= 1 << (st % 64)
		stack = append(stack, st)
	}

	push(0, 0)
	for len(stack) > 0 {
		st := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		pi, si := st/width, st%width
		m.steps++

		if si == ns {
			if pi == np {
				if !partial {
					return true
				}
				continue
			}
			if partial {
				return true
			}
		}
		if pi == np {
			continue
		}

		seg := &m.pattern[pi]
		if seg.globstar {
			// Pushed in reverse: zero consumption is explored first.
			if si < ns && m.globstarConsumes(m.path[si]) {
				push(pi, si+1)
			}
			push(pi+1, si)
			continue
		}

		if si < ns && m.matchSegment(seg, m.path[si]) {
			push(pi+1, si+1)
		}
	}

	return false
}

func (m *matcher) globstarConsumes(name string) bool {
	return m.opts.Dot || !strings.HasPrefix(name, ".")
}

// matchSegment matches a single pattern segment against a path segment.
func (m *matcher) matchSegment(seg *segment, name string) bool {
	if seg.literal {
		if m.opts.CaseInsensitive {
			return strings.EqualFold(seg.value, name)
		}
		return seg.value == name
	}

	// Hidden names need Dot or an explicit leading "." in the segment.
	if strings.HasPrefix(name, ".") && !m.opts.Dot && !seg.dotExplicit {
		return false
	}
	// "." and ".." are never produced by wildcards.
	if name == "." || name == ".." {
		return false
	}

	return matchTokens(seg.tokens, name, m.opts.CaseInsensitive)
}

// matchTokens matches the tokens of one segment against a name.
// Stars are handled with a single backtrack point (the most recent star),
// which is sufficient because every other token has a fixed width; the
// worst case is O(len(tokens) * len(name)).
func matchTokens(tokens []token, name string, fold bool) bool {
	if ok, handled := matchTokensFast(tokens, name, fold); handled {
		return ok
	}

	ti, ni := 0, 0
	starTi, starNi := -1, 0

	for ti < len(tokens) || ni < len(name) {
		if ti < len(tokens) {
			t := &tokens[ti]
			switch t.kind {
			case tokStar:
				starTi, starNi = ti, ni
				ti++
				continue
			case tokAny:
				if ni < len(name) {
					_, size := utf8.DecodeRuneInString(name[ni:])
					ni += size
					ti++
					continue
				}
			case tokClass:
				if ni < len(name) {
					r, size := utf8.DecodeRuneInString(name[ni:])
					if t.class.matches(r, fold) {
						ni += size
						ti++
						continue
					}
				}
			case tokLiteral:
				if n, ok := hasPrefix(name[ni:], t.text, fold); ok {
					ni += n
					ti++
					continue
				}
			}
		}

		// Mismatch: let the last star absorb one more character.
		if starTi >= 0 && starNi < len(name) {
			_, size := utf8.DecodeRuneInString(name[starNi:])
			starNi += size
			ti, ni = starTi+1, starNi
			continue
		}
		return false
	}

	return true
}

// matchTokensFast covers the common shapes "*", "prefix*" and "*suffix".
func matchTokensFast(tokens []token, name string, fold bool) (ok, handled bool) {
	switch len(tokens) {
	case 1:
		if tokens[0].kind == tokStar {
			return true, true
		}
	case 2:
		a, b := &tokens[0], &tokens[1]
		if a.kind == tokLiteral && b.kind == tokStar {
			_, ok := hasPrefix(name, a.text, fold)
			return ok, true
		}
		if a.kind == tokStar && b.kind == tokLiteral {
			return hasSuffix(name, b.text, fold), true
		}
	}
	return false, false
}

// hasPrefix reports whether s starts with prefix and returns the number of
// bytes of s consumed. Under fold the runes are compared one by one, since
// case variants may differ in encoded width (K and the Kelvin sign).
func hasPrefix(s, prefix string, fold bool) (int, bool) {
	if !fold {
		if strings.HasPrefix(s, prefix) {
			return len(prefix), true
		}
		return 0, false
	}

	n := 0
	for len(prefix) > 0 {
		if n >= len(s) {
			return 0, false
		}
		pr, psize := utf8.DecodeRuneInString(prefix)
		r, size := utf8.DecodeRuneInString(s[n:])
		if !foldEqual(r, size, pr, psize, s[n:], prefix) {
			return 0, false
		}
		prefix, n = prefix[psize:], n+size
	}
	return n, true
}

func hasSuffix(s, suffix string, fold bool) bool {
	if !fold {
		return strings.HasSuffix(s, suffix)
	}

	for len(suffix) > 0 {
		if len(s) == 0 {
			return false
		}
		sr, ssize := utf8.DecodeLastRuneInString(suffix)
		r, size := utf8.DecodeLastRuneInString(s)
		if !foldEqual(r, size, sr, ssize, s[len(s)-size:], suffix[len(suffix)-ssize:]) {
			return false
		}
		suffix, s = suffix[:len(suffix)-ssize], s[:len(s)-size]
	}
	return true
}

// foldEqual compares two decoded runes under folding. Invalid UTF-8 decodes
// to RuneError and only equals the identical byte.
func foldEqual(a rune, asize int, b rune, bsize int, as, bs string) bool {
	if a == utf8.RuneError && asize == 1 || b == utf8.RuneError && bsize == 1 {
		return asize == bsize && as[0] == bs[0]
	}
	return equalFoldRune(a, b)
}

// equalFoldRune reports whether a and b are equal under simple Unicode case
// folding, the relation strings.EqualFold uses.
func equalFoldRune(a, b rune) bool {
	if a == b {
		return true
	}
	for f := unicode.SimpleFold(a); f != a; f = unicode.SimpleFold(f) {
		if f == b {
			return true
		}
	}
	return false
}

func hasGlobstar(pattern []segment) bool {
	for i := range pattern {
		if pattern[i].globstar {
			return true
		}
	}
	return false
}

// splitPath splits a normalized path into segments.
// Empty segments (from leading/trailing/double slashes) are filtered out.
func splitPath(path string) []string {
	if path == "" {
		return []string{}
	}

	parts := strings.Split(path, "/")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
