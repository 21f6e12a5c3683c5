package glob

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// tokenKind classifies one element of a compiled path segment.
type tokenKind uint8

const (
	tokLiteral tokenKind = iota // literal text, escapes already resolved
	tokStar                     // * - zero or more characters, never a separator
	tokAny                      // ? - exactly one character
	tokClass                    // [...] - one character from a set
)

type token struct {
	kind  tokenKind
	text  string     // tokLiteral only
	class *charClass // tokClass only
}

type runeRange struct {
	lo, hi rune
}

// charClass is a compiled [...] expression.
type charClass struct {
	ranges  []runeRange
	negated bool
}

func (c *charClass) has(r rune) bool {
	for _, rr := range c.ranges {
		if r >= rr.lo && r <= rr.hi {
			return true
		}
	}
	return false
}

// matches reports whether r is accepted by the class. With fold set, every
// simple case-fold variant of r is tried before giving up.
func (c *charClass) matches(r rune, fold bool) bool {
	in := c.has(r)
	if !in && fold {
		for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
			if c.has(f) {
				in = true
				break
			}
		}
	}
	return in != c.negated
}

// segment represents one part of a pattern split by "/".
// Each segment is either a globstar or a sequence of tokens; a segment made
// only of literal text is flagged so that it can be compared directly.
type segment struct {
	raw         string  // segment text as written in the pattern
	value       string  // unescaped text (literal segments only)
	tokens      []token // compiled tokens (empty for globstar)
	globstar    bool    // is ** - matches zero or more whole segments
	literal     bool    // no wildcard tokens
	dotExplicit bool    // first token is literal text starting with "."
}

// Pattern is a compiled glob pattern. A Pattern is immutable once compiled
// and safe for concurrent use.
type Pattern struct {
	raw         string    // original pattern, including any negation marker
	segments    []segment // parsed segments, separators already removed
	base        string    // literal prefix, unescaped and slash-joined
	baseLen     int       // number of leading literal segments
	negated     bool      // pattern started with !
	absolute    bool      // pattern started with /
	dirOnly     bool      // pattern ended with /
	dynamic     bool      // at least one non-literal segment
	hasGlobstar bool
}

// Compile parses a raw pattern into a Pattern.
//
// Supported syntax:
//
//   - "*" matches any sequence of characters within one path segment
//   - "?" matches exactly one character
//   - "[abc]", "[a-z]", "[!a-z]", "[^a-z]" match one character of a set
//   - "**" as a whole segment matches zero or more path segments
//   - "\" escapes one of * ? [ ] \ !
//   - a leading "!" marks the pattern as an ignore rule ("\!" is a literal !)
//   - a leading "/" anchors the pattern at the filesystem root
//   - a trailing "/" restricts matches to directories
//
// Compile returns a *PatternSyntaxError for empty patterns, unterminated
// character classes, reversed ranges and invalid escape sequences.
func Compile(raw string) (*Pattern, error) {
	p := &Pattern{raw: raw}

	body, off := raw, 0
	if strings.HasPrefix(body, "!") {
		p.negated = true
		body, off = body[1:], 1
	}

	if body == "" {
		return nil, &PatternSyntaxError{Pattern: raw, Pos: off, Msg: "empty pattern"}
	}

	p.absolute = strings.HasPrefix(body, "/")
	p.dirOnly = len(body) > 1 && strings.HasSuffix(body, "/")

	// Split manually so that error offsets refer to the raw pattern.
	// Escapes never cover "/", so a plain split is safe.
	start := 0
	for i := 0; i <= len(body); i++ {
		if i < len(body) && body[i] != '/' {
			continue
		}
		part := body[start:i]
		partOff := off + start
		start = i + 1

		// Skip empty parts (leading/trailing/double slashes) and "." parts
		if part == "" || part == "." {
			continue
		}

		seg, err := parseSegment(raw, part, partOff)
		if err != nil {
			return nil, err
		}
		p.segments = append(p.segments, seg)
	}

	p.finish()
	return p, nil
}

// MustCompile is like Compile but panics if the pattern cannot be parsed.
func MustCompile(raw string) *Pattern {
	p, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// finish derives the literal prefix and summary flags from the segments.
func (p *Pattern) finish() {
	p.baseLen = len(p.segments)
	for i, seg := range p.segments {
		if seg.globstar {
			p.hasGlobstar = true
		}
		if !seg.literal && p.baseLen == len(p.segments) {
			p.baseLen = i
		}
	}
	p.dynamic = p.baseLen < len(p.segments)

	values := make([]string, p.baseLen)
	for i := range values {
		values[i] = p.segments[i].value
	}
	p.base = strings.Join(values, "/")
	if p.absolute {
		p.base = "/" + p.base
	}
}

// parseSegment compiles one slash-free part of a pattern.
// pattern is the full raw pattern and off the byte offset of part within it;
// both are only used for error reporting.
func parseSegment(pattern, part string, off int) (segment, error) {
	seg := segment{raw: part}

	if part == "**" {
		seg.globstar = true
		return seg, nil
	}

	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			seg.tokens = append(seg.tokens, token{kind: tokLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(part); {
		switch c := part[i]; c {
		case '\\':
			if i+1 >= len(part) {
				return seg, &PatternSyntaxError{Pattern: pattern, Pos: off + i, Msg: "trailing backslash"}
			}
			if !isEscapable(part[i+1]) {
				return seg, &PatternSyntaxError{
					Pattern: pattern,
					Pos:     off + i,
					Msg:     fmt.Sprintf("invalid escape sequence %q", part[i:i+2]),
				}
			}
			lit.WriteByte(part[i+1])
			i += 2
		case '*':
			flush()
			// Consecutive stars inside a segment ("a**b") collapse into one.
			if n := len(seg.tokens); n == 0 || seg.tokens[n-1].kind != tokStar {
				seg.tokens = append(seg.tokens, token{kind: tokStar})
			}
			i++
		case '?':
			flush()
			seg.tokens = append(seg.tokens, token{kind: tokAny})
			i++
		case '[':
			class, n, err := parseClass(pattern, part[i:], off+i)
			if err != nil {
				return seg, err
			}
			flush()
			seg.tokens = append(seg.tokens, token{kind: tokClass, class: class})
			i += n
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()

	seg.literal = true
	for _, t := range seg.tokens {
		if t.kind != tokLiteral {
			seg.literal = false
			break
		}
	}
	if seg.literal {
		// Adjacent literal runs were already merged by the builder.
		if len(seg.tokens) > 0 {
			seg.value = seg.tokens[0].text
		}
	}
	if len(seg.tokens) > 0 && seg.tokens[0].kind == tokLiteral && strings.HasPrefix(seg.tokens[0].text, ".") {
		seg.dotExplicit = true
	}

	return seg, nil
}

// parseClass parses a character class starting at s[0] == '['.
// It returns the class and the number of bytes consumed, including both
// brackets.
func parseClass(pattern, s string, off int) (*charClass, int, error) {
	class := &charClass{}
	i := 1
	if i < len(s) && (s[i] == '!' || s[i] == '^') {
		class.negated = true
		i++
	}

	first := true
	for {
		if i >= len(s) {
			return nil, 0, &PatternSyntaxError{Pattern: pattern, Pos: off, Msg: "unterminated character class"}
		}
		// A "]" right after the opening bracket (or negation) is a member.
		if s[i] == ']' && !first {
			i++
			break
		}
		first = false

		lo, n, err := classRune(pattern, s, i, off)
		if err != nil {
			return nil, 0, err
		}
		i += n
		hi := lo

		if i+1 < len(s) && s[i] == '-' && s[i+1] != ']' {
			hi, n, err = classRune(pattern, s, i+1, off)
			if err != nil {
				return nil, 0, err
			}
			if hi < lo {
				return nil, 0, &PatternSyntaxError{
					Pattern: pattern,
					Pos:     off + i,
					Msg:     fmt.Sprintf("invalid character range %q-%q", lo, hi),
				}
			}
			i += 1 + n
		}

		class.ranges = append(class.ranges, runeRange{lo: lo, hi: hi})
	}

	return class, i, nil
}

// classRune decodes one (possibly escaped) member character of a class.
func classRune(pattern, s string, i, off int) (rune, int, error) {
	if s[i] == '\\' {
		if i+1 >= len(s) {
			return 0, 0, &PatternSyntaxError{Pattern: pattern, Pos: off, Msg: "unterminated character class"}
		}
		if !isEscapable(s[i+1]) {
			return 0, 0, &PatternSyntaxError{
				Pattern: pattern,
				Pos:     off + i,
				Msg:     fmt.Sprintf("invalid escape sequence %q", s[i:i+2]),
			}
		}
		return rune(s[i+1]), 2, nil
	}
	r, n := utf8.DecodeRuneInString(s[i:])
	return r, n, nil
}

// isEscapable reports whether c may follow a backslash. This is the exact set
// of bytes EscapePath escapes.
func isEscapable(c byte) bool {
	switch c {
	case '*', '?', '[', ']', '\\', '!':
		return true
	}
	return false
}

// String returns the pattern as it was given to Compile.
func (p *Pattern) String() string {
	return p.raw
}

// Negated reports whether the pattern started with "!" (an ignore rule).
func (p *Pattern) Negated() bool {
	return p.negated
}

// IsDynamic reports whether the pattern contains any wildcard syntax.
func (p *Pattern) IsDynamic() bool {
	return p.dynamic
}

// IsAbsolute reports whether the pattern is anchored at the filesystem root.
func (p *Pattern) IsAbsolute() bool {
	return p.absolute
}

// DirOnly reports whether the pattern ended with "/" and so only matches
// directories.
func (p *Pattern) DirOnly() bool {
	return p.dirOnly
}

// Base returns the literal prefix of the pattern: the leading segments that
// contain no wildcard, unescaped and joined with "/". For a static pattern
// this is the whole path. Relative patterns without a literal prefix return
// "", absolute ones "/".
func (p *Pattern) Base() string {
	return p.base
}

// debugString returns a representation of the pattern with its flags,
// for test failure messages.
func (p *Pattern) debugString() string {
	var flags []string
	if p.negated {
		flags = append(flags, "negated")
	}
	if p.absolute {
		flags = append(flags, "absolute")
	}
	if p.dirOnly {
		flags = append(flags, "dirOnly")
	}
	if p.dynamic {
		flags = append(flags, "dynamic")
	}

	flagStr := ""
	if len(flags) > 0 {
		flagStr = " [" + strings.Join(flags, ",") + "]"
	}

	return p.raw + flagStr + " @" + p.base
}

// Cache holds compiled patterns keyed by their raw string. A Cache is owned
// by the caller: pass the same Cache through Options to reuse compilations
// across calls. Cache is safe for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	patterns map[string]*Pattern
}

// NewCache creates an empty pattern cache.
func NewCache() *Cache {
	return &Cache{patterns: make(map[string]*Pattern)}
}

// Compile returns the cached compilation of raw, compiling and storing it on
// first use. Patterns that fail to compile are not cached.
func (c *Cache) Compile(raw string) (*Pattern, error) {
	c.mu.RLock()
	p, ok := c.patterns[raw]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	// Compile without holding the lock
	p, err := Compile(raw)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.patterns[raw]; ok {
		return existing, nil
	}
	c.patterns[raw] = p
	return p, nil
}

// Len returns the number of compiled patterns held by the cache.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.patterns)
}
