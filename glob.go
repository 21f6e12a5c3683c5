package glob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"go.uber.org/multierr"
)

// Match is one result of a glob call.
type Match struct {
	// Path is slash-separated and relative to Options.Cwd, unless the
	// pattern was absolute or Options.Absolute is set, in which case it is
	// an absolute OS path.
	Path string

	// IsDir reports whether the entry is a directory (after following a
	// symlink).
	IsDir bool
}

// Options configures Glob and GlobSync. The zero value is ready to use.
type Options struct {
	// Ignore lists additional exclusion patterns, merged with the
	// "!"-prefixed entries of the pattern list.
	Ignore []string

	// Dot lets wildcards match names beginning with ".".
	Dot bool

	// Absolute reports results as absolute paths.
	Absolute bool

	// Deep is the maximum directory depth below a pattern's literal base
	// that is read. nil means unbounded; Depth(0) yields only the entries
	// directly inside the base.
	Deep *int

	// OnlyDirectories drops every non-directory result.
	OnlyDirectories bool

	// OnlyFiles drops every directory result.
	OnlyFiles bool

	// Cwd is the directory relative patterns are resolved against.
	// Default: the process working directory.
	Cwd string

	// CaseInsensitive folds case in literal and character-class matching.
	// It does not change how the filesystem resolves the literal base.
	CaseInsensitive bool

	// Strict surfaces errors that are otherwise suppressed: unreadable
	// directories (*PermissionError) and missing static paths
	// (*RootNotFoundError).
	Strict bool

	// Concurrency bounds the directory reads Glob keeps in flight.
	// Default: DefaultConcurrency. GlobSync ignores it.
	Concurrency int

	// Cache, if set, is used to compile patterns, so repeated calls reuse
	// compilations. When nil, each call compiles into a private cache.
	Cache *Cache

	// Logger receives skipped-directory diagnostics. Default: no logging.
	Logger log.Logger
}

// Depth returns a pointer to n, for Options.Deep.
func Depth(n int) *int {
	return &n
}

// Glob returns the paths matching patterns, reading directories
// concurrently. Patterns starting with "!" are exclusion rules.
//
// Results are clean slash paths, not echoes of the patterns: a static
// pattern such as "./a//b.txt" or `a\[1\].txt` yields "a/b.txt" or "a[1].txt",
// a trailing "/" is dropped, and "." or "./" yields ".".
//
// Glob stops issuing reads as soon as ctx is done and returns ctx.Err().
// Either the full match set is returned or an error; partial results never
// are.
func Glob(ctx context.Context, patterns []string, opts Options) ([]string, error) {
	entries, err := GlobEntries(ctx, patterns, opts)
	if err != nil {
		return nil, err
	}
	return paths(entries), nil
}

// GlobSync is the blocking counterpart of Glob. It runs the same algorithm
// in the calling goroutine and returns the same results in the same order.
func GlobSync(patterns []string, opts Options) ([]string, error) {
	entries, err := GlobEntriesSync(patterns, opts)
	if err != nil {
		return nil, err
	}
	return paths(entries), nil
}

// GlobEntries is like Glob but also reports whether each result is a
// directory.
func GlobEntries(ctx context.Context, patterns []string, opts Options) ([]Match, error) {
	return run(ctx, patterns, opts, newAsyncDriver(opts.Concurrency))
}

// GlobEntriesSync is like GlobSync but also reports whether each result is
// a directory.
func GlobEntriesSync(patterns []string, opts Options) ([]Match, error) {
	return run(context.Background(), patterns, opts, syncDriver{})
}

func paths(entries []Match) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

// task is one unit of resolution: a static pattern, or a group of dynamic
// patterns walked from a shared literal base.
type task struct {
	static *Pattern
	group  []*Pattern
}

// plan is the compiled form of a call's pattern list.
type plan struct {
	tasks  []task
	ignore *IgnoreFilter
}

// config holds the resolved options of a call.
type config struct {
	opts   Options
	cwd    string
	cache  *Cache
	logger log.Logger
	deep   int
}

func newConfig(opts Options) (*config, error) {
	c := &config{opts: opts, cache: opts.Cache, logger: opts.Logger, deep: -1}

	if c.cache == nil {
		c.cache = NewCache()
	}
	if c.logger == nil {
		c.logger = log.NewNopLogger()
	}
	if opts.Deep != nil {
		if *opts.Deep < 0 {
			return nil, fmt.Errorf("glob: invalid deep option %d: must not be negative", *opts.Deep)
		}
		c.deep = *opts.Deep
	}

	cwd := opts.Cwd
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("glob: determining working directory: %w", err)
		}
		cwd = wd
	}
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return nil, fmt.Errorf("glob: resolving cwd %s: %w", cwd, err)
	}
	c.cwd = abs

	return c, nil
}

// compile splits patterns into include and ignore sets and groups the
// include patterns into tasks. All syntax errors are reported together.
func (c *config) compile(patterns []string) (*plan, error) {
	var (
		errs     error
		includes []*Pattern
		ignores  []*Pattern
	)

	for _, raw := range patterns {
		p, err := c.cache.Compile(raw)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if p.negated {
			ignores = append(ignores, p)
		} else {
			includes = append(includes, p)
		}
	}
	for _, raw := range c.opts.Ignore {
		p, err := c.cache.Compile(raw)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		ignores = append(ignores, p)
	}
	if errs != nil {
		return nil, errs
	}

	pl := &plan{ignore: newIgnoreFilter(ignores, c.opts.CaseInsensitive)}

	groups := make(map[string]int)
	for _, p := range includes {
		if !p.dynamic {
			pl.tasks = append(pl.tasks, task{static: p})
			continue
		}
		if i, ok := groups[p.base]; ok {
			pl.tasks[i].group = append(pl.tasks[i].group, p)
			continue
		}
		groups[p.base] = len(pl.tasks)
		pl.tasks = append(pl.tasks, task{group: []*Pattern{p}})
	}

	return pl, nil
}

func run(ctx context.Context, patterns []string, opts Options, d driver) ([]Match, error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	pl, err := c.compile(patterns)
	if err != nil {
		return nil, err
	}

	results := make([][]Match, len(pl.tasks))
	missing := make([]error, len(pl.tasks))
	reader := d.reader()

	err = d.forEach(ctx, len(pl.tasks), func(ctx context.Context, i int) error {
		t := pl.tasks[i]
		if t.static != nil {
			m, notFound, err := c.resolveStatic(ctx, reader, pl.ignore, t.static)
			results[i] = m
			if notFound != nil {
				missing[i] = notFound
			}
			return err
		}
		m, err := c.resolveGroup(ctx, d, reader, pl.ignore, t.group)
		results[i] = m
		return err
	})
	if err != nil {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if c.opts.Strict {
		if err := multierr.Combine(missing...); err != nil {
			return nil, err
		}
	}

	return c.merge(results), nil
}

// merge concatenates task results in pattern order, dropping duplicates and
// applying the Absolute option.
func (c *config) merge(results [][]Match) []Match {
	seen := make(map[string]struct{})
	var out []Match
	for _, rs := range results {
		for _, m := range rs {
			if _, ok := seen[m.Path]; ok {
				continue
			}
			seen[m.Path] = struct{}{}
			out = append(out, c.present(m))
		}
	}
	if out == nil {
		out = []Match{}
	}
	return out
}

// present converts a walker path into the form returned to the caller.
func (c *config) present(m Match) Match {
	switch {
	case strings.HasPrefix(m.Path, "/"):
		m.Path = filepath.FromSlash(m.Path)
	case c.opts.Absolute:
		m.Path = filepath.Join(c.cwd, filepath.FromSlash(m.Path))
	}
	return m
}

// osPath maps a slash path produced from a pattern onto the filesystem.
func (c *config) osPath(path string) string {
	if strings.HasPrefix(path, "/") {
		return filepath.FromSlash(path)
	}
	return filepath.Join(c.cwd, filepath.FromSlash(path))
}

// resolveStatic checks a wildcard-free pattern with a single stat call.
// A missing target yields no match plus a *RootNotFoundError the caller
// surfaces only in strict mode.
func (c *config) resolveStatic(ctx context.Context, r dirReader, ignore *IgnoreFilter, p *Pattern) ([]Match, *RootNotFoundError, error) {
	osPath := c.osPath(p.base)

	info, err := r.Stat(ctx, osPath)
	if err != nil && isNotExist(err) {
		// A dangling symlink still exists as an entry.
		info, err = r.Lstat(ctx, osPath)
	}
	if err != nil {
		switch {
		case isNotExist(err):
			return nil, &RootNotFoundError{Pattern: p.raw, Path: osPath}, nil
		case errors.Is(err, fs.ErrPermission):
			if c.opts.Strict {
				return nil, nil, &PermissionError{Path: osPath, Err: err}
			}
			level.Warn(c.logger).Log("msg", "skipping inaccessible path", "path", osPath, "err", err)
			return nil, nil, nil
		default:
			return nil, nil, &FileSystemError{Op: "stat", Path: osPath, Err: err}
		}
	}

	isDir := info.IsDir()
	switch {
	case p.dirOnly && !isDir,
		c.opts.OnlyDirectories && !isDir,
		c.opts.OnlyFiles && isDir,
		ignore.excludes(splitPath(p.base), p.absolute, isDir):
		return nil, nil, nil
	}

	path := p.base
	if path == "" {
		// "." and "./" name the working directory itself.
		path = "."
	}
	return []Match{{Path: path, IsDir: isDir}}, nil, nil
}

// resolveGroup walks the tree below the shared base of a pattern group.
func (c *config) resolveGroup(ctx context.Context, d driver, r dirReader, ignore *IgnoreFilter, group []*Pattern) ([]Match, error) {
	lead := group[0]
	if ignore.covers(lead.base) {
		level.Debug(c.logger).Log("msg", "pattern base is ignored", "base", lead.base)
		return nil, nil
	}

	w := &walker{
		reader:    r,
		ignore:    ignore,
		patterns:  group,
		baseLen:   lead.baseLen,
		absolute:  lead.absolute,
		visited:   newVisitedSet(),
		logger:    c.logger,
		match:     MatchOptions{CaseInsensitive: c.opts.CaseInsensitive, Dot: c.opts.Dot},
		deep:      c.deep,
		onlyDirs:  c.opts.OnlyDirectories,
		onlyFiles: c.opts.OnlyFiles,
		strict:    c.opts.Strict,
	}

	root := &dirNode{
		osPath: c.osPath(lead.base),
		path:   lead.base,
		segs:   splitPath(lead.base),
	}

	realPath, err := r.EvalSymlinks(ctx, root.osPath)
	if err != nil {
		return nil, w.readError(root.osPath, err)
	}
	root.realPath = realPath
	w.visited.add(realPath)

	if err := d.walk(ctx, w, root); err != nil {
		return nil, err
	}
	return flatten(root), nil
}
