package glob

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// dirNode is one directory of a walk. Nodes form a tree rooted at the
// traversal base; the tree is flattened breadth-first into the results.
type dirNode struct {
	osPath   string   // path handed to the reader
	path     string   // slash path as reported in results
	segs     []string // segments of path, base segments included
	depth    int      // 0 for the traversal base
	realPath string   // canonical identity, for cycle detection
	isLink   bool     // reached through a symlink
	matches  []Match
	children []*dirNode
}

// visitedSet records canonical directory identities seen by one walk.
type visitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newVisitedSet() *visitedSet {
	return &visitedSet{seen: make(map[string]struct{})}
}

// add inserts id and reports whether it was new.
func (v *visitedSet) add(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.seen[id]; ok {
		return false
	}
	v.seen[id] = struct{}{}
	return true
}

// walker applies one group of include patterns, all sharing the same literal
// base, to the tree below that base.
type walker struct {
	reader   dirReader
	ignore   *IgnoreFilter
	patterns []*Pattern
	baseLen  int
	absolute bool
	visited  *visitedSet
	logger   log.Logger

	match     MatchOptions
	deep      int // -1 for unbounded
	onlyDirs  bool
	onlyFiles bool
	strict    bool
}

// scan reads directory n, records the entries that match, and returns the
// subdirectories worth descending into. Candidates are not yet checked
// against the visited set: the driver admits them in a deterministic order.
func (w *walker) scan(ctx context.Context, n *dirNode) ([]*dirNode, error) {
	entries, err := w.reader.ReadDir(ctx, n.osPath)
	if err != nil {
		return nil, w.readError(n.osPath, err)
	}

	var candidates []*dirNode
	for _, e := range entries {
		name := e.Name()
		segs := append(n.segs[:len(n.segs):len(n.segs)], name)
		entryPath := joinPath(n.path, name)
		osPath := filepath.Join(n.osPath, name)

		isDir, isLink := w.entryKind(ctx, e, osPath)

		if w.accepts(segs, isDir) && !w.ignore.excludes(segs, w.absolute, isDir) {
			n.matches = append(n.matches, Match{Path: entryPath, IsDir: isDir})
		}

		if !isDir || !w.descends(n, entryPath, segs) {
			continue
		}

		realPath := filepath.Join(n.realPath, name)
		if isLink {
			realPath, err = w.reader.EvalSymlinks(ctx, osPath)
			if err != nil {
				level.Debug(w.logger).Log("msg", "skipping unresolvable symlink", "path", osPath, "err", err)
				continue
			}
		}

		candidates = append(candidates, &dirNode{
			osPath:   osPath,
			path:     entryPath,
			segs:     segs,
			depth:    n.depth + 1,
			realPath: realPath,
			isLink:   isLink,
		})
	}

	return candidates, nil
}

// admit records a candidate directory in the visited set and reports
// whether to read it. Physical directories are always read: without a
// symlink no cycle can close, and a link seen earlier must not hide the real
// path. A symlink is read only if its target has not been seen, which stops
// cycles and keeps an alias from walking a subtree a second time.
func (w *walker) admit(c *dirNode) bool {
	if w.visited.add(c.realPath) || !c.isLink {
		return true
	}
	level.Debug(w.logger).Log("msg", "skipping already visited directory", "path", c.osPath, "target", c.realPath)
	return false
}

// entryKind resolves whether an entry is a directory, following symlinks.
// A link that cannot be resolved (broken, looping, unreadable) is reported
// as a non-directory entry.
func (w *walker) entryKind(ctx context.Context, e fs.DirEntry, osPath string) (isDir, isLink bool) {
	t := e.Type()
	if t&fs.ModeSymlink == 0 {
		return t.IsDir(), false
	}

	info, err := w.reader.Stat(ctx, osPath)
	if err != nil {
		level.Debug(w.logger).Log("msg", "treating unresolvable symlink as file", "path", osPath, "err", err)
		return false, true
	}
	return info.IsDir(), true
}

// accepts reports whether an entry satisfies the type filters and at least
// one include pattern.
func (w *walker) accepts(segs []string, isDir bool) bool {
	if w.onlyDirs && !isDir || w.onlyFiles && isDir {
		return false
	}

	rel := segs[w.baseLen:]
	for _, p := range w.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if matchSegments(p.segments[w.baseLen:], rel, w.match) {
			return true
		}
	}
	return false
}

// descends reports whether the subdirectory at segs (a child of n) should be
// read. Pruned directories are rejected before the depth check and are
// never read, so they cost nothing against the depth budget.
func (w *walker) descends(n *dirNode, dir string, segs []string) bool {
	if w.ignore.prunes(dir, segs, w.absolute) {
		level.Debug(w.logger).Log("msg", "pruning ignored directory", "path", dir)
		return false
	}
	if w.deep >= 0 && n.depth+1 > w.deep {
		return false
	}

	rel := segs[w.baseLen:]
	for _, p := range w.patterns {
		if matchPartial(p.segments[w.baseLen:], rel, w.match) {
			return true
		}
	}
	return false
}

// readError classifies a failed directory read. It returns nil for errors
// that only remove this directory's subtree from the results.
func (w *walker) readError(dir string, err error) error {
	switch {
	case isContextErr(err):
		return err
	case errors.Is(err, fs.ErrPermission):
		if w.strict {
			return &PermissionError{Path: dir, Err: err}
		}
		level.Warn(w.logger).Log("msg", "skipping unreadable directory", "path", dir, "err", err)
		return nil
	case isNotExist(err):
		level.Debug(w.logger).Log("msg", "directory vanished or is not a directory", "path", dir, "err", err)
		return nil
	default:
		return &FileSystemError{Op: "readdir", Path: dir, Err: err}
	}
}

// flatten collects the matches of the tree breadth-first: a directory's
// entries in name order, then those of its subdirectories level by level.
func flatten(root *dirNode) []Match {
	var out []Match
	queue := []*dirNode{root}
	for head := 0; head < len(queue); head++ {
		n := queue[head]
		queue[head] = nil
		out = append(out, n.matches...)
		queue = append(queue, n.children...)
	}
	return out
}
