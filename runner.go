package glob

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the number of directory reads Glob keeps in flight
// when Options.Concurrency is zero.
const DefaultConcurrency = 16

// driver decides how the work of one call is scheduled. Both drivers
// process directories level by level and admit subdirectories in the same
// order, so they produce identical results.
type driver interface {
	reader() dirReader
	// forEach runs fn for the indexes 0..n-1.
	forEach(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error
	// walk scans the tree below root.
	walk(ctx context.Context, w *walker, root *dirNode) error
}

// syncDriver blocks the calling goroutine on every read and keeps pending
// directories in an explicit FIFO queue, so deep trees never grow the stack.
type syncDriver struct{}

func (syncDriver) reader() dirReader { return osReader{} }

func (syncDriver) forEach(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	for i := 0; i < n; i++ {
		if err := fn(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

func (syncDriver) walk(ctx context.Context, w *walker, root *dirNode) error {
	queue := []*dirNode{root}
	for head := 0; head < len(queue); head++ {
		n := queue[head]
		queue[head] = nil

		candidates, err := w.scan(ctx, n)
		if err != nil {
			return err
		}
		for _, c := range candidates {
			if w.admit(c) {
				n.children = append(n.children, c)
				queue = append(queue, c)
			}
		}
	}
	return nil
}

// asyncDriver scans all directories of a level concurrently. Reads from
// every walk of the call share one semaphore; once the context is cancelled
// (by the caller or by a failing task) no further read is started.
type asyncDriver struct {
	limit int
	sem   *semaphore.Weighted
}

func newAsyncDriver(limit int) *asyncDriver {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	return &asyncDriver{limit: limit, sem: semaphore.NewWeighted(int64(limit))}
}

func (d *asyncDriver) reader() dirReader {
	return boundedReader{dirReader: osReader{}, sem: d.sem}
}

func (d *asyncDriver) forEach(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			return fn(gctx, i)
		})
	}
	return g.Wait()
}

func (d *asyncDriver) walk(ctx context.Context, w *walker, root *dirNode) error {
	level := []*dirNode{root}
	for len(level) > 0 {
		candidates := make([][]*dirNode, len(level))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(d.limit)
		for i, n := range level {
			i, n := i, n
			g.Go(func() error {
				c, err := w.scan(gctx, n)
				candidates[i] = c
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		// Admission is sequential and ordered, as in syncDriver.
		var next []*dirNode
		for i, n := range level {
			for _, c := range candidates[i] {
				if w.admit(c) {
					n.children = append(n.children, c)
					next = append(next, c)
				}
			}
		}
		level = next
	}
	return nil
}
