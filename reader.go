package glob

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/semaphore"
)

// dirReader is the I/O capability the walker is parameterised over. The
// synchronous and concurrent drivers run the same walker with different
// readers.
type dirReader interface {
	// ReadDir returns the entries of dir sorted by name.
	ReadDir(ctx context.Context, dir string) ([]fs.DirEntry, error)
	Stat(ctx context.Context, name string) (fs.FileInfo, error)
	Lstat(ctx context.Context, name string) (fs.FileInfo, error)
	EvalSymlinks(ctx context.Context, name string) (string, error)
}

// osReader reads the live filesystem, blocking the calling goroutine.
// os.ReadDir opens and closes the directory handle itself, so no handle
// outlives a call on any path.
type osReader struct{}

func (osReader) ReadDir(ctx context.Context, dir string) ([]fs.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadDir(dir)
}

func (osReader) Stat(_ context.Context, name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (osReader) Lstat(_ context.Context, name string) (fs.FileInfo, error) {
	return os.Lstat(name)
}

func (osReader) EvalSymlinks(_ context.Context, name string) (string, error) {
	return filepath.EvalSymlinks(name)
}

// boundedReader limits the number of directory reads in flight. Acquiring a
// slot is the point where a concurrent walk yields to other work, and where
// a cancelled context stops new reads from being issued.
type boundedReader struct {
	dirReader
	sem *semaphore.Weighted
}

func (r boundedReader) ReadDir(ctx context.Context, dir string) ([]fs.DirEntry, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer r.sem.Release(1)
	return r.dirReader.ReadDir(ctx, dir)
}

// isNotExist reports errors meaning "nothing to read here": the path is
// missing, or one of its components is not a directory.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
