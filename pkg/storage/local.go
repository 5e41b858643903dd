package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sdejongh/doppelganger/internal/platform"
)

// Local is a filesystem-based storage backend
type Local struct {
	rootPath string
}

// NewLocal creates a new local filesystem backend. A root that does not
// exist is accepted; walking it reports the missing root through OnError
// and visits nothing.
func NewLocal(rootPath string) (*Local, error) {
	if err := platform.ValidatePath(rootPath); err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(platform.NormalizePath(rootPath))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// walked as empty
	case err != nil:
		return nil, fmt.Errorf("failed to access path: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	return &Local{rootPath: absPath}, nil
}

// Root returns the absolute root directory
func (l *Local) Root() string {
	return l.rootPath
}

// Walk visits every regular file under the root. Symlinks are not followed.
func (l *Local) Walk(ctx context.Context, opts WalkOptions, fn WalkFunc) error {
	report := func(path string, err error) {
		if opts.OnError != nil {
			opts.OnError(path, err)
		}
	}

	return filepath.WalkDir(l.rootPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Root gone, or a directory could not be read: report and move on.
			// Returning nil for an unreadable directory skips its contents.
			report(p, err)
			return nil
		}

		// Check context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if p == l.rootPath {
			return nil
		}

		if opts.SkipHidden && platform.IsHidden(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(l.rootPath, p)
		if err != nil {
			report(p, err)
			return nil
		}

		if shouldExclude(relPath, opts.Exclude) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			report(p, err)
			return nil
		}

		return fn(FileInfo{
			Path:         p,
			RelativePath: relPath,
			Size:         info.Size(),
			ModTime:      info.ModTime(),
			Permissions:  uint32(info.Mode().Perm()),
		})
	})
}

// resolve maps a relative path onto the root and leaves absolute paths alone
func (l *Local) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.rootPath, path)
}

// Read opens a file for reading
func (l *Local) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(l.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Stat returns file metadata
func (l *Local) Stat(ctx context.Context, path string) (*FileInfo, error) {
	fullPath := l.resolve(path)

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	relPath, err := filepath.Rel(l.rootPath, fullPath)
	if err != nil {
		return nil, err
	}

	return &FileInfo{
		Path:         fullPath,
		RelativePath: relPath,
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		Permissions:  uint32(info.Mode().Perm()),
	}, nil
}

// Exists checks if a file or directory exists
func (l *Local) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(l.resolve(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check existence: %w", err)
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}
