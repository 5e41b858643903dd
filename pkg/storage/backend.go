package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo represents metadata about a file
type FileInfo struct {
	Path         string // absolute
	RelativePath string // relative to the backend root
	Size         int64
	ModTime      time.Time
	Permissions  uint32
}

// WalkOptions controls a traversal
type WalkOptions struct {
	// SkipHidden prunes hidden directories and drops hidden files
	SkipHidden bool

	// Exclude holds glob patterns matched against the relative path
	Exclude []string

	// OnError receives per-entry failures; the entry is excluded and the
	// walk goes on. May be nil.
	OnError func(path string, err error)
}

// WalkFunc is called once per regular file. Returning an error stops the walk.
type WalkFunc func(info FileInfo) error

// Backend defines the interface for storage operations the hunt needs.
// Paths passed to Read, Stat and Exists may be absolute or relative to Root.
type Backend interface {
	// Root returns the absolute root of the backend
	Root() string

	// Walk visits every regular file under the root, at any depth
	Walk(ctx context.Context, opts WalkOptions, fn WalkFunc) error

	// Read opens a file for reading
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Stat returns file metadata
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// Close releases any resources held by the backend
	Close() error
}
