// Package scan turns a storage walk into a lazy sequence of file paths.
package scan

import (
	"context"
	"errors"
	"iter"
	"sync/atomic"
	"time"

	"github.com/sdejongh/doppelganger/pkg/logging"
	"github.com/sdejongh/doppelganger/pkg/models"
	"github.com/sdejongh/doppelganger/pkg/storage"
)

// errStopWalk aborts the underlying walk when the consumer stops iterating
var errStopWalk = errors.New("scan: consumer stopped")

// Options controls what the traverser yields
type Options struct {
	SkipHidden bool
	Exclude    []string
}

// Traverser walks a backend once and yields regular-file paths.
// It records the longest path seen and every per-entry failure.
type Traverser struct {
	backend storage.Backend
	opts    Options
	logger  logging.Logger

	started       atomic.Bool
	maxPathLength int
	discovered    int
	errs          []models.HuntError
	walkErr       error
}

// NewTraverser creates a single-use traverser
func NewTraverser(backend storage.Backend, opts Options, logger logging.Logger) *Traverser {
	return &Traverser{
		backend: backend,
		opts:    opts,
		logger:  logging.OrNull(logger).WithFields(logging.Fields{"phase": string(models.PhaseTraverse)}),
	}
}

// Paths returns the lazy sequence of absolute file paths. The walk runs while
// the sequence is ranged over; it is not restartable, and a second call yields
// nothing.
func (t *Traverser) Paths(ctx context.Context) iter.Seq[string] {
	return func(yield func(string) bool) {
		if !t.started.CompareAndSwap(false, true) {
			return
		}

		opts := storage.WalkOptions{
			SkipHidden: t.opts.SkipHidden,
			Exclude:    t.opts.Exclude,
			OnError: func(path string, err error) {
				t.logger.Warn(ctx, "skipping unreadable entry", logging.Fields{
					"path":  path,
					"error": err.Error(),
				})
				t.errs = append(t.errs, models.HuntError{
					Path:      path,
					Phase:     models.PhaseTraverse,
					Error:     err.Error(),
					Timestamp: time.Now(),
				})
			},
		}

		err := t.backend.Walk(ctx, opts, func(info storage.FileInfo) error {
			t.discovered++
			if n := len(info.Path); n > t.maxPathLength {
				t.maxPathLength = n
			}
			if !yield(info.Path) {
				return errStopWalk
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopWalk) {
			t.walkErr = err
			t.logger.Error(ctx, "traversal aborted", err, nil)
		}
	}
}

// MaxPathLength returns the longest path yielded so far, in bytes
func (t *Traverser) MaxPathLength() int {
	return t.maxPathLength
}

// Discovered returns the number of paths yielded so far
func (t *Traverser) Discovered() int {
	return t.discovered
}

// Errors returns the per-entry failures recorded during the walk
func (t *Traverser) Errors() []models.HuntError {
	return t.errs
}

// Err returns the error that stopped the walk early, such as cancellation
func (t *Traverser) Err() error {
	return t.walkErr
}
