// Package hunt runs the duplicate detection pipeline over one directory tree.
package hunt

import (
	"context"
	"io"

	"github.com/sdejongh/doppelganger/pkg/fingerprint"
	"github.com/sdejongh/doppelganger/pkg/index"
	"github.com/sdejongh/doppelganger/pkg/logging"
	"github.com/sdejongh/doppelganger/pkg/models"
	"github.com/sdejongh/doppelganger/pkg/output"
	"github.com/sdejongh/doppelganger/pkg/ratelimit"
	"github.com/sdejongh/doppelganger/pkg/storage"
)

// Engine orchestrates a hunt operation
type Engine struct {
	backend   storage.Backend
	formatter output.Formatter
	logger    logging.Logger
	operation *models.HuntOperation

	hashFunc   fingerprint.HashFunc
	classifier fingerprint.Classifier
	table      index.Table
}

// Option customises an Engine
type Option func(*Engine)

// WithHash replaces the fingerprint hash
func WithHash(fn fingerprint.HashFunc) Option {
	return func(e *Engine) {
		e.hashFunc = fn
	}
}

// WithClassifier replaces the previewability classifier
func WithClassifier(c fingerprint.Classifier) Option {
	return func(e *Engine) {
		e.classifier = c
	}
}

// WithTable replaces the external index table
func WithTable(t index.Table) Option {
	return func(e *Engine) {
		e.table = t
	}
}

// NewEngine creates a new hunt engine
func NewEngine(
	backend storage.Backend,
	formatter output.Formatter,
	logger logging.Logger,
	operation *models.HuntOperation,
	opts ...Option,
) *Engine {
	e := &Engine{
		backend:   backend,
		formatter: formatter,
		logger:    logging.OrNull(logger),
		operation: operation,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the hunt and returns its report. Per-file and index failures
// are recovered and recorded in the report; an error is returned only when
// the operation is invalid or ctx is cancelled.
func (e *Engine) Run(ctx context.Context) (*models.HuntReport, error) {
	if err := e.operation.Validate(); err != nil {
		return &models.HuntReport{
			OperationID: e.operation.ID,
			Root:        e.operation.Root,
			IndexKind:   e.operation.IndexKind,
			Status:      models.StatusFailed,
		}, err
	}

	limiter := ratelimit.NewLimiter(e.operation.BandwidthLimit)
	wrap := func(rc io.ReadCloser) io.ReadCloser {
		return ratelimit.NewReadCloser(ctx, rc, limiter)
	}

	idx, err := index.New(e.operation.IndexKind, index.Options{
		ScratchDir: e.operation.ScratchDir,
		Table:      e.table,
		Logger:     e.logger,
	})
	if err != nil {
		return &models.HuntReport{
			OperationID: e.operation.ID,
			Root:        e.operation.Root,
			IndexKind:   e.operation.IndexKind,
			Status:      models.StatusFailed,
		}, err
	}
	defer idx.Close()

	pipeline := newPipeline(e, idx, wrap)
	return pipeline.run(ctx)
}
