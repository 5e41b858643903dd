// Package index groups fingerprinted files into candidate clusters.
package index

import (
	"context"
	"fmt"

	"github.com/sdejongh/doppelganger/pkg/logging"
	"github.com/sdejongh/doppelganger/pkg/models"
)

// Index accumulates file records and reports every fingerprint shared by two
// or more of them. Add order never affects the resulting partition.
type Index interface {
	// Add inserts a record; it is called from a single goroutine
	Add(record models.FileRecord)

	// Clusters returns candidate clusters once every record has been added
	Clusters(ctx context.Context) ([]*models.Cluster, error)

	// Len returns the number of records added
	Len() int

	// Close releases any resources held by the index
	Close() error
}

// Options configures index construction
type Options struct {
	// ScratchDir is the parent directory for external scratch storage;
	// empty means the system temp directory
	ScratchDir string

	// Table overrides the external table backend
	Table Table

	Logger logging.Logger
}

// New creates the index implementation for kind
func New(kind models.IndexKind, opts Options) (Index, error) {
	switch kind {
	case models.IndexMemory, "":
		return NewMemory(), nil
	case models.IndexExternal:
		table := opts.Table
		if table == nil {
			table = NewSQLiteTable(opts.ScratchDir)
		}
		return NewExternal(table, opts.Logger), nil
	default:
		return nil, fmt.Errorf("unknown index kind: %s", kind)
	}
}
