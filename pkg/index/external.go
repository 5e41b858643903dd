package index

import (
	"context"
	"fmt"
	"sync"

	"github.com/sdejongh/doppelganger/pkg/logging"
	"github.com/sdejongh/doppelganger/pkg/models"
)

// External defers clustering to a Table. Records are buffered until
// Clusters is called, then written in one batch and queried once.
type External struct {
	mu       sync.Mutex
	table    Table
	logger   logging.Logger
	records  []models.FileRecord
	keyWidth int
}

// NewExternal creates an external index backed by table
func NewExternal(table Table, logger logging.Logger) *External {
	return &External{
		table:  table,
		logger: logging.OrNull(logger).WithFields(logging.Fields{"phase": string(models.PhaseIndex)}),
	}
}

// SetKeyWidth sets the path column width, normally the longest path found
// during traversal
func (e *External) SetKeyWidth(width int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if width > e.keyWidth {
		e.keyWidth = width
	}
}

// Add buffers a record
func (e *External) Add(record models.FileRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.records = append(e.records, record)
	if n := len(record.Path); n > e.keyWidth {
		e.keyWidth = n
	}
}

// Clusters writes the buffered records to the table and reads back every
// shared fingerprint. On any table failure the table is destroyed and the
// error returned; no partial result is reported.
func (e *External) Clusters(ctx context.Context) ([]*models.Cluster, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rows, err := e.run(ctx)
	if destroyErr := e.table.Destroy(); destroyErr != nil {
		e.logger.Warn(ctx, "failed to destroy scratch table", logging.Fields{"error": destroyErr.Error()})
	}
	if err != nil {
		e.logger.Error(ctx, "external index failed", err, logging.Fields{"records": len(e.records)})
		return nil, err
	}

	return groupRows(rows), nil
}

func (e *External) run(ctx context.Context) ([]models.FileRecord, error) {
	if err := e.table.Create(ctx, e.keyWidth); err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	if err := e.table.Put(ctx, e.records); err != nil {
		return nil, fmt.Errorf("insert records: %w", err)
	}
	rows, err := e.table.QueryDuplicates(ctx)
	if err != nil {
		return nil, fmt.Errorf("query duplicates: %w", err)
	}
	return rows, nil
}

// groupRows folds fingerprint-ordered rows into clusters
func groupRows(rows []models.FileRecord) []*models.Cluster {
	var clusters []*models.Cluster
	var current *models.Cluster

	for _, row := range rows {
		if current != nil && current.Fingerprint == row.Fingerprint {
			current.Append(row)
			continue
		}
		current = &models.Cluster{
			Fingerprint: row.Fingerprint,
			Members:     []models.FileRecord{row},
		}
		clusters = append(clusters, current)
	}

	// A table may hand back singletons; they are not clusters
	kept := clusters[:0]
	for _, c := range clusters {
		if c.Len() >= 2 {
			kept = append(kept, c)
		}
	}
	return kept
}

// Len returns the number of buffered records
func (e *External) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.records)
}

// Close drops the buffer and any table still present
func (e *External) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.records = nil
	return e.table.Destroy()
}
