package index

import (
	"context"

	"github.com/sdejongh/doppelganger/pkg/models"
)

// Table is the scratch storage behind the external index
type Table interface {
	// Create prepares an empty table whose path column holds keyWidth bytes
	Create(ctx context.Context, keyWidth int) error

	// Put writes all records inside a single transaction
	Put(ctx context.Context, records []models.FileRecord) error

	// QueryDuplicates returns every record whose fingerprint occurs more than
	// once, grouped by fingerprint and in insertion order within a group
	QueryDuplicates(ctx context.Context) ([]models.FileRecord, error)

	// Destroy drops the table and removes any backing files
	Destroy() error
}
