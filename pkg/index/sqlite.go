package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/sdejongh/doppelganger/pkg/models"
)

const duplicatesQuery = `
SELECT path, fingerprint, size, previewable
FROM (
	SELECT rowid AS seq, path, fingerprint, size, previewable,
	       COUNT(*) OVER (PARTITION BY fingerprint) AS occurrences
	FROM files
)
WHERE occurrences > 1
ORDER BY fingerprint, seq`

// SQLiteTable keeps the external index in a scratch SQLite file inside a
// private temporary directory
type SQLiteTable struct {
	scratchDir string
	dir        string
	db         *sql.DB
}

// NewSQLiteTable creates a table that will live under scratchDir
func NewSQLiteTable(scratchDir string) *SQLiteTable {
	return &SQLiteTable{scratchDir: scratchDir}
}

// Path returns the database file path, empty before Create
func (t *SQLiteTable) Path() string {
	if t.dir == "" {
		return ""
	}
	return filepath.Join(t.dir, "index.db")
}

// Create opens a fresh database and creates the files table
func (t *SQLiteTable) Create(ctx context.Context, keyWidth int) error {
	if t.db != nil {
		return fmt.Errorf("table already created")
	}
	if keyWidth < 1 {
		keyWidth = 1
	}

	dir, err := os.MkdirTemp(t.scratchDir, "doppelganger-index-*")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	t.dir = dir

	db, err := sql.Open("sqlite", t.Path())
	if err != nil {
		return fmt.Errorf("open sqlite db: %w", err)
	}

	// Pragmas are per connection
	db.SetMaxOpenConns(1)
	t.db = db

	pragmas := []string{
		"PRAGMA journal_mode=OFF",
		"PRAGMA synchronous=OFF",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	schema := fmt.Sprintf(`CREATE TABLE files (
	path VARCHAR(%d) PRIMARY KEY NOT NULL,
	fingerprint INTEGER NOT NULL,
	size INTEGER NOT NULL,
	previewable INTEGER NOT NULL
)`, keyWidth)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create files table: %w", err)
	}
	return nil
}

// Put inserts every record in one transaction
func (t *SQLiteTable) Put(ctx context.Context, records []models.FileRecord) error {
	if t.db == nil {
		return fmt.Errorf("table not created")
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO files (path, fingerprint, size, previewable) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.Path, int64(rec.Fingerprint), rec.Size, rec.Previewable); err != nil {
			return fmt.Errorf("insert %s: %w", rec.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// QueryDuplicates returns rows whose fingerprint appears at least twice
func (t *SQLiteTable) QueryDuplicates(ctx context.Context) ([]models.FileRecord, error) {
	if t.db == nil {
		return nil, fmt.Errorf("table not created")
	}

	rows, err := t.db.QueryContext(ctx, duplicatesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.FileRecord
	for rows.Next() {
		var (
			rec         models.FileRecord
			fingerprint int64
		)
		if err := rows.Scan(&rec.Path, &fingerprint, &rec.Size, &rec.Previewable); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		rec.Fingerprint = uint64(fingerprint)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Destroy closes the database and removes the scratch directory.
// It is safe to call more than once.
func (t *SQLiteTable) Destroy() error {
	var firstErr error
	if t.db != nil {
		if err := t.db.Close(); err != nil {
			firstErr = err
		}
		t.db = nil
	}
	if t.dir != "" {
		if err := os.RemoveAll(t.dir); err != nil && firstErr == nil {
			firstErr = err
		}
		t.dir = ""
	}
	return firstErr
}
