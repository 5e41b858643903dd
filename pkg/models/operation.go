package models

import (
	"time"
)

// IndexKind selects the cluster index implementation
type IndexKind string

const (
	// IndexMemory keeps the fingerprint map in process memory
	IndexMemory IndexKind = "memory"
	// IndexExternal spills records to a scratch SQLite table
	IndexExternal IndexKind = "external"
)

// HuntOperation represents a duplicate hunt configuration
type HuntOperation struct {
	ID         string
	Root       string
	SkipHidden bool
	IndexKind  IndexKind

	// Exclude holds glob patterns matched against root-relative paths
	Exclude []string

	// DeleteDuplicates is accepted but has no effect yet
	DeleteDuplicates bool

	MaxWorkers        int
	BufferSize        int
	VerifyMemoryLimit int64 // files above this size are compared by streaming
	BandwidthLimit    int64 // bytes per second, 0 = unlimited
	ScratchDir        string
	CreatedAt         time.Time
}

// Validate checks if the operation configuration is valid
func (op *HuntOperation) Validate() error {
	if op.Root == "" {
		return &ValidationError{Field: "Root", Message: "root path is required"}
	}
	if op.IndexKind != IndexMemory && op.IndexKind != IndexExternal {
		return &ValidationError{Field: "IndexKind", Message: "index must be 'memory' or 'external'"}
	}
	if op.MaxWorkers < 1 {
		return &ValidationError{Field: "MaxWorkers", Message: "max workers must be at least 1"}
	}
	if op.BufferSize < 1024 {
		return &ValidationError{Field: "BufferSize", Message: "buffer size must be at least 1024 bytes"}
	}
	if op.VerifyMemoryLimit < 0 {
		return &ValidationError{Field: "VerifyMemoryLimit", Message: "verify memory limit cannot be negative"}
	}
	if op.BandwidthLimit < 0 {
		return &ValidationError{Field: "BandwidthLimit", Message: "bandwidth limit cannot be negative"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
