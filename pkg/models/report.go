package models

import (
	"time"
)

// HuntReport represents the results of a duplicate hunt
type HuntReport struct {
	OperationID string
	Root        string
	IndexKind   IndexKind

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Stats Statistics

	// Clusters holds the verified duplicate sets in confirmation order
	Clusters []*Cluster

	// Errors holds every recovered per-file or per-phase failure
	Errors []HuntError

	Status HuntStatus
}

// Statistics holds hunt metrics
type Statistics struct {
	FilesDiscovered    int
	FilesFingerprinted int
	FilesErrored       int
	BytesRead          int64 // fingerprint phase only
	MaxPathLength      int

	CandidateClusters int // clusters produced by the index
	ConfirmedClusters int
	CollisionsDropped int // candidate members that matched no sibling
	DuplicateFiles    int
	WastedBytes       int64
}

// Phase names the pipeline stage an error was recovered in
type Phase string

const (
	PhaseTraverse    Phase = "traverse"
	PhaseFingerprint Phase = "fingerprint"
	PhaseIndex       Phase = "index"
	PhaseVerify      Phase = "verify"
)

// HuntError is a recovered failure
type HuntError struct {
	Path      string
	Phase     Phase
	Error     string
	Timestamp time.Time
}

// HuntStatus represents the overall result
type HuntStatus string

const (
	// StatusSuccess indicates every discovered file took part in the hunt
	StatusSuccess HuntStatus = "success"
	// StatusPartial indicates some files or the external index were skipped
	StatusPartial HuntStatus = "partial"
	// StatusFailed indicates the hunt could not run
	StatusFailed HuntStatus = "failed"
)

// ExitCode returns the appropriate exit code for the hunt status
func (s HuntStatus) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	default:
		return 2
	}
}

// DuplicatePaths returns the number of paths across all clusters
func (r *HuntReport) DuplicatePaths() int {
	n := 0
	for _, c := range r.Clusters {
		n += c.Len()
	}
	return n
}
