package output

import (
	"io"

	"github.com/sdejongh/doppelganger/pkg/models"
)

// Progress update types
const (
	UpdatePhaseStart    = "phase_start"
	UpdateFileDone      = "file_done"
	UpdateFileError     = "file_error"
	UpdateClusterDone   = "cluster_done"
	UpdatePhaseComplete = "phase_complete"
)

// ProgressUpdate represents a progress notification during a hunt
type ProgressUpdate struct {
	Type     string
	Phase    models.Phase
	FilePath string
	Bytes    int64
	Current  int // items finished in this phase
	Total    int // items known for this phase, 0 while still discovering
	Error    error
}

// Formatter defines the interface for output formatting
// HumanFormatter, HashFormatter and JSONFormatter write the final listing;
// ProgressFormatter decorates any of them with a progress bar
type Formatter interface {
	// Start initializes the formatter for a new hunt
	// maxWorkers indicates the number of parallel workers for display purposes
	Start(writer io.Writer, maxWorkers int) error

	// Progress reports progress during the hunt
	Progress(update ProgressUpdate) error

	// Complete writes the confirmed clusters and the summary
	Complete(report *models.HuntReport) error

	// Error reports an error during the hunt
	Error(err error) error

	// Name returns the formatter name
	Name() string
}
