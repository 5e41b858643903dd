package output

import (
	"fmt"
	"io"
	"os"

	"github.com/sdejongh/doppelganger/pkg/models"
)

// HashFormatter prints clusters in the legacy block layout:
//
//	Hash: <fingerprint>:
//	<path>
//	...
//	------
type HashFormatter struct {
	writer  io.Writer
	summary io.Writer
	quiet   bool
}

// NewHashFormatter creates a legacy-layout formatter
func NewHashFormatter(summary io.Writer, quiet bool) *HashFormatter {
	return &HashFormatter{summary: summary, quiet: quiet}
}

// Start initializes the formatter
func (f *HashFormatter) Start(writer io.Writer, maxWorkers int) error {
	if writer != nil {
		f.writer = writer
	}
	return nil
}

// Progress is a no-op
func (f *HashFormatter) Progress(update ProgressUpdate) error {
	return nil
}

// Complete writes one block per cluster
func (f *HashFormatter) Complete(report *models.HuntReport) error {
	if f.writer == nil {
		f.writer = os.Stdout
	}

	for _, cluster := range report.Clusters {
		if _, err := fmt.Fprintf(f.writer, "Hash: %d:\n", cluster.Fingerprint); err != nil {
			return err
		}
		for _, path := range cluster.Paths() {
			if _, err := fmt.Fprintln(f.writer, path); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(f.writer, "------"); err != nil {
			return err
		}
	}

	if f.quiet || f.summary == nil {
		return nil
	}
	return writeSummary(f.summary, report)
}

// Error reports an error
func (f *HashFormatter) Error(err error) error {
	if f.summary != nil {
		fmt.Fprintf(f.summary, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *HashFormatter) Name() string {
	return "hash"
}
