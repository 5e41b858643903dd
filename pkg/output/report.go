package output

import (
	"fmt"
	"io"
	"os"

	"github.com/sdejongh/doppelganger/pkg/models"
)

// Output format names
const (
	FormatHuman = "human"
	FormatHash  = "hash"
	FormatJSON  = "json"
)

// New returns the formatter for format. Summaries go to summary unless quiet.
func New(format string, summary io.Writer, quiet bool) (Formatter, error) {
	switch format {
	case FormatHuman, "":
		return NewHumanFormatter(summary, quiet), nil
	case FormatHash:
		return NewHashFormatter(summary, quiet), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s (must be 'human', 'hash' or 'json')", format)
	}
}

// WriteReportFile writes the clusters of report to path in the given format.
// Nothing is written when there are no clusters.
func WriteReportFile(report *models.HuntReport, path string, format string) error {
	if len(report.Clusters) == 0 {
		return nil
	}

	formatter, err := New(format, nil, true)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	if err := formatter.Start(file, 0); err != nil {
		return err
	}
	if err := formatter.Complete(report); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return file.Close()
}
