package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sdejongh/doppelganger/pkg/models"
)

// HumanFormatter prints one path per line with a blank line between
// clusters. The summary goes to a separate stream so the cluster listing
// stays pipeable.
type HumanFormatter struct {
	writer  io.Writer
	summary io.Writer
	quiet   bool
}

// NewHumanFormatter creates a new human-readable formatter.
// A nil summary writer disables the summary.
func NewHumanFormatter(summary io.Writer, quiet bool) *HumanFormatter {
	return &HumanFormatter{summary: summary, quiet: quiet}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, maxWorkers int) error {
	if writer != nil {
		f.writer = writer
	}
	return nil
}

// Progress is a no-op; progress display is handled by ProgressFormatter
func (f *HumanFormatter) Progress(update ProgressUpdate) error {
	return nil
}

// Complete writes the clusters and the summary
func (f *HumanFormatter) Complete(report *models.HuntReport) error {
	if f.writer == nil {
		f.writer = os.Stdout
	}

	for i, cluster := range report.Clusters {
		if i > 0 {
			if _, err := fmt.Fprintln(f.writer); err != nil {
				return err
			}
		}
		for _, path := range cluster.Paths() {
			if _, err := fmt.Fprintln(f.writer, path); err != nil {
				return err
			}
		}
	}

	if f.quiet || f.summary == nil {
		return nil
	}
	return writeSummary(f.summary, report)
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	if f.summary != nil {
		fmt.Fprintf(f.summary, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// writeSummary prints hunt statistics and recovered errors
func writeSummary(w io.Writer, report *models.HuntReport) error {
	s := report.Stats

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Hunt completed in %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Files:\n")
	fmt.Fprintf(w, "    Discovered:         %d\n", s.FilesDiscovered)
	fmt.Fprintf(w, "    Fingerprinted:      %d (%s)\n", s.FilesFingerprinted, humanize.IBytes(uint64(s.BytesRead)))
	fmt.Fprintf(w, "    Errored:            %d\n", s.FilesErrored)
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Duplicates:\n")
	fmt.Fprintf(w, "    Candidate clusters: %d\n", s.CandidateClusters)
	fmt.Fprintf(w, "    Confirmed clusters: %d\n", s.ConfirmedClusters)
	fmt.Fprintf(w, "    Collisions dropped: %d\n", s.CollisionsDropped)
	fmt.Fprintf(w, "    Duplicate files:    %d\n", s.DuplicateFiles)
	fmt.Fprintf(w, "    Reclaimable:        %s\n", humanize.IBytes(uint64(s.WastedBytes)))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Status: %s\n", report.Status)

	if len(report.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors:\n")
		for _, e := range report.Errors {
			fmt.Fprintf(w, "  [%s] %s: %s\n", e.Phase, e.Path, e.Error)
		}
	}

	_, err := fmt.Fprintf(w, "\n")
	return err
}
