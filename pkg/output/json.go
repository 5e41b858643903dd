package output

import (
	"encoding/json"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sdejongh/doppelganger/pkg/models"
)

// JSONFormatter writes the whole report as a single JSON document
type JSONFormatter struct {
	writer io.Writer
}

// JSONReportData represents the final report document
type JSONReportData struct {
	OperationID string            `json:"operation_id"`
	Root        string            `json:"root"`
	Index       string            `json:"index"`
	Status      string            `json:"status"`
	Duration    string            `json:"duration"`
	DurationMs  int64             `json:"duration_ms"`
	Stats       JSONStatsData     `json:"stats"`
	Clusters    []JSONClusterData `json:"clusters"`
	Errors      []JSONErrorData   `json:"errors,omitempty"`
}

// JSONStatsData represents statistics in JSON format
type JSONStatsData struct {
	FilesDiscovered    int    `json:"files_discovered"`
	FilesFingerprinted int    `json:"files_fingerprinted"`
	FilesErrored       int    `json:"files_errored"`
	BytesRead          int64  `json:"bytes_read"`
	MaxPathLength      int    `json:"max_path_length"`
	CandidateClusters  int    `json:"candidate_clusters"`
	ConfirmedClusters  int    `json:"confirmed_clusters"`
	CollisionsDropped  int    `json:"collisions_dropped"`
	DuplicateFiles     int    `json:"duplicate_files"`
	WastedBytes        int64  `json:"wasted_bytes"`
	WastedBytesStr     string `json:"wasted_bytes_str"`
}

// JSONClusterData represents one confirmed cluster
type JSONClusterData struct {
	// Fingerprint is a decimal string; uint64 does not survive JSON numbers
	Fingerprint string           `json:"fingerprint"`
	Size        int64            `json:"size"`
	Files       []JSONMemberData `json:"files"`
}

// JSONMemberData represents one cluster member
type JSONMemberData struct {
	Path        string `json:"path"`
	Previewable bool   `json:"previewable"`
}

// JSONErrorData represents a recovered error
type JSONErrorData struct {
	Path  string `json:"path"`
	Phase string `json:"phase"`
	Error string `json:"error"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, maxWorkers int) error {
	if writer != nil {
		f.writer = writer
	}
	return nil
}

// Progress is a no-op to keep the output parseable
func (f *JSONFormatter) Progress(update ProgressUpdate) error {
	return nil
}

// Complete writes the report document
func (f *JSONFormatter) Complete(report *models.HuntReport) error {
	if f.writer == nil {
		f.writer = os.Stdout
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewJSONReport(report))
}

// NewJSONReport converts a report to its JSON representation
func NewJSONReport(report *models.HuntReport) JSONReportData {
	s := report.Stats
	data := JSONReportData{
		OperationID: report.OperationID,
		Root:        report.Root,
		Index:       string(report.IndexKind),
		Status:      string(report.Status),
		Duration:    report.Duration.Round(time.Millisecond).String(),
		DurationMs:  report.Duration.Milliseconds(),
		Stats: JSONStatsData{
			FilesDiscovered:    s.FilesDiscovered,
			FilesFingerprinted: s.FilesFingerprinted,
			FilesErrored:       s.FilesErrored,
			BytesRead:          s.BytesRead,
			MaxPathLength:      s.MaxPathLength,
			CandidateClusters:  s.CandidateClusters,
			ConfirmedClusters:  s.ConfirmedClusters,
			CollisionsDropped:  s.CollisionsDropped,
			DuplicateFiles:     s.DuplicateFiles,
			WastedBytes:        s.WastedBytes,
			WastedBytesStr:     humanize.IBytes(uint64(s.WastedBytes)),
		},
		Clusters: make([]JSONClusterData, 0, len(report.Clusters)),
	}

	for _, c := range report.Clusters {
		cluster := JSONClusterData{
			Fingerprint: strconv.FormatUint(c.Fingerprint, 10),
			Files:       make([]JSONMemberData, 0, c.Len()),
		}
		if c.Len() > 0 {
			cluster.Size = c.Members[0].Size
		}
		for _, m := range c.Members {
			cluster.Files = append(cluster.Files, JSONMemberData{Path: m.Path, Previewable: m.Previewable})
		}
		data.Clusters = append(data.Clusters, cluster)
	}

	for _, e := range report.Errors {
		data.Errors = append(data.Errors, JSONErrorData{
			Path:  e.Path,
			Phase: string(e.Phase),
			Error: e.Error,
		})
	}

	return data
}

// Error writes a failure document in place of the report
func (f *JSONFormatter) Error(err error) error {
	if f.writer == nil {
		f.writer = os.Stdout
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(map[string]string{
		"status": string(models.StatusFailed),
		"error":  err.Error(),
	})
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
