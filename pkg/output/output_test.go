package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/sdejongh/doppelganger/pkg/models"
)

func sampleReport() *models.HuntReport {
	return &models.HuntReport{
		OperationID: "op-1",
		Root:        "/data",
		IndexKind:   models.IndexMemory,
		Duration:    1500 * time.Millisecond,
		Status:      models.StatusPartial,
		Stats: models.Statistics{
			FilesDiscovered:    5,
			FilesFingerprinted: 4,
			FilesErrored:       1,
			ConfirmedClusters:  2,
			DuplicateFiles:     5,
			WastedBytes:        3072,
		},
		Clusters: []*models.Cluster{
			{Fingerprint: 18446744073709551615, Members: []models.FileRecord{
				{Path: "/data/a", Size: 1024, Previewable: true},
				{Path: "/data/b", Size: 1024, Previewable: true},
			}},
			{Fingerprint: 7, Members: []models.FileRecord{
				{Path: "/data/c", Size: 1024},
				{Path: "/data/d", Size: 1024},
				{Path: "/data/e", Size: 1024},
			}},
		},
		Errors: []models.HuntError{
			{Path: "/data/locked", Phase: models.PhaseFingerprint, Error: "permission denied"},
		},
	}
}

func TestHumanFormatter(t *testing.T) {
	var out, summary bytes.Buffer
	f := NewHumanFormatter(&summary, false)
	f.Start(&out, 4)

	if err := f.Complete(sampleReport()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	want := "/data/a\n/data/b\n\n/data/c\n/data/d\n/data/e\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("cluster listing mismatch (-want +got):\n%s", diff)
	}

	for _, fragment := range []string{"Confirmed clusters: 2", "Reclaimable:        3.0 KiB", "Status: partial", "/data/locked: permission denied"} {
		if !strings.Contains(summary.String(), fragment) {
			t.Errorf("summary missing %q:\n%s", fragment, summary.String())
		}
	}
}

func TestHumanFormatter_Quiet(t *testing.T) {
	var out, summary bytes.Buffer
	f := NewHumanFormatter(&summary, true)
	f.Start(&out, 1)

	if err := f.Complete(sampleReport()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if summary.Len() != 0 {
		t.Errorf("quiet formatter wrote a summary: %q", summary.String())
	}
	if out.Len() == 0 {
		t.Error("quiet formatter must still list clusters")
	}
}

func TestHumanFormatter_NoClusters(t *testing.T) {
	var out bytes.Buffer
	f := NewHumanFormatter(nil, false)
	f.Start(&out, 1)

	if err := f.Complete(&models.HuntReport{Status: models.StatusSuccess}); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestHashFormatter(t *testing.T) {
	var out bytes.Buffer
	f := NewHashFormatter(nil, true)
	f.Start(&out, 1)

	if err := f.Complete(sampleReport()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	want := strings.Join([]string{
		"Hash: 18446744073709551615:",
		"/data/a",
		"/data/b",
		"------",
		"Hash: 7:",
		"/data/c",
		"/data/d",
		"/data/e",
		"------",
		"",
	}, "\n")
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("legacy layout mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONFormatter(t *testing.T) {
	var out bytes.Buffer
	f := NewJSONFormatter()
	f.Start(&out, 1)

	if err := f.Complete(sampleReport()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	var doc JSONReportData
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc.Status != "partial" || doc.Index != "memory" || doc.DurationMs != 1500 {
		t.Errorf("header = %+v", doc)
	}
	if len(doc.Clusters) != 2 {
		t.Fatalf("got %d clusters, want 2", len(doc.Clusters))
	}
	if doc.Clusters[0].Fingerprint != "18446744073709551615" {
		t.Errorf("fingerprint = %s, want full uint64", doc.Clusters[0].Fingerprint)
	}
	if !doc.Clusters[0].Files[0].Previewable || doc.Clusters[1].Files[0].Previewable {
		t.Error("previewable flags not carried through")
	}
	if doc.Stats.WastedBytesStr != "3.0 KiB" {
		t.Errorf("WastedBytesStr = %s, want 3.0 KiB", doc.Stats.WastedBytesStr)
	}
	if len(doc.Errors) != 1 || doc.Errors[0].Phase != "fingerprint" {
		t.Errorf("errors = %+v", doc.Errors)
	}
}

func TestJSONFormatter_EmptyClustersIsArray(t *testing.T) {
	var out bytes.Buffer
	f := NewJSONFormatter()
	f.Start(&out, 1)
	f.Complete(&models.HuntReport{Status: models.StatusSuccess})

	if !strings.Contains(out.String(), `"clusters": []`) {
		t.Errorf("clusters should encode as an empty array:\n%s", out.String())
	}
}

func TestJSONFormatter_Error(t *testing.T) {
	var out bytes.Buffer
	f := NewJSONFormatter()
	f.Start(&out, 1)
	f.Error(errors.New("boom"))

	var doc map[string]string
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc["status"] != "failed" || doc["error"] != "boom" {
		t.Errorf("error document = %v", doc)
	}
}

func TestProgressFormatter_Delegates(t *testing.T) {
	var out, bar bytes.Buffer
	inner := NewHashFormatter(nil, true)
	f := NewProgressFormatter(inner, &bar)
	f.Start(&out, 2)

	updates := []ProgressUpdate{
		{Type: UpdatePhaseStart, Phase: models.PhaseFingerprint},
		{Type: UpdateFileDone, Phase: models.PhaseFingerprint, FilePath: "/data/a"},
		{Type: UpdateFileError, Phase: models.PhaseFingerprint, FilePath: "/data/x"},
		{Type: UpdatePhaseComplete, Phase: models.PhaseFingerprint, Current: 2, Total: 2},
		{Type: UpdatePhaseStart, Phase: models.PhaseVerify, Total: 1},
		{Type: UpdateClusterDone, Phase: models.PhaseVerify, Current: 1, Total: 1},
		{Type: UpdatePhaseComplete, Phase: models.PhaseVerify, Current: 1, Total: 1},
	}
	for _, u := range updates {
		if err := f.Progress(u); err != nil {
			t.Fatalf("Progress() error = %v", err)
		}
	}
	if err := f.Complete(sampleReport()); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if f.Name() != "hash" {
		t.Errorf("Name() = %s, want hash", f.Name())
	}
	if !strings.HasPrefix(out.String(), "Hash: ") {
		t.Errorf("inner formatter output missing: %q", out.String())
	}
	if bar.Len() == 0 {
		t.Error("progress bar wrote nothing")
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"human", "human", false},
		{"", "human", false},
		{"hash", "hash", false},
		{"json", "json", false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f, err := New(tt.format, nil, false)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && f.Name() != tt.want {
				t.Errorf("Name() = %s, want %s", f.Name(), tt.want)
			}
		})
	}
}

func TestWriteReportFile(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "doppelganger-output-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	path := filepath.Join(tempDir, "report.txt")
	if err := WriteReportFile(sampleReport(), path, FormatHash); err != nil {
		t.Fatalf("WriteReportFile() error = %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "Hash: 7:\n/data/c\n") {
		t.Errorf("report file content = %q", content)
	}

	empty := filepath.Join(tempDir, "empty.txt")
	if err := WriteReportFile(&models.HuntReport{}, empty, FormatHuman); err != nil {
		t.Fatalf("WriteReportFile() error = %v", err)
	}
	if _, err := os.Stat(empty); !os.IsNotExist(err) {
		t.Error("no file should be written for a report without clusters")
	}
}
