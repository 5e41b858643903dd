package compare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sdejongh/doppelganger/pkg/storage"
)

// TestHelper provides utilities for comparator tests
type TestHelper struct {
	t       *testing.T
	tempDir string
	backend *storage.Local
}

// NewTestHelper creates a new test helper with a temporary root
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "doppelganger-compare-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	backend, err := storage.NewLocal(tempDir)
	if err != nil {
		t.Fatalf("failed to create backend: %v", err)
	}

	return &TestHelper{t: t, tempDir: tempDir, backend: backend}
}

// Cleanup removes all temporary files
func (h *TestHelper) Cleanup() {
	os.RemoveAll(h.tempDir)
}

// CreateFile writes a file under the temporary root and returns its path
func (h *TestHelper) CreateFile(name string, content []byte) string {
	h.t.Helper()
	path := filepath.Join(h.tempDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		h.t.Fatalf("failed to create parent dir: %v", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		h.t.Fatalf("failed to create file: %v", err)
	}
	return path
}

func TestBinaryComparator_Equal(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	large := bytes.Repeat([]byte("0123456789abcdef"), 4096) // 64KB, spans many buffers
	largeTail := append(bytes.Clone(large[:len(large)-1]), 'X')

	tests := []struct {
		name string
		a    []byte
		b    []byte
		want bool
	}{
		{"identical", []byte("same content"), []byte("same content"), true},
		{"empty", []byte{}, []byte{}, true},
		{"different size", []byte("short"), []byte("much longer"), false},
		{"same size different bytes", []byte("abcd"), []byte("abce"), false},
		{"large identical", large, large, true},
		{"large differs at last byte", large, largeTail, false},
	}

	comparator := NewBinaryComparator(h.backend, 4096)
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := h.CreateFile(filepath.Join(fmt.Sprintf("case%d", i), "a"), tt.a)
			b := h.CreateFile(filepath.Join(fmt.Sprintf("case%d", i), "b"), tt.b)

			got, err := comparator.Equal(context.Background(), a, b)
			if err != nil {
				t.Fatalf("Equal() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBinaryComparator_ReadError(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	existing := h.CreateFile("present.bin", []byte("content"))
	missing := filepath.Join(h.tempDir, "missing.bin")

	comparator := NewBinaryComparator(h.backend, 0)
	_, err := comparator.Equal(context.Background(), existing, missing)
	if err == nil {
		t.Fatal("Equal() should fail when one side is missing")
	}

	var readErr *ReadError
	if !errors.As(err, &readErr) {
		t.Fatalf("error type = %T, want *ReadError", err)
	}
	if readErr.Path != missing {
		t.Errorf("ReadError.Path = %s, want %s", readErr.Path, missing)
	}
}

func TestBinaryComparator_ReaderWrapper(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	a := h.CreateFile("a.bin", []byte("wrapped"))
	b := h.CreateFile("b.bin", []byte("wrapped"))

	wrapped := 0
	comparator := NewBinaryComparator(h.backend, 4096)
	comparator.SetReaderWrapper(func(rc io.ReadCloser) io.ReadCloser {
		wrapped++
		return rc
	})

	equal, err := comparator.Equal(context.Background(), a, b)
	if err != nil {
		t.Fatalf("Equal() error = %v", err)
	}
	if !equal {
		t.Error("Equal() = false, want true")
	}
	if wrapped != 2 {
		t.Errorf("wrapper called %d times, want 2", wrapped)
	}
}

func TestBinaryComparator_Cancelled(t *testing.T) {
	h := NewTestHelper(t)
	defer h.Cleanup()

	a := h.CreateFile("a.bin", []byte("content"))
	b := h.CreateFile("b.bin", []byte("content"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	comparator := NewBinaryComparator(h.backend, 4096)
	if _, err := comparator.Equal(ctx, a, b); !errors.Is(err, context.Canceled) {
		t.Errorf("Equal() error = %v, want context.Canceled", err)
	}
}

func TestBinaryComparator_Name(t *testing.T) {
	if got := NewBinaryComparator(nil, 0).Name(); got != "binary" {
		t.Errorf("Name() = %s, want binary", got)
	}
}
