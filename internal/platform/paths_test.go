package platform

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestIsHidden(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{".git", true},
		{".bashrc", true},
		{"file.txt", false},
		{"dir", false},
		{".", false},
		{"..", false},
		{"a.b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHidden(tt.name); got != tt.expected {
				t.Errorf("IsHidden(%q) = %v, want %v", tt.name, got, tt.expected)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		err := ValidatePath("  ")
		var perr *PathError
		if !errors.As(err, &perr) {
			t.Fatalf("ValidatePath() error = %v, want *PathError", err)
		}
	})

	t.Run("NulByte", func(t *testing.T) {
		if err := ValidatePath("a\x00b"); err == nil {
			t.Error("ValidatePath() should reject NUL bytes")
		}
	})

	t.Run("Valid", func(t *testing.T) {
		if err := ValidatePath("/tmp/photos"); err != nil {
			t.Errorf("ValidatePath() error = %v", err)
		}
	})
}

func TestNormalizePath(t *testing.T) {
	got := NormalizePath("a/b/../c/")
	if got != filepath.Clean("a/c") {
		t.Errorf("NormalizePath() = %s, want %s", got, filepath.Clean("a/c"))
	}
}
