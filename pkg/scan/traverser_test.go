package scan

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/sdejongh/doppelganger/pkg/models"
	"github.com/sdejongh/doppelganger/pkg/storage"
)

func touch(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func newBackend(t *testing.T, root string) *storage.Local {
	t.Helper()
	local, err := storage.NewLocal(root)
	if err != nil {
		t.Fatalf("NewLocal() error = %v", err)
	}
	return local
}

func collect(seq func(func(string) bool)) []string {
	var out []string
	seq(func(p string) bool {
		out = append(out, p)
		return true
	})
	sort.Strings(out)
	return out
}

func TestTraverser_Paths(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.txt"), "X")
	touch(t, filepath.Join(root, "sub", "deeper", "b.txt"), "X")
	touch(t, filepath.Join(root, ".secret", "c.txt"), "Y")

	tr := NewTraverser(newBackend(t, root), Options{}, nil)
	got := collect(tr.Paths(context.Background()))

	if len(got) != 3 {
		t.Fatalf("Paths() yielded %d paths, want 3: %v", len(got), got)
	}
	if tr.Discovered() != 3 {
		t.Errorf("Discovered() = %d, want 3", tr.Discovered())
	}

	longest := 0
	for _, p := range got {
		if !filepath.IsAbs(p) {
			t.Errorf("path %s is not absolute", p)
		}
		if len(p) > longest {
			longest = len(p)
		}
	}
	if tr.MaxPathLength() != longest {
		t.Errorf("MaxPathLength() = %d, want %d", tr.MaxPathLength(), longest)
	}
}

func TestTraverser_SkipHidden(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "visible.txt"), "X")
	touch(t, filepath.Join(root, ".hidden.txt"), "X")
	touch(t, filepath.Join(root, ".git", "objects", "blob"), "X")

	tr := NewTraverser(newBackend(t, root), Options{SkipHidden: true}, nil)
	got := collect(tr.Paths(context.Background()))

	if len(got) != 1 || !strings.HasSuffix(got[0], "visible.txt") {
		t.Errorf("Paths() = %v, want only visible.txt", got)
	}
}

func TestTraverser_NotRestartable(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.txt"), "X")

	tr := NewTraverser(newBackend(t, root), Options{}, nil)
	first := collect(tr.Paths(context.Background()))
	second := collect(tr.Paths(context.Background()))

	if len(first) != 1 {
		t.Errorf("first iteration yielded %d paths, want 1", len(first))
	}
	if len(second) != 0 {
		t.Errorf("second iteration yielded %d paths, want 0", len(second))
	}
}

func TestTraverser_EarlyStop(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d"} {
		touch(t, filepath.Join(root, name), name)
	}

	tr := NewTraverser(newBackend(t, root), Options{}, nil)
	count := 0
	for range tr.Paths(context.Background()) {
		count++
		if count == 2 {
			break
		}
	}

	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if tr.Err() != nil {
		t.Errorf("Err() = %v, want nil after consumer stop", tr.Err())
	}
}

func TestTraverser_RootRemovedYieldsNothing(t *testing.T) {
	root := t.TempDir()
	backend := newBackend(t, root)
	if err := os.RemoveAll(root); err != nil {
		t.Fatalf("remove: %v", err)
	}

	tr := NewTraverser(backend, Options{}, nil)
	got := collect(tr.Paths(context.Background()))

	if len(got) != 0 {
		t.Errorf("Paths() = %v, want empty", got)
	}
	errs := tr.Errors()
	if len(errs) != 1 {
		t.Fatalf("Errors() has %d entries, want 1", len(errs))
	}
	if errs[0].Phase != models.PhaseTraverse {
		t.Errorf("Phase = %s, want %s", errs[0].Phase, models.PhaseTraverse)
	}
}

func TestTraverser_Cancelled(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.txt"), "X")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := NewTraverser(newBackend(t, root), Options{}, nil)
	got := collect(tr.Paths(ctx))

	if len(got) != 0 {
		t.Errorf("Paths() = %v, want empty on cancelled context", got)
	}
	if tr.Err() == nil {
		t.Error("Err() should report cancellation")
	}
}
