package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// Real FS Tests
//
// These tests verify our Real implementation's helper methods work correctly.
// We're NOT testing os.ReadFile, os.WriteFile etc (that's Go's job).
// We ARE testing:
//   - Exists() - our convenience method
//   - WriteFileAtomic() - our atomic write wrapper
// =============================================================================

// TestReal_Exists_ReturnsFalseForNonExistent verifies that Exists() returns
// (false, nil) for files that don't exist - not an error.
func TestReal_Exists_ReturnsFalseForNonExistent(t *testing.T) {
	t.Parallel()

	fsys := NewReal()
	dir := t.TempDir()

	exists, err := fsys.Exists(filepath.Join(dir, "does-not-exist.txt"))

	if got, want := err, error(nil); !errors.Is(got, want) {
		t.Fatalf("err=%v, want=%v", got, want)
	}

	if got, want := exists, false; got != want {
		t.Fatalf("exists=%v, want=%v", got, want)
	}
}

func TestReal_Exists_ReturnsTrueForDirectory(t *testing.T) {
	t.Parallel()

	fsys := NewReal()

	exists, err := fsys.Exists(t.TempDir())
	if err != nil {
		t.Fatalf("exists: %v", err)
	}

	if !exists {
		t.Fatal("exists=false, want=true")
	}
}

func TestReal_WriteFileAtomic_Replaces_Existing_Content(t *testing.T) {
	t.Parallel()

	fsys := NewReal()
	path := filepath.Join(t.TempDir(), "documents.json")

	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := fsys.WriteFileAtomic(path, []byte("new"), 0o644); err != nil {
		t.Fatalf("write atomic: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if string(got) != "new" {
		t.Fatalf("content=%q, want=%q", got, "new")
	}
}

func TestReal_WriteFileAtomic_Leaves_No_Temp_Files(t *testing.T) {
	t.Parallel()

	fsys := NewReal()
	dir := t.TempDir()
	path := filepath.Join(dir, "documents.json")

	for _, content := range []string{"one", "two", "three"} {
		if err := fsys.WriteFileAtomic(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write atomic: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}

	if len(entries) != 1 || entries[0].Name() != "documents.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}

		t.Fatalf("dir entries=%v, want only documents.json", names)
	}
}

func TestReal_WriteFileAtomic_Applies_Perm_To_New_File(t *testing.T) {
	t.Parallel()

	fsys := NewReal()
	path := filepath.Join(t.TempDir(), "fresh.json")

	if err := fsys.WriteFileAtomic(path, []byte("{}"), 0o640); err != nil {
		t.Fatalf("write atomic: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	if got := info.Mode().Perm(); got != 0o640 {
		t.Fatalf("perm=%o, want=%o", got, 0o640)
	}
}
