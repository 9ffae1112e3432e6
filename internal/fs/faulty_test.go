package fs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
)

func TestFaulty_Passes_Through_When_No_Faults_Registered(t *testing.T) {
	t.Parallel()

	f := NewFaulty(NewReal())
	path := filepath.Join(t.TempDir(), "a.txt")

	if err := f.WriteFileAtomic(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write atomic: %v", err)
	}

	got, err := f.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if string(got) != "hello" {
		t.Fatalf("content=%q, want=%q", got, "hello")
	}
}

func TestFaulty_FailNext_Rename_Leaves_Target_Untouched(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "documents.json")

	if err := os.WriteFile(path, []byte("before"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	f := NewFaulty(NewReal())
	f.FailNext(OpRename, Suffix("documents.json"), nil)

	err := f.WriteFileAtomic(path, []byte("after"), 0o644)
	if !IsInjected(err) {
		t.Fatalf("err=%v, want injected", err)
	}

	if !errors.Is(err, syscall.EIO) {
		t.Fatalf("err=%v, want EIO", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "before" {
		t.Fatalf("content=%q, want=%q", got, "before")
	}

	entries, _ := os.ReadDir(dir)

	var sawTemp bool

	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "documents.json.tmp-") {
			sawTemp = true
		}
	}

	if !sawTemp {
		t.Fatal("interrupted rename should leave the temp file behind")
	}

	// One-shot: the next write goes through.
	if err := f.WriteFileAtomic(path, []byte("after"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}
}

func TestFaulty_WriteFile_Fault_Writes_Partial_Data(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "blob")

	f := NewFaulty(NewReal())
	f.FailNext(OpWriteFile, nil, syscall.ENOSPC)

	err := f.WriteFile(path, []byte("12345678"), 0o644)
	if !errors.Is(err, syscall.ENOSPC) {
		t.Fatalf("err=%v, want ENOSPC", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "1234" {
		t.Fatalf("content=%q, want=%q", got, "1234")
	}
}

func TestFaulty_FailAlways_Until_Reset(t *testing.T) {
	t.Parallel()

	f := NewFaulty(NewReal())
	f.FailAlways(OpStat, nil, os.ErrPermission)

	dir := t.TempDir()

	for range 3 {
		if _, err := f.Stat(dir); !errors.Is(err, os.ErrPermission) {
			t.Fatalf("err=%v, want permission error", err)
		}
	}

	f.Reset()

	if _, err := f.Stat(dir); err != nil {
		t.Fatalf("after reset: %v", err)
	}
}

func TestIsInjected_Returns_False_For_Real_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewReal().Open(filepath.Join(t.TempDir(), "missing"))
	if IsInjected(err) {
		t.Fatal("real error reported as injected")
	}

	if IsInjected(nil) {
		t.Fatal("nil reported as injected")
	}
}
