package objectstore_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/docstore/internal/fs"
	"github.com/calvinalkan/docstore/internal/objectstore"
)

type record struct {
	Name  string   `json:"name"`
	Tags  []string `json:"tags,omitempty"`
	Count int      `json:"count,omitempty"`
}

func (r record) TagList() []string { return r.Tags }

func openRecords(t *testing.T, fsys fs.FS, path string) *objectstore.JSONStore[record] {
	t.Helper()

	s, err := objectstore.OpenJSON[record](fsys, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	return s
}

func Test_OpenJSON_Returns_Empty_Store_When_File_Missing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "documents.json")
	s := openRecords(t, fs.NewReal(), path)

	if got := s.Objects(); len(got) != 0 {
		t.Fatalf("objects = %v, want empty", got)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("opening must not create the file, stat err = %v", err)
	}
}

func Test_OpenJSON_Returns_ErrMalformed_When_File_Is_Not_JSON(t *testing.T) {
	t.Parallel()

	for _, content := range []string{"", "{", `["a"]`, `{"x": 1`} {
		path := filepath.Join(t.TempDir(), "documents.json")

		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}

		_, err := objectstore.OpenJSON[record](fs.NewReal(), path)
		if !errors.Is(err, objectstore.ErrMalformed) {
			t.Fatalf("content %q: err = %v, want ErrMalformed", content, err)
		}
	}
}

func Test_Get_Returns_Put_Value(t *testing.T) {
	t.Parallel()

	s := openRecords(t, fs.NewReal(), filepath.Join(t.TempDir(), "documents.json"))

	for _, tc := range []struct {
		id    string
		value record
	}{
		{"a", record{Name: "alpha"}},
		{"b", record{Name: "beta", Tags: []string{"x", "y"}, Count: 3}},
		{"", record{}},
	} {
		if err := s.Put(tc.id, tc.value); err != nil {
			t.Fatalf("put %q: %v", tc.id, err)
		}

		got, err := s.Get(tc.id)
		if err != nil {
			t.Fatalf("get %q: %v", tc.id, err)
		}

		if diff := cmp.Diff(tc.value, got); diff != "" {
			t.Fatalf("get %q mismatch (-want +got):\n%s", tc.id, diff)
		}
	}
}

func Test_Get_Returns_ErrNotFound_When_Absent(t *testing.T) {
	t.Parallel()

	s := openRecords(t, fs.NewReal(), filepath.Join(t.TempDir(), "documents.json"))

	_, err := s.Get("nope")
	if !errors.Is(err, objectstore.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func Test_Reopen_Yields_Same_Objects(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "documents.json")
	s := openRecords(t, fs.NewReal(), path)

	for i, name := range []string{"one", "two", "three"} {
		if err := s.Put(name, record{Name: name, Count: i}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	if err := s.Delete("two"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	reopened := openRecords(t, fs.NewReal(), path)

	if diff := cmp.Diff(s.Objects(), reopened.Objects()); diff != "" {
		t.Fatalf("reopened objects mismatch (-before +after):\n%s", diff)
	}
}

func Test_Put_Writes_Pretty_Printed_Sorted_JSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "documents.json")
	s := openRecords(t, fs.NewReal(), path)

	_ = s.Put("zz", record{Name: "last"})
	_ = s.Put("aa", record{Name: "first"})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	want := `{
  "aa": {
    "name": "first"
  },
  "zz": {
    "name": "last"
  }
}`

	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Fatalf("file content mismatch (-want +got):\n%s", diff)
	}
}

func Test_Put_Twice_Keeps_Single_Entry_Equal_To_Second_Write(t *testing.T) {
	t.Parallel()

	s := openRecords(t, fs.NewReal(), filepath.Join(t.TempDir(), "documents.json"))

	_ = s.Put("id", record{Name: "blue"})
	_ = s.Put("id", record{Name: "red"})

	want := map[string]record{"id": {Name: "red"}}
	if diff := cmp.Diff(want, s.Objects()); diff != "" {
		t.Fatalf("objects mismatch (-want +got):\n%s", diff)
	}
}

func Test_Objects_Returns_Snapshot(t *testing.T) {
	t.Parallel()

	s := openRecords(t, fs.NewReal(), filepath.Join(t.TempDir(), "documents.json"))
	_ = s.Put("a", record{Name: "a"})

	snapshot := s.Objects()
	snapshot["b"] = record{Name: "injected"}
	delete(snapshot, "a")

	if _, err := s.Get("a"); err != nil {
		t.Fatalf("mutating the snapshot changed the store: %v", err)
	}

	if _, err := s.Get("b"); !errors.Is(err, objectstore.ErrNotFound) {
		t.Fatalf("mutating the snapshot added to the store: %v", err)
	}
}

func Test_Delete_Returns_ErrNotFound_When_Absent(t *testing.T) {
	t.Parallel()

	s := openRecords(t, fs.NewReal(), filepath.Join(t.TempDir(), "documents.json"))

	if err := s.Delete("ghost"); !errors.Is(err, objectstore.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func Test_Put_Keeps_Previous_State_When_Rename_Is_Interrupted(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "documents.json")
	faulty := fs.NewFaulty(fs.NewReal())
	s := openRecords(t, faulty, path)

	if err := s.Put("kept", record{Name: "kept"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	before := s.Objects()

	faulty.FailNext(fs.OpRename, fs.Suffix("documents.json"), nil)

	err := s.Put("lost", record{Name: "lost"})
	if !fs.IsInjected(err) {
		t.Fatalf("err = %v, want injected rename failure", err)
	}

	if diff := cmp.Diff(before, s.Objects()); diff != "" {
		t.Fatalf("in-memory state changed after failed put (-before +after):\n%s", diff)
	}

	reloaded := openRecords(t, fs.NewReal(), path)
	if diff := cmp.Diff(before, reloaded.Objects()); diff != "" {
		t.Fatalf("on-disk state changed after failed put (-before +after):\n%s", diff)
	}
}

func Test_Put_Keeps_Previous_State_When_Temp_Write_Fails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "documents.json")
	faulty := fs.NewFaulty(fs.NewReal())
	s := openRecords(t, faulty, path)

	_ = s.Put("kept", record{Name: "kept"})
	before := s.Objects()

	faulty.FailNext(fs.OpWriteFile, func(p string) bool {
		return strings.Contains(filepath.Base(p), ".tmp-")
	}, nil)

	if err := s.Delete("kept"); err == nil {
		t.Fatal("delete should fail when the temp write fails")
	}

	if diff := cmp.Diff(before, s.Objects()); diff != "" {
		t.Fatalf("in-memory state changed (-before +after):\n%s", diff)
	}

	reloaded := openRecords(t, fs.NewReal(), path)
	if diff := cmp.Diff(before, reloaded.Objects()); diff != "" {
		t.Fatalf("on-disk state changed (-before +after):\n%s", diff)
	}
}
