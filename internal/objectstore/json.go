package objectstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"sync"

	"github.com/calvinalkan/docstore/internal/fs"
)

const filePerm = 0o644

// JSONStore is a [Store] backed by one JSON file holding the full mapping,
// pretty-printed with sorted keys.
//
// Every write serializes the complete updated mapping and hands it to
// [fs.FS.WriteFileAtomic]; the in-memory mapping is swapped only after that
// returns successfully. A crash before the rename leaves the old file, a
// crash after it leaves the new one.
//
// There is no cross-process locking: one process owns the file at a time.
type JSONStore[V any] struct {
	fsys fs.FS
	path string

	mu      sync.RWMutex
	objects map[string]V
}

// OpenJSON loads the store at path. A missing file is an empty store; a file
// that cannot be decoded is [ErrMalformed].
func OpenJSON[V any](fsys fs.FS, path string) (*JSONStore[V], error) {
	if path == "" {
		return nil, errors.New("open object store: path is empty")
	}

	objects, err := load[V](fsys, path)
	if err != nil {
		return nil, err
	}

	return &JSONStore[V]{fsys: fsys, path: path, objects: objects}, nil
}

func load[V any](fsys fs.FS, path string) (map[string]V, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]V), nil
		}

		return nil, fmt.Errorf("read object store %s: %w", path, err)
	}

	var objects map[string]V

	err = json.Unmarshal(data, &objects)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrMalformed, path, err)
	}

	if objects == nil {
		objects = make(map[string]V)
	}

	return objects, nil
}

// Path returns the backing file path.
func (s *JSONStore[V]) Path() string {
	return s.path
}

func (s *JSONStore[V]) Get(id string) (V, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.objects[id]
	if !ok {
		var zero V

		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return v, nil
}

func (s *JSONStore[V]) Put(id string, value V) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := maps.Clone(s.objects)
	updated[id] = value

	return s.commit(updated)
}

func (s *JSONStore[V]) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	updated := maps.Clone(s.objects)
	delete(updated, id)

	return s.commit(updated)
}

func (s *JSONStore[V]) Objects() map[string]V {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.objects)
}

// commit must be called with s.mu held for writing.
func (s *JSONStore[V]) commit(updated map[string]V) error {
	data, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		return fmt.Errorf("encode object store: %w", err)
	}

	err = s.fsys.WriteFileAtomic(s.path, data, filePerm)
	if err != nil {
		return fmt.Errorf("write object store %s: %w", s.path, err)
	}

	s.objects = updated

	return nil
}

var _ Store[int] = (*JSONStore[int])(nil)
