package objectstore

import (
	"fmt"
	"maps"
	"sync"
)

// MemoryStore is a [Store] without persistence.
type MemoryStore[V any] struct {
	mu      sync.RWMutex
	objects map[string]V
}

// NewMemory returns a MemoryStore seeded with a copy of initial (may be nil).
func NewMemory[V any](initial map[string]V) *MemoryStore[V] {
	objects := maps.Clone(initial)
	if objects == nil {
		objects = make(map[string]V)
	}

	return &MemoryStore[V]{objects: objects}
}

func (s *MemoryStore[V]) Get(id string) (V, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.objects[id]
	if !ok {
		var zero V

		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return v, nil
}

func (s *MemoryStore[V]) Put(id string, value V) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[id] = value

	return nil
}

func (s *MemoryStore[V]) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	delete(s.objects, id)

	return nil
}

func (s *MemoryStore[V]) Objects() map[string]V {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.objects)
}

var _ Store[int] = (*MemoryStore[int])(nil)
