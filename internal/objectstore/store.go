// Package objectstore persists id -> value mappings.
//
// [JSONStore] mirrors the whole mapping into a single JSON file and replaces
// that file atomically on every write; [MemoryStore] keeps it in memory only.
// [TaggedStore] layers tag-superset queries over either.
package objectstore

// Store is a durable id -> value mapping.
//
// Put and Delete replace the whole persisted state at once: after a failed
// call the store (in memory and on disk) still reflects the previous
// successful write.
type Store[V any] interface {
	// Get returns the value for id, or [ErrNotFound].
	Get(id string) (V, error)

	// Put stores value under id, replacing any previous value.
	Put(id string, value V) error

	// Delete removes id, or returns [ErrNotFound].
	Delete(id string) error

	// Objects returns a snapshot of the last committed mapping. The map is a
	// copy; values are shared and must be treated as read-only.
	Objects() map[string]V
}
