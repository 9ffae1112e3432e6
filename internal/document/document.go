// Package document defines the stored document entity.
//
// A [Document] is an identifier plus an ordered set of JSON-compatible
// fields. The identifier is never part of the fields: the store keys
// documents by id and persists only the fields.
//
// Documents are mutable and hold a map, so they are not comparable with ==
// and cannot be used as map keys. Use [Document.Equal].
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// Document is a stored record.
type Document struct {
	// ID is assigned once, when the document is first indexed.
	ID string

	data *Data
}

// New returns a document with the given fields, inserted in sorted key order.
// id may be empty for a document that has not been indexed yet.
func New(id string, fields map[string]any) *Document {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	data := NewData()
	for _, k := range keys {
		data.Set(k, fields[k])
	}

	return &Document{ID: id, data: data}
}

// FromData wraps data without copying it.
func FromData(id string, data *Data) *Document {
	if data == nil {
		data = NewData()
	}

	return &Document{ID: id, data: data}
}

// FromValue converts a document-shaped value: *Document, Document, *Data or
// map[string]any. Anything else, including nil, is [ErrNotDocument].
func FromValue(v any) (*Document, error) {
	switch val := v.(type) {
	case *Document:
		if val == nil {
			return nil, fmt.Errorf("%w: nil *Document", ErrNotDocument)
		}

		return val, nil
	case Document:
		return &val, nil
	case *Data:
		if val == nil {
			return nil, fmt.Errorf("%w: nil *Data", ErrNotDocument)
		}

		return FromData("", val), nil
	case map[string]any:
		return New("", val), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrNotDocument, v)
	}
}

// Data returns the underlying fields. The store uses this to persist the
// document; other callers should prefer the accessors.
func (d *Document) Data() *Data {
	if d.data == nil {
		d.data = NewData()
	}

	return d.data
}

// Get returns the value of key, or [ErrNoSuchField].
func (d *Document) Get(key string) (any, error) {
	v, ok := d.data.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchField, key)
	}

	return v, nil
}

// Set stores value under key.
func (d *Document) Set(key string, value any) {
	d.Data().Set(key, value)
}

// Delete removes key, or returns [ErrNoSuchField].
func (d *Document) Delete(key string) error {
	if !d.Data().Delete(key) {
		return fmt.Errorf("%w: %q", ErrNoSuchField, key)
	}

	return nil
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	_, ok := d.data.Get(key)

	return ok
}

// Len returns the number of fields.
func (d *Document) Len() int {
	return d.data.Len()
}

// Keys returns the field names in order.
func (d *Document) Keys() []string {
	return d.data.Keys()
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	return &Document{ID: d.ID, data: d.data.Clone()}
}

// Equal reports whether d and other have the same ID and the same fields,
// ignoring the named fields. Values are compared by their JSON encoding, so
// []string{"a"} equals a decoded []any{"a"}.
func (d *Document) Equal(other *Document, ignore ...string) bool {
	if d == nil || other == nil {
		return d == other
	}

	if d.ID != other.ID {
		return false
	}

	a := d.comparableKeys(ignore)
	b := other.comparableKeys(ignore)

	if !slices.Equal(a, b) {
		return false
	}

	for _, k := range a {
		av, _ := d.data.Get(k)
		bv, _ := other.data.Get(k)

		if !jsonEqual(av, bv) {
			return false
		}
	}

	return true
}

func (d *Document) comparableKeys(ignore []string) []string {
	keys := slices.DeleteFunc(d.Keys(), func(k string) bool {
		return slices.Contains(ignore, k)
	})
	sort.Strings(keys)

	return keys
}

func jsonEqual(a, b any) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)

	if errA != nil || errB != nil {
		return false
	}

	return bytes.Equal(ab, bb)
}

// String returns the id and fields, for diagnostics.
func (d *Document) String() string {
	blob, err := d.Data().MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%s <unencodable: %v>", d.ID, err)
	}

	return d.ID + " " + string(blob)
}
