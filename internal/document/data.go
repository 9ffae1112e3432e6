package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// Data is an ordered string-keyed map of JSON-compatible values.
//
// Keys keep insertion order in memory. On disk they are written sorted, so
// a decoded Data has its keys in sorted order. The zero value is empty and
// ready to use.
type Data struct {
	keys   []string
	values map[string]any
}

// NewData returns an empty Data.
func NewData() *Data {
	return &Data{values: make(map[string]any)}
}

// Get returns the value for key and whether it is present.
func (d *Data) Get(key string) (any, bool) {
	if d == nil {
		return nil, false
	}

	v, ok := d.values[key]

	return v, ok
}

// Set stores value under key. A new key is appended to the key order.
func (d *Data) Set(key string, value any) {
	if d.values == nil {
		d.values = make(map[string]any)
	}

	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}

	d.values[key] = value
}

// Delete removes key and reports whether it was present.
func (d *Data) Delete(key string) bool {
	if _, ok := d.values[key]; !ok {
		return false
	}

	delete(d.values, key)
	d.keys = slices.DeleteFunc(d.keys, func(k string) bool { return k == key })

	return true
}

// Len returns the number of fields.
func (d *Data) Len() int {
	if d == nil {
		return 0
	}

	return len(d.keys)
}

// Keys returns the field names in order.
func (d *Data) Keys() []string {
	if d == nil {
		return nil
	}

	return slices.Clone(d.keys)
}

// Clone returns a deep copy. Maps and slices produced by JSON decoding or
// by the typed setters are copied; other values are shared.
func (d *Data) Clone() *Data {
	c := &Data{
		keys:   slices.Clone(d.Keys()),
		values: make(map[string]any, d.Len()),
	}

	if d == nil {
		return c
	}

	for k, v := range d.values {
		c.values[k] = cloneValue(v)
	}

	return c
}

// TagList returns the tags field, or nil when absent. Nil-safe so a null
// entry decoded from disk queries as untagged.
func (d *Data) TagList() []string {
	v, _ := d.Get(FieldTags)

	return stringList(v)
}

// MarshalJSON encodes the fields as a JSON object with sorted keys.
func (d *Data) MarshalJSON() ([]byte, error) {
	if d == nil || d.values == nil {
		return []byte("{}"), nil
	}

	return json.Marshal(d.values)
}

// UnmarshalJSON decodes a JSON object. Anything else is [ErrNotDocument].
// Numbers are kept as [json.Number] so they round-trip unchanged.
func (d *Data) UnmarshalJSON(blob []byte) error {
	trimmed := bytes.TrimSpace(blob)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("%w: expected JSON object", ErrNotDocument)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var values map[string]any

	err := dec.Decode(&values)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	d.keys = keys
	d.values = values

	return nil
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		c := make(map[string]any, len(val))
		for k, inner := range val {
			c[k] = cloneValue(inner)
		}

		return c
	case []any:
		c := make([]any, len(val))
		for i, inner := range val {
			c[i] = cloneValue(inner)
		}

		return c
	case []string:
		return slices.Clone(val)
	default:
		return v
	}
}

// stringList reads a []string or a decoded []any of strings. Non-string
// elements are skipped.
func stringList(v any) []string {
	switch val := v.(type) {
	case []string:
		return slices.Clone(val)
	case []any:
		out := make([]string, 0, len(val))

		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}

		return out
	default:
		return nil
	}
}
