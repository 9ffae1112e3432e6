package objectstore

import "slices"

// Tagged is implemented by values that carry a tag set.
type Tagged interface {
	TagList() []string
}

// TaggedStore adds tag queries to a [Store]. Put, Get, Delete and Objects
// are the wrapped store's.
type TaggedStore[V Tagged] struct {
	Store[V]
}

// NewTagged wraps s.
func NewTagged[V Tagged](s Store[V]) *TaggedStore[V] {
	return &TaggedStore[V]{Store: s}
}

// Query returns the objects whose tags are a superset of tags. Order and
// duplicates in tags are irrelevant; an empty query matches everything.
func (t *TaggedStore[V]) Query(tags []string) map[string]V {
	objects := t.Objects()

	for id, v := range objects {
		if !MatchesTags(v.TagList(), tags) {
			delete(objects, id)
		}
	}

	return objects
}

// MatchesTags reports whether every tag in query is present in have.
func MatchesTags(have, query []string) bool {
	for _, tag := range query {
		if !slices.Contains(have, tag) {
			return false
		}
	}

	return true
}
