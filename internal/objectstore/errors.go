package objectstore

import "errors"

// ErrNotFound reports a Get or Delete for an id the store does not hold.
var ErrNotFound = errors.New("object not found")

// ErrMalformed reports a backing file that exists but cannot be decoded.
var ErrMalformed = errors.New("malformed object store")
