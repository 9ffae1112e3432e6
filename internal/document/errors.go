package document

import "errors"

// ErrNoSuchField reports reading or deleting a field the document does not have.
var ErrNoSuchField = errors.New("no such field")

// ErrNotDocument reports a value that cannot be treated as a document.
var ErrNotDocument = errors.New("not a document")
