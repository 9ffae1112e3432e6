package docstore

import (
	"errors"
	"fmt"

	"github.com/calvinalkan/docstore/internal/objectstore"
)

var (
	// ErrNotFound is returned when a document id is not in the store.
	ErrNotFound = objectstore.ErrNotFound

	ErrChecksumMismatch  = errors.New("checksum mismatch")
	ErrDateCreatedPreset = errors.New("date_created is already set on a new document")
	ErrIDField           = errors.New(`document data must not contain an "id" field`)
	ErrNoFile            = errors.New("document has no stored file")
	ErrThumbnailFailed   = errors.New("thumbnail not created")
	ErrTitleRequired     = errors.New("several title candidates; a title must be chosen")
	ErrMergeTooFew       = errors.New("merge needs at least two distinct documents")
)

// ChecksumMismatchError reports a supplied SHA-256 that does not match the
// stored bytes. The file at Path is left on disk for inspection.
type ChecksumMismatchError struct {
	Expected string
	Actual   string
	Path     string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("incorrect SHA256 checksum for %s: got %s, calculated %s", e.Path, e.Expected, e.Actual)
}

// Is makes errors.Is(err, ErrChecksumMismatch) match.
func (e *ChecksumMismatchError) Is(target error) bool {
	return target == ErrChecksumMismatch
}
