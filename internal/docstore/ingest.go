package docstore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/calvinalkan/docstore/internal/document"
	"github.com/calvinalkan/docstore/internal/media"
)

// NewDocument describes a file to ingest. Content comes from Data when it is
// non-nil, otherwise from the file at Path.
type NewDocument struct {
	Path string
	Data []byte

	// Filename is the user-facing name; its extension decides the stored
	// file's extension. Defaults to the base of Path.
	Filename string

	Title     string
	Tags      []string
	SourceURL string

	// Checksum is an expected hex SHA-256 of the content, compared without
	// regard to case. When set, a mismatch fails ingestion with a
	// [*ChecksumMismatchError]; a match is recorded as given.
	Checksum string

	// DateCreated overrides the creation stamp, e.g. when importing an
	// older store. Zero means now.
	DateCreated time.Time
	DateSaved   time.Time

	// Fields are extra fields copied onto the document. They must not
	// include date_created or id.
	Fields map[string]any
}

// StoreNew ingests a file with [Store.IndexNew], then attaches a thumbnail.
//
// A thumbnail failure does not undo the ingestion: StoreNew then returns the
// indexed document together with an error wrapping [ErrThumbnailFailed].
func (s *Store) StoreNew(ctx context.Context, nd NewDocument) (*document.Document, error) {
	doc, err := s.IndexNew(ctx, nd)
	if err != nil {
		return nil, err
	}

	withThumb, err := s.AttachThumbnail(ctx, doc.ID)
	if err != nil {
		if !errors.Is(err, ErrThumbnailFailed) {
			err = fmt.Errorf("%w for %s: %w", ErrThumbnailFailed, doc.ID, err)
		}

		return doc, err
	}

	return withThumb, nil
}

// IndexNew writes the content under a fresh id, checks or records its
// SHA-256 and indexes the resulting document.
//
// On a checksum mismatch the written file stays in place and nothing is
// indexed.
func (s *Store) IndexNew(ctx context.Context, nd NewDocument) (*document.Document, error) {
	content := nd.Data
	if content == nil {
		if nd.Path == "" {
			return nil, errors.New("index new document: no content and no path")
		}

		var err error

		content, err = s.fsys.ReadFile(nd.Path)
		if err != nil {
			return nil, fmt.Errorf("index new document: %w", err)
		}
	}

	doc, err := s.newDocument(nd)
	if err != nil {
		return nil, fmt.Errorf("index new document: %w", err)
	}

	id := s.newID()
	if id == "" {
		return nil, errors.New("index new document: id generator returned an empty id")
	}

	ident := storageName(id, s.extension(doc.Filename(), content))
	dst := s.FilePath(ident)

	err = s.fsys.MkdirAll(filepath.Dir(dst), dirPerm)
	if err != nil {
		return nil, fmt.Errorf("index new document: %w", err)
	}

	err = s.fsys.WriteFile(dst, content, filePerm)
	if err != nil {
		return nil, fmt.Errorf("index new document: write %s: %w", dst, err)
	}

	doc.SetFileIdentifier(ident)

	actual, err := s.hashFile(dst)
	if err != nil {
		return nil, fmt.Errorf("index new document: %w", err)
	}

	if nd.Checksum != "" && !strings.EqualFold(nd.Checksum, actual) {
		mismatch := &ChecksumMismatchError{Expected: nd.Checksum, Actual: actual, Path: dst}
		s.log.Warn(ctx, "checksum mismatch", "path", dst, "expected", nd.Checksum, "actual", actual)

		return nil, mismatch
	}

	if nd.Checksum != "" {
		actual = nd.Checksum
	}

	doc.SetChecksum(actual)

	created := nd.DateCreated
	if created.IsZero() {
		created = s.now()
	}

	doc.SetDateCreated(created)

	stored, err := s.Index(ctx, id, doc)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "document stored", "id", id, "file", ident)

	return stored, nil
}

func (s *Store) newDocument(nd NewDocument) (*document.Document, error) {
	if _, ok := nd.Fields[document.FieldDateCreated]; ok {
		return nil, ErrDateCreatedPreset
	}

	if _, ok := nd.Fields["id"]; ok {
		return nil, ErrIDField
	}

	doc := document.New("", nil)

	keys := slices.Sorted(maps.Keys(nd.Fields))
	for _, k := range keys {
		doc.Set(k, nd.Fields[k])
	}

	filename := nd.Filename
	if filename == "" && nd.Path != "" {
		filename = filepath.Base(nd.Path)
	}

	if filename != "" {
		doc.Set(document.FieldFilename, filename)
	}

	doc.SetTitle(nd.Title)
	doc.SetTags(nd.Tags)

	if nd.SourceURL != "" {
		doc.Set(document.FieldSourceURL, nd.SourceURL)
	}

	if !nd.DateSaved.IsZero() {
		doc.SetDateSaved(nd.DateSaved)
	}

	return doc, nil
}

// extension prefers the filename's extension and falls back to sniffing.
// A bare trailing dot and a dot-file name such as ".bashrc" are not
// extensions.
func (s *Store) extension(filename string, content []byte) string {
	base := filepath.Base(filename)

	ext := filepath.Ext(base)
	if ext != "" && ext != "." && ext != base {
		return ext
	}

	return media.ExtensionFor(s.sniffer.GuessMediaType(content))
}
