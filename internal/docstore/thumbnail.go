package docstore

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/calvinalkan/docstore/internal/document"
)

// AttachThumbnail renders a thumbnail for the document's primary file,
// stores it at thumbnails/<id[0]>/<id><ext> and re-indexes the document.
// Running it again replaces the previous thumbnail.
//
// Render failures (including media.ErrUnsupportedMediaType) are wrapped in
// [ErrThumbnailFailed]; the document and any old thumbnail stay as they were.
func (s *Store) AttachThumbnail(ctx context.Context, id string) (*document.Document, error) {
	doc, err := s.Get(id)
	if err != nil {
		return nil, fmt.Errorf("attach thumbnail: %w", err)
	}

	ident := doc.FileIdentifier()
	if ident == "" {
		return nil, fmt.Errorf("attach thumbnail %s: %w", id, ErrNoFile)
	}

	rendered, err := s.thumbnailer.CreateThumbnail(ctx, s.FilePath(ident))
	if err != nil {
		s.log.Debug(ctx, "thumbnail failed", "id", id, "error", err)

		return nil, fmt.Errorf("%w for %s: %w", ErrThumbnailFailed, id, err)
	}

	if old := doc.ThumbnailIdentifier(); old != "" {
		_, err = s.removeIfExists(s.ThumbnailPath(old))
		if err != nil {
			_, _ = s.removeIfExists(rendered)

			return nil, fmt.Errorf("attach thumbnail %s: %w", id, err)
		}
	}

	thumbIdent := storageName(id, filepath.Ext(rendered))
	dst := s.ThumbnailPath(thumbIdent)

	err = s.fsys.MkdirAll(filepath.Dir(dst), dirPerm)
	if err != nil {
		return nil, fmt.Errorf("attach thumbnail %s: %w", id, err)
	}

	err = s.moveFile(rendered, dst)
	if err != nil {
		return nil, fmt.Errorf("attach thumbnail %s: %w", id, err)
	}

	doc.SetThumbnailIdentifier(thumbIdent)

	return s.Index(ctx, id, doc)
}
