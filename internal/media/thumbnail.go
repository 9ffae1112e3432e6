package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Thumbnailer renders a representative image for a stored file.
type Thumbnailer interface {
	// CreateThumbnail renders path into a new temporary image file and
	// returns its path. The caller owns (and must move or delete) the
	// result. Content that cannot be rendered yields [ErrUnsupportedMediaType].
	CreateThumbnail(ctx context.Context, path string) (string, error)
}

const (
	// DefaultThumbnailSize bounds the longest edge of a thumbnail in pixels.
	DefaultThumbnailSize = 400

	defaultPDFToPPM  = "pdftoppm"
	defaultEbookMeta = "ebook-meta"
)

// Generator is the default [Thumbnailer].
//
// Raster images are resized natively, keeping their format; animated GIFs
// stay animated. EPUB covers are read from the archive. PDFs and MOBI files
// are rendered with external tools (poppler's pdftoppm, calibre's ebook-meta);
// a missing tool makes those types unsupported.
type Generator struct {
	// Size bounds the longest edge; zero means [DefaultThumbnailSize].
	Size int
	// TempDir receives thumbnails; empty means [os.TempDir].
	TempDir string
	// PDFToPPM and EbookMeta name the external tools; empty means the
	// default binary names looked up on PATH.
	PDFToPPM  string
	EbookMeta string
}

// CreateThumbnail implements [Thumbnailer].
func (g *Generator) CreateThumbnail(ctx context.Context, path string) (string, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detect media type of %s: %w", path, err)
	}

	kind := baseType(mt.String())
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case kind == "image/gif":
		return g.animated(ctx, path)
	case kind == "image/jpeg":
		return g.raster(path, ".jpg")
	case kind == "image/png", kind == "image/bmp", kind == "image/tiff":
		return g.raster(path, ".png")
	case kind == "application/pdf":
		return g.pdf(ctx, path)
	case kind == "application/epub+zip" || ext == ".epub":
		return g.epub(path)
	case kind == "application/x-mobipocket-ebook" || ext == ".mobi" || ext == ".azw" || ext == ".azw3":
		return g.mobi(ctx, path)
	default:
		return "", fmt.Errorf("%w: %s (%s)", ErrUnsupportedMediaType, kind, filepath.Base(path))
	}
}

func (g *Generator) size() int {
	if g.Size <= 0 {
		return DefaultThumbnailSize
	}

	return g.Size
}

// tempFile creates an empty temp file with the given extension.
func (g *Generator) tempFile(ext string) (string, error) {
	f, err := os.CreateTemp(g.TempDir, "docstore-thumb-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create thumbnail file: %w", err)
	}

	name := f.Name()

	err = f.Close()
	if err != nil {
		_ = os.Remove(name)

		return "", fmt.Errorf("create thumbnail file: %w", err)
	}

	return name, nil
}

var _ Thumbnailer = (*Generator)(nil)
