// Package media inspects and renders stored files: magic-byte media type
// sniffing for ingestion and thumbnail generation for the document store.
package media

import (
	"mime"

	"github.com/gabriel-vasile/mimetype"
)

// Sniffer guesses a media type from content.
type Sniffer interface {
	// GuessMediaType returns a media type without parameters, e.g.
	// "image/jpeg", or "" when the content is not recognised.
	GuessMediaType(data []byte) string
}

// MagicSniffer implements [Sniffer] with magic-byte inspection.
type MagicSniffer struct{}

// NewMagicSniffer returns a [MagicSniffer].
func NewMagicSniffer() *MagicSniffer {
	return &MagicSniffer{}
}

func (*MagicSniffer) GuessMediaType(data []byte) string {
	mt := baseType(mimetype.Detect(data).String())
	if mt == "application/octet-stream" {
		return ""
	}

	return mt
}

// ExtensionFor returns the conventional file extension for a media type,
// including the dot, or "" if there is none. JPEG always maps to ".jpg".
func ExtensionFor(mediaType string) string {
	mediaType = baseType(mediaType)

	switch mediaType {
	case "":
		return ""
	case "image/jpeg":
		return ".jpg"
	}

	m := mimetype.Lookup(mediaType)
	if m == nil {
		return ""
	}

	return m.Extension()
}

// baseType strips parameters such as "; charset=utf-8".
func baseType(mediaType string) string {
	if mediaType == "" {
		return ""
	}

	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return mediaType
	}

	return mt
}

var _ Sniffer = (*MagicSniffer)(nil)
