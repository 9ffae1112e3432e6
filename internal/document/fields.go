package document

import (
	"slices"
	"time"
)

// Well-known field names.
const (
	FieldTitle               = "title"
	FieldTags                = "tags"
	FieldFilename            = "filename"
	FieldSourceURL           = "source_url"
	FieldFileIdentifier      = "file_identifier"
	FieldThumbnailIdentifier = "thumbnail_identifier"
	FieldChecksum            = "sha256_checksum"
	FieldDateCreated         = "date_created"
	FieldDateSaved           = "date_saved"
	FieldSecondaryFiles      = "secondary_files"
)

// Defaults for absent fields, applied by the typed accessors below:
//
//	title, filename, source_url       ""
//	file_identifier, sha256_checksum  ""
//	thumbnail_identifier              ""
//	tags                              empty
//	secondary_files                   empty
//	date_created, date_saved          zero time, ok=false
//
// A present field of the wrong type reads as its default. The generic
// [Document.Get] never applies defaults.

// FileRef points at one stored file. Identifiers are slash-separated paths
// relative to the store's files directory.
type FileRef struct {
	Identifier string `json:"file_identifier"`
	Checksum   string `json:"sha256_checksum,omitempty"`
}

func (d *Document) stringField(key string) string {
	v, _ := d.data.Get(key)
	s, _ := v.(string)

	return s
}

// Title returns the title.
func (d *Document) Title() string { return d.stringField(FieldTitle) }

// SetTitle sets the title.
func (d *Document) SetTitle(title string) { d.Set(FieldTitle, title) }

// Tags returns the tags in stored order.
func (d *Document) Tags() []string {
	tags := d.data.TagList()
	if tags == nil {
		return []string{}
	}

	return tags
}

// SetTags replaces the tags.
func (d *Document) SetTags(tags []string) {
	if tags == nil {
		tags = []string{}
	}

	d.Set(FieldTags, slices.Clone(tags))
}

// Filename returns the user-supplied original filename.
func (d *Document) Filename() string { return d.stringField(FieldFilename) }

// SourceURL returns where the file was downloaded from.
func (d *Document) SourceURL() string { return d.stringField(FieldSourceURL) }

// FileIdentifier returns the primary file's identifier.
func (d *Document) FileIdentifier() string { return d.stringField(FieldFileIdentifier) }

// SetFileIdentifier sets the primary file's identifier.
func (d *Document) SetFileIdentifier(id string) { d.Set(FieldFileIdentifier, id) }

// ThumbnailIdentifier returns the thumbnail's identifier.
func (d *Document) ThumbnailIdentifier() string { return d.stringField(FieldThumbnailIdentifier) }

// SetThumbnailIdentifier sets the thumbnail's identifier.
func (d *Document) SetThumbnailIdentifier(id string) { d.Set(FieldThumbnailIdentifier, id) }

// Checksum returns the primary file's hex SHA-256.
func (d *Document) Checksum() string { return d.stringField(FieldChecksum) }

// SetChecksum sets the primary file's hex SHA-256.
func (d *Document) SetChecksum(sum string) { d.Set(FieldChecksum, sum) }

// DateCreated returns when the document was first stored.
func (d *Document) DateCreated() (time.Time, bool) {
	return d.timeField(FieldDateCreated)
}

// SetDateCreated sets date_created.
func (d *Document) SetDateCreated(t time.Time) { d.Set(FieldDateCreated, FormatTime(t)) }

// DateSaved returns when the file was saved by the user, if recorded.
func (d *Document) DateSaved() (time.Time, bool) {
	return d.timeField(FieldDateSaved)
}

// SetDateSaved sets date_saved.
func (d *Document) SetDateSaved(t time.Time) { d.Set(FieldDateSaved, FormatTime(t)) }

func (d *Document) timeField(key string) (time.Time, bool) {
	s := d.stringField(key)
	if s == "" {
		return time.Time{}, false
	}

	t, err := ParseTime(s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// SecondaryFiles returns files merged in from other documents.
func (d *Document) SecondaryFiles() []FileRef {
	v, _ := d.data.Get(FieldSecondaryFiles)

	list, ok := v.([]any)
	if !ok {
		return nil
	}

	refs := make([]FileRef, 0, len(list))

	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}

		ident, _ := m[FieldFileIdentifier].(string)
		if ident == "" {
			continue
		}

		sum, _ := m[FieldChecksum].(string)
		refs = append(refs, FileRef{Identifier: ident, Checksum: sum})
	}

	return refs
}

// SetSecondaryFiles replaces the secondary file list. The value is stored in
// the same shape JSON decoding produces.
func (d *Document) SetSecondaryFiles(refs []FileRef) {
	list := make([]any, 0, len(refs))

	for _, ref := range refs {
		m := map[string]any{FieldFileIdentifier: ref.Identifier}
		if ref.Checksum != "" {
			m[FieldChecksum] = ref.Checksum
		}

		list = append(list, m)
	}

	d.Set(FieldSecondaryFiles, list)
}

// Files returns the primary file (if any) followed by the secondary files.
func (d *Document) Files() []FileRef {
	var refs []FileRef

	if ident := d.FileIdentifier(); ident != "" {
		refs = append(refs, FileRef{Identifier: ident, Checksum: d.Checksum()})
	}

	return append(refs, d.SecondaryFiles()...)
}
