// Package docstore is the tagged document store: documents.json plus the
// sharded files/ and thumbnails/ trees under one root directory.
//
// Layout:
//
//	<root>/documents.json                  id -> fields, pretty-printed, sorted keys
//	<root>/files/<id[0]>/<id><ext>          primary file
//	<root>/files/<id[0]>/<id>_<n><ext>      files merged in from other documents
//	<root>/thumbnails/<id[0]>/<id><ext>     thumbnail
//
// File and thumbnail identifiers stored on documents are slash-separated and
// relative to files/ and thumbnails/ respectively.
//
// One process owns a root at a time; there is no cross-process locking.
package docstore

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/calvinalkan/docstore/internal/document"
	"github.com/calvinalkan/docstore/internal/fs"
	"github.com/calvinalkan/docstore/internal/logging"
	"github.com/calvinalkan/docstore/internal/media"
	"github.com/calvinalkan/docstore/internal/objectstore"
)

const (
	dbFileName    = "documents.json"
	filesDirName  = "files"
	thumbsDirName = "thumbnails"

	dirPerm  = 0o755
	filePerm = 0o644
)

// Mirror receives every committed change. It is not authoritative: the store
// logs mirror failures and carries on.
type Mirror interface {
	Index(ctx context.Context, doc *document.Document) error
	Delete(ctx context.Context, id string) error
}

// Options configures [Open]. Zero fields get defaults.
type Options struct {
	FS          fs.FS             // default fs.NewReal()
	Logger      logging.Logger    // default logging.Nop()
	Sniffer     media.Sniffer     // default media.NewMagicSniffer()
	Thumbnailer media.Thumbnailer // default &media.Generator{}
	Mirror      Mirror            // optional
	Now         func() time.Time  // default time.Now
	NewID       func() string     // default random UUID (hex, so the shard is [0-9a-f])
}

// Store is a handle on one document store root.
type Store struct {
	root        string
	fsys        fs.FS
	log         logging.Logger
	sniffer     media.Sniffer
	thumbnailer media.Thumbnailer
	mirror      Mirror
	now         func() time.Time
	newID       func() string

	docs *objectstore.TaggedStore[*document.Data]
}

// Open opens (or initialises) the store at root, creating files/ and
// thumbnails/ when missing. A malformed documents.json is an error.
func Open(root string, opts Options) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("open docstore: root is empty")
	}

	if opts.FS == nil {
		opts.FS = fs.NewReal()
	}

	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	if opts.Sniffer == nil {
		opts.Sniffer = media.NewMagicSniffer()
	}

	if opts.Thumbnailer == nil {
		opts.Thumbnailer = &media.Generator{}
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	for _, dir := range []string{filepath.Join(root, filesDirName), filepath.Join(root, thumbsDirName)} {
		err := opts.FS.MkdirAll(dir, dirPerm)
		if err != nil {
			return nil, fmt.Errorf("open docstore: %w", err)
		}
	}

	backing, err := objectstore.OpenJSON[*document.Data](opts.FS, filepath.Join(root, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("open docstore: %w", err)
	}

	return &Store{
		root:        root,
		fsys:        opts.FS,
		log:         opts.Logger,
		sniffer:     opts.Sniffer,
		thumbnailer: opts.Thumbnailer,
		mirror:      opts.Mirror,
		now:         opts.Now,
		newID:       opts.NewID,
		docs:        objectstore.NewTagged[*document.Data](backing),
	}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// DBPath returns the path of documents.json.
func (s *Store) DBPath() string { return filepath.Join(s.root, dbFileName) }

// FilesDir returns the root of the files tree.
func (s *Store) FilesDir() string { return filepath.Join(s.root, filesDirName) }

// ThumbnailsDir returns the root of the thumbnails tree.
func (s *Store) ThumbnailsDir() string { return filepath.Join(s.root, thumbsDirName) }

// FilePath resolves a file identifier to a filesystem path.
func (s *Store) FilePath(ident string) string {
	return filepath.Join(s.FilesDir(), filepath.FromSlash(ident))
}

// ThumbnailPath resolves a thumbnail identifier to a filesystem path.
func (s *Store) ThumbnailPath(ident string) string {
	return filepath.Join(s.ThumbnailsDir(), filepath.FromSlash(ident))
}

// Index stores doc under id, replacing any existing entry (last write wins).
// An empty id falls back to doc's own ID, then to a fresh one.
//
// doc may be a *document.Document, document.Document, *document.Data or
// map[string]any; anything else is [document.ErrNotDocument].
//
// date_created is stamped when absent. When id already exists its stored
// date_created wins over whatever doc carries.
func (s *Store) Index(ctx context.Context, id string, doc any) (*document.Document, error) {
	d, err := document.FromValue(doc)
	if err != nil {
		return nil, fmt.Errorf("index document: %w", err)
	}

	if d.Has("id") {
		return nil, fmt.Errorf("index document: %w", ErrIDField)
	}

	if id == "" {
		id = d.ID
	}

	if id == "" {
		id = s.newID()
	}

	if id == "" {
		return nil, fmt.Errorf("index document: id generator returned an empty id")
	}

	data := d.Data().Clone()

	if prev, getErr := s.docs.Get(id); getErr == nil {
		if created, ok := prev.Get(document.FieldDateCreated); ok {
			data.Set(document.FieldDateCreated, created)
		}
	}

	if _, ok := data.Get(document.FieldDateCreated); !ok {
		data.Set(document.FieldDateCreated, document.FormatTime(s.now()))
	}

	err = s.docs.Put(id, data)
	if err != nil {
		return nil, fmt.Errorf("index document %s: %w", id, err)
	}

	stored := document.FromData(id, data.Clone())

	s.log.Debug(ctx, "document indexed", "id", id, "tags", len(stored.Tags()))

	if s.mirror != nil {
		if mirrorErr := s.mirror.Index(ctx, stored.Clone()); mirrorErr != nil {
			s.log.Warn(ctx, "search mirror index failed", "id", id, "error", mirrorErr)
		}
	}

	return stored, nil
}

// Get returns a copy of the document stored under id, or [ErrNotFound].
func (s *Store) Get(id string) (*document.Document, error) {
	data, err := s.docs.Get(id)
	if err != nil {
		return nil, err
	}

	return document.FromData(id, data.Clone()), nil
}

// Search returns copies of the documents whose tags include every tag in
// tags, ordered by id. No tags matches every document.
func (s *Store) Search(tags []string) []*document.Document {
	return sortedDocuments(s.docs.Query(tags))
}

// All returns every document ordered by id.
func (s *Store) All() []*document.Document {
	return sortedDocuments(s.docs.Objects())
}

// Documents returns a snapshot of all documents keyed by id.
func (s *Store) Documents() map[string]*document.Document {
	objects := s.docs.Objects()
	out := make(map[string]*document.Document, len(objects))

	for id, data := range objects {
		out[id] = document.FromData(id, data.Clone())
	}

	return out
}

// Delete removes the document record. Its files stay on disk; use
// [Store.RemoveFiles] for that.
func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.docs.Delete(id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	s.log.Info(ctx, "document deleted", "id", id)

	if s.mirror != nil {
		if mirrorErr := s.mirror.Delete(ctx, id); mirrorErr != nil {
			s.log.Warn(ctx, "search mirror delete failed", "id", id, "error", mirrorErr)
		}
	}

	return nil
}

// TagCounts returns how many documents carry each tag.
func (s *Store) TagCounts() map[string]int {
	counts := make(map[string]int)

	for _, data := range s.docs.Objects() {
		seen := make(map[string]bool)

		for _, tag := range data.TagList() {
			if seen[tag] {
				continue
			}

			seen[tag] = true
			counts[tag]++
		}
	}

	return counts
}

func sortedDocuments(objects map[string]*document.Data) []*document.Document {
	ids := make([]string, 0, len(objects))
	for id := range objects {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	out := make([]*document.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, document.FromData(id, objects[id].Clone()))
	}

	return out
}

// storageName returns "<id[0]>/<id><suffix>".
func storageName(id, suffix string) string {
	return path.Join(id[:1], id+suffix)
}
