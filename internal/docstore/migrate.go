package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/calvinalkan/docstore/internal/document"
)

// v1Document is a record from a version 1 store. v1 kept files flat under
// files/ and source URLs inside user_data.
type v1Document struct {
	FileIdentifier string   `json:"file_identifier"`
	Filename       string   `json:"filename"`
	Title          string   `json:"title"`
	Tags           []string `json:"tags"`
	DateCreated    string   `json:"date_created"`
	UserData       struct {
		SourceURL string `json:"source_url"`
	} `json:"user_data"`
}

// MigratedDocument links a v1 record to the document it became.
type MigratedDocument struct {
	V1ID     string
	ID       string
	Filename string
}

// MigrateResult summarises [Migrate].
type MigrateResult struct {
	Imported []MigratedDocument
	// Skipped lists v1 ids whose file is missing.
	Skipped []string
}

// Migrate imports every document of the v1 store at v1Root into dst, in v1
// id order, keeping title, tags, source URL and creation date. The v1 store
// is only read. Documents whose file is gone are skipped; a thumbnail that
// cannot be made is logged and does not stop the import.
func Migrate(ctx context.Context, dst *Store, v1Root string) (MigrateResult, error) {
	var result MigrateResult

	blob, err := dst.fsys.ReadFile(filepath.Join(v1Root, dbFileName))
	if err != nil {
		return result, fmt.Errorf("migrate: %w", err)
	}

	var records map[string]v1Document

	err = json.Unmarshal(blob, &records)
	if err != nil {
		return result, fmt.Errorf("migrate: decode %s: %w", v1Root, err)
	}

	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	for _, v1ID := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		rec := records[v1ID]

		imported, skipped, err := migrateOne(ctx, dst, v1Root, v1ID, rec)
		if err != nil {
			return result, err
		}

		if skipped {
			result.Skipped = append(result.Skipped, v1ID)

			continue
		}

		result.Imported = append(result.Imported, imported)
	}

	return result, nil
}

func migrateOne(ctx context.Context, dst *Store, v1Root, v1ID string, rec v1Document) (MigratedDocument, bool, error) {
	if rec.FileIdentifier == "" {
		dst.log.Warn(ctx, "v1 document has no file, skipping", "v1_id", v1ID)

		return MigratedDocument{}, true, nil
	}

	src := filepath.Join(v1Root, "files", filepath.FromSlash(rec.FileIdentifier))

	exists, err := dst.fsys.Exists(src)
	if err != nil {
		return MigratedDocument{}, false, fmt.Errorf("migrate %s: %w", v1ID, err)
	}

	if !exists {
		dst.log.Warn(ctx, "v1 file missing, skipping", "v1_id", v1ID, "path", src)

		return MigratedDocument{}, true, nil
	}

	filename := rec.Filename
	if filename == "" {
		filename = path.Base(rec.FileIdentifier)
	}

	var created time.Time

	if rec.DateCreated != "" {
		created, err = document.ParseTime(rec.DateCreated)
		if err != nil {
			return MigratedDocument{}, false, fmt.Errorf("migrate %s: date_created: %w", v1ID, err)
		}
	}

	doc, err := dst.StoreNew(ctx, NewDocument{
		Path:        src,
		Filename:    filename,
		Title:       rec.Title,
		Tags:        rec.Tags,
		SourceURL:   rec.UserData.SourceURL,
		DateCreated: created,
	})
	if err != nil && !errors.Is(err, ErrThumbnailFailed) {
		return MigratedDocument{}, false, fmt.Errorf("migrate %s: %w", v1ID, err)
	}

	return MigratedDocument{V1ID: v1ID, ID: doc.ID, Filename: filename}, false, nil
}
