// Package mirror keeps a disposable SQLite copy of the document store for
// external search tools. documents.json stays authoritative; the mirror can
// be dropped and rebuilt from it at any time.
package mirror

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/calvinalkan/docstore/internal/document"
)

// schemaVersion is stored in SQLite's user_version pragma. A mismatch on
// Open recreates the (empty) schema; run Rebuild to refill it.
const schemaVersion = 1

// sqliteBusyTimeout is the time SQLite waits when the database is locked.
const sqliteBusyTimeout = 10000 // milliseconds

// SQLite mirrors documents into two tables:
//
//	documents(id, title, file_identifier, date_created, data)
//	document_tags(document_id, tag)
//
// data holds the document's fields as JSON.
type SQLite struct {
	db *sql.DB
}

// Open opens or creates the mirror database at path.
func Open(ctx context.Context, path string) (*SQLite, error) {
	db, err := openSQLite(ctx, path)
	if err != nil {
		return nil, err
	}

	version, err := storedSchemaVersion(ctx, db)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	if version != schemaVersion {
		err = withTx(ctx, db, func(tx *sql.Tx) error {
			return recreateSchema(ctx, tx)
		})
		if err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("open mirror: %w", err)
		}
	}

	return &SQLite{db: db}, nil
}

// Close closes the database.
func (m *SQLite) Close() error {
	return m.db.Close()
}

// Index inserts or replaces doc and its tags.
func (m *SQLite) Index(ctx context.Context, doc *document.Document) error {
	return withTx(ctx, m.db, func(tx *sql.Tx) error {
		return upsert(ctx, tx, doc)
	})
}

// Delete removes id. A missing id is not an error.
func (m *SQLite) Delete(ctx context.Context, id string) error {
	return withTx(ctx, m.db, func(tx *sql.Tx) error {
		return remove(ctx, tx, id)
	})
}

// Rebuild replaces the mirror's contents with docs in one transaction and
// returns how many documents were written.
func (m *SQLite) Rebuild(ctx context.Context, docs []*document.Document) (int, error) {
	indexed := 0

	err := withTx(ctx, m.db, func(tx *sql.Tx) error {
		err := recreateSchema(ctx, tx)
		if err != nil {
			return err
		}

		for _, doc := range docs {
			err = upsert(ctx, tx, doc)
			if err != nil {
				return err
			}

			indexed++
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("rebuild mirror: %w", err)
	}

	return indexed, nil
}

// Search returns the ids of documents carrying every tag, ordered by id.
func (m *SQLite) Search(ctx context.Context, tags []string) ([]string, error) {
	tags = distinct(tags)

	query := "SELECT id FROM documents ORDER BY id"
	args := []any{}

	if len(tags) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(tags)), ",")
		query = `SELECT document_id FROM document_tags
			WHERE tag IN (` + placeholders + `)
			GROUP BY document_id
			HAVING COUNT(DISTINCT tag) = ?
			ORDER BY document_id`

		for _, tag := range tags {
			args = append(args, tag)
		}

		args = append(args, len(tags))
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search mirror: %w", err)
	}
	defer rows.Close()

	ids := []string{}

	for rows.Next() {
		var id string

		err = rows.Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("search mirror: %w", err)
		}

		ids = append(ids, id)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("search mirror: %w", err)
	}

	return ids, nil
}

func upsert(ctx context.Context, tx *sql.Tx, doc *document.Document) error {
	if doc == nil || doc.ID == "" {
		return errors.New("mirror document: missing id")
	}

	data, err := doc.Data().MarshalJSON()
	if err != nil {
		return fmt.Errorf("mirror document %s: encode: %w", doc.ID, err)
	}

	var created any

	if ts, ok := doc.DateCreated(); ok {
		created = ts.UnixNano()
	}

	err = remove(ctx, tx, doc.ID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, title, file_identifier, date_created, data)
		VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.Title(), doc.FileIdentifier(), created, string(data))
	if err != nil {
		return fmt.Errorf("mirror document %s: %w", doc.ID, err)
	}

	for _, tag := range distinct(doc.Tags()) {
		_, err = tx.ExecContext(ctx, "INSERT INTO document_tags (document_id, tag) VALUES (?, ?)", doc.ID, tag)
		if err != nil {
			return fmt.Errorf("mirror tag %q for %s: %w", tag, doc.ID, err)
		}
	}

	return nil
}

func remove(ctx context.Context, tx *sql.Tx, id string) error {
	for _, stmt := range []string{
		"DELETE FROM document_tags WHERE document_id = ?",
		"DELETE FROM documents WHERE id = ?",
	} {
		_, err := tx.ExecContext(ctx, stmt, id)
		if err != nil {
			return fmt.Errorf("mirror delete %s: %w", id, err)
		}
	}

	return nil
}

func distinct(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))

	for _, tag := range tags {
		if !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}

	return out
}
