package mirror_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/docstore/internal/docstore"
	"github.com/calvinalkan/docstore/internal/document"
	"github.com/calvinalkan/docstore/internal/mirror"
)

func openMirror(t *testing.T) (*mirror.SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "index.sqlite")

	m, err := mirror.Open(t.Context(), path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = m.Close() })

	return m, path
}

func doc(id, title string, tags ...string) *document.Document {
	return document.New(id, map[string]any{"title": title, "tags": tags})
}

func Test_Mirror_Index_Search_And_Delete(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	m, _ := openMirror(t)

	require.NoError(t, m.Index(ctx, doc("a", "A", "foo", "bar")))
	require.NoError(t, m.Index(ctx, doc("b", "B", "foo")))
	require.NoError(t, m.Index(ctx, doc("c", "C", "bar", "bar")))

	got, err := m.Search(ctx, []string{"foo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	got, err = m.Search(ctx, []string{"bar", "foo", "foo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)

	got, err = m.Search(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)

	// Re-indexing replaces tags.
	require.NoError(t, m.Index(ctx, doc("a", "A", "qux")))

	got, err = m.Search(ctx, []string{"foo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, got)

	require.NoError(t, m.Delete(ctx, "b"))
	require.NoError(t, m.Delete(ctx, "never-existed"))

	got, err = m.Search(ctx, []string{"foo"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func Test_Mirror_Rebuild_Replaces_Contents(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	m, path := openMirror(t)

	require.NoError(t, m.Index(ctx, doc("stale", "S", "x")))

	n, err := m.Rebuild(ctx, []*document.Document{doc("a", "A", "x"), doc("b", "B")})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := m.Search(ctx, []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)

	defer db.Close()

	var title string
	require.NoError(t, db.QueryRowContext(ctx, "SELECT title FROM documents WHERE id = ?", "b").Scan(&title))
	assert.Equal(t, "B", title)
}

func Test_Mirror_Follows_Store_Changes(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	m, _ := openMirror(t)

	s, err := docstore.Open(t.TempDir(), docstore.Options{Mirror: m})
	require.NoError(t, err)

	kept, err := s.Index(ctx, "", map[string]any{"tags": []string{"foo", "bar"}})
	require.NoError(t, err)

	dropped, err := s.Index(ctx, "", map[string]any{"tags": []string{"foo"}})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, dropped.ID))

	got, err := m.Search(ctx, []string{"foo"})
	require.NoError(t, err)
	assert.Equal(t, []string{kept.ID}, got)
}

func Test_Open_Fails_On_Empty_Path(t *testing.T) {
	t.Parallel()

	_, err := mirror.Open(t.Context(), "")
	require.Error(t, err)
}
