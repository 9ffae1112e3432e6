package docstore_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/docstore/internal/docstore"
	"github.com/calvinalkan/docstore/internal/document"
)

var fixedNow = time.Date(2024, 3, 9, 12, 30, 0, 0, time.UTC)

type fakeSniffer struct{ mediaType string }

func (f fakeSniffer) GuessMediaType([]byte) string { return f.mediaType }

// fakeThumbnailer writes a small file with ext into dir for every call.
type fakeThumbnailer struct {
	dir string

	mu    sync.Mutex
	ext   string
	err   error
	calls int
}

func (f *fakeThumbnailer) CreateThumbnail(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++

	if f.err != nil {
		return "", f.err
	}

	out := filepath.Join(f.dir, fmt.Sprintf("thumb-%d%s", f.calls, f.ext))

	err := os.WriteFile(out, []byte("thumbnail of "+filepath.Base(path)), 0o644)
	if err != nil {
		return "", err
	}

	return out, nil
}

func (f *fakeThumbnailer) set(ext string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ext = ext
	f.err = err
}

type recordingMirror struct {
	mu      sync.Mutex
	indexed []string
	deleted []string
	err     error
}

func (m *recordingMirror) Index(_ context.Context, doc *document.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.indexed = append(m.indexed, doc.ID)

	return m.err
}

func (m *recordingMirror) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleted = append(m.deleted, id)

	return m.err
}

// idSequence hands out ids in order, then random UUIDs.
func idSequence(ids ...string) func() string {
	var mu sync.Mutex

	return func() string {
		mu.Lock()
		defer mu.Unlock()

		if len(ids) == 0 {
			return uuid.NewString()
		}

		id := ids[0]
		ids = ids[1:]

		return id
	}
}

type testStore struct {
	*docstore.Store

	root  string
	thumb *fakeThumbnailer
}

func newTestStore(t *testing.T, opts docstore.Options) *testStore {
	t.Helper()

	root := t.TempDir()
	thumb := &fakeThumbnailer{dir: t.TempDir(), ext: ".png"}

	if opts.Thumbnailer == nil {
		opts.Thumbnailer = thumb
	}

	if opts.Sniffer == nil {
		opts.Sniffer = fakeSniffer{}
	}

	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}

	store, err := docstore.Open(root, opts)
	require.NoError(t, err)

	return &testStore{Store: store, root: root, thumb: thumb}
}

func (s *testStore) reopen(t *testing.T) *docstore.Store {
	t.Helper()

	store, err := docstore.Open(s.root, docstore.Options{Sniffer: fakeSniffer{}, Thumbnailer: s.thumb})
	require.NoError(t, err)

	return store
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:])
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return data
}

func ids(docs []*document.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}

	return out
}
