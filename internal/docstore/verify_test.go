package docstore_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/docstore/internal/docstore"
)

func Test_Verify_Reports_Each_File_Status(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	s := newTestStore(t, docstore.Options{NewID: idSequence("a1", "b1", "c1", "d1")})

	for _, name := range []string{"ok.txt", "gone.txt", "edited.txt"} {
		_, err := s.IndexNew(ctx, docstore.NewDocument{Data: []byte(name), Filename: name})
		require.NoError(t, err)
	}

	gone, err := s.Get("b1")
	require.NoError(t, err)
	require.NoError(t, os.Remove(s.FilePath(gone.FileIdentifier())))

	edited, err := s.Get("c1")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.FilePath(edited.FileIdentifier()), []byte("changed"), 0o644))

	// A document whose checksum was never recorded.
	unchecked, err := s.IndexNew(ctx, docstore.NewDocument{Data: []byte("x"), Filename: "x.txt"})
	require.NoError(t, err)
	unchecked.Set("sha256_checksum", "")
	_, err = s.Index(ctx, unchecked.ID, unchecked)
	require.NoError(t, err)

	reports, err := s.Verify(ctx, 2)
	require.NoError(t, err)
	require.Len(t, reports, 4)

	statuses := make(map[string]docstore.FileStatus)
	for _, r := range reports {
		statuses[r.ID] = r.Status
	}

	assert.Equal(t, map[string]docstore.FileStatus{
		"a1": docstore.StatusOK,
		"b1": docstore.StatusMissing,
		"c1": docstore.StatusModified,
		"d1": docstore.StatusNoChecksum,
	}, statuses)

	assert.Equal(t, []string{"a1", "b1", "c1", "d1"}, []string{reports[0].ID, reports[1].ID, reports[2].ID, reports[3].ID})
	assert.Equal(t, sha256Hex([]byte("changed")), reports[2].Actual)
}

func Test_Verify_Checks_Secondary_Files(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	s := newTestStore(t, docstore.Options{NewID: idSequence("e1", "f1")})

	for _, name := range []string{"p.txt", "q.txt"} {
		_, err := s.IndexNew(ctx, docstore.NewDocument{Data: []byte(name), Filename: name})
		require.NoError(t, err)
	}

	merged, err := s.Merge(ctx, []string{"e1", "f1"}, docstore.MergeOptions{})
	require.NoError(t, err)

	secondary := merged.SecondaryFiles()
	require.Len(t, secondary, 1)
	require.NoError(t, os.WriteFile(s.FilePath(secondary[0].Identifier), []byte("rot"), 0o644))

	reports, err := s.Verify(ctx, 0)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, docstore.StatusOK, reports[0].Status)
	assert.Equal(t, secondary[0].Identifier, reports[1].Identifier)
	assert.Equal(t, docstore.StatusModified, reports[1].Status)
}
