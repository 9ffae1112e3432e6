package docstore_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/docstore/internal/docstore"
	"github.com/calvinalkan/docstore/internal/document"
)

func titled(titles ...string) []*document.Document {
	docs := make([]*document.Document, 0, len(titles))
	for _, title := range titles {
		docs = append(docs, document.New("", map[string]any{"title": title}))
	}

	return docs
}

func tagged(tagSets ...[]string) []*document.Document {
	docs := make([]*document.Document, 0, len(tagSets))
	for _, tags := range tagSets {
		docs = append(docs, document.New("", map[string]any{"tags": tags}))
	}

	return docs
}

func Test_TitleCandidates_Orders_By_Frequency_Then_First_Seen(t *testing.T) {
	t.Parallel()

	cases := []struct {
		titles []string
		want   []string
	}{
		{[]string{"", ""}, nil},
		{[]string{"a", "a"}, []string{"a"}},
		{[]string{"a", "b", "b"}, []string{"b", "a"}},
		{[]string{"c", "a", "b", "a", ""}, []string{"a", "c", "b"}},
	}

	for _, tc := range cases {
		got := docstore.TitleCandidates(titled(tc.titles...))
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("TitleCandidates(%q) mismatch (-want +got):\n%s", tc.titles, diff)
		}
	}
}

func Test_ResolveTitle_Follows_Candidate_Count(t *testing.T) {
	t.Parallel()

	title, err := docstore.ResolveTitle(titled("same", "same", ""), "")
	require.NoError(t, err)
	assert.Equal(t, "same", title)

	title, err = docstore.ResolveTitle(titled("", ""), "")
	require.NoError(t, err)
	assert.Empty(t, title)

	_, err = docstore.ResolveTitle(titled("one", "two"), "")
	require.ErrorIs(t, err, docstore.ErrTitleRequired)

	title, err = docstore.ResolveTitle(titled("one", "two"), "chosen")
	require.NoError(t, err)
	assert.Equal(t, "chosen", title)
}

func Test_UnionOfTags_Deduplicates_In_First_Seen_Order(t *testing.T) {
	t.Parallel()

	tags, agreed := docstore.UnionOfTags(tagged([]string{"a", "b"}, []string{"b", "c"}))
	assert.Equal(t, []string{"a", "b", "c"}, tags)
	assert.False(t, agreed)

	tags, agreed = docstore.UnionOfTags(tagged([]string{"x", "y"}, []string{"y", "x"}))
	assert.Equal(t, []string{"x", "y"}, tags)
	assert.True(t, agreed)

	tags, agreed = docstore.UnionOfTags(tagged(nil, nil))
	assert.Equal(t, []string{}, tags)
	assert.True(t, agreed)
}

func Test_Merge_Keeps_Every_File_And_Unions_Tags(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	s := newTestStore(t, docstore.Options{NewID: idSequence("1111", "2222")})

	d1, err := s.StoreNew(ctx, docstore.NewDocument{Data: []byte("one"), Filename: "one.pdf", Title: "Doc", Tags: []string{"a", "b"}})
	require.NoError(t, err)

	d2, err := s.StoreNew(ctx, docstore.NewDocument{Data: []byte("two"), Filename: "two.epub", Title: "Doc", Tags: []string{"b", "c"}})
	require.NoError(t, err)

	merged, err := s.Merge(ctx, []string{d1.ID, d2.ID}, docstore.MergeOptions{})
	require.NoError(t, err)

	assert.Equal(t, d1.ID, merged.ID)
	assert.Equal(t, "Doc", merged.Title())
	assert.ElementsMatch(t, []string{"a", "b", "c"}, merged.Tags())

	_, err = s.Get(d2.ID)
	require.ErrorIs(t, err, docstore.ErrNotFound)

	want := []document.FileRef{
		{Identifier: "1/1111.pdf", Checksum: sha256Hex([]byte("one"))},
		{Identifier: "1/1111_1.epub", Checksum: sha256Hex([]byte("two"))},
	}
	if diff := cmp.Diff(want, merged.Files()); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []byte("one"), readFile(t, s.FilePath("1/1111.pdf")))
	assert.Equal(t, []byte("two"), readFile(t, s.FilePath("1/1111_1.epub")))

	assert.NoFileExists(t, s.FilePath(d2.FileIdentifier()))
	assert.NoFileExists(t, s.ThumbnailPath(d2.ThumbnailIdentifier()))
	assert.FileExists(t, s.ThumbnailPath(d1.ThumbnailIdentifier()))

	reloaded, err := s.reopen(t).Get(d1.ID)
	require.NoError(t, err)
	assert.True(t, merged.Equal(reloaded))
}

func Test_Merge_Folds_Secondary_Files_Of_Earlier_Merges(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	s := newTestStore(t, docstore.Options{NewID: idSequence("aaaa", "bbbb", "cccc", "dddd")})

	var all []string

	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt"} {
		doc, err := s.IndexNew(ctx, docstore.NewDocument{Data: []byte(name), Filename: name})
		require.NoError(t, err)

		all = append(all, doc.ID)
	}

	_, err := s.Merge(ctx, []string{"cccc", "dddd"}, docstore.MergeOptions{})
	require.NoError(t, err)

	merged, err := s.Merge(ctx, []string{"aaaa", "bbbb", "cccc"}, docstore.MergeOptions{Title: "All", Tags: []string{"t"}})
	require.NoError(t, err)

	assert.Equal(t, "All", merged.Title())
	assert.Equal(t, []string{"t"}, merged.Tags())
	assert.Equal(t, []string{"aaaa"}, ids(s.All()))

	files := merged.Files()
	require.Len(t, files, len(all))

	var contents []string
	for _, ref := range files {
		contents = append(contents, string(readFile(t, s.FilePath(ref.Identifier))))
	}

	assert.ElementsMatch(t, []string{"a.txt", "b.txt", "c.txt", "d.txt"}, contents)
}

func Test_Merge_Refuses_Ambiguous_Title_Without_Changes(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	s := newTestStore(t, docstore.Options{})

	d1, err := s.IndexNew(ctx, docstore.NewDocument{Data: []byte("1"), Title: "One"})
	require.NoError(t, err)

	d2, err := s.IndexNew(ctx, docstore.NewDocument{Data: []byte("2"), Title: "Two"})
	require.NoError(t, err)

	_, err = s.Merge(ctx, []string{d1.ID, d2.ID}, docstore.MergeOptions{})
	require.ErrorIs(t, err, docstore.ErrTitleRequired)

	assert.Len(t, s.All(), 2)
}

func Test_Merge_Needs_Two_Existing_Documents(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	s := newTestStore(t, docstore.Options{})

	d1, err := s.IndexNew(ctx, docstore.NewDocument{Data: []byte("1")})
	require.NoError(t, err)

	_, err = s.Merge(ctx, []string{d1.ID}, docstore.MergeOptions{})
	require.ErrorIs(t, err, docstore.ErrMergeTooFew)

	_, err = s.Merge(ctx, []string{d1.ID, d1.ID}, docstore.MergeOptions{})
	require.ErrorIs(t, err, docstore.ErrMergeTooFew)

	_, err = s.Merge(ctx, []string{d1.ID, "missing"}, docstore.MergeOptions{})
	require.ErrorIs(t, err, docstore.ErrNotFound)

	_, err = s.MergePair(ctx, d1.ID, d1.ID, "", nil)
	require.ErrorIs(t, err, docstore.ErrMergeTooFew)

	assert.Len(t, s.All(), 1)
}
