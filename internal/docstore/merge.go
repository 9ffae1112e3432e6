package docstore

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/calvinalkan/docstore/internal/document"
)

// TitleCandidates returns the distinct non-empty titles of docs, most
// frequent first; ties keep first-seen order.
func TitleCandidates(docs []*document.Document) []string {
	counts := make(map[string]int)

	var order []string

	for _, doc := range docs {
		title := doc.Title()
		if title == "" {
			continue
		}

		if counts[title] == 0 {
			order = append(order, title)
		}

		counts[title]++
	}

	slices.SortStableFunc(order, func(a, b string) int {
		return counts[b] - counts[a]
	})

	return order
}

// UnionOfTags returns every tag of docs once, in first-seen order. agreed
// reports whether all docs already carry exactly that tag set.
func UnionOfTags(docs []*document.Document) (tags []string, agreed bool) {
	seen := make(map[string]bool)
	tags = []string{}

	for _, doc := range docs {
		for _, tag := range doc.Tags() {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}

	agreed = true

	for _, doc := range docs {
		own := make(map[string]bool)
		for _, tag := range doc.Tags() {
			own[tag] = true
		}

		if len(own) != len(seen) {
			agreed = false

			break
		}
	}

	return tags, agreed
}

// ResolveTitle picks the merged title: explicit when non-empty, else the
// only candidate, else "" when no document has a title. Several candidates
// and no explicit choice is [ErrTitleRequired].
func ResolveTitle(docs []*document.Document, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	candidates := TitleCandidates(docs)

	switch len(candidates) {
	case 0:
		return "", nil
	case 1:
		return candidates[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrTitleRequired, strings.Join(candidates, ", "))
	}
}

// MergeOptions controls [Store.Merge].
type MergeOptions struct {
	// Title is the merged title; empty resolves it with [ResolveTitle].
	Title string
	// Tags are the merged tags; nil means [UnionOfTags].
	Tags []string
}

// Merge folds every document in ids into the first one and returns the
// survivor. Duplicate ids are ignored.
func (s *Store) Merge(ctx context.Context, ids []string, opts MergeOptions) (*document.Document, error) {
	ids = dedupe(ids)
	if len(ids) < 2 {
		return nil, fmt.Errorf("merge: %w", ErrMergeTooFew)
	}

	docs := make([]*document.Document, 0, len(ids))

	for _, id := range ids {
		doc, err := s.Get(id)
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}

		docs = append(docs, doc)
	}

	title, err := ResolveTitle(docs, opts.Title)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	tags := opts.Tags
	if tags == nil {
		tags, _ = UnionOfTags(docs)
	}

	var merged *document.Document

	for _, id := range ids[1:] {
		merged, err = s.MergePair(ctx, ids[0], id, title, tags)
		if err != nil {
			return nil, err
		}
	}

	return merged, nil
}

// MergePair folds the document foldID into keepID.
//
// Every file of foldID is copied next to keepID's primary file as
// <keepID>_<n><ext> and recorded as a secondary file. keepID then gets title
// and tags and is re-indexed, foldID's record is deleted, and last foldID's
// old files and thumbnail are removed. A crash part-way leaves extra copies
// behind, never fewer files.
func (s *Store) MergePair(ctx context.Context, keepID, foldID, title string, tags []string) (*document.Document, error) {
	if keepID == foldID {
		return nil, fmt.Errorf("merge %s into itself: %w", keepID, ErrMergeTooFew)
	}

	keep, err := s.Get(keepID)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	fold, err := s.Get(foldID)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	secondary := keep.SecondaryFiles()
	taken := make(map[string]bool)

	for _, ref := range keep.Files() {
		taken[ref.Identifier] = true
	}

	n := len(secondary)

	for _, ref := range fold.Files() {
		var ident string

		for {
			n++
			ident = storageName(keepID, "_"+strconv.Itoa(n)+path.Ext(ref.Identifier))

			exists, existsErr := s.fsys.Exists(s.FilePath(ident))
			if existsErr != nil {
				return nil, fmt.Errorf("merge: %w", existsErr)
			}

			if !taken[ident] && !exists {
				break
			}
		}

		err = s.fsys.MkdirAll(filepath.Dir(s.FilePath(ident)), dirPerm)
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}

		err = s.copyFile(s.FilePath(ref.Identifier), s.FilePath(ident))
		if err != nil {
			return nil, fmt.Errorf("merge %s into %s: %w", foldID, keepID, err)
		}

		sum := ref.Checksum
		if sum == "" {
			sum, err = s.hashFile(s.FilePath(ident))
			if err != nil {
				return nil, fmt.Errorf("merge: %w", err)
			}
		}

		taken[ident] = true
		secondary = append(secondary, document.FileRef{Identifier: ident, Checksum: sum})
	}

	keep.SetSecondaryFiles(secondary)
	keep.SetTitle(title)
	keep.SetTags(tags)

	merged, err := s.Index(ctx, keepID, keep)
	if err != nil {
		return nil, fmt.Errorf("merge %s into %s: %w", foldID, keepID, err)
	}

	err = s.Delete(ctx, foldID)
	if err != nil {
		return nil, fmt.Errorf("merge %s into %s: %w", foldID, keepID, err)
	}

	if rmErr := s.RemoveFiles(ctx, fold); rmErr != nil {
		s.log.Warn(ctx, "merged document files left behind", "id", foldID, "error", rmErr)
	}

	s.log.Info(ctx, "documents merged", "into", keepID, "from", foldID, "files", len(merged.Files()))

	return merged, nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))

	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}

	return out
}
