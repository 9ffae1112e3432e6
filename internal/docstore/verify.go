package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
)

// FileStatus is the outcome of checking one stored file.
type FileStatus string

const (
	StatusOK         FileStatus = "ok"
	StatusMissing    FileStatus = "missing"
	StatusModified   FileStatus = "modified"
	StatusNoChecksum FileStatus = "no-checksum" // nothing recorded to compare against
)

// FileReport is the result for one file of one document.
type FileReport struct {
	ID         string
	Identifier string
	Expected   string
	Actual     string
	Status     FileStatus
}

// Verify re-hashes every primary and secondary file and compares it with
// the recorded SHA-256. At most workers files are hashed at once. Reports
// are ordered by document id, primary file first. Verify never modifies the
// store.
func (s *Store) Verify(ctx context.Context, workers int) ([]FileReport, error) {
	if workers < 1 {
		workers = 1
	}

	var reports []FileReport

	for _, doc := range s.All() {
		for _, ref := range doc.Files() {
			reports = append(reports, FileReport{ID: doc.ID, Identifier: ref.Identifier, Expected: ref.Checksum})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range reports {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			return s.verifyFile(&reports[i])
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	return reports, nil
}

func (s *Store) verifyFile(r *FileReport) error {
	sum, err := s.hashFile(s.FilePath(r.Identifier))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.Status = StatusMissing

			return nil
		}

		return err
	}

	r.Actual = sum

	switch {
	case r.Expected == "":
		r.Status = StatusNoChecksum
	case strings.EqualFold(r.Expected, sum):
		r.Status = StatusOK
	default:
		r.Status = StatusModified
	}

	return nil
}
