package docstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/calvinalkan/docstore/internal/document"
)

// RemoveFiles deletes doc's primary, secondary and thumbnail files. Files
// that are already gone are ignored; other failures are joined.
func (s *Store) RemoveFiles(ctx context.Context, doc *document.Document) error {
	paths := make([]string, 0, 4)

	for _, ref := range doc.Files() {
		paths = append(paths, s.FilePath(ref.Identifier))
	}

	if thumb := doc.ThumbnailIdentifier(); thumb != "" {
		paths = append(paths, s.ThumbnailPath(thumb))
	}

	var errs []error

	for _, p := range paths {
		removed, err := s.removeIfExists(p)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		if removed {
			s.log.Info(ctx, "file removed", "id", doc.ID, "path", p)
		}
	}

	return errors.Join(errs...)
}

func (s *Store) removeIfExists(path string) (bool, error) {
	err := s.fsys.Remove(path)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, fmt.Errorf("remove %s: %w", path, err)
}

func (s *Store) hashFile(path string) (string, error) {
	f, err := s.fsys.Open(path)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()

	_, err = io.Copy(h, f)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func (s *Store) copyFile(src, dst string) (err error) {
	in, err := s.fsys.Open(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	defer in.Close()

	out, err := s.fsys.Create(dst)
	if err != nil {
		return fmt.Errorf("copy to %s: %w", dst, err)
	}

	defer func() {
		closeErr := out.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("copy to %s: %w", dst, closeErr)
		}
	}()

	_, err = io.Copy(out, in)
	if err != nil {
		return fmt.Errorf("copy to %s: %w", dst, err)
	}

	err = out.Sync()
	if err != nil {
		return fmt.Errorf("copy to %s: %w", dst, err)
	}

	return nil
}

// moveFile renames src to dst, falling back to copy and remove when the two
// are on different filesystems (thumbnails are rendered into a temp dir).
func (s *Store) moveFile(src, dst string) error {
	renameErr := s.fsys.Rename(src, dst)
	if renameErr == nil {
		return nil
	}

	copyErr := s.copyFile(src, dst)
	if copyErr != nil {
		return errors.Join(fmt.Errorf("move %s: %w", src, renameErr), copyErr)
	}

	_, _ = s.removeIfExists(src)

	return nil
}
