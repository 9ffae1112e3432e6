package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/calvinalkan/docstore/internal/config"
	"github.com/calvinalkan/docstore/internal/docstore"
	"github.com/calvinalkan/docstore/internal/logging"
	"github.com/calvinalkan/docstore/internal/media"
	"github.com/calvinalkan/docstore/internal/mirror"
)

// app carries what every command needs: the resolved config, the logger
// and the process's standard streams.
type app struct {
	cfg config.Config
	log logging.Logger
	in  io.Reader
	out io.Writer
}

// openStore opens the configured store. The returned close function
// releases the search mirror, if one is configured.
func (a *app) openStore(ctx context.Context) (*docstore.Store, func(), error) {
	opts := docstore.Options{
		Logger: a.log,
		Thumbnailer: &media.Generator{
			Size:      a.cfg.ThumbnailSize,
			PDFToPPM:  a.cfg.PDFToPPM,
			EbookMeta: a.cfg.EbookMeta,
		},
	}

	closeFn := func() {}

	if a.cfg.SearchIndexAbs != "" {
		m, err := mirror.Open(ctx, a.cfg.SearchIndexAbs)
		if err != nil {
			return nil, nil, fmt.Errorf("open search index: %w", err)
		}

		opts.Mirror = m
		closeFn = func() { _ = m.Close() }
	}

	store, err := docstore.Open(a.cfg.RootAbs, opts)
	if err != nil {
		closeFn()

		return nil, nil, err
	}

	return store, closeFn, nil
}

// splitTags parses a comma-separated tag list, dropping blanks.
func splitTags(s string) []string {
	tags := []string{}

	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags
}

// shortID is the part of an id shown in listings.
func shortID(id string) string {
	head, _, _ := strings.Cut(id, "-")

	return head
}
