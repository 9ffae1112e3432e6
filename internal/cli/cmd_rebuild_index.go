package cli

import (
	"context"
	"errors"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/docstore/internal/mirror"
)

var errNoSearchIndex = errors.New("no search_index configured")

// RebuildIndexCmd returns the rebuild-index command.
func RebuildIndexCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("rebuild-index", flag.ContinueOnError),
		Usage: "rebuild-index",
		Short: "Rebuild the SQLite search index from documents.json",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			if a.cfg.SearchIndexAbs == "" {
				return errNoSearchIndex
			}

			// The mirror is rebuilt below; the store must not write to it too.
			plain := *a
			plain.cfg.SearchIndexAbs = ""

			store, closeStore, err := plain.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			m, err := mirror.Open(ctx, a.cfg.SearchIndexAbs)
			if err != nil {
				return err
			}
			defer m.Close()

			n, err := m.Rebuild(ctx, store.All())
			if err != nil {
				return err
			}

			o.Printf("indexed %d documents\n", n)

			return nil
		},
	}
}
