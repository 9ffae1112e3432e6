package cli

import (
	"context"
	"errors"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/docstore/internal/docstore"
)

var errV1PathRequired = errors.New("path to the v1 store is required")

// MigrateCmd returns the migrate command.
func MigrateCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("migrate", flag.ContinueOnError),
		Usage: "migrate <v1-root>",
		Short: "Import a version 1 store",
		Long: `Import every document of a version 1 store into this one, printing the
filename of each imported document. The v1 store is only read. Documents
whose file is missing are skipped with a warning.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return errV1PathRequired
			}

			store, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			result, err := docstore.Migrate(ctx, store, args[0])

			for _, imported := range result.Imported {
				o.Println(imported.Filename)
			}

			for _, v1ID := range result.Skipped {
				o.Warn("skipped %s: file missing", v1ID)
			}

			return err
		},
	}
}
