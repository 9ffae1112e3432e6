package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

// ThumbnailCmd returns the thumbnail command.
func ThumbnailCmd(a *app) *Command {
	fs := flag.NewFlagSet("thumbnail", flag.ContinueOnError)
	fs.Bool("all", false, "Regenerate thumbnails for every document")

	return &Command{
		Flags: fs,
		Usage: "thumbnail <id>... [flags]",
		Short: "Regenerate thumbnails",
		Long: `Regenerate the thumbnail of each given document (or all with --all),
printing the ID of every document that got one. Documents whose file type
is not supported are reported as warnings.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			all, _ := fs.GetBool("all")
			if len(args) == 0 && !all {
				return errIDRequired
			}

			store, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			ids := args
			if all {
				ids = nil
				for _, doc := range store.All() {
					ids = append(ids, doc.ID)
				}
			}

			for _, id := range ids {
				if err := ctx.Err(); err != nil {
					return err
				}

				_, err := store.AttachThumbnail(ctx, id)
				if err != nil {
					o.Warn("%v", err)

					continue
				}

				o.Println(id)
			}

			return nil
		},
	}
}
