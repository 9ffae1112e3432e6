package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

// ShowCmd returns the show command.
func ShowCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("show", flag.ContinueOnError),
		Usage: "show <id>",
		Short: "Print a document's fields and file paths",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return errIDRequired
			}

			store, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			doc, err := store.Get(args[0])
			if err != nil {
				return err
			}

			blob, err := doc.Data().MarshalJSON()
			if err != nil {
				return err
			}

			o.Println("id=" + doc.ID)
			o.Println(string(blob))

			for _, ref := range doc.Files() {
				o.Println("file=" + store.FilePath(ref.Identifier))
			}

			if thumb := doc.ThumbnailIdentifier(); thumb != "" {
				o.Println("thumbnail=" + store.ThumbnailPath(thumb))
			}

			return nil
		},
	}
}
