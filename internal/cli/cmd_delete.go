package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"
)

var errIDRequired = errors.New("at least one document ID is required")

// DeleteCmd returns the delete command.
func DeleteCmd(a *app) *Command {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.Bool("keep-files", false, "Only remove the record; leave files and thumbnail on disk")

	return &Command{
		Flags: fs,
		Usage: "delete <id>... [flags]",
		Short: "Delete documents and their files",
		Long: `Delete one or more documents, printing each deleted ID.

The record is removed first, then the document's files and thumbnail.
With --keep-files the files stay on disk.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return errIDRequired
			}

			keepFiles, _ := fs.GetBool("keep-files")

			store, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			for _, id := range args {
				doc, err := store.Get(id)
				if err != nil {
					return fmt.Errorf("delete: %w", err)
				}

				err = store.Delete(ctx, id)
				if err != nil {
					return err
				}

				if !keepFiles {
					if rmErr := store.RemoveFiles(ctx, doc); rmErr != nil {
						o.Warn("files of %s left behind: %v", id, rmErr)
					}
				}

				o.Println(id)
			}

			return nil
		},
	}
}
