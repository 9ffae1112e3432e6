package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/docstore/internal/docstore"
	"github.com/calvinalkan/docstore/internal/media"
)

var errPathRequired = errors.New("path is required")

func addFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringP("title", "t", "", "Title of the document")
	fs.String("tags", "", "Comma-separated tags")
	fs.String("source-url", "", "Where the file was downloaded from")
	fs.String("sha256", "", "Expected SHA-256 of the file; ingestion fails on mismatch")

	return fs
}

// AddCmd returns the add command.
func AddCmd(a *app) *Command {
	fs := addFlags("add")
	fs.String("filename", "", "Filename to record (default: base name of <path>)")

	return &Command{
		Flags: fs,
		Usage: "add <path> [flags]",
		Short: "Store a file, prints its ID",
		Long: `Store a file in the docstore and print the new document ID.

The file is copied; the original stays in place. A thumbnail is created
when the file type is supported; otherwise a warning is printed and the
document is stored without one.`,
		Examples: []string{
			`add ~/Downloads/invoice.pdf --title "March invoice" --tags invoices,2024`,
			"add scan --filename scan.jpg --sha256 <hex>",
		},
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return errPathRequired
			}

			filename, _ := fs.GetString("filename")

			return execAdd(ctx, o, a, fs, docstore.NewDocument{Path: args[0], Filename: filename})
		},
	}
}

// execAdd fills nd from the shared add flags and stores it.
func execAdd(ctx context.Context, o *IO, a *app, fs *flag.FlagSet, nd docstore.NewDocument) error {
	title, _ := fs.GetString("title")
	tags, _ := fs.GetString("tags")
	checksum, _ := fs.GetString("sha256")

	nd.Title = title
	nd.Tags = splitTags(tags)
	nd.Checksum = checksum
	nd.DateSaved = time.Now()

	if sourceURL, _ := fs.GetString("source-url"); sourceURL != "" {
		nd.SourceURL = sourceURL
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	doc, err := store.StoreNew(ctx, nd)
	if err != nil {
		if doc == nil {
			return fmt.Errorf("add: %w", err)
		}

		if errors.Is(err, media.ErrUnsupportedMediaType) {
			a.log.Info(ctx, "stored without thumbnail", "id", doc.ID, "error", err)
		} else {
			o.Warn("%v", err)
		}
	}

	o.Println(doc.ID)

	return nil
}
