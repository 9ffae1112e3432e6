package cli

import (
	"context"
	"encoding/json"
	"strings"

	flag "github.com/spf13/pflag"
)

// SearchCmd returns the search command.
func SearchCmd(a *app) *Command {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.Bool("json", false, "Print matching documents as a JSON object keyed by ID")

	return &Command{
		Flags: fs,
		Usage: "search [tag...] [flags]",
		Short: "List documents carrying all given tags",
		Long: `List the documents whose tags include every given tag, ordered by ID.
Without tags every document is listed. Each line is: ID, title, tags.`,
		Examples: []string{
			"search invoices 2024",
			"search --json papers",
		},
		Exec: func(ctx context.Context, o *IO, args []string) error {
			asJSON, _ := fs.GetBool("json")

			store, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			docs := store.Search(args)

			if asJSON {
				byID := make(map[string]any, len(docs))
				for _, doc := range docs {
					byID[doc.ID] = doc.Data()
				}

				blob, err := json.MarshalIndent(byID, "", "  ")
				if err != nil {
					return err
				}

				o.Println(string(blob))

				return nil
			}

			for _, doc := range docs {
				o.Printf("%s\t%s\t%s\n", doc.ID, doc.Title(), strings.Join(doc.Tags(), ","))
			}

			return nil
		},
	}
}
