package cli

import (
	"cmp"
	"context"
	"slices"

	flag "github.com/spf13/pflag"
)

// TagsCmd returns the tags command.
func TagsCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("tags", flag.ContinueOnError),
		Usage: "tags",
		Short: "List tags with document counts",
		Long:  "List every tag with the number of documents carrying it, most used first.",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			store, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			counts := store.TagCounts()

			tags := make([]string, 0, len(counts))
			for tag := range counts {
				tags = append(tags, tag)
			}

			slices.SortFunc(tags, func(x, y string) int {
				if c := cmp.Compare(counts[y], counts[x]); c != 0 {
					return c
				}

				return cmp.Compare(x, y)
			})

			for _, tag := range tags {
				o.Printf("%d\t%s\n", counts[tag], tag)
			}

			return nil
		},
	}
}
