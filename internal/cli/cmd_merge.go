package cli

import (
	"context"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/docstore/internal/docstore"
	"github.com/calvinalkan/docstore/internal/document"
)

// MergeCmd returns the merge command.
func MergeCmd(a *app) *Command {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	fs.BoolP("yes", "y", false, "Skip confirmation prompts and accept guesses")
	fs.StringP("title", "t", "", "Title of the merged document")
	fs.String("tags", "", "Comma-separated tags of the merged document")

	return &Command{
		Flags: fs,
		Usage: "merge <id> <id>... [flags]",
		Short: "Merge documents into the first one",
		Long: `Merge the files of several documents into the first, printing its ID.

The merged title defaults to the most common title; the merged tags default
to the union of all tags. Both are confirmed interactively unless --yes is
given. The other documents are deleted; their files move to the survivor.`,
		Examples: []string{
			"merge 3f2a9c1e 77b0d4aa",
			`merge --yes --title "Manual" --tags docs,hardware 3f2a9c1e 77b0d4aa 91cc02fe`,
		},
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execMerge(ctx, o, a, fs, args)
		},
	}
}

func execMerge(ctx context.Context, o *IO, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) == 1 {
		return nil
	}

	if len(args) == 0 {
		return errIDRequired
	}

	yes, _ := fs.GetBool("yes")

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	docs := make([]*document.Document, 0, len(args))

	for _, id := range args {
		doc, getErr := store.Get(id)
		if getErr != nil {
			return fmt.Errorf("merge: %w", getErr)
		}

		docs = append(docs, doc)

		title := doc.Title()
		if title == "" {
			title = "<untitled>"
		}

		o.Printf("%s %s\n", shortID(doc.ID), title)
	}

	p := newPrompter(a.in, a.out)
	defer p.Close()

	if !yes {
		ok, confirmErr := p.Confirm(fmt.Sprintf("Merge these %d documents?", len(docs)), false)
		if confirmErr != nil {
			return confirmErr
		}

		if !ok {
			return errAborted
		}
	}

	opts := docstore.MergeOptions{}

	opts.Title, err = chooseTitle(o, p, fs, docs, yes)
	if err != nil {
		return err
	}

	opts.Tags, err = chooseTags(o, p, fs, docs, yes)
	if err != nil {
		return err
	}

	merged, err := store.Merge(ctx, args, opts)
	if err != nil {
		return err
	}

	o.Println(merged.ID)

	return nil
}

func chooseTitle(o *IO, p prompter, fs *flag.FlagSet, docs []*document.Document, yes bool) (string, error) {
	if fs.Changed("title") {
		return fs.GetString("title")
	}

	candidates := docstore.TitleCandidates(docs)

	switch {
	case len(candidates) == 0:
		return "", nil
	case len(candidates) == 1:
		o.Println("Using common title:", candidates[0])

		return candidates[0], nil
	case yes:
		o.Println("Guessed title:", candidates[0])

		return candidates[0], nil
	}

	o.Println("Guessed title:", candidates[0])

	ok, err := p.Confirm("Use title?", true)
	if err != nil {
		return "", err
	}

	if ok {
		return candidates[0], nil
	}

	return p.Line("Title", candidates[0])
}

func chooseTags(o *IO, p prompter, fs *flag.FlagSet, docs []*document.Document, yes bool) ([]string, error) {
	if fs.Changed("tags") {
		tags, _ := fs.GetString("tags")

		return splitTags(tags), nil
	}

	union, agreed := docstore.UnionOfTags(docs)

	if agreed {
		o.Println("Using common tags:", strings.Join(union, ", "))

		return union, nil
	}

	o.Println("Guessed tags:", strings.Join(union, ", "))

	if yes {
		return union, nil
	}

	ok, err := p.Confirm("Use tags?", true)
	if err != nil {
		return nil, err
	}

	if ok {
		return union, nil
	}

	answer, err := p.Line("Tags (comma-separated)", strings.Join(union, ", "))
	if err != nil {
		return nil, err
	}

	return splitTags(answer), nil
}
