package cli

import (
	"context"
	"strconv"

	flag "github.com/spf13/pflag"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(a *app) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			return execPrintConfig(o, a)
		},
	}
}

func execPrintConfig(o *IO, a *app) error {
	cfg := a.cfg

	o.Println("effective_cwd=" + cfg.EffectiveCwd)
	o.Println("root=" + cfg.RootAbs)
	o.Println("thumbnail_size=" + strconv.Itoa(cfg.ThumbnailSize))
	o.Println("verify_workers=" + strconv.Itoa(cfg.VerifyWorkers))

	if cfg.SearchIndexAbs != "" {
		o.Println("search_index=" + cfg.SearchIndexAbs)
	}

	if cfg.PDFToPPM != "" {
		o.Println("pdftoppm=" + cfg.PDFToPPM)
	}

	if cfg.EbookMeta != "" {
		o.Println("ebook_meta=" + cfg.EbookMeta)
	}

	o.Println("")
	o.Println("# sources")

	if cfg.Sources.Global == "" && cfg.Sources.Project == "" {
		o.Println("(defaults only)")
	} else {
		if cfg.Sources.Global != "" {
			o.Println("global_config=" + cfg.Sources.Global)
		}

		if cfg.Sources.Project != "" {
			o.Println("project_config=" + cfg.Sources.Project)
		}
	}

	return nil
}
