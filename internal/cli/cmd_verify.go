package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/docstore/internal/docstore"
)

var errVerifyFailed = errors.New("integrity check failed")

// VerifyCmd returns the verify command.
func VerifyCmd(a *app) *Command {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.IntP("workers", "j", 0, "Files hashed in parallel (default: verify_workers from config)")
	fs.Bool("all", false, "Also print files that are ok")

	return &Command{
		Flags: fs,
		Usage: "verify [flags]",
		Short: "Check stored files against their checksums",
		Long: `Re-hash every stored file and compare it with the recorded SHA-256.
Prints one line per problem: status, document ID, file identifier.
Exits 1 when any file is missing or modified.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			workers, _ := fs.GetInt("workers")
			if workers <= 0 {
				workers = a.cfg.VerifyWorkers
			}

			showAll, _ := fs.GetBool("all")

			store, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			reports, err := store.Verify(ctx, workers)
			if err != nil {
				return err
			}

			bad := 0

			for _, r := range reports {
				switch r.Status {
				case docstore.StatusMissing, docstore.StatusModified:
					bad++
				case docstore.StatusNoChecksum:
					o.Warn("%s %s has no recorded checksum", r.ID, r.Identifier)
				case docstore.StatusOK:
					if !showAll {
						continue
					}
				}

				o.Printf("%s\t%s\t%s\n", r.Status, r.ID, r.Identifier)
			}

			if bad > 0 {
				return fmt.Errorf("%w: %d of %d files", errVerifyFailed, bad, len(reports))
			}

			return nil
		},
	}
}
