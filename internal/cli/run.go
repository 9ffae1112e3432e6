// Package cli implements the docstore command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/docstore/internal/config"
	"github.com/calvinalkan/docstore/internal/logging"
)

// Run is the main entry point. Returns exit code.
//
// sigCh may be nil. The first signal on it cancels the running command.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globals := flag.NewFlagSet("docstore", flag.ContinueOnError)
	globals.SetInterspersed(false)
	globals.SetOutput(&strings.Builder{})

	flagCwd := globals.StringP("cwd", "C", "", "Run as if started in `dir`")
	flagConfig := globals.StringP("config", "c", "", "Use specified config `file`")
	flagRoot := globals.String("root", "", "Store root `dir` (overrides config)")
	flagVerbose := globals.BoolP("verbose", "v", false, "Log debug output to stderr")
	flagHelp := globals.BoolP("help", "h", false, "Show help")

	if len(args) > 0 {
		args = args[1:]
	}

	err := globals.Parse(args)
	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printGlobalFlags(errOut, globals)

		return 1
	}

	if globals.Changed("root") && *flagRoot == "" {
		fprintln(errOut, "error:", config.ErrRootEmpty)

		return 1
	}

	rest := globals.Args()

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride: *flagCwd,
		ConfigPath:      *flagConfig,
		RootOverride:    *flagRoot,
		Env:             env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	level := slog.LevelWarn
	if *flagVerbose {
		level = slog.LevelDebug
	}

	a := &app{
		cfg: cfg,
		log: logging.NewText(errOut, level),
		in:  in,
		out: out,
	}

	commands := allCommands(a)

	if *flagHelp || len(rest) == 0 {
		printUsage(out, globals, commands)

		return 0
	}

	name := rest[0]

	var cmd *Command

	for _, c := range commands {
		if c.Name() == name {
			cmd = c

			break
		}
	}

	if cmd == nil {
		fprintln(errOut, "error: unknown command:", name)
		printUsage(errOut, globals, commands)

		return 1
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	if sigCh != nil {
		go func() {
			select {
			case sig := <-sigCh:
				cancel(fmt.Errorf("%w: %v", errInterrupted, sig))
			case <-ctx.Done():
			}
		}()
	}

	return cmd.Run(ctx, NewIO(in, out, errOut), rest[1:])
}

var errInterrupted = errors.New("interrupted")

func allCommands(a *app) []*Command {
	return []*Command{
		AddCmd(a),
		AddURLCmd(a),
		MigrateCmd(a),
		DeleteCmd(a),
		MergeCmd(a),
		SearchCmd(a),
		ShowCmd(a),
		TagsCmd(a),
		ThumbnailCmd(a),
		VerifyCmd(a),
		RebuildIndexCmd(a),
		PrintConfigCmd(a),
	}
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printGlobalFlags(w io.Writer, globals *flag.FlagSet) {
	fprintln(w, "Global flags:")

	var buf strings.Builder
	globals.SetOutput(&buf)
	globals.PrintDefaults()
	globals.SetOutput(&strings.Builder{})

	_, _ = fmt.Fprint(w, buf.String())
}

func printUsage(w io.Writer, globals *flag.FlagSet, commands []*Command) {
	fprintln(w, "docstore - a personal tagged document store")
	fprintln(w)
	fprintln(w, "Usage: docstore [global flags] <command> [args]")
	fprintln(w)
	printGlobalFlags(w, globals)
	fprintln(w)
	fprintln(w, "Commands:")

	for _, c := range commands {
		fprintln(w, c.HelpLine())
	}
}
