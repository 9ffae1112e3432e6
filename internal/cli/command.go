package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
)

// Command is one docstore verb: its flags, help text and the function that
// runs it against the store.
type Command struct {
	// Flags are the verb's own flags; global flags are parsed before.
	Flags *flag.FlagSet

	// Usage follows "docstore" in help output and starts with the verb,
	// e.g. "merge <id> <id>... [flags]".
	Usage string

	// Short is the line shown in the command listing.
	Short string

	// Long is shown by "docstore <verb> --help"; Short is used when empty.
	Long string

	// Examples are full invocations printed under the help text.
	Examples []string

	// Exec runs with the flags parsed and the remaining positional args.
	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name returns the verb.
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")

	return name
}

// HelpLine formats the command for the listing in "docstore --help".
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-28s %s", c.Usage, c.Short)
}

// PrintHelp writes the usage, description, flags and examples of the verb.
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: docstore", c.Usage)
	o.Println()

	desc := c.Long
	if desc == "" {
		desc = c.Short
	}

	o.Println(desc)

	if c.Flags != nil && c.Flags.HasFlags() {
		var buf strings.Builder
		c.Flags.SetOutput(&buf)
		c.Flags.PrintDefaults()

		o.Println()
		o.Println("Flags:")
		o.Printf("%s", buf.String())
	}

	if len(c.Examples) > 0 {
		o.Println()
		o.Println("Examples:")

		for _, ex := range c.Examples {
			o.Println("  docstore " + ex)
		}
	}
}

// Run parses args into the verb's flags and executes it, returning the
// exit code. A flag error is printed with the verb's help; a command error
// is printed as "error: ..." and exits 1.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	c.Flags.SetOutput(&strings.Builder{})

	err := c.Flags.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		c.PrintHelp(o)

		return 0
	}

	if err != nil {
		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		c.PrintHelp(o)

		return 1
	}

	err = c.Exec(ctx, o, c.Flags.Args())
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	return o.Finish()
}
