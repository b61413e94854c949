package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// command is one node of the travelctl command tree. Leaves set Run,
// groups set subcommands.
type command struct {
	name        string
	summary     string
	usage       string
	flags       func() *pflag.FlagSet
	subcommands []*command
	run         func(ctx context.Context, e *env, args []string) error
}

func (c *command) execute(ctx context.Context, e *env, path string, args []string) error {
	path = strings.TrimSpace(path + " " + c.name)
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.printHelp(e.out, path)
		return nil
	}

	if len(c.subcommands) > 0 && len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		for _, sub := range c.subcommands {
			if sub.name == args[0] {
				return sub.execute(ctx, e, path, args[1:])
			}
		}
		if c.run == nil {
			return fmt.Errorf("unknown command %q\n\nRun '%s --help' for usage.", args[0], path)
		}
	}
	if c.run == nil {
		c.printHelp(e.out, path)
		return fmt.Errorf("subcommand required")
	}

	if c.flags != nil {
		fs := c.flags()
		fs.SetOutput(io.Discard)
		if err := fs.Parse(args); err != nil {
			if err == pflag.ErrHelp {
				c.printHelp(e.out, path)
				return nil
			}
			return fmt.Errorf("%s: %w\n\nRun '%s --help' for usage.", path, err, path)
		}
		args = fs.Args()
	}
	return c.run(ctx, e, args)
}

func (c *command) printHelp(w io.Writer, path string) {
	usage := c.usage
	if usage == "" {
		usage = path
		if len(c.subcommands) > 0 {
			usage += " <command>"
		}
	}
	fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", c.summary, usage)

	if len(c.subcommands) > 0 {
		fmt.Fprintln(w, "\nCommands:")
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, sub := range c.subcommands {
			fmt.Fprintf(tw, "  %s\t%s\n", sub.name, sub.summary)
		}
		_ = tw.Flush()
	}
	if c.flags != nil {
		fs := c.flags()
		if fs.HasFlags() {
			fmt.Fprintf(w, "\nFlags:\n%s", fs.FlagUsages())
		}
	}
}

func isHelpFlag(s string) bool { return s == "-h" || s == "--help" || s == "help" }

// oneArg returns the single positional argument a command expects.
func oneArg(args []string, what string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("expected one argument: %s", what)
	}
	return args[0], nil
}
