// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command is one node of the command tree.
type Command struct {
	// Name is the command name as typed by the user (e.g., "decode").
	Name string

	// Summary is a one-line description shown in the parent's help listing.
	Summary string

	// Description is a detailed multi-line description shown in the command's
	// own help output.
	Description string

	// Usage is the usage string (e.g., "binn decode [-c] [file]").
	// If empty, it is synthesized from the command path and subcommands.
	Usage string

	// Examples are shown in the help output after the description.
	Examples []Example

	// Flags returns a configured *pflag.FlagSet for this command. Called
	// lazily on first use. Takes precedence over Params.
	Flags func() *pflag.FlagSet

	// Params returns a pointer to the command's tagged parameter struct.
	// The flag set is built from it with [FlagsFromParams]. If both
	// Flags and Params are nil, the command accepts no flags.
	Params func() any

	// Subcommands are nested commands dispatched by the first positional arg.
	Subcommands []*Command

	// Run executes the command with the remaining args (after flag parsing).
	// If both Run and Subcommands are set, Run is used when no subcommand
	// matches.
	Run func(ctx context.Context, args []string, logger *slog.Logger) error

	// parent is set during dispatch to build the full command path for help.
	parent *Command
}

// Example is a usage example shown in help output.
type Example struct {
	// Description explains what the example does.
	Description string
	// Command is the literal command line.
	Command string
}

// flagSet builds a new flag set on every call; nil means the command
// takes no flags.
func (c *Command) flagSet() *pflag.FlagSet {
	if c.Flags != nil {
		return c.Flags()
	}
	if c.Params != nil {
		return FlagsFromParams(c.Name, c.Params())
	}
	return nil
}

// Execute runs the command tree against args: it answers help flags,
// parses flags, and hands off to the matching subcommand or to Run.
//
// A command that has subcommands parses its own flags only up to the
// first positional argument. That is how "binn --verbose decode" sets
// the root's global flags before decode runs.
func (c *Command) Execute(ctx context.Context, args []string, logger *slog.Logger) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(os.Stderr)
		return nil
	}
	if len(c.Subcommands) > 0 {
		return c.dispatch(ctx, args, logger)
	}

	if flagSet := c.flagSet(); flagSet != nil {
		remaining, err := c.parseFlags(flagSet, args)
		if err != nil {
			return err
		}
		args = remaining
	}
	if c.Run == nil {
		c.PrintHelp(os.Stderr)
		return fmt.Errorf("no action defined for %q", c.fullName())
	}
	return c.Run(ctx, args, logger)
}

// dispatch handles a command with subcommands. Leading flags belong to
// c; the first positional argument names the subcommand. When nothing
// matches, Run (if any) receives the arguments unchanged.
func (c *Command) dispatch(ctx context.Context, args []string, logger *slog.Logger) error {
	if flagSet := c.flagSet(); flagSet != nil && len(args) > 0 && isFlag(args[0]) {
		flagSet.SetInterspersed(false)
		remaining, err := c.parseFlags(flagSet, args)
		if err != nil {
			return err
		}
		if len(remaining) > 0 && isHelpFlag(remaining[0]) {
			c.PrintHelp(os.Stderr)
			return nil
		}
		args = remaining
	}

	if len(args) > 0 && !isFlag(args[0]) {
		if sub := c.subcommand(args[0]); sub != nil {
			sub.parent = c
			return sub.Execute(ctx, args[1:], logger)
		}
		if c.Run == nil {
			return c.unknownCommand(args[0])
		}
	}
	if c.Run != nil {
		return c.Run(ctx, args, logger)
	}

	c.PrintHelp(os.Stderr)
	if len(args) == 0 {
		return Validation("subcommand required")
	}
	return Validation("subcommand required (got flag %q)", args[0])
}

func (c *Command) subcommand(name string) *Command {
	for _, sub := range c.Subcommands {
		if sub.Name == name {
			return sub
		}
	}
	return nil
}

func (c *Command) unknownCommand(name string) error {
	if suggestion := suggestCommand(name, c.Subcommands); suggestion != "" {
		return Validation("unknown command %q (did you mean %q?)\n\nRun '%s --help' for usage.",
			name, suggestion, c.fullName())
	}
	return Validation("unknown command %q\n\nRun '%s --help' for usage.", name, c.fullName())
}

// parseFlags parses args into flagSet and returns the positional args.
// Parse errors carry a suggestion for misspelled flags and a pointer to
// --help.
func (c *Command) parseFlags(flagSet *pflag.FlagSet, args []string) ([]string, error) {
	// Errors are formatted below, with suggestions.
	flagSet.SetOutput(io.Discard)
	flagSet.Usage = func() {}

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			c.PrintHelp(os.Stderr)
			return nil, &ExitError{Code: 0}
		}
		message := err.Error()
		if strings.Contains(message, "unknown flag") || strings.Contains(message, "unknown shorthand flag") {
			// The failed parse may have set values; look up names in a
			// fresh set.
			if suggestion := suggestFlag(args, c.flagSet()); suggestion != "" {
				return nil, Validation("%s (did you mean %s?)\n\nRun '%s --help' for usage.",
					message, suggestion, c.fullName())
			}
		}
		return nil, Validation("%s\n\nRun '%s --help' for usage.", message, c.fullName())
	}
	return flagSet.Args(), nil
}

// PrintHelp writes structured help output to w.
func (c *Command) PrintHelp(w io.Writer) {
	name := c.fullName()

	if c.Description != "" {
		fmt.Fprintf(w, "%s\n\n", c.Description)
	} else if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	if c.Usage != "" {
		fmt.Fprintf(w, "Usage:\n  %s\n", c.Usage)
	} else if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "Usage:\n  %s <command> [flags]\n", name)
	} else {
		fmt.Fprintf(w, "Usage:\n  %s [flags]\n", name)
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(tw, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		tw.Flush()
	}

	if flagSet := c.flagSet(); flagSet != nil {
		if usage := flagSet.FlagUsages(); usage != "" {
			fmt.Fprintf(w, "\nFlags:\n%s", usage)
		}
	}

	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nExamples:\n")
		for _, example := range c.Examples {
			if example.Description != "" {
				fmt.Fprintf(w, "  # %s\n", example.Description)
			}
			fmt.Fprintf(w, "  %s\n", example.Command)
			if example.Description != "" {
				fmt.Fprintln(w)
			}
		}
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nRun '%s <command> --help' for more information on a command.\n", name)
	}
}

// fullName is the path from the root, such as "binn pack".
func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}

// isFlag reports whether arg looks like a flag. A lone "-" is the
// stdin argument, not a flag.
func isFlag(arg string) bool {
	return len(arg) > 1 && arg[0] == '-'
}
