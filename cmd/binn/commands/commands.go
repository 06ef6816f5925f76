// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete binn command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	archivecmd "github.com/bureau-foundation/binn/cmd/binn/archive"
	"github.com/bureau-foundation/binn/cmd/binn/cli"
	valuecmd "github.com/bureau-foundation/binn/cmd/binn/value"
	"github.com/bureau-foundation/binn/lib/version"
)

// rootParams are the flags of the bare "binn" command: the global
// settings plus the jq filter flags.
type rootParams struct {
	*cli.Settings
	valuecmd.FilterParams
}

// Root builds and returns the complete binn command tree. Every command
// shares settings, so --config and --verbose given before the command
// name apply to it.
func Root(settings *cli.Settings) *cli.Command {
	params := rootParams{Settings: settings}

	root := &cli.Command{
		Name: "binn",
		Description: `binn: inspect and convert binn-encoded values.

binn is a compact, self-describing binary format: every value carries
a one-byte type tag, integers keep their width and sign, and containers
come in three shapes (list, integer-keyed map, string-keyed object).

With no command, binn decodes stdin (or a file) to JSON. Given a jq
filter as the first argument, it decodes to JSON and pipes the result
through jq:

  binn '.[0].name' values.binn`,
		Usage:  "binn [--config FILE] [-v] [-c] [-r] [-s] [-x] [<command> | <jq filter>] [file]",
		Params: func() any { return &params },
		Subcommands: append(append(
			valuecmd.Commands(settings),
			archivecmd.Commands(settings)...),
			&cli.Command{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					if len(args) > 0 {
						return cli.Validation("version takes no arguments, got %q", args[0])
					}
					fmt.Printf("binn %s\n", version.Full())
					return nil
				},
			},
		),
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			return valuecmd.Filter(ctx, settings, &params.FilterParams, args, logger)
		},
		Examples: []cli.Example{
			{
				Description: "Decode a file to JSON",
				Command:     "binn values.binn",
			},
			{
				Description: "Extract a field with jq",
				Command:     "binn -r '.name' values.binn",
			},
			{
				Description: "Show every value with its binn types",
				Command:     "binn diag values.binn",
			},
			{
				Description: "Encode JSON with the narrowest integer widths",
				Command:     "echo '{\"count\":42}' | binn encode --narrow > count.binn",
			},
			{
				Description: "Check that a stream is canonical",
				Command:     "binn validate values.binn",
			},
			{
				Description: "Pack streams into a zstd archive",
				Command:     "binn pack --compression zstd -o values.bnpk first.binn second.binn",
			},
			{
				Description: "Use a configuration file for decoder limits",
				Command:     "binn --config ~/.config/binn/config.yaml decode big.binn",
			},
		},
	}
	return root
}
