// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/binn/cmd/binn/cli"
	"github.com/bureau-foundation/binn/lib/archive"
	"github.com/bureau-foundation/binn/lib/binn"
	"github.com/bureau-foundation/binn/lib/transcode"
)

// unpackParams holds the parameters for the "binn unpack" command.
type unpackParams struct {
	Force bool `json:"force" flag:"force,f" desc:"write binary output even when stdout is a terminal"`
}

func unpackCommand(settings *cli.Settings) *cli.Command {
	var params unpackParams

	return &cli.Command{
		Name:    "unpack",
		Summary: "Write the binn stream stored in an archive",
		Description: `Read an archive from the named file (or stdin), verify its digest,
decode every value under the configured limits, and write the values
to stdout as one binn stream.

A truncated archive, a digest mismatch, or a value count that
disagrees with the header is an error and nothing is written.`,
		Usage: "binn unpack [-f] [archive]",
		Examples: []cli.Example{
			{
				Description: "Inspect the values in an archive",
				Command:     "binn unpack values.bnpk | binn diag",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			cfg, err := settings.Config()
			if err != nil {
				return err
			}
			data, err := readSource("unpack", args)
			if err != nil {
				return err
			}
			logger.Debug("unpacking", "bytes", len(data))
			return unpackArchive(data, os.Stdout, cfg.DecoderLimits(), params.Force)
		},
	}
}

// unpackArchive reads one archive from data and writes its values to w
// as a binn stream.
func unpackArchive(data []byte, w io.Writer, limits binn.Limits, force bool) error {
	if len(data) == 0 {
		return cli.Validation("empty input: expected an archive")
	}
	contents, err := archive.Read(bytes.NewReader(data), limits)
	if err != nil {
		return cli.Validation("%w", err)
	}
	stream, err := transcode.Encode(transcode.FormatBinn, contents.Values, transcode.Options{})
	if err != nil {
		return cli.Internal("re-encode archive values: %w", err)
	}
	return cli.WriteBinary(w, stream, force)
}
