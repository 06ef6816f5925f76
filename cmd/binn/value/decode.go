// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/binn/cmd/binn/cli"
	"github.com/bureau-foundation/binn/lib/binn"
	"github.com/bureau-foundation/binn/lib/transcode"
)

// decodeParams holds the parameters for the "binn decode" command.
type decodeParams struct {
	inputParams
	Compact bool   `json:"compact" flag:"compact,c" desc:"compact output (one line per value)"`
	Slurp   bool   `json:"slurp"   flag:"slurp,s"   desc:"wrap every value of the stream in one array"`
	To      string `json:"to"      flag:"to,t"      desc:"output format: json or yaml (default: output.format from config)"`
}

func decodeCommand(settings *cli.Settings) *cli.Command {
	var params decodeParams

	return &cli.Command{
		Name:    "decode",
		Summary: "Convert a binn stream to JSON",
		Description: `Read binn values from stdin (or a file argument) and write the
equivalent JSON to stdout, one document per value.

By default, output is pretty-printed with 2-space indentation. Use -c
for compact single-line output. JSON cannot say everything binn can:
integer widths collapse to numbers, blobs become base64 strings, and
integer map keys become string keys. Use "binn diag" for a
representation that keeps every type.

With -s, all values of the stream are wrapped in one JSON array.`,
		Usage: "binn decode [-c] [-s] [-x] [--to json|yaml] [file]",
		Examples: []cli.Example{
			{
				Description: "Decode a file to pretty JSON",
				Command:     "binn decode values.binn",
			},
			{
				Description: "Decode a stream to one JSON array",
				Command:     "binn decode -s < stream.binn",
			},
			{
				Description: "Decode a hex dump",
				Command:     "echo 'a0 03 00 00 00 61 62 63' | binn decode --hex",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			cfg, err := settings.Config()
			if err != nil {
				return err
			}
			data, remainingArgs, err := readInput(args, params.HexInput)
			if err != nil {
				return err
			}
			if err := noExtraArgs("decode", remainingArgs); err != nil {
				return err
			}

			to := params.To
			if to == "" {
				to = cfg.Output.Format
			}
			format, err := parseFormat("to", to)
			if err != nil {
				return err
			}
			if isBinary(format) {
				return cli.Validation("decode writes text formats; use \"binn convert --to %s\" for %s output", format, format)
			}

			options := transcode.Options{
				Compact: params.Compact || cfg.Output.Compact,
				Limits:  cfg.DecoderLimits(),
			}
			logger.Debug("decoding", "bytes", len(data), "to", format)
			return decodeValues(data, os.Stdout, format, options, params.Slurp)
		},
	}
}

// decodeValues reads a binn stream from data and writes it to w in
// format.
func decodeValues(data []byte, w io.Writer, format transcode.Format, options transcode.Options, slurp bool) error {
	if len(data) == 0 {
		return cli.Validation("empty input: expected binn data")
	}

	values, err := readValues(transcode.FormatBinn, data, options)
	if err != nil {
		return err
	}
	if slurp {
		values = []binn.Value{binn.List(values...)}
	}

	output, err := writeValues(format, values, options)
	if err != nil {
		return err
	}
	if _, err := w.Write(output); err != nil {
		return cli.Internal("write output: %w", err)
	}
	return nil
}
