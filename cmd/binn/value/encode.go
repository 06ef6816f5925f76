// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/binn/cmd/binn/cli"
	"github.com/bureau-foundation/binn/lib/transcode"
)

// conversionParams are the flags that shape how foreign input becomes
// binn values.
type conversionParams struct {
	Narrow      bool `json:"narrow"       flag:"narrow,n"    desc:"store integers in the smallest width that holds them"`
	IntegerKeys bool `json:"integer_keys" flag:"integer-keys" desc:"read YAML mappings with all-integer keys as binn maps"`
	Force       bool `json:"force"        flag:"force,f"     desc:"write binary output even when stdout is a terminal"`
}

// options returns base with the conversion flags applied.
func (p conversionParams) options(compact bool, base transcode.Options) transcode.Options {
	base.NarrowIntegers = p.Narrow
	base.IntegerKeysAsMap = p.IntegerKeys
	base.Compact = compact
	return base
}

// encodeParams holds the parameters for the "binn encode" command.
type encodeParams struct {
	conversionParams
	From string `json:"from" flag:"from" desc:"input format: json, jsonc, yaml, cbor, msgpack, proto" default:"json"`
}

func encodeCommand(settings *cli.Settings) *cli.Command {
	var params encodeParams

	return &cli.Command{
		Name:    "encode",
		Summary: "Convert JSON (or another format) to a binn stream",
		Description: `Read values from stdin (or a file argument) and write the equivalent
binn stream to stdout.

A JSON, JSONC, YAML, CBOR, or MessagePack input holding several
documents or items becomes a stream of several values. Integers become
i64 (u64 above the signed range) unless --narrow stores each in the
smallest width that holds it. MessagePack keeps its own integer
widths.

The output is binary. Pipe to "binn diag" or "xxd" to inspect.`,
		Usage:  "binn encode [--from FORMAT] [--narrow] [file]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Encode JSON to binn",
				Command:     "echo '{\"id\":7,\"tags\":[\"a\"]}' | binn encode > value.binn",
			},
			{
				Description: "Encode a YAML file with narrow integers",
				Command:     "binn encode --from yaml --narrow config.yaml > config.binn",
			},
			{
				Description: "Round-trip: encode then decode",
				Command:     "echo '{\"count\":42}' | binn encode | binn decode",
			},
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			cfg, err := settings.Config()
			if err != nil {
				return err
			}
			from, err := parseFormat("from", params.From)
			if err != nil {
				return err
			}
			data, remainingArgs, err := readInput(args, false)
			if err != nil {
				return err
			}
			if err := noExtraArgs("encode", remainingArgs); err != nil {
				return err
			}

			options := params.options(false, transcode.Options{Limits: cfg.DecoderLimits()})
			logger.Debug("encoding", "from", from, "bytes", len(data), "narrow", params.Narrow)
			return convertValues(data, os.Stdout, from, transcode.FormatBinn, options, params.Force)
		},
	}
}

// convertValues reads data in one format and writes it to w in
// another. Binary output goes through cli.WriteBinary.
func convertValues(data []byte, w io.Writer, from, to transcode.Format, options transcode.Options, force bool) error {
	if len(data) == 0 {
		return cli.Validation("empty input: expected %s data", from)
	}

	values, err := readValues(from, data, options)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return cli.Validation("input holds no %s values", from)
	}

	output, err := writeValues(to, values, options)
	if err != nil {
		return err
	}
	if isBinary(to) {
		return cli.WriteBinary(w, output, force)
	}
	if _, err := w.Write(output); err != nil {
		return cli.Internal("write output: %w", err)
	}
	return nil
}
