// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"context"
	"log/slog"
	"os"

	"github.com/bureau-foundation/binn/cmd/binn/cli"
	"github.com/bureau-foundation/binn/lib/transcode"
)

// convertParams holds the parameters for the "binn convert" command.
type convertParams struct {
	inputParams
	conversionParams
	From    string `json:"from"    flag:"from"      desc:"input format" default:"binn"`
	To      string `json:"to"      flag:"to,t"      desc:"output format (default: output.format from config)"`
	Compact bool   `json:"compact" flag:"compact,c" desc:"compact text output"`
}

func convertCommand(settings *cli.Settings) *cli.Command {
	var params convertParams

	return &cli.Command{
		Name:    "convert",
		Summary: "Convert values between binn, JSON, YAML, CBOR, MessagePack, and protobuf",
		Description: `Read values in one format and write them in another. Every value
passes through the binn value model, so conversions between two
foreign formats behave like decoding to binn and encoding again.

Formats: binn, json, jsonc (read only), yaml, cbor, msgpack, proto.
The proto format is a single google.protobuf.Value: it holds exactly
one value and stores every number as a double.`,
		Usage:  "binn convert [--from FORMAT] [--to FORMAT] [-c] [--narrow] [file]",
		Params: func() any { return &params },
		Examples: []cli.Example{
			{
				Description: "Convert binn to YAML",
				Command:     "binn convert --to yaml values.binn",
			},
			{
				Description: "Convert CBOR to MessagePack",
				Command:     "binn convert --from cbor --to msgpack in.cbor > out.msgpack",
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
			to := params.To
			if to == "" {
				to = cfg.Output.Format
			}
			toFormat, err := parseFormat("to", to)
			if err != nil {
				return err
			}

			data, remainingArgs, err := readInput(args, params.HexInput)
			if err != nil {
				return err
			}
			if err := noExtraArgs("convert", remainingArgs); err != nil {
				return err
			}

			options := params.options(params.Compact || cfg.Output.Compact, transcode.Options{Limits: cfg.DecoderLimits()})
			logger.Debug("converting", "from", from, "to", toFormat, "bytes", len(data))
			return convertValues(data, os.Stdout, from, toFormat, options, params.Force)
		},
	}
}
