// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/bureau-foundation/binn/cmd/binn/cli"
	"github.com/bureau-foundation/binn/lib/binn"
	"github.com/bureau-foundation/binn/lib/transcode"
)

// FilterParams holds the flags of the top-level "binn" command, which
// decodes by default and runs a jq filter when given one.
type FilterParams struct {
	Compact   bool `json:"compact"    flag:"compact,c"    desc:"compact output (no indentation)"`
	RawOutput bool `json:"raw_output" flag:"raw-output,r" desc:"raw string output (passed to jq)"`
	Slurp     bool `json:"slurp"      flag:"slurp,s"      desc:"read the stream as one JSON array"`
	HexInput  bool `json:"hex_input"  flag:"hex,x"        desc:"treat input as hex-encoded binn"`
}

// Filter handles "binn [flags] [filter] [file]". With no filter it
// decodes the stream to JSON like "binn decode". Otherwise the stream is
// decoded to JSON internally and piped through jq with the filter; -c,
// -r, and -s are passed through to jq.
func Filter(ctx context.Context, settings *cli.Settings, params *FilterParams, args []string, logger *slog.Logger) error {
	cfg, err := settings.Config()
	if err != nil {
		return err
	}
	data, remainingArgs, err := readInput(args, params.HexInput)
	if err != nil {
		return err
	}

	options := transcode.Options{
		Compact: params.Compact || cfg.Output.Compact,
		Limits:  cfg.DecoderLimits(),
	}
	if len(remainingArgs) == 0 {
		return decodeValues(data, os.Stdout, transcode.FormatJSON, options, params.Slurp)
	}

	var jqArgs []string
	if options.Compact {
		jqArgs = append(jqArgs, "-c")
	}
	if params.RawOutput {
		jqArgs = append(jqArgs, "-r")
	}
	if params.Slurp {
		jqArgs = append(jqArgs, "-s")
	}
	jqArgs = append(jqArgs, remainingArgs...)

	logger.Debug("filtering", "bytes", len(data), "jq_args", jqArgs)
	return filterValues(ctx, data, jqArgs, cfg.DecoderLimits(), os.Stdout, os.Stderr)
}

// filterValues decodes a binn stream, converts it to JSON (one compact
// document per value), and pipes it through jq.
func filterValues(ctx context.Context, data []byte, jqArgs []string, limits binn.Limits, stdout, stderr io.Writer) error {
	if len(data) == 0 {
		return cli.Validation("empty input: expected binn data")
	}

	values, err := readValues(transcode.FormatBinn, data, transcode.Options{Limits: limits})
	if err != nil {
		return err
	}
	jsonData, err := writeValues(transcode.FormatJSON, values, transcode.Options{Compact: true})
	if err != nil {
		return err
	}

	return runJQ(ctx, jsonData, jqArgs, stdout, stderr)
}

// runJQ executes jq with the given arguments, feeding jsonData to its
// stdin. jq's exit status becomes an [cli.ExitError] so that piped
// commands behave correctly (e.g., jq -e returns 1 for false/null).
func runJQ(ctx context.Context, jsonData []byte, jqArgs []string, stdout, stderr io.Writer) error {
	jqPath, err := exec.LookPath("jq")
	if err != nil {
		return cli.NotFound("jq not found in PATH; install jq or use \"binn decode\" for raw JSON output")
	}

	cmd := exec.CommandContext(ctx, jqPath, jqArgs...)
	cmd.Stdin = bytes.NewReader(jsonData)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &cli.ExitError{Code: exitErr.ExitCode()}
		}
		return cli.Internal("run jq: %w", err)
	}
	return nil
}
