// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/binn/cmd/binn/cli"
	"github.com/bureau-foundation/binn/lib/binn"
)

// validateParams holds the parameters for the "binn validate" command.
type validateParams struct {
	inputParams
}

func validateCommand(settings *cli.Settings) *cli.Command {
	var params validateParams

	return &cli.Command{
		Name:    "validate",
		Summary: "Check that a binn stream decodes and is in canonical form",
		Description: `Read a binn stream and verify it. Every value must decode under the
configured limits, and re-encoding each value must reproduce its bytes
exactly. Prints "valid" and exits 0 when both hold.

A stream that fails to decode exits 2 with the decoder's error. A
stream that decodes but is not canonical (for example, map entries
out of key order) prints the first differing byte and exits 1.`,
		Usage: "binn validate [-x] [file]",
		Examples: []cli.Example{
			{
				Description: "Validate binn from a pipeline",
				Command:     "echo '{\"count\":42}' | binn encode | binn validate",
			},
			{
				Description: "Validate a hex dump",
				Command:     "echo 'a0 03 00 00 00 61 62 63' | binn validate --hex",
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
			if err := noExtraArgs("validate", remainingArgs); err != nil {
				return err
			}
			logger.Debug("validating", "bytes", len(data))
			return validateStream(data, os.Stdout, cfg.DecoderLimits())
		},
	}
}

// validateStream decodes every value in data, re-encodes it, and
// compares the bytes.
func validateStream(data []byte, w io.Writer, limits binn.Limits) error {
	if len(data) == 0 {
		return cli.Validation("empty input: expected binn data")
	}

	decoder := binn.NewDecoder(bytes.NewReader(data), binn.WithLimits(limits))
	for index := 0; ; index++ {
		start := decoder.InputOffset()
		value, err := decoder.Decode()
		if err == io.EOF {
			fmt.Fprintln(w, "valid")
			return nil
		}
		if err != nil {
			return cli.Validation("value %d at byte %d: %w", index, start, err)
		}
		original := data[start:decoder.InputOffset()]

		reencoded, err := binn.Marshal(value)
		if err != nil {
			return cli.Internal("re-encode value %d: %w", index, err)
		}
		if !bytes.Equal(original, reencoded) {
			fmt.Fprintln(w, describeMismatch(index, start, original, reencoded))
			return &cli.ExitError{Code: 1}
		}
	}
}

func describeMismatch(index int, start int64, original, reencoded []byte) string {
	offset := 0
	minLength := min(len(original), len(reencoded))
	for offset < minLength && original[offset] == reencoded[offset] {
		offset++
	}

	return fmt.Sprintf("not canonical: value %d differs at byte %d (value %d bytes, canonical %d bytes)",
		index, start+int64(offset), len(original), len(reencoded))
}
