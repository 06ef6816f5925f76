// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bureau-foundation/binn/cmd/binn/cli"
	"github.com/bureau-foundation/binn/lib/binhash"
	"github.com/bureau-foundation/binn/lib/binn"
)

// hashParams holds the parameters for the "binn hash" command.
type hashParams struct {
	cli.JSONOutput
	Value bool `json:"value" flag:"value" desc:"decode the input and hash each value's canonical encoding"`
}

// fileHash is the JSON output of hash for a whole file.
type fileHash struct {
	Path   string `json:"path"`
	Digest string `json:"digest"`
}

// valueHash is one entry of the JSON output of hash --value.
type valueHash struct {
	Index  int    `json:"index"`
	Kind   string `json:"kind"`
	Digest string `json:"digest"`
}

func hashCommand(settings *cli.Settings) *cli.Command {
	var params hashParams

	return &cli.Command{
		Name:    "hash",
		Summary: "Print BLAKE3 digests of a file or of each value",
		Description: `Print the BLAKE3-256 digest of the named file (or stdin) in the
"digest  name" form of b3sum.

With --value, the input is decoded as a binn stream and each value is
hashed separately over its canonical encoding. Two values that are
equal hash equally even when one was written non-canonically (map
entries out of order, a bool byte other than 0x01).`,
		Usage: "binn hash [--value] [--json] [file]",
		Examples: []cli.Example{
			{
				Description: "Hash an archive file",
				Command:     "binn hash values.bnpk",
			},
			{
				Description: "Hash every value of a stream",
				Command:     "binn hash --value stream.binn",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if params.Value {
				cfg, err := settings.Config()
				if err != nil {
					return err
				}
				data, err := readSource("hash", args)
				if err != nil {
					return err
				}
				hashes, err := hashValues(data, cfg.DecoderLimits())
				if err != nil {
					return err
				}
				logger.Debug("hashed values", "count", len(hashes))
				if done, err := params.EmitJSON(os.Stdout, hashes); done {
					return err
				}
				for _, hash := range hashes {
					fmt.Printf("%s  value %d (%s)\n", hash.Digest, hash.Index, hash.Kind)
				}
				return nil
			}

			result, err := hashInput(args)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(os.Stdout, result); done {
				return err
			}
			fmt.Printf("%s  %s\n", result.Digest, result.Path)
			return nil
		},
	}
}

// hashInput hashes the named file, or stdin, without reading it into
// memory.
func hashInput(args []string) (fileHash, error) {
	if len(args) > 1 {
		return fileHash{}, cli.Validation("hash takes at most one file argument, got %d", len(args))
	}
	if len(args) == 0 || args[0] == "-" {
		digest, err := binhash.HashReader(stdin)
		if err != nil {
			return fileHash{}, cli.Internal("hash stdin: %w", err)
		}
		return fileHash{Path: "-", Digest: digest.String()}, nil
	}
	digest, err := binhash.HashFile(args[0])
	if err != nil {
		return fileHash{}, &cli.ToolError{Category: cli.CategoryOf(err), Err: err}
	}
	return fileHash{Path: args[0], Digest: digest.String()}, nil
}

// hashValues decodes a binn stream and hashes each value.
func hashValues(data []byte, limits binn.Limits) ([]valueHash, error) {
	if len(data) == 0 {
		return nil, cli.Validation("empty input: expected binn data")
	}
	values, err := decodeStream(data, limits)
	if err != nil {
		return nil, err
	}
	hashes := make([]valueHash, 0, len(values))
	for index, value := range values {
		digest, err := binhash.HashValue(value)
		if err != nil {
			return nil, cli.Internal("value %d: %w", index, err)
		}
		hashes = append(hashes, valueHash{Index: index, Kind: value.Kind().String(), Digest: digest.String()})
	}
	return hashes, nil
}
