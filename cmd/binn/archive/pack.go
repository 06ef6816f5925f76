// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/binn/cmd/binn/cli"
	"github.com/bureau-foundation/binn/lib/archive"
	"github.com/bureau-foundation/binn/lib/binhash"
	"github.com/bureau-foundation/binn/lib/binn"
)

// packParams holds the parameters for the "binn pack" command.
type packParams struct {
	cli.JSONOutput
	Compression compressionFlag `json:"-"      flag:"compression"  desc:"payload compression (default: archive.compression from config)"`
	Level       int             `json:"level"  flag:"level"        desc:"zstd level, 1 to 22 (default: archive.level from config)"`
	Output      string          `json:"output" flag:"output,o"     desc:"archive file to write (required)"`
	Force       bool            `json:"force"  flag:"force,f"      desc:"overwrite an existing archive"`
}

// packResult is the JSON output of pack.
type packResult struct {
	Path         string `json:"path"`
	Values       uint32 `json:"values"`
	Compression  string `json:"compression"`
	Length       uint64 `json:"length"`
	StoredLength uint64 `json:"stored_length"`
	Digest       string `json:"digest"`
}

func packCommand(settings *cli.Settings) *cli.Command {
	var params packParams

	return &cli.Command{
		Name:    "pack",
		Summary: "Store binn streams in one compressed archive",
		Description: `Read binn streams from the named files (or stdin) and store all
their values, in order, in one archive file.

Every input is decoded under the configured limits before anything is
written, so an archive only ever holds well-formed values. The payload
is compressed with lz4 or zstd; "auto" probes the payload and stores
it uncompressed when compression would not pay. A BLAKE3 digest of
the uncompressed payload closes the file and is checked by unpack.

The archive is written to a temporary file beside the output and
renamed into place. An existing output is an error unless --force is
given.`,
		Usage: "binn pack [--compression none|lz4|zstd|auto] [--level N] -o ARCHIVE [file...]",
		Examples: []cli.Example{
			{
				Description: "Pack two streams with zstd",
				Command:     "binn pack --compression zstd -o values.bnpk first.binn second.binn",
			},
			{
				Description: "Pack JSON documents converted on the fly",
				Command:     "binn encode records.json | binn pack -o records.bnpk",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			cfg, err := settings.Config()
			if err != nil {
				return err
			}
			if params.Output == "" {
				return cli.Validation("--output is required")
			}
			compression, err := params.Compression.resolve(cfg.Archive.Compression)
			if err != nil {
				return cli.Validation("--compression: %w", err)
			}
			level := params.Level
			if level == 0 {
				level = cfg.Archive.Level
			}
			if level < 0 || level > 22 {
				return cli.Validation("--level must be between 1 and 22, got %d", level)
			}

			values, err := readStreams(args, cfg.DecoderLimits(), logger)
			if err != nil {
				return err
			}

			header, digest, err := packValues(params.Output, values, archive.Options{Compression: compression, Level: level}, params.Force)
			if err != nil {
				return err
			}
			logger.Debug("packed archive",
				"path", params.Output,
				"values", header.Count,
				"compression", header.Compression,
				"stored_length", header.StoredLength,
			)

			result := packResult{
				Path:         params.Output,
				Values:       header.Count,
				Compression:  header.Compression.String(),
				Length:       header.Length,
				StoredLength: header.StoredLength,
				Digest:       digest.String(),
			}
			if done, err := params.EmitJSON(os.Stdout, result); done {
				return err
			}
			fmt.Printf("%s: %d values, %s, %s stored (%s payload)\n",
				result.Path, result.Values, result.Compression,
				formatSize(result.StoredLength), formatSize(result.Length))
			fmt.Printf("blake3 %s\n", result.Digest)
			return nil
		},
	}
}

// readStreams decodes the binn stream of every named file, or of stdin
// when no file is named, and returns all values in order.
func readStreams(paths []string, limits binn.Limits, logger *slog.Logger) ([]binn.Value, error) {
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	var values []binn.Value
	for _, path := range paths {
		data, err := readSource("pack", []string{path})
		if err != nil {
			return nil, err
		}
		decoded, err := decodeStream(data, limits)
		if err != nil {
			return nil, cli.Validation("%s: %w", path, err)
		}
		logger.Debug("read stream", "path", path, "bytes", len(data), "values", len(decoded))
		values = append(values, decoded...)
	}
	return values, nil
}

// packValues writes an archive of values to path through a temporary
// file in the same directory.
func packValues(path string, values []binn.Value, options archive.Options, force bool) (archive.Header, binhash.Digest, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return archive.Header{}, binhash.Digest{}, cli.Conflict("%s already exists; pass --force to overwrite", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return archive.Header{}, binhash.Digest{}, &cli.ToolError{Category: cli.CategoryOf(err), Err: err}
	}

	temporary, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return archive.Header{}, binhash.Digest{}, &cli.ToolError{Category: cli.CategoryOf(err), Err: fmt.Errorf("create archive: %w", err)}
	}
	defer os.Remove(temporary.Name())

	header, digest, err := archive.Write(temporary, values, options)
	if closeErr := temporary.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return archive.Header{}, binhash.Digest{}, cli.Internal("write %s: %w", path, err)
	}
	if err := os.Rename(temporary.Name(), path); err != nil {
		return archive.Header{}, binhash.Digest{}, cli.Internal("rename archive into place: %w", err)
	}
	return header, digest, nil
}
