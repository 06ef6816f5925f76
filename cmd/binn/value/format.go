// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"errors"

	"github.com/bureau-foundation/binn/cmd/binn/cli"
	"github.com/bureau-foundation/binn/lib/binn"
	"github.com/bureau-foundation/binn/lib/transcode"
)

// parseFormat resolves a --from or --to flag value.
func parseFormat(flag, name string) (transcode.Format, error) {
	format, err := transcode.Parse(name)
	if err != nil {
		return "", cli.Validation("--%s: %w", flag, err)
	}
	return format, nil
}

// readValues decodes every value in data. Any failure is a problem
// with the input.
func readValues(format transcode.Format, data []byte, options transcode.Options) ([]binn.Value, error) {
	values, err := transcode.Decode(format, data, options)
	if err != nil {
		return nil, cli.Validation("decode %s: %w", format, err)
	}
	return values, nil
}

// writeValues encodes values in format. Encoding fails only on values
// the format cannot represent, so failures are reported as bad input.
func writeValues(format transcode.Format, values []binn.Value, options transcode.Options) ([]byte, error) {
	data, err := transcode.Encode(format, values, options)
	if errors.Is(err, transcode.ErrWriteUnsupported) {
		return nil, cli.Validation("%w", err)
	}
	if err != nil {
		return nil, cli.Validation("encode %s: %w", format, err)
	}
	return data, nil
}

// isBinary reports whether format produces non-text output.
func isBinary(format transcode.Format) bool {
	switch format {
	case transcode.FormatBinn, transcode.FormatCBOR, transcode.FormatMsgpack, transcode.FormatProto:
		return true
	}
	return false
}
