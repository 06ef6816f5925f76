// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/binn/cmd/binn/cli"
	"github.com/bureau-foundation/binn/lib/binn"
	"github.com/bureau-foundation/binn/lib/transcode"
)

// stdin is the input used when no file argument is given.
var stdin io.Reader = os.Stdin

// readSource reads the file named by the single optional argument, or
// stdin when there is none or it is "-".
func readSource(command string, args []string) ([]byte, error) {
	if len(args) > 1 {
		return nil, cli.Validation("%s takes at most one file argument, got %d", command, len(args))
	}
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, cli.Internal("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, &cli.ToolError{Category: cli.CategoryOf(err), Err: fmt.Errorf("read %s: %w", args[0], err)}
	}
	return data, nil
}

// decodeStream decodes every binn value in data under limits.
func decodeStream(data []byte, limits binn.Limits) ([]binn.Value, error) {
	values, err := transcode.Decode(transcode.FormatBinn, data, transcode.Options{Limits: limits})
	if err != nil {
		return nil, cli.Validation("decode binn: %w", err)
	}
	return values, nil
}

// formatSize returns a human-readable byte count.
func formatSize(bytes uint64) string {
	switch {
	case bytes >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(1<<30))
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
