// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/bureau-foundation/binn/cmd/binn/cli"
	"github.com/bureau-foundation/binn/lib/sealed"
)

// keygenParams holds the parameters for the "binn keygen" command.
type keygenParams struct {
	cli.JSONOutput
	Output string `json:"output" flag:"output,o" desc:"write the identity to this file (mode 0600) instead of stdout"`
}

// keygenResult is the JSON output of keygen with --output.
type keygenResult struct {
	IdentityFile string `json:"identity_file"`
	PublicKey    string `json:"public_key"`
}

func keygenCommand() *cli.Command {
	var params keygenParams

	return &cli.Command{
		Name:    "keygen",
		Summary: "Generate an age identity for seal and open",
		Description: `Generate a new age x25519 keypair.

The identity is written in the age-keygen file format: a "# created:"
line, a "# public key:" line, and the AGE-SECRET-KEY-1 line. Without
-o it goes to stdout; with -o it is written to a new file readable only
by the owner, and the public key is printed. An existing file is never
overwritten.`,
		Usage: "binn keygen [-o FILE] [--json]",
		Examples: []cli.Example{
			{
				Description: "Create an identity and note its recipient",
				Command:     "binn keygen -o ~/.config/binn/identity",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("keygen takes no positional arguments, got %q", args[0])
			}
			keypair, err := sealed.GenerateKeypair()
			if err != nil {
				return cli.Internal("%w", err)
			}
			defer keypair.Close()

			if params.Output == "" {
				return writeIdentity(os.Stdout, keypair, time.Now())
			}

			file, err := os.OpenFile(params.Output, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
			if errors.Is(err, fs.ErrExist) {
				return cli.Conflict("%s already exists", params.Output)
			}
			if err != nil {
				return &cli.ToolError{Category: cli.CategoryOf(err), Err: fmt.Errorf("create identity file: %w", err)}
			}
			writeErr := writeIdentity(file, keypair, time.Now())
			if closeErr := file.Close(); writeErr == nil && closeErr != nil {
				writeErr = cli.Internal("close identity file: %w", closeErr)
			}
			if writeErr != nil {
				os.Remove(params.Output)
				return writeErr
			}
			logger.Debug("wrote identity", "path", params.Output)

			result := keygenResult{IdentityFile: params.Output, PublicKey: keypair.PublicKey}
			if done, err := params.EmitJSON(os.Stdout, result); done {
				return err
			}
			fmt.Printf("Public key: %s\n", keypair.PublicKey)
			return nil
		},
	}
}

// writeIdentity writes keypair in the age-keygen file format.
func writeIdentity(w io.Writer, keypair *sealed.Keypair, created time.Time) error {
	header := fmt.Sprintf("# created: %s\n# public key: %s\n", created.UTC().Format(time.RFC3339), keypair.PublicKey)
	if _, err := io.WriteString(w, header); err != nil {
		return cli.Internal("write identity: %w", err)
	}
	if _, err := w.Write(keypair.PrivateKey.Bytes()); err != nil {
		return cli.Internal("write identity: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return cli.Internal("write identity: %w", err)
	}
	return nil
}
