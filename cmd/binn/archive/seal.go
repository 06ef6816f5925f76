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
	"strings"

	"github.com/bureau-foundation/binn/cmd/binn/cli"
	"github.com/bureau-foundation/binn/lib/binn"
	"github.com/bureau-foundation/binn/lib/sealed"
	"github.com/bureau-foundation/binn/lib/secret"
	"github.com/bureau-foundation/binn/lib/transcode"
)

// sealParams holds the parameters for the "binn seal" command.
type sealParams struct {
	Recipients []string `json:"recipients" flag:"recipient,r" desc:"age1... recipient key, repeatable (default: seal.recipients from config)"`
}

func sealCommand(settings *cli.Settings) *cli.Command {
	var params sealParams

	return &cli.Command{
		Name:    "seal",
		Summary: "Encrypt a binn stream to age recipients",
		Description: `Read a binn stream from the named file (or stdin), decode it under
the configured limits, and encrypt it to every recipient with age
x25519. The ciphertext is written to stdout as one line of base64.

Recipients come from -r, or from seal.recipients in the configuration
when -r is not given.`,
		Usage: "binn seal [-r age1...]... [file]",
		Examples: []cli.Example{
			{
				Description: "Seal a stream to one recipient",
				Command:     "binn seal -r age1ql3z7hjy54pw3hyww5ayyfg7zqgvc7w3j2elw8zmrj2kg5sfn9aqmcac8p values.binn > values.sealed",
			},
			{
				Description: "Encode and seal in one pipeline",
				Command:     "binn encode secrets.json | binn seal -r age1... -r age1...",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			cfg, err := settings.Config()
			if err != nil {
				return err
			}
			recipients := params.Recipients
			if len(recipients) == 0 {
				recipients = cfg.Seal.Recipients
			}
			data, err := readSource("seal", args)
			if err != nil {
				return err
			}
			logger.Debug("sealing", "bytes", len(data), "recipients", len(recipients))
			return sealStream(data, os.Stdout, recipients, cfg.DecoderLimits())
		},
	}
}

// sealStream decodes a binn stream and writes its base64 ciphertext
// line to w.
func sealStream(data []byte, w io.Writer, recipients []string, limits binn.Limits) error {
	if len(recipients) == 0 {
		return cli.Validation("no recipients: pass -r or set seal.recipients in the configuration")
	}
	for _, recipient := range recipients {
		if err := sealed.ParsePublicKey(strings.TrimSpace(recipient)); err != nil {
			return cli.Validation("recipient %q: %w", recipient, err)
		}
	}
	if len(data) == 0 {
		return cli.Validation("empty input: expected binn data")
	}
	values, err := decodeStream(data, limits)
	if err != nil {
		return err
	}

	ciphertext, err := sealed.Seal(values, recipients)
	if err != nil {
		return cli.Internal("seal: %w", err)
	}
	if _, err := fmt.Fprintln(w, ciphertext); err != nil {
		return cli.Internal("write output: %w", err)
	}
	return nil
}

// openParams holds the parameters for the "binn open" command.
type openParams struct {
	Identity string `json:"identity" flag:"identity,i" desc:"age identity file, or - for stdin (default: seal.identity_file from config)"`
	Force    bool   `json:"force"    flag:"force,f"    desc:"write binary output even when stdout is a terminal"`
}

func openCommand(settings *cli.Settings) *cli.Command {
	var params openParams

	return &cli.Command{
		Name:    "open",
		Summary: "Decrypt a sealed stream with an age identity",
		Description: `Read base64 ciphertext produced by "binn seal" from the named file (or
stdin), decrypt it with an age identity, and write the binn stream to
stdout.

The identity is read from the file given by -i, or seal.identity_file
in the configuration. It is held in locked memory that is zeroed when
the command exits, and the decrypted stream never touches the Go heap
before it is decoded. A ciphertext that was not sealed to the
identity exits 4.`,
		Usage: "binn open [-i IDENTITY] [-f] [file]",
		Examples: []cli.Example{
			{
				Description: "Open a sealed stream and inspect it",
				Command:     "binn open -i ~/.config/binn/identity values.sealed | binn diag",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			cfg, err := settings.Config()
			if err != nil {
				return err
			}
			identityPath := params.Identity
			if identityPath == "" {
				identityPath = cfg.Seal.IdentityFile
			}
			if identityPath == "" {
				return cli.Validation("no identity: pass -i or set seal.identity_file in the configuration")
			}
			if identityPath == "-" && (len(args) == 0 || args[0] == "-") {
				return cli.Validation("the identity and the ciphertext cannot both be read from stdin")
			}

			privateKey, err := readIdentity(identityPath)
			if err != nil {
				return err
			}
			defer privateKey.Close()

			data, err := readSource("open", args)
			if err != nil {
				return err
			}
			logger.Debug("opening", "bytes", len(data), "identity", identityPath)
			return openStream(data, os.Stdout, privateKey, cfg.DecoderLimits(), params.Force)
		},
	}
}

// readIdentity reads and checks an age identity file.
func readIdentity(path string) (*secret.Buffer, error) {
	privateKey, err := secret.ReadIdentity(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, cli.NotFound("identity file %s does not exist", path)
	}
	if err != nil {
		return nil, &cli.ToolError{Category: cli.CategoryOf(err), Err: fmt.Errorf("read identity %s: %w", path, err)}
	}
	if err := sealed.ParsePrivateKey(privateKey); err != nil {
		privateKey.Close()
		return nil, cli.Validation("identity %s: %w", path, err)
	}
	return privateKey, nil
}

// openStream decrypts base64 ciphertext and writes the binn stream to
// w.
func openStream(data []byte, w io.Writer, privateKey *secret.Buffer, limits binn.Limits, force bool) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return cli.Validation("empty input: expected sealed ciphertext")
	}
	values, err := sealed.Open(string(data), privateKey, binn.WithLimits(limits))
	if errors.Is(err, sealed.ErrNoIdentityMatch) {
		return cli.Forbidden("%w", err)
	}
	if err != nil {
		return cli.Validation("open: %w", err)
	}

	stream, err := transcode.Encode(transcode.FormatBinn, values, transcode.Options{})
	if err != nil {
		return cli.Internal("re-encode opened values: %w", err)
	}
	return cli.WriteBinary(w, stream, force)
}
