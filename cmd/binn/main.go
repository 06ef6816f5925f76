// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Binn inspects and converts binn-encoded values. It decodes streams to
// JSON or diagnostic notation, encodes JSON, YAML, CBOR, and
// MessagePack into binn, checks that streams are canonical, and packs,
// hashes, and seals whole streams.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/binn/cmd/binn/cli"
	"github.com/bureau-foundation/binn/cmd/binn/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that report their own outcome (validate, a jq filter)
		// return an ExitError carrying the status. Don't print a
		// redundant "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(cli.ExitCodeOf(err))
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := new(slog.LevelVar)
	settings := cli.NewSettings(level)
	logger := cli.NewCommandLogger(level)
	return commands.Root(settings).Execute(ctx, os.Args[1:], logger)
}
