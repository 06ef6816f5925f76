// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import "github.com/bureau-foundation/binn/cmd/binn/cli"

// Commands returns the archive, digest, and encryption subcommands.
func Commands(settings *cli.Settings) []*cli.Command {
	return []*cli.Command{
		packCommand(settings),
		unpackCommand(settings),
		hashCommand(settings),
		sealCommand(settings),
		openCommand(settings),
		keygenCommand(),
	}
}
