// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package value

import "github.com/bureau-foundation/binn/cmd/binn/cli"

// Commands returns the value subcommands. Each loads the configuration
// from settings when it runs.
func Commands(settings *cli.Settings) []*cli.Command {
	return []*cli.Command{
		decodeCommand(settings),
		encodeCommand(settings),
		convertCommand(settings),
		diagCommand(settings),
		validateCommand(settings),
	}
}
