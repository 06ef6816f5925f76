// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework behind the binn tool.
//
// A [Command] has a name, optional [Command.Subcommands], a params
// struct whose tagged fields become flags ([FlagsFromParams]), and a
// Run function called with a context and a logger. cmd/binn/commands
// builds the tree and [Command.Execute] walks it: it parses flags,
// routes to subcommands, and prints help with examples.
//
// Unknown commands and flags get a "did you mean" hint for the closest
// known name within an edit distance of 3.
//
// Commands fail with a categorized [ToolError], and main exits with
// [ExitCodeOf] of it. [Settings] carries the global --config and
// --verbose flags and loads lib/config on first use.
package cli
