// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package value implements the binn subcommands that inspect, produce,
// convert, filter, and validate encoded values from the command line.
//
// Subcommands:
//
//   - decode: convert a binn stream to JSON (or another text format).
//   - encode: convert JSON, JSONC, YAML, CBOR, MessagePack, or protobuf
//     to a binn stream.
//   - convert: convert between any two supported formats.
//   - diag: render each value in type-preserving diagnostic notation.
//   - validate: verify that a stream decodes under the configured
//     limits and is in canonical form.
//
// All subcommands accept input from stdin or from a trailing file path
// argument. The --hex flag treats input as hex-encoded binn for
// debugging wire dumps.
//
// When the first positional argument to binn is not a subcommand name,
// it is treated as a jq filter expression: the stream is decoded to
// JSON internally and piped through jq. See [Filter].
package value
