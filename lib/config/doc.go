// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration for the binn tool.
//
// Configuration comes from a single file named by the --config flag
// (via [LoadFile]) or the BINN_CONFIG environment variable (via
// [Load]). There is no file search: with neither set, [Load] returns
// [Default]. Environment variables never override values in the file;
// the only expansion is ${VAR} and ${VAR:-default} in path fields.
//
// Sections:
//
//   - limits -- decoder bounds applied to every binn input
//   - output -- default output format, compact rendering, color policy
//   - archive -- default compression and zstd level for pack
//   - seal -- identity file for open and default recipients for seal
//
// Unknown keys are errors, so a misspelled setting fails loudly instead
// of silently keeping its default.
package config
