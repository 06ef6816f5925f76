// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the binn tool.
//
// Four variables are injected at build time with -ldflags -X:
//
//	go build -ldflags "-X github.com/bureau-foundation/binn/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// When nothing is injected they fall back to the module build info that
// the Go toolchain embeds, and then to "unknown" / "0.1.0-dev".
package version
