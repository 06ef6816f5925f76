// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash computes BLAKE3-256 digests of binn data.
//
// Because the binn encoding is deterministic (map entries in ascending
// key order, object members in insertion order, fixed-width integers),
// two values that encode identically hash identically, so a digest
// identifies a value rather than a particular file.
//
//   - [HashFile] -- streams a file through BLAKE3 in constant memory
//   - [HashReader] -- the same for any io.Reader
//   - [HashValue] -- digest of a value's encoding, with no intermediate buffer
//   - [FormatDigest] / [ParseDigest] -- the canonical lowercase hex form
//
// This package depends only on lib/binn.
package binhash
