// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive stores a sequence of binn values in one compressed,
// digested file.
//
// An archive is a fixed header, the stored payload, and a trailing
// BLAKE3-256 digest of the uncompressed payload:
//
//	offset  size  field
//	0       4     magic "BNPK"
//	4       1     format version (1)
//	5       1     compression (0 none, 1 lz4, 2 zstd)
//	6       4     value count, little-endian
//	10      8     uncompressed payload length, little-endian
//	18      8     stored payload length, little-endian
//	26      n     stored payload
//	26+n    32    BLAKE3-256 of the uncompressed payload
//
// The uncompressed payload is the concatenated binn encoding of the
// values. [Read] checks every length against its bounds before
// allocating, verifies the digest, decodes the payload with the caller's
// decoder limits, and requires exactly the declared number of values.
package archive
