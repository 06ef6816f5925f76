// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/binn/lib/binn"
)

// Digest is a BLAKE3-256 digest.
type Digest [32]byte

// String returns the hex form of the digest.
func (d Digest) String() string { return FormatDigest(d) }

// Sum returns the digest of data.
func Sum(data []byte) Digest { return blake3.Sum256(data) }

// HashReader streams r through BLAKE3.
func HashReader(r io.Reader) (Digest, error) {
	hasher := blake3.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return Digest{}, err
	}
	return digestOf(hasher), nil
}

// HashFile computes the digest of the file at path.
func HashFile(path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	digest, err := HashReader(file)
	if err != nil {
		return Digest{}, fmt.Errorf("hashing %s: %w", path, err)
	}
	return digest, nil
}

// HashValue returns the digest of v's binn encoding. The encoding is
// written straight into the hasher.
func HashValue(v binn.Value) (Digest, error) {
	hasher := blake3.New()
	if _, err := binn.NewEncoder(hasher).Encode(v); err != nil {
		return Digest{}, fmt.Errorf("hashing value: %w", err)
	}
	return digestOf(hasher), nil
}

func digestOf(hasher *blake3.Hasher) Digest {
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// FormatDigest returns the lowercase hex encoding of digest.
func FormatDigest(digest Digest) string {
	return hex.EncodeToString(digest[:])
}

// ParseDigest parses a 64-character hex digest.
func ParseDigest(hexString string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing hash digest: %w", err)
	}
	if len(decoded) != len(digest) {
		return digest, fmt.Errorf("hash digest is %d bytes, want %d", len(decoded), len(digest))
	}
	copy(digest[:], decoded)
	return digest, nil
}
