// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds age identities and decrypted binn payloads in
// memory outside the Go heap.
//
// A [Buffer] is an anonymous mmap region locked into RAM (mlock) and
// excluded from core dumps (MADV_DONTDUMP). Close zeroes, unlocks, and
// unmaps it; any later access panics.
//
//   - [New] allocates a zero-filled buffer
//   - [NewFromBytes] copies into protected memory and zeroes the source
//   - [NewFromReader] reads a bounded stream, such as age plaintext
//   - [ReadIdentity] reads the key line of an age identity file
package secret
