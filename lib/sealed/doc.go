// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts binn value streams to age recipients.
//
// [Seal] encodes values straight into an age x25519 encryptor and
// returns base64 ciphertext; [Open] decrypts into a [secret.Buffer],
// decodes the stream with the usual decoder limits, and closes the
// buffer. Private keys travel as secret.Buffer values and never as
// plain strings outside this package.
//
//   - [GenerateKeypair] -- new x25519 keypair, private half in a secret.Buffer
//   - [Seal] / [Open] -- encrypt and decrypt value streams
//   - [ParsePublicKey] / [ParsePrivateKey] -- key validation
//
// Depends on lib/secret for secure memory and lib/binn for the stream
// encoding.
package sealed
