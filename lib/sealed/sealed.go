// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"filippo.io/age"

	"github.com/bureau-foundation/binn/lib/binn"
	"github.com/bureau-foundation/binn/lib/secret"
)

// ErrNoIdentityMatch is returned by Open when the ciphertext was not
// sealed to the given private key.
var ErrNoIdentityMatch = errors.New("sealed: ciphertext is not sealed to this identity")

// MaxPlaintext bounds the decrypted stream Open will hold in memory.
const MaxPlaintext = 256 << 20

// Keypair holds an age x25519 keypair. The caller must Close it.
type Keypair struct {
	// PrivateKey is the AGE-SECRET-KEY-1... identity. Never log it or
	// pass it on a command line.
	PrivateKey *secret.Buffer

	// PublicKey is the age1... recipient string.
	PublicKey string
}

// Close releases the private key memory. It is idempotent.
func (k *Keypair) Close() error {
	if k.PrivateKey != nil {
		return k.PrivateKey.Close()
	}
	return nil
}

// GenerateKeypair generates a new age x25519 keypair.
func GenerateKeypair() (*Keypair, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating age keypair: %w", err)
	}
	// The identity's string form is a heap copy age gives us no way to
	// avoid; the buffer is the copy that outlives this call.
	privateKey, err := secret.NewFromBytes([]byte(identity.String()))
	if err != nil {
		return nil, fmt.Errorf("protecting private key: %w", err)
	}
	return &Keypair{
		PrivateKey: privateKey,
		PublicKey:  identity.Recipient().String(),
	}, nil
}

// Seal encodes values as a binn stream, encrypts it to every recipient
// (age1... strings), and returns the ciphertext in standard base64.
func Seal(values []binn.Value, recipientKeys []string) (string, error) {
	if len(recipientKeys) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}
	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(strings.TrimSpace(key))
		if err != nil {
			return "", fmt.Errorf("parsing recipient key %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, recipients...)
	if err != nil {
		return "", fmt.Errorf("creating age encryptor: %w", err)
	}
	encoder := binn.NewEncoder(writer)
	for index, value := range values {
		if _, err := encoder.Encode(value); err != nil {
			return "", fmt.Errorf("encoding value %d: %w", index, err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalizing age encryption: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext.Bytes()), nil
}

// Open decrypts base64 ciphertext produced by Seal with privateKey and
// decodes every value in it. The private key is borrowed, not closed.
// The decrypted stream lives only in a secret.Buffer that is closed
// before Open returns; decoded values hold their own copies.
func Open(ciphertext string, privateKey *secret.Buffer, options ...binn.DecoderOption) ([]binn.Value, error) {
	identity, err := age.ParseX25519Identity(privateKey.String())
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(ciphertext))
	if err != nil {
		return nil, fmt.Errorf("decoding base64 ciphertext: %w", err)
	}
	reader, err := age.Decrypt(bytes.NewReader(raw), identity)
	var noMatch *age.NoIdentityMatchError
	if errors.As(err, &noMatch) {
		return nil, fmt.Errorf("%w (recipient %s)", ErrNoIdentityMatch, identity.Recipient())
	}
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	plaintext, err := secret.NewFromReader(reader, MaxPlaintext)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted stream: %w", err)
	}
	defer plaintext.Close()

	decoder := binn.NewDecoder(bytes.NewReader(plaintext.Bytes()), options...)
	var values []binn.Value
	for {
		value, err := decoder.Decode()
		if err == io.EOF {
			return values, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decoding value %d: %w", len(values), err)
		}
		values = append(values, value)
	}
}

// ParsePublicKey reports whether publicKey is a valid age x25519
// recipient.
func ParsePublicKey(publicKey string) error {
	if _, err := age.ParseX25519Recipient(publicKey); err != nil {
		return fmt.Errorf("invalid age public key: %w", err)
	}
	return nil
}

// ParsePrivateKey reports whether privateKey holds a valid age x25519
// identity.
func ParsePrivateKey(privateKey *secret.Buffer) error {
	if _, err := age.ParseX25519Identity(privateKey.String()); err != nil {
		return fmt.Errorf("invalid age private key: %w", err)
	}
	return nil
}

// PublicKeyOf returns the recipient string for privateKey.
func PublicKeyOf(privateKey *secret.Buffer) (string, error) {
	identity, err := age.ParseX25519Identity(privateKey.String())
	if err != nil {
		return "", fmt.Errorf("invalid age private key: %w", err)
	}
	return identity.Recipient().String(), nil
}
