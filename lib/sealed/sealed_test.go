// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/bureau-foundation/binn/lib/binn"
	"github.com/bureau-foundation/binn/lib/secret"
)

func generate(t *testing.T) *Keypair {
	t.Helper()
	keypair, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error: %v", err)
	}
	t.Cleanup(func() { keypair.Close() })
	return keypair
}

func sampleStream() []binn.Value {
	return []binn.Value{
		binn.ObjectOf(binn.NewObject(
			binn.Member{Key: "user", Value: binn.Text("ops")},
			binn.Member{Key: "token", Value: binn.Blob([]byte{0xde, 0xad, 0xbe, 0xef})},
		)),
		binn.List(binn.U32(7), binn.Null()),
	}
}

func assertStream(t *testing.T, got, want []binn.Value) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if !binn.Equal(got[i], want[i]) {
			t.Errorf("value %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestGenerateKeypair(t *testing.T) {
	keypair := generate(t)
	if !strings.HasPrefix(keypair.PrivateKey.String(), "AGE-SECRET-KEY-1") {
		t.Error("private key lacks the AGE-SECRET-KEY-1 prefix")
	}
	if !strings.HasPrefix(keypair.PublicKey, "age1") {
		t.Errorf("PublicKey = %q, want prefix age1", keypair.PublicKey)
	}
	public, err := PublicKeyOf(keypair.PrivateKey)
	if err != nil {
		t.Fatalf("PublicKeyOf: %v", err)
	}
	if public != keypair.PublicKey {
		t.Errorf("PublicKeyOf = %q, want %q", public, keypair.PublicKey)
	}

	other := generate(t)
	if other.PublicKey == keypair.PublicKey {
		t.Error("two generated keypairs share a public key")
	}
}

func TestSealOpen_SingleRecipient(t *testing.T) {
	keypair := generate(t)
	ciphertext, err := Seal(sampleStream(), []string{keypair.PublicKey})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		t.Fatalf("Seal returned invalid base64: %v", err)
	}
	if bytes.Contains(raw, []byte("ops")) {
		t.Error("ciphertext contains plaintext")
	}

	values, err := Open(ciphertext, keypair.PrivateKey)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	assertStream(t, values, sampleStream())
}

func TestSealOpen_MultipleRecipients(t *testing.T) {
	machine := generate(t)
	escrow := generate(t)
	ciphertext, err := Seal(sampleStream(), []string{machine.PublicKey, escrow.PublicKey})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	for name, keypair := range map[string]*Keypair{"machine": machine, "escrow": escrow} {
		values, err := Open(ciphertext, keypair.PrivateKey)
		if err != nil {
			t.Fatalf("Open with %s key: %v", name, err)
		}
		assertStream(t, values, sampleStream())
	}
}

func TestSealOpen_EmptyStream(t *testing.T) {
	keypair := generate(t)
	ciphertext, err := Seal(nil, []string{keypair.PublicKey})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	values, err := Open(ciphertext, keypair.PrivateKey)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("Open returned %d values, want 0", len(values))
	}
}

func TestOpen_DecoderLimits(t *testing.T) {
	keypair := generate(t)
	nested := binn.List(binn.List(binn.List()))
	ciphertext, err := Seal([]binn.Value{nested}, []string{keypair.PublicKey})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	_, err = Open(ciphertext, keypair.PrivateKey, binn.WithMaxDepth(2))
	if binn.CodeOf(err) != binn.CodeDepthOverflow {
		t.Errorf("error = %v, want depth overflow", err)
	}
}

func TestOpen_Rejects(t *testing.T) {
	keypair := generate(t)
	wrong := generate(t)
	ciphertext, err := Seal(sampleStream(), []string{keypair.PublicKey})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(ciphertext)
	raw[len(raw)-1] ^= 0xff
	corrupted := base64.StdEncoding.EncodeToString(raw)

	invalidKey, err := secret.NewFromBytes([]byte("not-a-key"))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	defer invalidKey.Close()

	tests := []struct {
		name       string
		ciphertext string
		key        *secret.Buffer
	}{
		{"wrong key", ciphertext, wrong.PrivateKey},
		{"invalid private key", ciphertext, invalidKey},
		{"invalid base64", "!!!not base64!!!", keypair.PrivateKey},
		{"corrupted ciphertext", corrupted, keypair.PrivateKey},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Open(test.ciphertext, test.key); err == nil {
				t.Error("Open succeeded")
			}
		})
	}
}

func TestOpen_WrongKeyIsNoIdentityMatch(t *testing.T) {
	keypair := generate(t)
	wrong := generate(t)
	ciphertext, err := Seal(sampleStream(), []string{keypair.PublicKey})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := Open(ciphertext, wrong.PrivateKey); !errors.Is(err, ErrNoIdentityMatch) {
		t.Errorf("Open with wrong key = %v, want ErrNoIdentityMatch", err)
	}
}

func TestSeal_Rejects(t *testing.T) {
	if _, err := Seal(sampleStream(), nil); err == nil {
		t.Error("Seal with no recipients succeeded")
	}
	if _, err := Seal(sampleStream(), []string{"age1invalid"}); err == nil {
		t.Error("Seal with an invalid recipient succeeded")
	}
}

func TestParseKeys(t *testing.T) {
	keypair := generate(t)
	if err := ParsePublicKey(keypair.PublicKey); err != nil {
		t.Errorf("ParsePublicKey: %v", err)
	}
	if err := ParsePublicKey("ssh-ed25519 AAAA"); err == nil {
		t.Error("ParsePublicKey accepted an ssh key")
	}
	if err := ParsePrivateKey(keypair.PrivateKey); err != nil {
		t.Errorf("ParsePrivateKey: %v", err)
	}
}
