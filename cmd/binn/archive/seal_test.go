// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/binn/cmd/binn/cli"
	"github.com/bureau-foundation/binn/lib/binn"
	"github.com/bureau-foundation/binn/lib/sealed"
	"github.com/bureau-foundation/binn/lib/secret"
)

func generateKeypair(t *testing.T) *sealed.Keypair {
	t.Helper()
	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	t.Cleanup(func() { keypair.Close() })
	return keypair
}

// writeIdentityFile writes keypair to a file in the age-keygen format.
func writeIdentityFile(t *testing.T, keypair *sealed.Keypair) string {
	t.Helper()
	var buffer bytes.Buffer
	if err := writeIdentity(&buffer, keypair, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)); err != nil {
		t.Fatalf("writeIdentity: %v", err)
	}
	return writeFile(t, "identity", buffer.Bytes())
}

func TestSealOpenRoundTrip(t *testing.T) {
	keypair := generateKeypair(t)
	stream := encodeValues(t, sampleValues())

	var ciphertext bytes.Buffer
	if err := sealStream(stream, &ciphertext, []string{keypair.PublicKey}, binn.Limits{}); err != nil {
		t.Fatalf("sealStream: %v", err)
	}
	if !strings.HasSuffix(ciphertext.String(), "\n") || strings.Count(ciphertext.String(), "\n") != 1 {
		t.Errorf("ciphertext is not one line: %q", ciphertext.String())
	}

	privateKey, err := readIdentity(writeIdentityFile(t, keypair))
	if err != nil {
		t.Fatalf("readIdentity: %v", err)
	}
	defer privateKey.Close()

	var opened bytes.Buffer
	if err := openStream(ciphertext.Bytes(), &opened, privateKey, binn.Limits{}, false); err != nil {
		t.Fatalf("openStream: %v", err)
	}
	if !bytes.Equal(opened.Bytes(), stream) {
		t.Errorf("opened stream differs\ngot  %x\nwant %x", opened.Bytes(), stream)
	}
}

func TestOpenStream_WrongIdentityIsForbidden(t *testing.T) {
	keypair := generateKeypair(t)
	other := generateKeypair(t)

	var ciphertext bytes.Buffer
	if err := sealStream(encodeValues(t, sampleValues()), &ciphertext, []string{keypair.PublicKey}, binn.Limits{}); err != nil {
		t.Fatalf("sealStream: %v", err)
	}

	var opened bytes.Buffer
	err := openStream(ciphertext.Bytes(), &opened, other.PrivateKey, binn.Limits{}, false)
	if cli.CategoryOf(err) != cli.CategoryForbidden {
		t.Fatalf("error = %v, want forbidden", err)
	}
	if cli.ExitCodeOf(err) != 4 {
		t.Errorf("ExitCodeOf = %d, want 4", cli.ExitCodeOf(err))
	}
}

func TestOpenStream_Rejects(t *testing.T) {
	keypair := generateKeypair(t)
	tests := []struct {
		name string
		data string
	}{
		{"empty", "  \n"},
		{"not base64", "!!!"},
		{"not age", "aGVsbG8gd29ybGQ="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := openStream([]byte(tt.data), &bytes.Buffer{}, keypair.PrivateKey, binn.Limits{}, false)
			if cli.CategoryOf(err) != cli.CategoryValidation {
				t.Errorf("error = %v, want validation", err)
			}
		})
	}
}

func TestSealStream_Rejects(t *testing.T) {
	keypair := generateKeypair(t)
	stream := encodeValues(t, sampleValues())

	tests := []struct {
		name       string
		data       []byte
		recipients []string
	}{
		{"no recipients", stream, nil},
		{"invalid recipient", stream, []string{"age1notakey"}},
		{"empty input", nil, []string{keypair.PublicKey}},
		{"malformed input", []byte{0xa0, 0x05}, []string{keypair.PublicKey}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var output bytes.Buffer
			err := sealStream(tt.data, &output, tt.recipients, binn.Limits{})
			if cli.CategoryOf(err) != cli.CategoryValidation {
				t.Errorf("error = %v, want validation", err)
			}
			if output.Len() != 0 {
				t.Errorf("wrote %d bytes on error", output.Len())
			}
		})
	}
}

func TestReadIdentity(t *testing.T) {
	keypair := generateKeypair(t)
	privateKey, err := readIdentity(writeIdentityFile(t, keypair))
	if err != nil {
		t.Fatalf("readIdentity: %v", err)
	}
	defer privateKey.Close()
	publicKey, err := sealed.PublicKeyOf(privateKey)
	if err != nil || publicKey != keypair.PublicKey {
		t.Errorf("PublicKeyOf = %q, %v; want %q", publicKey, err, keypair.PublicKey)
	}

	if _, err := readIdentity(filepath.Join(t.TempDir(), "absent")); cli.CategoryOf(err) != cli.CategoryNotFound {
		t.Errorf("missing identity error = %v, want not found", err)
	}
	garbage := writeFile(t, "garbage", []byte("# comment\nAGE-SECRET-KEY-NOPE\n"))
	if _, err := readIdentity(garbage); cli.CategoryOf(err) != cli.CategoryValidation {
		t.Errorf("garbage identity error = %v, want validation", err)
	}
}

func TestWriteIdentity(t *testing.T) {
	keypair := generateKeypair(t)
	var buffer bytes.Buffer
	if err := writeIdentity(&buffer, keypair, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)); err != nil {
		t.Fatalf("writeIdentity: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buffer.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("identity has %d lines, want 3:\n%s", len(lines), buffer.String())
	}
	if lines[0] != "# created: 2026-01-02T03:04:05Z" {
		t.Errorf("line 1 = %q", lines[0])
	}
	if lines[1] != "# public key: "+keypair.PublicKey {
		t.Errorf("line 2 = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "AGE-SECRET-KEY-1") {
		t.Errorf("line 3 does not hold the private key")
	}
}

func TestKeygenCommand_Output(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity")
	stdout := redirectStdout(t)

	if err := keygenCommand().Execute(t.Context(), []string{"-o", path}, discardLogger); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat identity: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("identity mode = %o, want 600", info.Mode().Perm())
	}

	privateKey, err := secret.ReadIdentity(path)
	if err != nil {
		t.Fatalf("ReadIdentity: %v", err)
	}
	defer privateKey.Close()
	publicKey, err := sealed.PublicKeyOf(privateKey)
	if err != nil {
		t.Fatalf("PublicKeyOf: %v", err)
	}
	if got := stdout(); got != "Public key: "+publicKey+"\n" {
		t.Errorf("stdout = %q, want the public key", got)
	}

	err = keygenCommand().Execute(t.Context(), []string{"-o", path}, discardLogger)
	if cli.CategoryOf(err) != cli.CategoryConflict {
		t.Errorf("second keygen error = %v, want conflict", err)
	}
}

func TestOpenCommand_BothFromStdin(t *testing.T) {
	command := openCommand(testSettings(t))
	err := command.Execute(t.Context(), []string{"-i", "-"}, discardLogger)
	if cli.CategoryOf(err) != cli.CategoryValidation {
		t.Errorf("error = %v, want validation", err)
	}
}

func TestOpenCommand_NoIdentity(t *testing.T) {
	command := openCommand(testSettings(t))
	err := command.Execute(t.Context(), nil, discardLogger)
	if err == nil || !strings.Contains(err.Error(), "no identity") {
		t.Errorf("error = %v, want no identity", err)
	}
}
