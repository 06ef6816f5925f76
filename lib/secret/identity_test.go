// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadIdentity(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"bare key", "AGE-SECRET-KEY-1ABC"},
		{"trailing newline", "AGE-SECRET-KEY-1ABC\n"},
		{"surrounding whitespace", "  AGE-SECRET-KEY-1ABC \t\n"},
		{"age-keygen comments", "# created: 2026-01-02T03:04:05Z\n# public key: age1xyz\nAGE-SECRET-KEY-1ABC\n"},
		{"blank lines first", "\n\n\nAGE-SECRET-KEY-1ABC"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(tempDir, test.name)
			if err := os.WriteFile(path, []byte(test.content), 0600); err != nil {
				t.Fatalf("writing test file: %v", err)
			}
			identity, err := ReadIdentity(path)
			if err != nil {
				t.Fatalf("ReadIdentity: %v", err)
			}
			defer identity.Close()
			if got := identity.String(); got != "AGE-SECRET-KEY-1ABC" {
				t.Errorf("ReadIdentity = %q", got)
			}
		})
	}
}

func TestReadIdentity_Rejects(t *testing.T) {
	tempDir := t.TempDir()
	for name, content := range map[string]string{
		"empty":         "",
		"comments only": "# created: now\n# public key: age1xyz\n",
		"whitespace":    "   \n\t\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(tempDir, name)
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				t.Fatalf("writing test file: %v", err)
			}
			if _, err := ReadIdentity(path); err == nil {
				t.Error("ReadIdentity succeeded")
			}
		})
	}

	if _, err := ReadIdentity(filepath.Join(tempDir, "missing")); err == nil {
		t.Error("ReadIdentity of a missing file succeeded")
	}
}
