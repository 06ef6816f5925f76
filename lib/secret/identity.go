// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// maxIdentityFile bounds identity files; a real one is a few hundred
// bytes.
const maxIdentityFile = 64 << 10

// ReadIdentity reads an age identity file, or stdin when path is "-",
// and returns its first key line. Blank lines and "#" comments (the
// "# created:" and "# public key:" lines age-keygen writes) are
// skipped.
func ReadIdentity(path string) (*Buffer, error) {
	var source io.Reader = os.Stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		source = file
	}

	data, err := io.ReadAll(io.LimitReader(source, maxIdentityFile+1))
	defer Zero(data)
	if err != nil {
		return nil, fmt.Errorf("reading identity: %w", err)
	}
	if len(data) > maxIdentityFile {
		return nil, fmt.Errorf("identity file exceeds %d bytes", maxIdentityFile)
	}

	for line := range bytes.Lines(data) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		// NewFromBytes zeroes line, which aliases data.
		return NewFromBytes(line)
	}
	return nil, fmt.Errorf("identity file has no key line")
}
