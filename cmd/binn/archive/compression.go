// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"github.com/bureau-foundation/binn/lib/archive"
)

// compressionFlag is the --compression flag. It remembers whether it
// was given so that the configured default applies otherwise.
type compressionFlag struct {
	value archive.Compression
	set   bool
}

func (f *compressionFlag) String() string {
	if !f.set {
		return ""
	}
	return f.value.String()
}

func (f *compressionFlag) Set(name string) error {
	compression, err := archive.ParseCompression(name)
	if err != nil {
		return err
	}
	f.value = compression
	f.set = true
	return nil
}

func (f *compressionFlag) Type() string { return "none|lz4|zstd|auto" }

// resolve returns the flag's compression, or the parsed fallback name
// when the flag was not given.
func (f *compressionFlag) resolve(fallback string) (archive.Compression, error) {
	if f.set {
		return f.value, nil
	}
	return archive.ParseCompression(fallback)
}
