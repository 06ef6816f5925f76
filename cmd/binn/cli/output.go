// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"os"
)

// WriteBinary writes encoded bytes to w. Binary output to a terminal is
// refused unless force is set.
func WriteBinary(w io.Writer, data []byte, force bool) error {
	if file, ok := w.(*os.File); ok && !force && IsTerminal(file) {
		return Validation("refusing to write binary output to a terminal; redirect stdout or pass --force")
	}
	if _, err := w.Write(data); err != nil {
		return Internal("write output: %w", err)
	}
	return nil
}
