// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"unicode"

	"github.com/bureau-foundation/binn/cmd/binn/cli"
)

// stdin is the input used when no file argument is given.
var stdin io.Reader = os.Stdin

// inputParams are the input flags shared by every command that reads a
// stream.
type inputParams struct {
	HexInput bool `json:"hex_input" flag:"hex,x" desc:"treat input as hex-encoded bytes"`
}

// readInput returns the bytes of the stream a command works on and the
// args left over once an input path is taken off the end. The last
// argument is the input when it names a regular file; "-" or no such
// argument means stdin. With hexMode the bytes are hex text, decoded
// here. Callers check the leftover args themselves.
func readInput(args []string, hexMode bool) ([]byte, []string, error) {
	path, rest := inputPath(args)
	data, err := readPath(path)
	if err != nil {
		return nil, nil, err
	}
	if hexMode {
		if data, err = decodeHexInput(data); err != nil {
			return nil, nil, err
		}
	}
	return data, rest, nil
}

// inputPath splits a trailing input path off args. The path is "" for
// stdin. A directory or a name that does not exist stays in rest, where
// a jq filter or noExtraArgs can see it.
func inputPath(args []string) (string, []string) {
	if len(args) == 0 {
		return "", args
	}
	last, rest := args[len(args)-1], args[:len(args)-1]
	if last == "-" {
		return "", rest
	}
	if info, err := os.Stat(last); err == nil && !info.IsDir() {
		return last, rest
	}
	return "", args
}

func readPath(path string) ([]byte, error) {
	if path == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, cli.Internal("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &cli.ToolError{Category: cli.CategoryOf(err), Err: fmt.Errorf("read %s: %w", path, err)}
	}
	return data, nil
}

// decodeHexInput decodes hex text, ignoring whitespace anywhere in it,
// so "a0 03 00 00 00" and "a003000000" are the same input.
func decodeHexInput(data []byte) ([]byte, error) {
	digits := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, data)
	if len(digits) == 0 {
		return nil, cli.Validation("hex input is empty")
	}

	decoded := make([]byte, hex.DecodedLen(len(digits)))
	n, err := hex.Decode(decoded, digits)
	if err != nil {
		return nil, cli.Validation("decode hex: %w", err)
	}
	return decoded[:n], nil
}

// noExtraArgs rejects positional arguments left after the input file.
func noExtraArgs(command string, args []string) error {
	if len(args) > 0 {
		return cli.Validation("%s takes no positional arguments besides an optional file path, got %q", command, args[0])
	}
	return nil
}
