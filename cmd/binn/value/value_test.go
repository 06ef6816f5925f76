// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/binn/cmd/binn/cli"
	"github.com/bureau-foundation/binn/lib/binn"
	"github.com/bureau-foundation/binn/lib/config"
)

var discardLogger = slog.New(slog.DiscardHandler)

// testSettings returns Settings that load the default configuration
// regardless of the environment the tests run in.
func testSettings(t *testing.T) *cli.Settings {
	t.Helper()
	t.Setenv(config.EnvironmentVariable, "")
	return cli.NewSettings(nil)
}

// redirectStdout points os.Stdout at a temporary file for the rest of
// the test. The returned function reports what has been written.
func redirectStdout(t *testing.T) func() string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stdout")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create stdout file: %v", err)
	}
	previous := os.Stdout
	os.Stdout = file
	t.Cleanup(func() {
		os.Stdout = previous
		file.Close()
	})
	return func() string {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read stdout file: %v", err)
		}
		return string(data)
	}
}

// encodeStream returns the concatenated binn encoding of values.
func encodeStream(t *testing.T, values ...binn.Value) []byte {
	t.Helper()
	var buffer bytes.Buffer
	encoder := binn.NewEncoder(&buffer)
	for _, value := range values {
		if _, err := encoder.Encode(value); err != nil {
			t.Fatalf("Encode(%s): %v", value, err)
		}
	}
	return buffer.Bytes()
}

// sampleObject is {"id": u8(7), "name": "probe", "tags": ["a", "b"]}.
func sampleObject() binn.Value {
	return binn.ObjectOf(binn.NewObject(
		binn.Member{Key: "id", Value: binn.U8(7)},
		binn.Member{Key: "name", Value: binn.Text("probe")},
		binn.Member{Key: "tags", Value: binn.List(binn.Text("a"), binn.Text("b"))},
	))
}
