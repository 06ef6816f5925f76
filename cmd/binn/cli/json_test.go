// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"testing"
)

func TestEmitJSON(t *testing.T) {
	var output bytes.Buffer
	off := JSONOutput{}
	if done, err := off.EmitJSON(&output, map[string]int{"values": 3}); done || err != nil || output.Len() != 0 {
		t.Errorf("EmitJSON without --json = %v, %v and wrote %q", done, err, output.String())
	}

	on := JSONOutput{OutputJSON: true}
	done, err := on.EmitJSON(&output, map[string]int{"values": 3})
	if !done || err != nil {
		t.Fatalf("EmitJSON = %v, %v", done, err)
	}
	if output.String() != "{\n  \"values\": 3\n}\n" {
		t.Errorf("output = %q", output.String())
	}
}

func TestEmitJSON_NilSlice(t *testing.T) {
	var output bytes.Buffer
	on := JSONOutput{OutputJSON: true}
	var digests []string
	if _, err := on.EmitJSON(&output, digests); err != nil {
		t.Fatalf("EmitJSON: %v", err)
	}
	if output.String() != "[]\n" {
		t.Errorf("output = %q, want []", output.String())
	}
}
