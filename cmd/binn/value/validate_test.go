// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package value

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/bureau-foundation/binn/cmd/binn/cli"
	"github.com/bureau-foundation/binn/lib/binn"
)

func TestValidateStream_Canonical(t *testing.T) {
	data := encodeStream(t,
		sampleObject(),
		binn.MapOf(binn.Map{3: binn.Null(), -1: binn.Bool(false)}),
		binn.Double(2.5),
	)

	var output bytes.Buffer
	if err := validateStream(data, &output, binn.Limits{}); err != nil {
		t.Fatalf("validateStream: %v", err)
	}
	if output.String() != "valid\n" {
		t.Errorf("output = %q, want valid", output.String())
	}
}

func TestValidateStream_NotCanonical(t *testing.T) {
	leading := encodeStream(t, binn.Text("ok"))

	tests := []struct {
		name     string
		value    []byte
		wantByte int
	}{
		{
			// Any non-zero byte decodes as true; only 0x01 is canonical.
			name:     "bool byte 0x02",
			value:    []byte{0x01, 0x02},
			wantByte: len(leading) + 1,
		},
		{
			name: "map keys out of order",
			value: []byte{
				0xe1, 0x02, 0x00, 0x00, 0x00,
				0x02, 0x00, 0x00, 0x00, 0x00,
				0x01, 0x00, 0x00, 0x00, 0x00,
			},
			wantByte: len(leading) + 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := append(append([]byte{}, leading...), tt.value...)

			var output bytes.Buffer
			err := validateStream(data, &output, binn.Limits{})

			var exitError *cli.ExitError
			if !errors.As(err, &exitError) || exitError.Code != 1 {
				t.Fatalf("error = %v, want exit code 1", err)
			}
			want := "not canonical: value 1 differs at byte "
			if !strings.HasPrefix(output.String(), want) {
				t.Fatalf("output = %q, want prefix %q", output.String(), want)
			}
			wantOffset := "at byte " + strconv.Itoa(tt.wantByte) + " "
			if !strings.Contains(output.String(), wantOffset) {
				t.Errorf("output = %q, want %q", output.String(), wantOffset)
			}
		})
	}
}

func TestValidateStream_DecodeFailure(t *testing.T) {
	data := encodeStream(t, binn.U8(1))
	data = append(data, 0xa0)

	var output bytes.Buffer
	err := validateStream(data, &output, binn.Limits{})
	if cli.CategoryOf(err) != cli.CategoryValidation {
		t.Fatalf("error = %v, want validation", err)
	}
	if !strings.Contains(err.Error(), "value 1 at byte 2") {
		t.Errorf("error = %q, want index and offset", err)
	}

	var codecError *binn.Error
	if !errors.As(err, &codecError) || codecError.Code != binn.CodeTruncatedPayload {
		t.Errorf("error chain lacks a truncated payload error: %v", err)
	}
}

func TestValidateStream_Limits(t *testing.T) {
	data := encodeStream(t, binn.Text("longer than four"))

	err := validateStream(data, &bytes.Buffer{}, binn.Limits{MaxLength: 4})
	var codecError *binn.Error
	if !errors.As(err, &codecError) || codecError.Code != binn.CodeLengthOverflow {
		t.Errorf("error = %v, want length overflow", err)
	}
}

func TestDescribeMismatch(t *testing.T) {
	got := describeMismatch(3, 100, []byte{0x01, 0x02}, []byte{0x01, 0x01})
	want := "not canonical: value 3 differs at byte 101 (value 2 bytes, canonical 2 bytes)"
	if got != want {
		t.Errorf("describeMismatch = %q, want %q", got, want)
	}
}
