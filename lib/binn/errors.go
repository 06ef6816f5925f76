// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binn

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies an encode or decode failure.
type Code uint8

const (
	// CodeIO means the underlying reader or writer failed. The
	// reader's or writer's error is available through errors.Unwrap.
	CodeIO Code = iota + 1

	// CodeMalformedTag means a tag byte names no known variant, or a
	// typed decode found a tag belonging to a different variant.
	CodeMalformedTag

	// CodeTruncatedPayload means the stream ended inside a value.
	CodeTruncatedPayload

	// CodeInvalidEncoding means a text payload or object key is not
	// valid UTF-8.
	CodeInvalidEncoding

	// CodeDuplicateKey means a map or object repeated a key.
	CodeDuplicateKey

	// CodeLengthOverflow means a declared length or element count
	// exceeds the configured bound, or a value is too large to be
	// represented with a 32-bit length prefix.
	CodeLengthOverflow

	// CodeDepthOverflow means containers are nested deeper than the
	// decoder's bound.
	CodeDepthOverflow

	// CodeTrailingData means bytes remain after the single value
	// expected by Unmarshal.
	CodeTrailingData
)

var codeNames = map[Code]string{
	CodeIO:               "i/o error",
	CodeMalformedTag:     "malformed tag",
	CodeTruncatedPayload: "truncated payload",
	CodeInvalidEncoding:  "invalid encoding",
	CodeDuplicateKey:     "duplicate key",
	CodeLengthOverflow:   "length overflow",
	CodeDepthOverflow:    "depth overflow",
	CodeTrailingData:     "trailing data",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", uint8(c))
}

// Sentinel errors for errors.Is. Every *Error matches the sentinel of
// its Code.
var (
	ErrIO               = errors.New("binn: i/o error")
	ErrMalformedTag     = errors.New("binn: malformed tag")
	ErrTruncatedPayload = errors.New("binn: truncated payload")
	ErrInvalidEncoding  = errors.New("binn: invalid encoding")
	ErrDuplicateKey     = errors.New("binn: duplicate key")
	ErrLengthOverflow   = errors.New("binn: length overflow")
	ErrDepthOverflow    = errors.New("binn: depth overflow")
	ErrTrailingData     = errors.New("binn: trailing data")
)

var codeSentinels = map[Code]error{
	CodeIO:               ErrIO,
	CodeMalformedTag:     ErrMalformedTag,
	CodeTruncatedPayload: ErrTruncatedPayload,
	CodeInvalidEncoding:  ErrInvalidEncoding,
	CodeDuplicateKey:     ErrDuplicateKey,
	CodeLengthOverflow:   ErrLengthOverflow,
	CodeDepthOverflow:    ErrDepthOverflow,
	CodeTrailingData:     ErrTrailingData,
}

// Error describes a failed encode or decode.
//
// The message names the step that failed and, for failures inside
// containers, where in the value tree it happened:
//
//	binn: decode text at $[2]["name"]: truncated payload: unexpected EOF
type Error struct {
	// Code classifies the failure.
	Code Code

	// Op names the step that failed ("decode", "decode text",
	// "decode object key", "encode blob", ...).
	Op string

	// Path locates the failing value inside nested containers, in
	// the form $[index]["key"]{mapkey}. Empty for top-level values.
	Path string

	// Offset is the number of bytes consumed from the decoder's
	// input when the failure was detected. Zero for encode errors.
	Offset int64

	// Err carries the detail: the reader or writer error for CodeIO
	// and CodeTruncatedPayload, a descriptive error otherwise.
	Err error
}

func (e *Error) Error() string {
	var builder strings.Builder
	builder.WriteString("binn: ")
	builder.WriteString(e.Op)
	if e.Path != "" {
		builder.WriteString(" at ")
		builder.WriteString(e.Path)
	}
	builder.WriteString(": ")
	builder.WriteString(e.Code.String())
	if e.Err != nil {
		builder.WriteString(": ")
		builder.WriteString(e.Err.Error())
	}
	return builder.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's Code.
func (e *Error) Is(target error) bool {
	return codeSentinels[e.Code] == target
}

// CodeOf returns the Code of the first *Error in err's chain, or zero
// if there is none.
func CodeOf(err error) Code {
	var binnErr *Error
	if errors.As(err, &binnErr) {
		return binnErr.Code
	}
	return 0
}

func newError(code Code, op string, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Err: fmt.Errorf(format, args...)}
}

// atPath prefixes segment to the path of err when err is an *Error,
// so the innermost failure accumulates its location as the recursion
// unwinds.
func atPath(err error, segment string) error {
	var binnErr *Error
	if errors.As(err, &binnErr) {
		if binnErr.Path == "" {
			binnErr.Path = "$" + segment
		} else {
			binnErr.Path = "$" + segment + strings.TrimPrefix(binnErr.Path, "$")
		}
	}
	return err
}
