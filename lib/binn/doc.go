// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binn implements a self-describing binary value format: a
// closed tagged union ([Value]) and streaming encoders and decoders that
// convert values to and from a compact byte representation.
//
// Every encoded value is one tag byte followed by a payload. All
// multi-byte integers are little-endian:
//
//	fixed-width int/float   exact width, no length prefix
//	bool                    1 byte, written as 0x00/0x01, read as zero/nonzero
//	text, date/time, decimal  u32 length + UTF-8 bytes
//	blob                    u32 length + raw bytes
//	list                    u32 count + count tagged values
//	map                     u32 count + count (i32 key, tagged value)
//	object                  u32 count + count (u32 length + UTF-8 key, tagged value)
//
// Containers carry an element count, not a byte length, so a decoder
// must parse a container fully to find its end.
//
// Encoding is deterministic: maps are written in ascending key order and
// objects in insertion order, so the same Value always produces the same
// bytes.
//
// For buffer-oriented use:
//
//	data, err := binn.Marshal(value)
//	value, err := binn.Unmarshal(data)
//
// For stream-oriented use, a [Decoder] reports a clean end of stream with
// a bare io.EOF, which is how callers read a sequence of concatenated
// values:
//
//	decoder := binn.NewDecoder(reader)
//	for {
//	    value, err := decoder.Decode()
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    ...
//	}
//
// A payload cut short by the end of the stream is reported as
// [ErrTruncatedPayload], never as io.EOF. Any error other than io.EOF
// leaves the stream position undefined; callers must not keep decoding
// after one.
//
// Decoders bound every declared length, element count, and nesting depth
// (see [WithMaxLength], [WithMaxCount], [WithMaxDepth]) and grow payload
// buffers only as bytes actually arrive, so a corrupt length field cannot
// force a large allocation.
//
// Encoders and decoders hold no shared state. A single Encoder or Decoder
// must not be used from two goroutines at once.
package binn
