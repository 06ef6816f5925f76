// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binn

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
)

// maxWireLength is the largest length or count a 32-bit prefix can
// carry.
const maxWireLength = math.MaxUint32

// Encoder writes binn values to an io.Writer. It does no buffering:
// every value is written with a few small Write calls directly to the
// underlying writer. Wrap the writer in a bufio.Writer when writing
// many values to a file or socket.
type Encoder struct {
	w       io.Writer
	scratch [9]byte
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder { return &Encoder{w: w} }

// Marshal returns the encoding of v.
func Marshal(v Value) ([]byte, error) {
	var buffer bytes.Buffer
	if _, err := NewEncoder(&buffer).Encode(v); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Encode writes v and returns the number of bytes written (tag plus
// payload).
//
// The only failures are a writer error (CodeIO) and a text, blob, or
// container too large for a 32-bit length prefix (CodeLengthOverflow).
// An oversized value is rejected before any of its bytes are written.
func (e *Encoder) Encode(v Value) (int, error) {
	switch v.kind {
	case KindNull:
		return e.writeTag(TagNull, "encode null")
	case KindBool:
		return e.EncodeBool(v.bits != 0)
	case KindU8, KindI8:
		return e.writeFixed(v.kind, v.bits, 1)
	case KindU16, KindI16:
		return e.writeFixed(v.kind, v.bits, 2)
	case KindU32, KindI32, KindFloat:
		return e.writeFixed(v.kind, v.bits, 4)
	case KindU64, KindI64, KindDouble:
		return e.writeFixed(v.kind, v.bits, 8)
	case KindText, KindDateTime, KindDate, KindTime, KindDecimalStr:
		return e.writeString(v.kind, v.str)
	case KindBlob:
		return e.EncodeBlob(v.blob)
	case KindList:
		return e.EncodeList(v.list)
	case KindMap:
		return e.EncodeMap(v.m)
	case KindObject:
		return e.EncodeObject(v.obj)
	}
	return 0, newError(CodeMalformedTag, "encode", "value has unknown kind %d", uint8(v.kind))
}

func (e *Encoder) EncodeNull() (int, error) { return e.writeTag(TagNull, "encode null") }

// EncodeBool writes a Bool. The payload byte is always 0x00 or 0x01.
func (e *Encoder) EncodeBool(b bool) (int, error) {
	var bits uint64
	if b {
		bits = 1
	}
	return e.writeFixed(KindBool, bits, 1)
}

func (e *Encoder) EncodeU8(u uint8) (int, error)   { return e.writeFixed(KindU8, uint64(u), 1) }
func (e *Encoder) EncodeI8(i int8) (int, error)    { return e.writeFixed(KindI8, uint64(i), 1) }
func (e *Encoder) EncodeU16(u uint16) (int, error) { return e.writeFixed(KindU16, uint64(u), 2) }
func (e *Encoder) EncodeI16(i int16) (int, error)  { return e.writeFixed(KindI16, uint64(i), 2) }
func (e *Encoder) EncodeU32(u uint32) (int, error) { return e.writeFixed(KindU32, uint64(u), 4) }
func (e *Encoder) EncodeI32(i int32) (int, error)  { return e.writeFixed(KindI32, uint64(i), 4) }
func (e *Encoder) EncodeU64(u uint64) (int, error) { return e.writeFixed(KindU64, u, 8) }
func (e *Encoder) EncodeI64(i int64) (int, error)  { return e.writeFixed(KindI64, uint64(i), 8) }

func (e *Encoder) EncodeFloat(f float32) (int, error) {
	return e.writeFixed(KindFloat, uint64(math.Float32bits(f)), 4)
}

func (e *Encoder) EncodeDouble(d float64) (int, error) {
	return e.writeFixed(KindDouble, math.Float64bits(d), 8)
}

func (e *Encoder) EncodeText(s string) (int, error)       { return e.writeString(KindText, s) }
func (e *Encoder) EncodeDateTime(s string) (int, error)   { return e.writeString(KindDateTime, s) }
func (e *Encoder) EncodeDate(s string) (int, error)       { return e.writeString(KindDate, s) }
func (e *Encoder) EncodeTime(s string) (int, error)       { return e.writeString(KindTime, s) }
func (e *Encoder) EncodeDecimalStr(s string) (int, error) { return e.writeString(KindDecimalStr, s) }

// EncodeBlob writes b as a Blob.
func (e *Encoder) EncodeBlob(b []byte) (int, error) {
	const op = "encode blob"
	if uint64(len(b)) > maxWireLength {
		return 0, newError(CodeLengthOverflow, op, "%d bytes exceeds 32-bit length prefix", len(b))
	}
	written, err := e.writeHeader(TagBlob, uint32(len(b)), op)
	if err != nil {
		return written, err
	}
	n, err := e.w.Write(b)
	written += n
	if err != nil {
		return written, &Error{Code: CodeIO, Op: op, Err: err}
	}
	return written, nil
}

// EncodeList writes values as a List. Elements may be of any kind.
func (e *Encoder) EncodeList(values []Value) (int, error) {
	const op = "encode list"
	if uint64(len(values)) > maxWireLength {
		return 0, newError(CodeLengthOverflow, op, "%d elements exceeds 32-bit count prefix", len(values))
	}
	written, err := e.writeHeader(TagList, uint32(len(values)), op)
	if err != nil {
		return written, err
	}
	for index, element := range values {
		n, err := e.Encode(element)
		written += n
		if err != nil {
			return written, atPath(err, indexSegment(index))
		}
	}
	return written, nil
}

// EncodeMap writes m as a Map, entries in ascending key order.
func (e *Encoder) EncodeMap(m Map) (int, error) {
	const op = "encode map"
	if uint64(len(m)) > maxWireLength {
		return 0, newError(CodeLengthOverflow, op, "%d entries exceeds 32-bit count prefix", len(m))
	}
	written, err := e.writeHeader(TagMap, uint32(len(m)), op)
	if err != nil {
		return written, err
	}
	for _, key := range m.Keys() {
		binary.LittleEndian.PutUint32(e.scratch[:4], uint32(key))
		n, err := e.w.Write(e.scratch[:4])
		written += n
		if err != nil {
			return written, &Error{Code: CodeIO, Op: "encode map key", Path: "$" + mapKeySegment(key), Err: err}
		}
		n, err = e.Encode(m[key])
		written += n
		if err != nil {
			return written, atPath(err, mapKeySegment(key))
		}
	}
	return written, nil
}

// EncodeObject writes object as an Object, members in insertion order.
// A nil object is written as an empty Object.
func (e *Encoder) EncodeObject(object *Object) (int, error) {
	const op = "encode object"
	if uint64(object.Len()) > maxWireLength {
		return 0, newError(CodeLengthOverflow, op, "%d members exceeds 32-bit count prefix", object.Len())
	}
	written, err := e.writeHeader(TagObject, uint32(object.Len()), op)
	if err != nil {
		return written, err
	}
	for key, value := range object.All() {
		n, err := e.writeKey(key)
		written += n
		if err != nil {
			return written, atPath(err, keySegment(key))
		}
		n, err = e.Encode(value)
		written += n
		if err != nil {
			return written, atPath(err, keySegment(key))
		}
	}
	return written, nil
}

func (e *Encoder) writeTag(tag byte, op string) (int, error) {
	e.scratch[0] = tag
	n, err := e.w.Write(e.scratch[:1])
	if err != nil {
		return n, &Error{Code: CodeIO, Op: op, Err: err}
	}
	return n, nil
}

// writeFixed writes the tag of kind followed by the low width bytes of
// bits, little-endian.
func (e *Encoder) writeFixed(kind Kind, bits uint64, width int) (int, error) {
	e.scratch[0] = kind.Tag()
	binary.LittleEndian.PutUint64(e.scratch[1:], bits)
	n, err := e.w.Write(e.scratch[:1+width])
	if err != nil {
		return n, &Error{Code: CodeIO, Op: "encode " + kind.String(), Err: err}
	}
	return n, nil
}

// writeHeader writes a tag followed by a 32-bit length or count.
func (e *Encoder) writeHeader(tag byte, length uint32, op string) (int, error) {
	e.scratch[0] = tag
	binary.LittleEndian.PutUint32(e.scratch[1:5], length)
	n, err := e.w.Write(e.scratch[:5])
	if err != nil {
		return n, &Error{Code: CodeIO, Op: op, Err: err}
	}
	return n, nil
}

func (e *Encoder) writeString(kind Kind, s string) (int, error) {
	op := "encode " + kind.String()
	if uint64(len(s)) > maxWireLength {
		return 0, newError(CodeLengthOverflow, op, "%d bytes exceeds 32-bit length prefix", len(s))
	}
	written, err := e.writeHeader(kind.Tag(), uint32(len(s)), op)
	if err != nil {
		return written, err
	}
	n, err := io.WriteString(e.w, s)
	written += n
	if err != nil {
		return written, &Error{Code: CodeIO, Op: op, Err: err}
	}
	return written, nil
}

// writeKey writes an object key: a 32-bit length and the key bytes,
// without a tag.
func (e *Encoder) writeKey(key string) (int, error) {
	const op = "encode object key"
	if uint64(len(key)) > maxWireLength {
		return 0, newError(CodeLengthOverflow, op, "%d bytes exceeds 32-bit length prefix", len(key))
	}
	binary.LittleEndian.PutUint32(e.scratch[:4], uint32(len(key)))
	written, err := e.w.Write(e.scratch[:4])
	if err != nil {
		return written, &Error{Code: CodeIO, Op: op, Err: err}
	}
	n, err := io.WriteString(e.w, key)
	written += n
	if err != nil {
		return written, &Error{Code: CodeIO, Op: op, Err: err}
	}
	return written, nil
}
