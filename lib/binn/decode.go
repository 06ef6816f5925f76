// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binn

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// Default decoder limits. Every one can be changed with a
// [DecoderOption].
const (
	// DefaultMaxLength bounds the byte length of one text, blob, or
	// object key payload.
	DefaultMaxLength = 64 << 20

	// DefaultMaxCount bounds the number of elements of one list, map,
	// or object.
	DefaultMaxCount = 1 << 20

	// DefaultMaxDepth bounds container nesting. A top-level list holding
	// scalars has depth 1.
	DefaultMaxDepth = 512
)

const (
	// readChunk is the largest single allocation made for a payload
	// before its bytes have actually arrived. Longer payloads grow in
	// steps of this size as the reader delivers them.
	readChunk = 64 << 10

	// preallocCount caps the capacity reserved for container elements
	// from a declared count.
	preallocCount = 1024
)

// DecoderOption configures a Decoder.
type DecoderOption func(*decoderOptions)

type decoderOptions struct {
	maxLength int
	maxCount  int
	maxDepth  int
}

// WithMaxLength bounds the byte length of each text, blob, and object
// key. A declared length above n fails with CodeLengthOverflow before
// anything is allocated. n <= 0 restores the default.
func WithMaxLength(n int) DecoderOption {
	return func(o *decoderOptions) {
		if n <= 0 {
			n = DefaultMaxLength
		}
		o.maxLength = n
	}
}

// WithMaxCount bounds the element count of each list, map, and object.
// n <= 0 restores the default.
func WithMaxCount(n int) DecoderOption {
	return func(o *decoderOptions) {
		if n <= 0 {
			n = DefaultMaxCount
		}
		o.maxCount = n
	}
}

// WithMaxDepth bounds container nesting. Deeper input fails with
// CodeDepthOverflow. n <= 0 restores the default.
func WithMaxDepth(n int) DecoderOption {
	return func(o *decoderOptions) {
		if n <= 0 {
			n = DefaultMaxDepth
		}
		o.maxDepth = n
	}
}

// Limits groups the three decoder bounds. A zero or negative field
// means the default.
type Limits struct {
	MaxLength int
	MaxCount  int
	MaxDepth  int
}

// WithDefaults returns l with every unset field replaced by its default.
func (l Limits) WithDefaults() Limits {
	if l.MaxLength <= 0 {
		l.MaxLength = DefaultMaxLength
	}
	if l.MaxCount <= 0 {
		l.MaxCount = DefaultMaxCount
	}
	if l.MaxDepth <= 0 {
		l.MaxDepth = DefaultMaxDepth
	}
	return l
}

// WithLimits applies every set field of limits. Unset fields leave the
// bound chosen by earlier options in place.
func WithLimits(limits Limits) DecoderOption {
	return func(o *decoderOptions) {
		if limits.MaxLength > 0 {
			o.maxLength = limits.MaxLength
		}
		if limits.MaxCount > 0 {
			o.maxCount = limits.MaxCount
		}
		if limits.MaxDepth > 0 {
			o.maxDepth = limits.MaxDepth
		}
	}
}

// Decoder reads a sequence of binn values from an io.Reader.
//
// Decode returns io.EOF, and nothing else, when the reader is exhausted
// exactly where a new value would begin. After any other error the
// stream position is unknown, and every later call returns the same
// error.
type Decoder struct {
	r      io.Reader
	opts   decoderOptions
	offset int64
	depth  int
	err    error

	scratch [8]byte
}

// NewDecoder returns a Decoder reading from r. The decoder reads only
// the bytes each value needs; it does not buffer ahead, so r can be
// shared with other readers between calls. Wrap unbuffered sources
// such as files in a bufio.Reader.
func NewDecoder(r io.Reader, options ...DecoderOption) *Decoder {
	d := &Decoder{
		r: r,
		opts: decoderOptions{
			maxLength: DefaultMaxLength,
			maxCount:  DefaultMaxCount,
			maxDepth:  DefaultMaxDepth,
		},
	}
	for _, option := range options {
		option(&d.opts)
	}
	return d
}

// InputOffset returns the number of bytes consumed from the reader.
func (d *Decoder) InputOffset() int64 { return d.offset }

// Unmarshal decodes the single value held by data. An empty input
// returns io.EOF; bytes left over after the value fail with
// CodeTrailingData.
func Unmarshal(data []byte, options ...DecoderOption) (Value, error) {
	reader := bytes.NewReader(data)
	decoder := NewDecoder(reader, options...)
	value, err := decoder.Decode()
	if err != nil {
		return Value{}, err
	}
	if reader.Len() > 0 {
		return Value{}, &Error{
			Code:   CodeTrailingData,
			Op:     "unmarshal",
			Offset: decoder.offset,
			Err:    fmt.Errorf("%d bytes after the value", reader.Len()),
		}
	}
	return value, nil
}

// Decode reads the next value.
func (d *Decoder) Decode() (Value, error) {
	if d.err != nil {
		return Value{}, d.err
	}
	tag, err := d.readTopTag("decode")
	if err != nil {
		return Value{}, err
	}
	kind, ok := KindOfTag(tag)
	if !ok {
		return Value{}, d.fail(d.unknownTag("decode", tag))
	}
	value, err := d.decodePayload(kind)
	if err != nil {
		return Value{}, d.fail(err)
	}
	return value, nil
}

// decodeKind reads one value and requires it to be of the given kind.
func (d *Decoder) decodeKind(want Kind) (Value, error) {
	if d.err != nil {
		return Value{}, d.err
	}
	op := "decode " + want.String()
	tag, err := d.readTopTag(op)
	if err != nil {
		return Value{}, err
	}
	kind, ok := KindOfTag(tag)
	if !ok {
		return Value{}, d.fail(d.unknownTag(op, tag))
	}
	if kind != want {
		return Value{}, d.fail(d.errorf(CodeMalformedTag, op, "found %s (tag 0x%02x)", kind, tag))
	}
	value, err := d.decodePayload(kind)
	if err != nil {
		return Value{}, d.fail(err)
	}
	return value, nil
}

// DecodeNull reads a Null.
func (d *Decoder) DecodeNull() error {
	_, err := d.decodeKind(KindNull)
	return err
}

// DecodeBool reads a Bool. Any nonzero payload byte reads as true.
func (d *Decoder) DecodeBool() (bool, error) {
	v, err := d.decodeKind(KindBool)
	return v.bits != 0, err
}

func (d *Decoder) DecodeU8() (uint8, error) {
	v, err := d.decodeKind(KindU8)
	return uint8(v.bits), err
}

func (d *Decoder) DecodeI8() (int8, error) {
	v, err := d.decodeKind(KindI8)
	return int8(v.bits), err
}

func (d *Decoder) DecodeU16() (uint16, error) {
	v, err := d.decodeKind(KindU16)
	return uint16(v.bits), err
}

func (d *Decoder) DecodeI16() (int16, error) {
	v, err := d.decodeKind(KindI16)
	return int16(v.bits), err
}

func (d *Decoder) DecodeU32() (uint32, error) {
	v, err := d.decodeKind(KindU32)
	return uint32(v.bits), err
}

func (d *Decoder) DecodeI32() (int32, error) {
	v, err := d.decodeKind(KindI32)
	return int32(v.bits), err
}

func (d *Decoder) DecodeU64() (uint64, error) {
	v, err := d.decodeKind(KindU64)
	return v.bits, err
}

func (d *Decoder) DecodeI64() (int64, error) {
	v, err := d.decodeKind(KindI64)
	return int64(v.bits), err
}

func (d *Decoder) DecodeFloat() (float32, error) {
	v, err := d.decodeKind(KindFloat)
	f, _ := v.AsFloat()
	return f, err
}

func (d *Decoder) DecodeDouble() (float64, error) {
	v, err := d.decodeKind(KindDouble)
	f, _ := v.AsDouble()
	return f, err
}

func (d *Decoder) DecodeText() (string, error) {
	v, err := d.decodeKind(KindText)
	return v.str, err
}

func (d *Decoder) DecodeDateTime() (string, error) {
	v, err := d.decodeKind(KindDateTime)
	return v.str, err
}

func (d *Decoder) DecodeDate() (string, error) {
	v, err := d.decodeKind(KindDate)
	return v.str, err
}

func (d *Decoder) DecodeTime() (string, error) {
	v, err := d.decodeKind(KindTime)
	return v.str, err
}

func (d *Decoder) DecodeDecimalStr() (string, error) {
	v, err := d.decodeKind(KindDecimalStr)
	return v.str, err
}

// DecodeBlob reads a Blob. The returned slice is owned by the caller.
func (d *Decoder) DecodeBlob() ([]byte, error) {
	v, err := d.decodeKind(KindBlob)
	return v.blob, err
}

// DecodeList reads a List. The returned slice is owned by the caller.
func (d *Decoder) DecodeList() ([]Value, error) {
	v, err := d.decodeKind(KindList)
	return v.list, err
}

// DecodeMap reads a Map. The returned map is owned by the caller.
func (d *Decoder) DecodeMap() (Map, error) {
	v, err := d.decodeKind(KindMap)
	return v.m, err
}

// DecodeObject reads an Object. The returned object is owned by the
// caller.
func (d *Decoder) DecodeObject() (*Object, error) {
	v, err := d.decodeKind(KindObject)
	if err != nil {
		return nil, err
	}
	return v.obj, nil
}

// readTopTag reads the tag byte that starts a top-level value. A
// reader exhausted before the first byte yields a bare io.EOF.
func (d *Decoder) readTopTag(op string) (byte, error) {
	n, err := io.ReadFull(d.r, d.scratch[:1])
	d.offset += int64(n)
	if err == io.EOF {
		return 0, io.EOF
	}
	if err != nil {
		return 0, d.fail(d.ioError(op, err))
	}
	return d.scratch[0], nil
}

// readTag reads the tag of a value nested inside a container, where
// end of input is truncation.
func (d *Decoder) readTag(op string) (Kind, error) {
	if err := d.readFull(d.scratch[:1], op); err != nil {
		return 0, err
	}
	kind, ok := KindOfTag(d.scratch[0])
	if !ok {
		return 0, d.unknownTag(op, d.scratch[0])
	}
	return kind, nil
}

func (d *Decoder) decodePayload(kind Kind) (Value, error) {
	switch kind {
	case KindNull:
		return Value{}, nil
	case KindText, KindDateTime, KindDate, KindTime, KindDecimalStr:
		s, err := d.readText("decode " + kind.String())
		if err != nil {
			return Value{}, err
		}
		return textValue(kind, s), nil
	case KindBlob:
		const op = "decode blob"
		length, err := d.readLength(op, "length", d.opts.maxLength)
		if err != nil {
			return Value{}, err
		}
		payload, err := d.readBytes(length, op)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindBlob, blob: payload}, nil
	case KindList:
		return d.decodeList()
	case KindMap:
		return d.decodeMap()
	case KindObject:
		return d.decodeObject()
	}
	return d.decodeFixed(kind)
}

func (d *Decoder) decodeFixed(kind Kind) (Value, error) {
	width := kind.fixedWidth()
	buffer := d.scratch[:width]
	if err := d.readFull(buffer, "decode "+kind.String()); err != nil {
		return Value{}, err
	}
	var bits uint64
	switch kind {
	case KindBool:
		if buffer[0] != 0 {
			bits = 1
		}
	case KindU8:
		bits = uint64(buffer[0])
	case KindI8:
		bits = uint64(int8(buffer[0]))
	case KindU16:
		bits = uint64(binary.LittleEndian.Uint16(buffer))
	case KindI16:
		bits = uint64(int16(binary.LittleEndian.Uint16(buffer)))
	case KindU32, KindFloat:
		bits = uint64(binary.LittleEndian.Uint32(buffer))
	case KindI32:
		bits = uint64(int32(binary.LittleEndian.Uint32(buffer)))
	default:
		bits = binary.LittleEndian.Uint64(buffer)
	}
	return Value{kind: kind, bits: bits}, nil
}

func (d *Decoder) decodeList() (Value, error) {
	const op = "decode list"
	count, err := d.enter(op)
	if err != nil {
		return Value{}, err
	}
	defer d.leave()

	list := make([]Value, 0, min(count, preallocCount))
	for index := range count {
		element, err := d.decodeElement(op)
		if err != nil {
			return Value{}, atPath(err, indexSegment(index))
		}
		list = append(list, element)
	}
	return Value{kind: KindList, list: list}, nil
}

func (d *Decoder) decodeMap() (Value, error) {
	const op = "decode map"
	count, err := d.enter(op)
	if err != nil {
		return Value{}, err
	}
	defer d.leave()

	m := make(Map, min(count, preallocCount))
	for range count {
		if err := d.readFull(d.scratch[:4], "decode map key"); err != nil {
			return Value{}, err
		}
		key := int32(binary.LittleEndian.Uint32(d.scratch[:4]))
		if _, exists := m[key]; exists {
			return Value{}, atPath(d.errorf(CodeDuplicateKey, op, "key %d repeated", key), mapKeySegment(key))
		}
		element, err := d.decodeElement(op)
		if err != nil {
			return Value{}, atPath(err, mapKeySegment(key))
		}
		m[key] = element
	}
	return Value{kind: KindMap, m: m}, nil
}

func (d *Decoder) decodeObject() (Value, error) {
	const op = "decode object"
	count, err := d.enter(op)
	if err != nil {
		return Value{}, err
	}
	defer d.leave()

	object := &Object{
		members: make([]Member, 0, min(count, preallocCount)),
		index:   make(map[string]int, min(count, preallocCount)),
	}
	for range count {
		key, err := d.readText("decode object key")
		if err != nil {
			return Value{}, err
		}
		if object.Has(key) {
			return Value{}, atPath(d.errorf(CodeDuplicateKey, op, "key %q repeated", key), keySegment(key))
		}
		element, err := d.decodeElement(op)
		if err != nil {
			return Value{}, atPath(err, keySegment(key))
		}
		object.add(key, element)
	}
	return Value{kind: KindObject, obj: object}, nil
}

// decodeElement reads one tagged value inside a container.
func (d *Decoder) decodeElement(op string) (Value, error) {
	kind, err := d.readTag(op)
	if err != nil {
		return Value{}, err
	}
	return d.decodePayload(kind)
}

// enter reads a container's element count and descends one level.
// Callers that get a nil error must call leave.
func (d *Decoder) enter(op string) (int, error) {
	if d.depth >= d.opts.maxDepth {
		return 0, d.errorf(CodeDepthOverflow, op, "nesting exceeds %d", d.opts.maxDepth)
	}
	count, err := d.readLength(op, "count", d.opts.maxCount)
	if err != nil {
		return 0, err
	}
	d.depth++
	return count, nil
}

func (d *Decoder) leave() { d.depth-- }

// readLength reads a 32-bit length or count and checks it against
// limit.
func (d *Decoder) readLength(op, what string, limit int) (int, error) {
	if err := d.readFull(d.scratch[:4], op); err != nil {
		return 0, err
	}
	length := binary.LittleEndian.Uint32(d.scratch[:4])
	if uint64(length) > uint64(limit) {
		return 0, d.errorf(CodeLengthOverflow, op, "declared %s %d exceeds limit %d", what, length, limit)
	}
	return int(length), nil
}

// readText reads a length-prefixed UTF-8 string.
func (d *Decoder) readText(op string) (string, error) {
	length, err := d.readLength(op, "length", d.opts.maxLength)
	if err != nil {
		return "", err
	}
	payload, err := d.readBytes(length, op)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(payload) {
		return "", d.errorf(CodeInvalidEncoding, op, "payload is not valid UTF-8")
	}
	return string(payload), nil
}

// readBytes reads exactly length bytes. Memory is committed only as
// bytes arrive, so a short stream that declares a huge length fails
// with CodeTruncatedPayload after at most one chunk of allocation
// beyond what it actually delivered.
func (d *Decoder) readBytes(length int, op string) ([]byte, error) {
	if length <= readChunk {
		payload := make([]byte, length)
		if err := d.readFull(payload, op); err != nil {
			return nil, err
		}
		return payload, nil
	}
	payload := make([]byte, 0, readChunk)
	for len(payload) < length {
		step := min(length-len(payload), readChunk)
		start := len(payload)
		if cap(payload)-start < step {
			grown := make([]byte, start, min(2*cap(payload), length))
			copy(grown, payload)
			payload = grown
		}
		payload = payload[:start+step]
		if err := d.readFull(payload[start:], op); err != nil {
			return nil, err
		}
	}
	return payload, nil
}

// readFull fills buffer from the reader. End of input at any point is
// truncation.
func (d *Decoder) readFull(buffer []byte, op string) error {
	n, err := io.ReadFull(d.r, buffer)
	d.offset += int64(n)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &Error{
			Code:   CodeTruncatedPayload,
			Op:     op,
			Offset: d.offset,
			Err:    fmt.Errorf("%w: needed %d more bytes", io.ErrUnexpectedEOF, len(buffer)-n),
		}
	}
	return d.ioError(op, err)
}

func (d *Decoder) ioError(op string, err error) *Error {
	return &Error{Code: CodeIO, Op: op, Offset: d.offset, Err: err}
}

func (d *Decoder) unknownTag(op string, tag byte) *Error {
	return d.errorf(CodeMalformedTag, op, "unknown tag 0x%02x", tag)
}

func (d *Decoder) errorf(code Code, op, format string, args ...any) *Error {
	err := newError(code, op, format, args...)
	err.Offset = d.offset
	return err
}

// fail records err so that later calls return it, and returns it.
func (d *Decoder) fail(err error) error {
	d.err = err
	d.depth = 0
	return err
}
