// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/bureau-foundation/binn/lib/binn"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// MessagePack keeps integer width in both directions: every binn
// integer is written with its fixed-width code (uint8 as 0xcc, never as
// a fixnum), and each fixed-width code reads back as the matching binn
// kind. Fixnums from other producers read as U8 (positive) or I8
// (negative).

func decodeMsgpack(data []byte, options Options) ([]binn.Value, error) {
	decoder := msgpack.NewDecoder(bytes.NewReader(data))
	limits := options.Limits.WithDefaults()
	var values []binn.Value
	for {
		if _, err := decoder.PeekCode(); errors.Is(err, io.EOF) {
			return values, nil
		}
		reader := msgpackReader{decoder: decoder, limits: limits}
		value, err := reader.value(0)
		if err != nil {
			return nil, fmt.Errorf("msgpack value %d: %w", len(values), err)
		}
		values = append(values, value)
	}
}

type msgpackReader struct {
	decoder *msgpack.Decoder
	limits  binn.Limits
}

func (r *msgpackReader) value(depth int) (binn.Value, error) {
	d := r.decoder
	code, err := d.PeekCode()
	if err != nil {
		return binn.Value{}, err
	}

	switch {
	case code == msgpcode.Nil:
		return binn.Null(), d.DecodeNil()
	case code == msgpcode.True || code == msgpcode.False:
		b, err := d.DecodeBool()
		return binn.Bool(b), err
	case msgpcode.IsFixedNum(code):
		if code <= msgpcode.PosFixedNumHigh {
			u, err := d.DecodeUint8()
			return binn.U8(u), err
		}
		i, err := d.DecodeInt8()
		return binn.I8(i), err
	case code == msgpcode.Uint8:
		u, err := d.DecodeUint8()
		return binn.U8(u), err
	case code == msgpcode.Uint16:
		u, err := d.DecodeUint16()
		return binn.U16(u), err
	case code == msgpcode.Uint32:
		u, err := d.DecodeUint32()
		return binn.U32(u), err
	case code == msgpcode.Uint64:
		u, err := d.DecodeUint64()
		return binn.U64(u), err
	case code == msgpcode.Int8:
		i, err := d.DecodeInt8()
		return binn.I8(i), err
	case code == msgpcode.Int16:
		i, err := d.DecodeInt16()
		return binn.I16(i), err
	case code == msgpcode.Int32:
		i, err := d.DecodeInt32()
		return binn.I32(i), err
	case code == msgpcode.Int64:
		i, err := d.DecodeInt64()
		return binn.I64(i), err
	case code == msgpcode.Float:
		f, err := d.DecodeFloat32()
		return binn.Float(f), err
	case code == msgpcode.Double:
		f, err := d.DecodeFloat64()
		return binn.Double(f), err
	case msgpcode.IsString(code):
		s, err := d.DecodeString()
		return binn.Text(s), err
	case msgpcode.IsBin(code):
		b, err := d.DecodeBytes()
		return binn.Blob(b), err
	case msgpcode.IsExt(code):
		t, err := d.DecodeTime()
		if err != nil {
			return binn.Value{}, fmt.Errorf("only the timestamp extension is supported: %w", err)
		}
		return binn.DateTime(t.UTC().Format(time.RFC3339Nano)), nil
	case msgpcode.IsFixedArray(code) || code == msgpcode.Array16 || code == msgpcode.Array32:
		return r.list(depth)
	case msgpcode.IsFixedMap(code) || code == msgpcode.Map16 || code == msgpcode.Map32:
		return r.mapping(depth)
	}
	return binn.Value{}, fmt.Errorf("unsupported msgpack code 0x%02x", code)
}

func (r *msgpackReader) enter(depth, count int) error {
	if depth >= r.limits.MaxDepth {
		return fmt.Errorf("nesting exceeds %d levels", r.limits.MaxDepth)
	}
	if count > r.limits.MaxCount {
		return fmt.Errorf("declared count %d exceeds limit %d", count, r.limits.MaxCount)
	}
	return nil
}

func (r *msgpackReader) list(depth int) (binn.Value, error) {
	count, err := r.decoder.DecodeArrayLen()
	if err != nil {
		return binn.Value{}, err
	}
	if count < 0 {
		return binn.Null(), nil
	}
	if err := r.enter(depth, count); err != nil {
		return binn.Value{}, err
	}
	list := make([]binn.Value, 0, min(count, 1024))
	for index := range count {
		element, err := r.value(depth + 1)
		if err != nil {
			return binn.Value{}, fmt.Errorf("[%d]: %w", index, err)
		}
		list = append(list, element)
	}
	return binn.List(list...), nil
}

// mapping reads a map with text keys as an object (in wire order) and a
// map with integer keys as a binn map. The first key decides.
func (r *msgpackReader) mapping(depth int) (binn.Value, error) {
	d := r.decoder
	count, err := d.DecodeMapLen()
	if err != nil {
		return binn.Value{}, err
	}
	if count < 0 {
		return binn.Null(), nil
	}
	if err := r.enter(depth, count); err != nil {
		return binn.Value{}, err
	}
	if count == 0 {
		return binn.ObjectOf(nil), nil
	}

	code, err := d.PeekCode()
	if err != nil {
		return binn.Value{}, err
	}
	if msgpcode.IsString(code) {
		object := binn.NewObject()
		for range count {
			key, err := d.DecodeString()
			if err != nil {
				return binn.Value{}, fmt.Errorf("object key: %w", err)
			}
			if object.Has(key) {
				return binn.Value{}, fmt.Errorf("duplicate object key %q", key)
			}
			element, err := r.value(depth + 1)
			if err != nil {
				return binn.Value{}, fmt.Errorf("[%q]: %w", key, err)
			}
			object.Set(key, element)
		}
		return binn.ObjectOf(object), nil
	}

	m := make(binn.Map, min(count, 1024))
	for range count {
		wide, err := d.DecodeInt64()
		if err != nil {
			return binn.Value{}, fmt.Errorf("map key: %w", err)
		}
		if wide < math.MinInt32 || wide > math.MaxInt32 {
			return binn.Value{}, fmt.Errorf("map key %d does not fit 32 bits", wide)
		}
		key := int32(wide)
		if _, exists := m[key]; exists {
			return binn.Value{}, fmt.Errorf("duplicate map key %d", key)
		}
		element, err := r.value(depth + 1)
		if err != nil {
			return binn.Value{}, fmt.Errorf("{%d}: %w", key, err)
		}
		m[key] = element
	}
	return binn.MapOf(m), nil
}

func encodeMsgpack(values []binn.Value) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := msgpack.NewEncoder(&buffer)
	for index, value := range values {
		if err := writeMsgpack(encoder, value); err != nil {
			return nil, fmt.Errorf("value %d: %w", index, err)
		}
	}
	return buffer.Bytes(), nil
}

func writeMsgpack(e *msgpack.Encoder, v binn.Value) error {
	switch v.Kind() {
	case binn.KindNull:
		return e.EncodeNil()
	case binn.KindBool:
		b, _ := v.AsBool()
		return e.EncodeBool(b)
	case binn.KindU8:
		u, _ := v.AsU8()
		return e.EncodeUint8(u)
	case binn.KindI8:
		i, _ := v.AsI8()
		return e.EncodeInt8(i)
	case binn.KindU16:
		u, _ := v.AsU16()
		return e.EncodeUint16(u)
	case binn.KindI16:
		i, _ := v.AsI16()
		return e.EncodeInt16(i)
	case binn.KindU32:
		u, _ := v.AsU32()
		return e.EncodeUint32(u)
	case binn.KindI32:
		i, _ := v.AsI32()
		return e.EncodeInt32(i)
	case binn.KindU64:
		u, _ := v.AsU64()
		return e.EncodeUint64(u)
	case binn.KindI64:
		i, _ := v.AsI64()
		return e.EncodeInt64(i)
	case binn.KindFloat:
		f, _ := v.AsFloat()
		return e.EncodeFloat32(f)
	case binn.KindDouble:
		f, _ := v.AsDouble()
		return e.EncodeFloat64(f)
	case binn.KindDateTime:
		s, _ := v.AsDateTime()
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return e.EncodeTime(t)
		}
		return e.EncodeString(s)
	case binn.KindText, binn.KindDate, binn.KindTime, binn.KindDecimalStr:
		s, _ := v.AsString()
		return e.EncodeString(s)
	case binn.KindBlob:
		b, _ := v.AsBlob()
		return e.EncodeBytes(b)
	case binn.KindList:
		list, _ := v.AsList()
		if err := e.EncodeArrayLen(len(list)); err != nil {
			return err
		}
		for _, element := range list {
			if err := writeMsgpack(e, element); err != nil {
				return err
			}
		}
		return nil
	case binn.KindMap:
		m, _ := v.AsMap()
		if err := e.EncodeMapLen(len(m)); err != nil {
			return err
		}
		for _, key := range m.Keys() {
			if err := e.EncodeInt32(key); err != nil {
				return err
			}
			if err := writeMsgpack(e, m[key]); err != nil {
				return err
			}
		}
		return nil
	case binn.KindObject:
		object, _ := v.AsObject()
		if err := e.EncodeMapLen(object.Len()); err != nil {
			return err
		}
		for key, element := range object.All() {
			if err := e.EncodeString(key); err != nil {
				return err
			}
			if err := writeMsgpack(e, element); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("cannot write %s as MessagePack", v.Kind())
}
