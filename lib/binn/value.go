// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binn

import (
	"bytes"
	"math"
	"slices"
)

// Value is one binn value: exactly one variant of the closed set named
// by [Kind], with its payload.
//
// The zero Value is Null. Values are immutable: constructors copy the
// slices, maps, and objects they are given, and nothing in this package
// modifies a Value after construction. Accessors that return slices,
// maps, or objects return the Value's own storage; callers must not
// modify what they receive.
type Value struct {
	kind Kind

	// bits holds bool (0/1), every integer width (sign-extended for
	// signed kinds), and the IEEE-754 bits of float and double.
	bits uint64

	// str holds the payload of the text kinds.
	str string

	blob []byte
	list []Value
	m    Map
	obj  *Object
}

// Null returns the Null value. It is the same as the zero Value.
func Null() Value { return Value{} }

// Bool returns a Bool value.
func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.bits = 1
	}
	return v
}

// U8 returns a U8 value.
func U8(u uint8) Value { return Value{kind: KindU8, bits: uint64(u)} }

// I8 returns an I8 value.
func I8(i int8) Value { return Value{kind: KindI8, bits: uint64(i)} }

// U16 returns a U16 value.
func U16(u uint16) Value { return Value{kind: KindU16, bits: uint64(u)} }

// I16 returns an I16 value.
func I16(i int16) Value { return Value{kind: KindI16, bits: uint64(i)} }

// U32 returns a U32 value.
func U32(u uint32) Value { return Value{kind: KindU32, bits: uint64(u)} }

// I32 returns an I32 value.
func I32(i int32) Value { return Value{kind: KindI32, bits: uint64(i)} }

// U64 returns a U64 value.
func U64(u uint64) Value { return Value{kind: KindU64, bits: u} }

// I64 returns an I64 value.
func I64(i int64) Value { return Value{kind: KindI64, bits: uint64(i)} }

// Float returns a Float (32-bit IEEE-754) value.
func Float(f float32) Value { return Value{kind: KindFloat, bits: uint64(math.Float32bits(f))} }

// Double returns a Double (64-bit IEEE-754) value.
func Double(d float64) Value { return Value{kind: KindDouble, bits: math.Float64bits(d)} }

// Text returns a Text value.
func Text(s string) Value { return Value{kind: KindText, str: s} }

// DateTime returns a DateTime value. The payload format (typically
// RFC 3339) is a caller convention and is not validated.
func DateTime(s string) Value { return Value{kind: KindDateTime, str: s} }

// Date returns a Date value. The payload format is not validated.
func Date(s string) Value { return Value{kind: KindDate, str: s} }

// Time returns a Time value. The payload format is not validated.
func Time(s string) Value { return Value{kind: KindTime, str: s} }

// DecimalStr returns a DecimalStr value: an arbitrary-precision decimal
// number kept as text. The payload is not validated.
func DecimalStr(s string) Value { return Value{kind: KindDecimalStr, str: s} }

// Blob returns a Blob value holding a copy of b.
func Blob(b []byte) Value {
	return Value{kind: KindBlob, blob: bytes.Clone(nonNilBytes(b))}
}

// List returns a List value holding a copy of values.
func List(values ...Value) Value {
	return Value{kind: KindList, list: append(make([]Value, 0, len(values)), values...)}
}

// MapOf returns a Map value holding a copy of m.
func MapOf(m Map) Value {
	return Value{kind: KindMap, m: m.Clone()}
}

// ObjectOf returns an Object value holding a copy of object. A nil
// object yields an empty Object value.
func ObjectOf(object *Object) Value {
	return Value{kind: KindObject, obj: object.Clone()}
}

// textValue builds a text-kind value without the per-kind constructor.
func textValue(kind Kind, s string) Value { return Value{kind: kind, str: s} }

func nonNilBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Len returns the number of elements of a container, the byte length
// of a text or blob payload, and zero for every other kind.
func (v Value) Len() int {
	switch {
	case v.kind.IsText():
		return len(v.str)
	case v.kind == KindBlob:
		return len(v.blob)
	case v.kind == KindList:
		return len(v.list)
	case v.kind == KindMap:
		return len(v.m)
	case v.kind == KindObject:
		return v.obj.Len()
	}
	return 0
}

func (v Value) AsBool() (bool, bool) { return v.bits != 0, v.kind == KindBool }

func (v Value) AsU8() (uint8, bool)   { return uint8(v.bits), v.kind == KindU8 }
func (v Value) AsI8() (int8, bool)    { return int8(v.bits), v.kind == KindI8 }
func (v Value) AsU16() (uint16, bool) { return uint16(v.bits), v.kind == KindU16 }
func (v Value) AsI16() (int16, bool)  { return int16(v.bits), v.kind == KindI16 }
func (v Value) AsU32() (uint32, bool) { return uint32(v.bits), v.kind == KindU32 }
func (v Value) AsI32() (int32, bool)  { return int32(v.bits), v.kind == KindI32 }
func (v Value) AsU64() (uint64, bool) { return v.bits, v.kind == KindU64 }
func (v Value) AsI64() (int64, bool)  { return int64(v.bits), v.kind == KindI64 }

func (v Value) AsFloat() (float32, bool) {
	return math.Float32frombits(uint32(v.bits)), v.kind == KindFloat
}

func (v Value) AsDouble() (float64, bool) {
	return math.Float64frombits(v.bits), v.kind == KindDouble
}

func (v Value) AsText() (string, bool)       { return v.str, v.kind == KindText }
func (v Value) AsDateTime() (string, bool)   { return v.str, v.kind == KindDateTime }
func (v Value) AsDate() (string, bool)       { return v.str, v.kind == KindDate }
func (v Value) AsTime() (string, bool)       { return v.str, v.kind == KindTime }
func (v Value) AsDecimalStr() (string, bool) { return v.str, v.kind == KindDecimalStr }

// AsString returns the payload of any of the text kinds (text,
// datetime, date, time, decimal).
func (v Value) AsString() (string, bool) { return v.str, v.kind.IsText() }

// AsBlob returns the bytes of a Blob. The slice must not be modified.
func (v Value) AsBlob() ([]byte, bool) { return v.blob, v.kind == KindBlob }

// AsList returns the elements of a List. The slice must not be
// modified.
func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

// AsMap returns the entries of a Map. The map must not be modified;
// use [Map.Clone] to obtain a mutable copy.
func (v Value) AsMap() (Map, bool) { return v.m, v.kind == KindMap }

// AsObject returns the entries of an Object. The object must not be
// modified; use [Object.Clone] to obtain a mutable copy.
func (v Value) AsObject() (*Object, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	if v.obj == nil {
		return NewObject(), true
	}
	return v.obj, true
}

// AsInt64 returns any signed or unsigned integer kind widened to int64.
// The second result is false for non-integer kinds and for U64 values
// above math.MaxInt64.
func (v Value) AsInt64() (int64, bool) {
	switch v.kind {
	case KindU8, KindU16, KindU32:
		return int64(v.bits), true
	case KindU64:
		if v.bits > math.MaxInt64 {
			return 0, false
		}
		return int64(v.bits), true
	case KindI8, KindI16, KindI32, KindI64:
		return int64(v.bits), true
	}
	return 0, false
}

// Equal reports whether a and b hold the same variant and the same
// payload, recursively.
//
// Floats and doubles compare by bit pattern: a NaN equals a NaN with
// identical bits, and +0 differs from -0. Maps and objects compare as
// key sets; object insertion order does not affect equality.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindText, KindDateTime, KindDate, KindTime, KindDecimalStr:
		return a.str == b.str
	case KindBlob:
		return bytes.Equal(a.blob, b.blob)
	case KindList:
		return slices.EqualFunc(a.list, b.list, Equal)
	case KindMap:
		return a.m.Equal(b.m)
	case KindObject:
		return a.obj.Equal(b.obj)
	case KindBool:
		return (a.bits != 0) == (b.bits != 0)
	default:
		return a.bits == b.bits
	}
}

// Equal reports whether v and other are structurally equal. See the
// package-level [Equal].
func (v Value) Equal(other Value) bool { return Equal(v, other) }
