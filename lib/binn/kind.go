// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binn

import "fmt"

// Kind identifies which variant a [Value] holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindU8
	KindI8
	KindU16
	KindI16
	KindU32
	KindI32
	KindU64
	KindI64
	KindFloat
	KindDouble
	KindText
	KindDateTime
	KindDate
	KindTime
	KindDecimalStr
	KindBlob
	KindList
	KindMap
	KindObject
)

var kindNames = [...]string{
	KindNull:       "null",
	KindBool:       "bool",
	KindU8:         "u8",
	KindI8:         "i8",
	KindU16:        "u16",
	KindI16:        "i16",
	KindU32:        "u32",
	KindI32:        "i32",
	KindU64:        "u64",
	KindI64:        "i64",
	KindFloat:      "float",
	KindDouble:     "double",
	KindText:       "text",
	KindDateTime:   "datetime",
	KindDate:       "date",
	KindTime:       "time",
	KindDecimalStr: "decimal",
	KindBlob:       "blob",
	KindList:       "list",
	KindMap:        "map",
	KindObject:     "object",
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// IsText reports whether values of this kind carry a UTF-8 string
// payload: text, datetime, date, time, and decimal.
func (k Kind) IsText() bool {
	switch k {
	case KindText, KindDateTime, KindDate, KindTime, KindDecimalStr:
		return true
	}
	return false
}

// IsContainer reports whether values of this kind hold other values.
func (k Kind) IsContainer() bool {
	return k == KindList || k == KindMap || k == KindObject
}

// Tag bytes. The high three bits name the storage class (no payload,
// 1, 2, 4, or 8 fixed bytes, string, blob, container) and the low bits
// the type within it. These values are the wire format; changing any of
// them breaks every encoded stream.
const (
	TagNull       byte = 0x00
	TagBool       byte = 0x01
	TagU8         byte = 0x20
	TagI8         byte = 0x21
	TagU16        byte = 0x40
	TagI16        byte = 0x41
	TagU32        byte = 0x60
	TagI32        byte = 0x61
	TagFloat      byte = 0x62
	TagU64        byte = 0x80
	TagI64        byte = 0x81
	TagDouble     byte = 0x82
	TagText       byte = 0xA0
	TagDateTime   byte = 0xA1
	TagDate       byte = 0xA2
	TagTime       byte = 0xA3
	TagDecimalStr byte = 0xA4
	TagBlob       byte = 0xC0
	TagList       byte = 0xE0
	TagMap        byte = 0xE1
	TagObject     byte = 0xE2
)

var kindTags = [...]byte{
	KindNull:       TagNull,
	KindBool:       TagBool,
	KindU8:         TagU8,
	KindI8:         TagI8,
	KindU16:        TagU16,
	KindI16:        TagI16,
	KindU32:        TagU32,
	KindI32:        TagI32,
	KindU64:        TagU64,
	KindI64:        TagI64,
	KindFloat:      TagFloat,
	KindDouble:     TagDouble,
	KindText:       TagText,
	KindDateTime:   TagDateTime,
	KindDate:       TagDate,
	KindTime:       TagTime,
	KindDecimalStr: TagDecimalStr,
	KindBlob:       TagBlob,
	KindList:       TagList,
	KindMap:        TagMap,
	KindObject:     TagObject,
}

// Tag returns the wire tag byte for the kind.
func (k Kind) Tag() byte {
	return kindTags[k]
}

// KindOfTag returns the kind identified by a wire tag byte. The second
// result is false for bytes that are not a known tag.
func KindOfTag(tag byte) (Kind, bool) {
	switch tag {
	case TagNull:
		return KindNull, true
	case TagBool:
		return KindBool, true
	case TagU8:
		return KindU8, true
	case TagI8:
		return KindI8, true
	case TagU16:
		return KindU16, true
	case TagI16:
		return KindI16, true
	case TagU32:
		return KindU32, true
	case TagI32:
		return KindI32, true
	case TagU64:
		return KindU64, true
	case TagI64:
		return KindI64, true
	case TagFloat:
		return KindFloat, true
	case TagDouble:
		return KindDouble, true
	case TagText:
		return KindText, true
	case TagDateTime:
		return KindDateTime, true
	case TagDate:
		return KindDate, true
	case TagTime:
		return KindTime, true
	case TagDecimalStr:
		return KindDecimalStr, true
	case TagBlob:
		return KindBlob, true
	case TagList:
		return KindList, true
	case TagMap:
		return KindMap, true
	case TagObject:
		return KindObject, true
	}
	return 0, false
}

// fixedWidth returns the payload width of fixed-size kinds, or -1 for
// kinds whose payload is length- or count-prefixed.
func (k Kind) fixedWidth() int {
	switch k {
	case KindNull:
		return 0
	case KindBool, KindU8, KindI8:
		return 1
	case KindU16, KindI16:
		return 2
	case KindU32, KindI32, KindFloat:
		return 4
	case KindU64, KindI64, KindDouble:
		return 8
	}
	return -1
}
