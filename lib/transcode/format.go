// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcode

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/bureau-foundation/binn/lib/binn"
)

// Format names a serialization format.
type Format string

const (
	FormatBinn    Format = "binn"
	FormatJSON    Format = "json"
	FormatJSONC   Format = "jsonc"
	FormatYAML    Format = "yaml"
	FormatCBOR    Format = "cbor"
	FormatMsgpack Format = "msgpack"
	FormatProto   Format = "proto"
)

// Formats lists every supported format.
var Formats = []Format{FormatBinn, FormatJSON, FormatJSONC, FormatYAML, FormatCBOR, FormatMsgpack, FormatProto}

// ErrWriteUnsupported is returned by Encode for formats that can only be
// read.
var ErrWriteUnsupported = errors.New("transcode: format cannot be written")

// Parse returns the format named by name. It accepts the common file
// extensions as aliases ("yml", "mpk", "pb").
func Parse(name string) (Format, error) {
	switch normalized := strings.ToLower(strings.TrimPrefix(name, ".")); normalized {
	case "yml":
		return FormatYAML, nil
	case "mpk", "msgp":
		return FormatMsgpack, nil
	case "pb", "protobuf":
		return FormatProto, nil
	default:
		if format := Format(normalized); slices.Contains(Formats, format) {
			return format, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (known: %s)", name, formatList())
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, format := range Formats {
		names[i] = string(format)
	}
	return strings.Join(names, ", ")
}

// Options controls conversions. The zero Options is ready to use.
type Options struct {
	// NarrowIntegers stores integers read from JSON, YAML, CBOR, and
	// protobuf in the smallest width that holds them: unsigned for
	// non-negative values, signed otherwise. Without it, integers become
	// I64, or U64 above math.MaxInt64. Protobuf numbers stay Double
	// unless narrowed.
	NarrowIntegers bool

	// IntegerKeysAsMap turns YAML mappings whose keys are all 32-bit
	// integers into binn maps instead of objects.
	IntegerKeysAsMap bool

	// Compact writes JSON on one line per value and YAML in flow style.
	Compact bool

	// Limits bound binn input. They also cap nesting depth and element
	// counts for CBOR input.
	Limits binn.Limits
}

// Decode reads every value in data.
func Decode(format Format, data []byte, options Options) ([]binn.Value, error) {
	switch format {
	case FormatBinn:
		return decodeBinn(data, options)
	case FormatJSON:
		return decodeJSON(data, options)
	case FormatJSONC:
		return decodeJSONC(data, options)
	case FormatYAML:
		return decodeYAML(data, options)
	case FormatCBOR:
		return decodeCBOR(data, options)
	case FormatMsgpack:
		return decodeMsgpack(data, options)
	case FormatProto:
		return decodeProto(data, options)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// Encode writes values in format.
func Encode(format Format, values []binn.Value, options Options) ([]byte, error) {
	switch format {
	case FormatBinn:
		return encodeBinn(values)
	case FormatJSON:
		return encodeJSON(values, options)
	case FormatJSONC:
		return nil, fmt.Errorf("%w: %s", ErrWriteUnsupported, format)
	case FormatYAML:
		return encodeYAML(values, options)
	case FormatCBOR:
		return encodeCBOR(values)
	case FormatMsgpack:
		return encodeMsgpack(values)
	case FormatProto:
		return encodeProto(values)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

func decodeBinn(data []byte, options Options) ([]binn.Value, error) {
	decoder := binn.NewDecoder(bytes.NewReader(data), binn.WithLimits(options.Limits))
	var values []binn.Value
	for {
		value, err := decoder.Decode()
		if err == io.EOF {
			return values, nil
		}
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", len(values), err)
		}
		values = append(values, value)
	}
}

func encodeBinn(values []binn.Value) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := binn.NewEncoder(&buffer)
	for index, value := range values {
		if _, err := encoder.Encode(value); err != nil {
			return nil, fmt.Errorf("value %d: %w", index, err)
		}
	}
	return buffer.Bytes(), nil
}

// integerValue returns the binn value for a signed integer read from a
// format without integer widths.
func integerValue(i int64, options Options) binn.Value {
	if i >= 0 {
		if options.NarrowIntegers {
			return unsignedValue(uint64(i), options)
		}
		return binn.I64(i)
	}
	if !options.NarrowIntegers {
		return binn.I64(i)
	}
	switch {
	case i >= math.MinInt8:
		return binn.I8(int8(i))
	case i >= math.MinInt16:
		return binn.I16(int16(i))
	case i >= math.MinInt32:
		return binn.I32(int32(i))
	}
	return binn.I64(i)
}

// unsignedValue returns the binn value for a non-negative integer.
func unsignedValue(u uint64, options Options) binn.Value {
	if !options.NarrowIntegers {
		if u <= math.MaxInt64 {
			return binn.I64(int64(u))
		}
		return binn.U64(u)
	}
	switch {
	case u <= math.MaxUint8:
		return binn.U8(uint8(u))
	case u <= math.MaxUint16:
		return binn.U16(uint16(u))
	case u <= math.MaxUint32:
		return binn.U32(uint32(u))
	}
	return binn.U64(u)
}

// nodeBudget caps the number of values built from one input in formats
// whose parsers expand references (YAML aliases).
const nodeBudget = binn.DefaultMaxCount

var errTooDeep = fmt.Errorf("nesting exceeds %d levels", binn.DefaultMaxDepth)
