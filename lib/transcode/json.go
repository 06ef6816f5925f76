// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcode

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/bureau-foundation/binn/lib/binn"
	"github.com/tidwall/jsonc"
)

// decodeJSON walks the token stream rather than unmarshaling into
// map[string]any so that object member order survives.
func decodeJSON(data []byte, options Options) ([]binn.Value, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var values []binn.Value
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return values, nil
		}
		if err != nil {
			return nil, fmt.Errorf("json value %d: %w", len(values), err)
		}
		value, err := jsonValue(decoder, token, options, 0)
		if err != nil {
			return nil, fmt.Errorf("json value %d: %w", len(values), err)
		}
		values = append(values, value)
	}
}

// decodeJSONC strips comments and trailing commas, then reads JSON.
func decodeJSONC(data []byte, options Options) ([]binn.Value, error) {
	return decodeJSON(jsonc.ToJSON(data), options)
}

func jsonValue(decoder *json.Decoder, token json.Token, options Options, depth int) (binn.Value, error) {
	switch token := token.(type) {
	case nil:
		return binn.Null(), nil
	case bool:
		return binn.Bool(token), nil
	case string:
		return binn.Text(token), nil
	case json.Number:
		return numberValue(token.String(), options), nil
	case json.Delim:
		if depth >= binn.DefaultMaxDepth {
			return binn.Value{}, errTooDeep
		}
		switch token {
		case '[':
			var list []binn.Value
			for decoder.More() {
				element, err := nextJSONValue(decoder, options, depth+1)
				if err != nil {
					return binn.Value{}, fmt.Errorf("[%d]: %w", len(list), err)
				}
				list = append(list, element)
			}
			if _, err := decoder.Token(); err != nil {
				return binn.Value{}, err
			}
			return binn.List(list...), nil
		case '{':
			object := binn.NewObject()
			for decoder.More() {
				keyToken, err := decoder.Token()
				if err != nil {
					return binn.Value{}, err
				}
				key, ok := keyToken.(string)
				if !ok {
					return binn.Value{}, fmt.Errorf("object key is %T, not string", keyToken)
				}
				if object.Has(key) {
					return binn.Value{}, fmt.Errorf("duplicate object key %q", key)
				}
				element, err := nextJSONValue(decoder, options, depth+1)
				if err != nil {
					return binn.Value{}, fmt.Errorf("[%q]: %w", key, err)
				}
				object.Set(key, element)
			}
			if _, err := decoder.Token(); err != nil {
				return binn.Value{}, err
			}
			return binn.ObjectOf(object), nil
		}
	}
	return binn.Value{}, fmt.Errorf("unexpected token %v", token)
}

func nextJSONValue(decoder *json.Decoder, options Options, depth int) (binn.Value, error) {
	token, err := decoder.Token()
	if err != nil {
		return binn.Value{}, err
	}
	return jsonValue(decoder, token, options, depth)
}

// numberValue converts a JSON or YAML number literal. Integers too large
// for 64 bits are kept exactly as DecimalStr.
func numberValue(literal string, options Options) binn.Value {
	if !strings.ContainsAny(literal, ".eE") {
		if i, err := strconv.ParseInt(literal, 10, 64); err == nil {
			return integerValue(i, options)
		}
		if u, err := strconv.ParseUint(literal, 10, 64); err == nil {
			return unsignedValue(u, options)
		}
		return binn.DecimalStr(literal)
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return binn.DecimalStr(literal)
	}
	return binn.Double(f)
}

func encodeJSON(values []binn.Value, options Options) ([]byte, error) {
	var output bytes.Buffer
	for index, value := range values {
		var compact bytes.Buffer
		if err := writeJSON(&compact, value); err != nil {
			return nil, fmt.Errorf("value %d: %w", index, err)
		}
		if options.Compact {
			output.Write(compact.Bytes())
		} else if err := json.Indent(&output, compact.Bytes(), "", "  "); err != nil {
			return nil, fmt.Errorf("value %d: indent: %w", index, err)
		}
		output.WriteByte('\n')
	}
	return output.Bytes(), nil
}

// writeJSON writes v as compact JSON. Object members keep insertion
// order; map entries are written in ascending key order with decimal
// string keys.
func writeJSON(buffer *bytes.Buffer, v binn.Value) error {
	switch v.Kind() {
	case binn.KindNull:
		buffer.WriteString("null")
	case binn.KindBool:
		b, _ := v.AsBool()
		buffer.WriteString(strconv.FormatBool(b))
	case binn.KindU8, binn.KindU16, binn.KindU32, binn.KindU64:
		buffer.WriteString(strconv.FormatUint(unsignedOf(v), 10))
	case binn.KindI8, binn.KindI16, binn.KindI32, binn.KindI64:
		i, _ := v.AsInt64()
		buffer.WriteString(strconv.FormatInt(i, 10))
	case binn.KindFloat:
		f, _ := v.AsFloat()
		writeJSONFloat(buffer, float64(f), 32)
	case binn.KindDouble:
		f, _ := v.AsDouble()
		writeJSONFloat(buffer, f, 64)
	case binn.KindDecimalStr:
		s, _ := v.AsDecimalStr()
		if isJSONNumber(s) {
			buffer.WriteString(s)
		} else {
			writeJSONString(buffer, s)
		}
	case binn.KindText, binn.KindDateTime, binn.KindDate, binn.KindTime:
		s, _ := v.AsString()
		writeJSONString(buffer, s)
	case binn.KindBlob:
		b, _ := v.AsBlob()
		writeJSONString(buffer, base64.StdEncoding.EncodeToString(b))
	case binn.KindList:
		list, _ := v.AsList()
		buffer.WriteByte('[')
		for i, element := range list {
			if i > 0 {
				buffer.WriteByte(',')
			}
			if err := writeJSON(buffer, element); err != nil {
				return err
			}
		}
		buffer.WriteByte(']')
	case binn.KindMap:
		m, _ := v.AsMap()
		buffer.WriteByte('{')
		for i, key := range m.Keys() {
			if i > 0 {
				buffer.WriteByte(',')
			}
			writeJSONString(buffer, strconv.FormatInt(int64(key), 10))
			buffer.WriteByte(':')
			if err := writeJSON(buffer, m[key]); err != nil {
				return err
			}
		}
		buffer.WriteByte('}')
	case binn.KindObject:
		object, _ := v.AsObject()
		buffer.WriteByte('{')
		i := 0
		for key, element := range object.All() {
			if i > 0 {
				buffer.WriteByte(',')
			}
			writeJSONString(buffer, key)
			buffer.WriteByte(':')
			if err := writeJSON(buffer, element); err != nil {
				return err
			}
			i++
		}
		buffer.WriteByte('}')
	default:
		return fmt.Errorf("cannot write %s as JSON", v.Kind())
	}
	return nil
}

// writeJSONFloat writes a finite float as a JSON number and NaN or an
// infinity as the strings "NaN", "Infinity", and "-Infinity", which JSON
// cannot represent as numbers.
func writeJSONFloat(buffer *bytes.Buffer, f float64, bitSize int) {
	switch {
	case math.IsNaN(f):
		writeJSONString(buffer, "NaN")
	case math.IsInf(f, 1):
		writeJSONString(buffer, "Infinity")
	case math.IsInf(f, -1):
		writeJSONString(buffer, "-Infinity")
	default:
		buffer.WriteString(strconv.FormatFloat(f, 'g', -1, bitSize))
	}
}

func writeJSONString(buffer *bytes.Buffer, s string) {
	encoded, _ := json.Marshal(s)
	buffer.Write(encoded)
}

// isJSONNumber reports whether s is a JSON number literal, so a decimal
// can be written unquoted without losing precision.
func isJSONNumber(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	var number json.Number
	return json.Unmarshal([]byte(s), &number) == nil
}

func unsignedOf(v binn.Value) uint64 {
	switch v.Kind() {
	case binn.KindU8:
		u, _ := v.AsU8()
		return uint64(u)
	case binn.KindU16:
		u, _ := v.AsU16()
		return uint64(u)
	case binn.KindU32:
		u, _ := v.AsU32()
		return uint64(u)
	}
	u, _ := v.AsU64()
	return u
}
