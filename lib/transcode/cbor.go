// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcode

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"math"
	"math/big"
	"slices"
	"time"

	"github.com/bureau-foundation/binn/lib/binn"
	"github.com/fxamacker/cbor/v2"
)

// cborEncMode writes Core Deterministic Encoding (RFC 8949 §4.2) with
// datetimes as tag 0 text and decimal integers as bignums when they do
// not fit 64 bits.
var cborEncMode cbor.EncMode

func init() {
	options := cbor.CoreDetEncOptions()
	options.Time = cbor.TimeRFC3339Nano
	options.TimeTag = cbor.EncTagRequired
	var err error
	cborEncMode, err = options.EncMode()
	if err != nil {
		panic("transcode: CBOR encoder initialization failed: " + err.Error())
	}
}

// cborDecMode decodes into any with the default map type
// (map[any]any), so integer keys survive and can become binn maps.
func cborDecMode(options Options) (cbor.DecMode, error) {
	limits := options.Limits.WithDefaults()
	return cbor.DecOptions{
		MaxNestedLevels:  min(max(limits.MaxDepth, 4), 65535),
		MaxArrayElements: max(limits.MaxCount, 16),
		MaxMapPairs:      max(limits.MaxCount, 16),
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
}

func decodeCBOR(data []byte, options Options) ([]binn.Value, error) {
	mode, err := cborDecMode(options)
	if err != nil {
		return nil, fmt.Errorf("cbor decoder: %w", err)
	}
	decoder := mode.NewDecoder(bytes.NewReader(data))
	var values []binn.Value
	for {
		var item any
		err := decoder.Decode(&item)
		if err == io.EOF {
			return values, nil
		}
		if err != nil {
			return nil, fmt.Errorf("cbor item %d: %w", len(values), err)
		}
		value, err := cborValue(item, options)
		if err != nil {
			return nil, fmt.Errorf("cbor item %d: %w", len(values), err)
		}
		values = append(values, value)
	}
}

func cborValue(item any, options Options) (binn.Value, error) {
	switch item := item.(type) {
	case nil:
		return binn.Null(), nil
	case bool:
		return binn.Bool(item), nil
	case uint64:
		return unsignedValue(item, options), nil
	case int64:
		return integerValue(item, options), nil
	case float32:
		return binn.Float(item), nil
	case float64:
		return binn.Double(item), nil
	case string:
		return binn.Text(item), nil
	case []byte:
		return binn.Blob(item), nil
	case time.Time:
		return binn.DateTime(item.Format(time.RFC3339Nano)), nil
	case big.Int:
		return binn.DecimalStr(item.String()), nil
	case *big.Int:
		return binn.DecimalStr(item.String()), nil
	case cbor.Tag:
		return cborValue(item.Content, options)
	case []any:
		list := make([]binn.Value, len(item))
		for i, element := range item {
			value, err := cborValue(element, options)
			if err != nil {
				return binn.Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			list[i] = value
		}
		return binn.List(list...), nil
	case map[any]any:
		return cborMap(item, options)
	}
	return binn.Value{}, fmt.Errorf("unsupported CBOR item %T", item)
}

// cborMap converts a CBOR map: all int32 keys make a binn map, all text
// keys make an object with keys in sorted order. Mixed keys are an
// error.
func cborMap(item map[any]any, options Options) (binn.Value, error) {
	integerKeys := make(map[int32]any, len(item))
	textKeys := make([]string, 0, len(item))
	for key := range item {
		switch key := key.(type) {
		case string:
			textKeys = append(textKeys, key)
		case uint64:
			if key > math.MaxInt32 {
				return binn.Value{}, fmt.Errorf("map key %d does not fit 32 bits", key)
			}
			integerKeys[int32(key)] = item[key]
		case int64:
			if key < math.MinInt32 {
				return binn.Value{}, fmt.Errorf("map key %d does not fit 32 bits", key)
			}
			integerKeys[int32(key)] = item[key]
		default:
			return binn.Value{}, fmt.Errorf("unsupported map key type %T", key)
		}
	}
	if len(textKeys) > 0 && len(integerKeys) > 0 {
		return binn.Value{}, fmt.Errorf("map mixes text and integer keys")
	}

	if len(integerKeys) > 0 {
		m := make(binn.Map, len(integerKeys))
		for key, element := range integerKeys {
			value, err := cborValue(element, options)
			if err != nil {
				return binn.Value{}, fmt.Errorf("{%d}: %w", key, err)
			}
			m[key] = value
		}
		return binn.MapOf(m), nil
	}

	slices.SortFunc(textKeys, cmp.Compare)
	object := binn.NewObject()
	for _, key := range textKeys {
		value, err := cborValue(item[key], options)
		if err != nil {
			return binn.Value{}, fmt.Errorf("[%q]: %w", key, err)
		}
		object.Set(key, value)
	}
	return binn.ObjectOf(object), nil
}

func encodeCBOR(values []binn.Value) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := cborEncMode.NewEncoder(&buffer)
	for index, value := range values {
		if err := encoder.Encode(cborItem(value)); err != nil {
			return nil, fmt.Errorf("value %d: %w", index, err)
		}
	}
	return buffer.Bytes(), nil
}

// cborItem converts v to the Go value the CBOR encoder should write.
// Integer types keep their sign; the encoder picks the shortest width.
func cborItem(v binn.Value) any {
	switch v.Kind() {
	case binn.KindDateTime:
		s, _ := v.AsDateTime()
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
		return s
	case binn.KindDecimalStr:
		s, _ := v.AsDecimalStr()
		if n, ok := new(big.Int).SetString(s, 10); ok {
			return n
		}
		return s
	case binn.KindList:
		list, _ := v.AsList()
		items := make([]any, len(list))
		for i, element := range list {
			items[i] = cborItem(element)
		}
		return items
	case binn.KindMap:
		m, _ := v.AsMap()
		items := make(map[int32]any, len(m))
		for key, element := range m {
			items[key] = cborItem(element)
		}
		return items
	case binn.KindObject:
		object, _ := v.AsObject()
		items := make(map[string]any, object.Len())
		for key, element := range object.All() {
			items[key] = cborItem(element)
		}
		return items
	}
	return v.Interface()
}
