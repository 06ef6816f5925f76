// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transcode

import (
	"cmp"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/bureau-foundation/binn/lib/binn"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// The proto format is a single serialized google.protobuf.Value. Its
// number type is a double, so integers above 2^53 lose precision on the
// way out and every number reads back as Double unless NarrowIntegers
// is set.

var errProtoSingleValue = errors.New("proto holds exactly one value")

func decodeProto(data []byte, options Options) ([]binn.Value, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var message structpb.Value
	if err := proto.Unmarshal(data, &message); err != nil {
		return nil, fmt.Errorf("proto: %w", err)
	}
	limits := options.Limits.WithDefaults()
	value, err := protoValue(&message, options, limits, 0)
	if err != nil {
		return nil, fmt.Errorf("proto: %w", err)
	}
	return []binn.Value{value}, nil
}

func protoValue(message *structpb.Value, options Options, limits binn.Limits, depth int) (binn.Value, error) {
	if depth >= limits.MaxDepth {
		return binn.Value{}, fmt.Errorf("nesting exceeds %d levels", limits.MaxDepth)
	}
	switch kind := message.GetKind().(type) {
	case nil, *structpb.Value_NullValue:
		return binn.Null(), nil
	case *structpb.Value_BoolValue:
		return binn.Bool(kind.BoolValue), nil
	case *structpb.Value_NumberValue:
		return numberFromDouble(kind.NumberValue, options), nil
	case *structpb.Value_StringValue:
		return binn.Text(kind.StringValue), nil
	case *structpb.Value_ListValue:
		elements := kind.ListValue.GetValues()
		if len(elements) > limits.MaxCount {
			return binn.Value{}, fmt.Errorf("list of %d values exceeds limit %d", len(elements), limits.MaxCount)
		}
		list := make([]binn.Value, len(elements))
		for i, element := range elements {
			value, err := protoValue(element, options, limits, depth+1)
			if err != nil {
				return binn.Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			list[i] = value
		}
		return binn.List(list...), nil
	case *structpb.Value_StructValue:
		fields := kind.StructValue.GetFields()
		if len(fields) > limits.MaxCount {
			return binn.Value{}, fmt.Errorf("struct of %d fields exceeds limit %d", len(fields), limits.MaxCount)
		}
		keys := make([]string, 0, len(fields))
		for key := range fields {
			keys = append(keys, key)
		}
		slices.SortFunc(keys, cmp.Compare)
		object := binn.NewObject()
		for _, key := range keys {
			value, err := protoValue(fields[key], options, limits, depth+1)
			if err != nil {
				return binn.Value{}, fmt.Errorf("[%q]: %w", key, err)
			}
			object.Set(key, value)
		}
		return binn.ObjectOf(object), nil
	}
	return binn.Value{}, fmt.Errorf("unsupported value kind %T", message.GetKind())
}

// numberFromDouble returns f as a Double, or as the narrowest integer
// when narrowing is requested and f is integral.
func numberFromDouble(f float64, options Options) binn.Value {
	if !options.NarrowIntegers || f != math.Trunc(f) || math.IsInf(f, 0) {
		return binn.Double(f)
	}
	if f >= 0 && f < 1<<64 {
		return unsignedValue(uint64(f), options)
	}
	if f < 0 && f >= math.MinInt64 {
		return integerValue(int64(f), options)
	}
	return binn.Double(f)
}

func encodeProto(values []binn.Value) ([]byte, error) {
	if len(values) != 1 {
		return nil, fmt.Errorf("%w, got %d", errProtoSingleValue, len(values))
	}
	message, err := protoMessage(values[0])
	if err != nil {
		return nil, err
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(message)
}

// protoMessage converts v to a google.protobuf.Value. Blobs become
// base64 strings and map keys become decimal strings.
func protoMessage(v binn.Value) (*structpb.Value, error) {
	switch v.Kind() {
	case binn.KindNull:
		return structpb.NewNullValue(), nil
	case binn.KindBool:
		b, _ := v.AsBool()
		return structpb.NewBoolValue(b), nil
	case binn.KindU8, binn.KindU16, binn.KindU32, binn.KindU64:
		return structpb.NewNumberValue(float64(unsignedOf(v))), nil
	case binn.KindI8, binn.KindI16, binn.KindI32, binn.KindI64:
		i, _ := v.AsInt64()
		return structpb.NewNumberValue(float64(i)), nil
	case binn.KindFloat:
		f, _ := v.AsFloat()
		return structpb.NewNumberValue(float64(f)), nil
	case binn.KindDouble:
		f, _ := v.AsDouble()
		return structpb.NewNumberValue(f), nil
	case binn.KindText, binn.KindDateTime, binn.KindDate, binn.KindTime, binn.KindDecimalStr:
		s, _ := v.AsString()
		return structpb.NewStringValue(s), nil
	case binn.KindBlob:
		b, _ := v.AsBlob()
		return structpb.NewStringValue(base64.StdEncoding.EncodeToString(b)), nil
	case binn.KindList:
		list, _ := v.AsList()
		values := make([]*structpb.Value, len(list))
		for i, element := range list {
			message, err := protoMessage(element)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			values[i] = message
		}
		return structpb.NewListValue(&structpb.ListValue{Values: values}), nil
	case binn.KindMap:
		m, _ := v.AsMap()
		fields := make(map[string]*structpb.Value, len(m))
		for key, element := range m {
			message, err := protoMessage(element)
			if err != nil {
				return nil, fmt.Errorf("{%d}: %w", key, err)
			}
			fields[strconv.FormatInt(int64(key), 10)] = message
		}
		return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil
	case binn.KindObject:
		object, _ := v.AsObject()
		fields := make(map[string]*structpb.Value, object.Len())
		for key, element := range object.All() {
			message, err := protoMessage(element)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", key, err)
			}
			fields[key] = message
		}
		return structpb.NewStructValue(&structpb.Struct{Fields: fields}), nil
	}
	return nil, fmt.Errorf("cannot write %s as protobuf", v.Kind())
}
