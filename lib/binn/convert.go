// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binn

import (
	"bytes"
	"fmt"
	"maps"
	"math/big"
	"reflect"
	"slices"
	"time"
)

// ValueOf converts a native Go value to a Value.
//
// Fixed-width integers keep their width; int becomes I64 and uint
// becomes U64. A time.Time becomes a DateTime in RFC 3339 form with
// nanoseconds. *big.Int, *big.Float, and *big.Rat become DecimalStr
// (a *big.Rat must have a finite decimal expansion). Slices and arrays
// become lists, maps with string keys become objects with keys in
// sorted order, and maps with int32 keys become maps. A nil pointer
// becomes Null; any other pointer is followed.
func ValueOf(x any) (Value, error) {
	switch x := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case uint8:
		return U8(x), nil
	case int8:
		return I8(x), nil
	case uint16:
		return U16(x), nil
	case int16:
		return I16(x), nil
	case uint32:
		return U32(x), nil
	case int32:
		return I32(x), nil
	case uint64:
		return U64(x), nil
	case int64:
		return I64(x), nil
	case int:
		return I64(int64(x)), nil
	case uint:
		return U64(uint64(x)), nil
	case float32:
		return Float(x), nil
	case float64:
		return Double(x), nil
	case string:
		return Text(x), nil
	case []byte:
		return Blob(x), nil
	case time.Time:
		return DateTime(x.Format(time.RFC3339Nano)), nil
	case *big.Int:
		if x == nil {
			return Null(), nil
		}
		return DecimalStr(x.String()), nil
	case *big.Float:
		if x == nil {
			return Null(), nil
		}
		return DecimalStr(x.Text('g', -1)), nil
	case *big.Rat:
		if x == nil {
			return Null(), nil
		}
		precision, exact := x.FloatPrec()
		if !exact {
			return Value{}, fmt.Errorf("binn: %s has no finite decimal expansion", x.RatString())
		}
		return DecimalStr(x.FloatString(precision)), nil
	case []Value:
		return List(x...), nil
	case Map:
		return MapOf(x), nil
	case map[int32]Value:
		return MapOf(x), nil
	case *Object:
		return ObjectOf(x), nil
	case map[string]Value:
		object := NewObject()
		for _, key := range slices.Sorted(maps.Keys(x)) {
			object.Set(key, x[key])
		}
		return Value{kind: KindObject, obj: object}, nil
	}
	return valueOfReflect(reflect.ValueOf(x))
}

func valueOfReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return ValueOf(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return List(), nil
		}
		list := make([]Value, rv.Len())
		for i := range list {
			element, err := ValueOf(rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			list[i] = element
		}
		return Value{kind: KindList, list: list}, nil
	case reflect.Map:
		switch rv.Type().Key().Kind() {
		case reflect.String:
			keys := make([]string, 0, rv.Len())
			for _, key := range rv.MapKeys() {
				keys = append(keys, key.String())
			}
			slices.Sort(keys)
			object := NewObject()
			for _, key := range keys {
				element, err := ValueOf(rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key())).Interface())
				if err != nil {
					return Value{}, fmt.Errorf("[%q]: %w", key, err)
				}
				object.Set(key, element)
			}
			return Value{kind: KindObject, obj: object}, nil
		case reflect.Int32:
			m := make(Map, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				key := int32(iter.Key().Int())
				element, err := ValueOf(iter.Value().Interface())
				if err != nil {
					return Value{}, fmt.Errorf("{%d}: %w", key, err)
				}
				m[key] = element
			}
			return Value{kind: KindMap, m: m}, nil
		}
	}
	return Value{}, fmt.Errorf("binn: cannot convert %s to a value", rv.Type())
}

// MustValueOf is like ValueOf but panics on error. It is intended for
// literals in tests and examples.
func MustValueOf(x any) Value {
	v, err := ValueOf(x)
	if err != nil {
		panic(err)
	}
	return v
}

// Interface converts v to a native Go value: nil, bool, the integer
// type of matching width, float32, float64, string for every text kind,
// []byte, []any, map[int32]any, or map[string]any. Object insertion
// order is lost.
func (v Value) Interface() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.bits != 0
	case KindU8:
		return uint8(v.bits)
	case KindI8:
		return int8(v.bits)
	case KindU16:
		return uint16(v.bits)
	case KindI16:
		return int16(v.bits)
	case KindU32:
		return uint32(v.bits)
	case KindI32:
		return int32(v.bits)
	case KindU64:
		return v.bits
	case KindI64:
		return int64(v.bits)
	case KindFloat:
		f, _ := v.AsFloat()
		return f
	case KindDouble:
		f, _ := v.AsDouble()
		return f
	case KindText, KindDateTime, KindDate, KindTime, KindDecimalStr:
		return v.str
	case KindBlob:
		return bytes.Clone(nonNilBytes(v.blob))
	case KindList:
		list := make([]any, len(v.list))
		for i, element := range v.list {
			list[i] = element.Interface()
		}
		return list
	case KindMap:
		m := make(map[int32]any, len(v.m))
		for key, element := range v.m {
			m[key] = element.Interface()
		}
		return m
	case KindObject:
		m := make(map[string]any, v.obj.Len())
		for key, element := range v.obj.All() {
			m[key] = element.Interface()
		}
		return m
	}
	return nil
}
