// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binn

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrNoSuchPath is returned by the path accessors when a step names a
// missing element or walks into a value of the wrong kind.
var ErrNoSuchPath = errors.New("binn: no such path")

func indexSegment(index int) string { return "[" + strconv.Itoa(index) + "]" }
func keySegment(key string) string { return "[" + strconv.Quote(key) + "]" }
func mapKeySegment(key int32) string { return "{" + strconv.FormatInt(int64(key), 10) + "}" }

// At walks nested lists: v.At(2, 0) is element 0 of element 2 of v.
// With no indexes it returns v.
func (v Value) At(indexes ...int) (Value, error) {
	current, path := v, "$"
	for _, index := range indexes {
		list, ok := current.AsList()
		if !ok {
			return Value{}, fmt.Errorf("%w: %s is %s, not list", ErrNoSuchPath, path, current.kind)
		}
		path += indexSegment(index)
		if index < 0 || index >= len(list) {
			return Value{}, fmt.Errorf("%w: %s out of range (length %d)", ErrNoSuchPath, path, len(list))
		}
		current = list[index]
	}
	return current, nil
}

// MapBy walks nested maps by integer key.
func (v Value) MapBy(keys ...int32) (Value, error) {
	current, path := v, "$"
	for _, key := range keys {
		m, ok := current.AsMap()
		if !ok {
			return Value{}, fmt.Errorf("%w: %s is %s, not map", ErrNoSuchPath, path, current.kind)
		}
		path += mapKeySegment(key)
		next, ok := m[key]
		if !ok {
			return Value{}, fmt.Errorf("%w: %s not present", ErrNoSuchPath, path)
		}
		current = next
	}
	return current, nil
}

// ObjectBy walks nested objects by string key.
func (v Value) ObjectBy(keys ...string) (Value, error) {
	current, path := v, "$"
	for _, key := range keys {
		object, ok := current.AsObject()
		if !ok {
			return Value{}, fmt.Errorf("%w: %s is %s, not object", ErrNoSuchPath, path, current.kind)
		}
		path += keySegment(key)
		next, ok := object.Get(key)
		if !ok {
			return Value{}, fmt.Errorf("%w: %s not present", ErrNoSuchPath, path)
		}
		current = next
	}
	return current, nil
}
