// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binn

import (
	"iter"
	"maps"
	"slices"
)

// Map is the payload of a Map value: 32-bit signed integer keys, each
// with one value. Maps are encoded in ascending key order.
type Map map[int32]Value

// Clone returns a copy of m. The copy of a nil Map is an empty,
// non-nil Map.
func (m Map) Clone() Map {
	clone := make(Map, len(m))
	maps.Copy(clone, m)
	return clone
}

// Keys returns the keys of m in ascending order, which is the order in
// which they are encoded.
func (m Map) Keys() []int32 {
	return slices.Sorted(maps.Keys(m))
}

// Equal reports whether m and other have the same keys with
// structurally equal values.
func (m Map) Equal(other Map) bool {
	return maps.EqualFunc(m, other, Equal)
}

// Member is one key/value entry of an Object.
type Member struct {
	Key   string
	Value Value
}

// Object is the payload of an Object value: string keys, each with one
// value, kept in insertion order. Keys are unique: setting an existing
// key replaces its value and keeps its position.
//
// The zero Object is empty and ready to use. A nil *Object behaves as
// an empty object for every read method.
type Object struct {
	members []Member
	index   map[string]int
}

// NewObject returns an object holding members in order. A key that
// appears more than once keeps its first position and its last value.
func NewObject(members ...Member) *Object {
	object := &Object{}
	for _, member := range members {
		object.Set(member.Key, member.Value)
	}
	return object
}

// Set stores value under key.
func (o *Object) Set(key string, value Value) {
	if position, ok := o.index[key]; ok {
		o.members[position].Value = value
		return
	}
	if o.index == nil {
		o.index = make(map[string]int)
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, Member{Key: key, Value: value})
}

// add appends a member whose key is known to be absent. The decoder
// checks for duplicates before it decodes the member's value, so a
// repeated key fails without reading past it.
func (o *Object) add(key string, value Value) {
	o.index[key] = len(o.members)
	o.members = append(o.members, Member{Key: key, Value: value})
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	position, ok := o.index[key]
	if !ok {
		return Value{}, false
	}
	return o.members[position].Value, true
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Delete removes key, preserving the order of the remaining members.
// It reports whether the key was present.
func (o *Object) Delete(key string) bool {
	if o == nil {
		return false
	}
	position, ok := o.index[key]
	if !ok {
		return false
	}
	o.members = slices.Delete(o.members, position, position+1)
	delete(o.index, key)
	for i := position; i < len(o.members); i++ {
		o.index[o.members[i].Key] = i
	}
	return true
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.members))
	for i, member := range o.members {
		keys[i] = member.Key
	}
	return keys
}

// Members returns a copy of the members in insertion order.
func (o *Object) Members() []Member {
	if o == nil {
		return nil
	}
	return slices.Clone(o.members)
}

// All iterates over the members in insertion order.
func (o *Object) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if o == nil {
			return
		}
		for _, member := range o.members {
			if !yield(member.Key, member.Value) {
				return
			}
		}
	}
}

// Clone returns a copy of o. Member values are shared, which is safe
// because Values are immutable. The clone of nil is an empty object.
func (o *Object) Clone() *Object {
	clone := &Object{}
	if o == nil || len(o.members) == 0 {
		return clone
	}
	clone.members = slices.Clone(o.members)
	clone.index = maps.Clone(o.index)
	return clone
}

// Equal reports whether o and other hold the same keys with
// structurally equal values, regardless of insertion order.
func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	for key, value := range o.All() {
		otherValue, ok := other.Get(key)
		if !ok || !Equal(value, otherValue) {
			return false
		}
	}
	return true
}
