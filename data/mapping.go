// Copyright (c) 2020, AT&T Intellectual Property.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package data

import (
	"bytes"
	"fmt"
	"sort"

	"jsouthworth.net/go/immutable/hashmap"
)

// MappingNew creates a new empty mapping.
func MappingNew() *Mapping {
	return mappingNew()
}

func mappingNew() *Mapping {
	return &Mapping{
		store: hashmap.Empty(),
	}
}

// MappingWith creates a new mapping and then populates it with the supplied pairs
func MappingWith(pairs ...Pair) *Mapping {
	return MappingNew().with(pairs...)
}

// MappingFrom creates a new mapping and then populates it with the data from the supplied map
func MappingFrom(in map[string]interface{}) *Mapping {
	return MappingNew().from(in)
}

// PairNew creates a new pair
func PairNew(key string, value interface{}) Pair {
	return Pair{key: key, value: ValueNew(value)}
}

// Pair is a key/value pair, the members of a Mapping.
type Pair struct {
	key   string
	value *Value
}

// Key returns the key.
func (p Pair) Key() string { return p.key }

// Value returns the value.
func (p Pair) Value() *Value { return p.value }

// String returns a string representation of the Pair.
func (p Pair) String() string { return fmt.Sprintf("[%v %v]", p.key, p.value) }

// Equal implements equality between Pairs.
func (p Pair) Equal(other interface{}) bool {
	op, isPair := other.(Pair)
	if !isPair {
		return false
	}
	return op.key == p.key && equal(op.value, p.value)
}

// Mapping is a string keyed, mutable composite. The mutation methods
// change the receiver in place and return it to allow chaining.
// Like Sequence the members are held in a persistent map so Copy
// only has to share it.
type Mapping struct {
	store *hashmap.Map
}

func (m *Mapping) from(in map[string]interface{}) *Mapping {
	m.store = m.store.Transform(
		func(store *hashmap.TMap) *hashmap.TMap {
			for k, v := range in {
				store = store.Assoc(k, ValueNew(v))
			}
			return store
		})
	return m
}

func (m *Mapping) with(pairs ...Pair) *Mapping {
	m.store = m.store.Transform(
		func(store *hashmap.TMap) *hashmap.TMap {
			for _, pair := range pairs {
				store = store.Assoc(pair.Key(), ValueNew(pair.Value()))
			}
			return store
		})
	return m
}

// Range iterates over the mapping's members in no particular order.
// Range can take a set of functions matched by type. If the function
// returns a bool this is treated as a loop termination variable if
// false the loop will terminate.
//
//	func(Pair) iterates over Pairs
//	func(Pair) bool, called with a Pair, terminates the loop on false.
//	func(string, *Value) iterates over keys and values.
//	func(string, *Value) bool
//	func(string) iterates over only the keys
//	func(string) bool
//	func(*Value) iterates over only the values
//	func(*Value) bool
func (m *Mapping) Range(fn interface{}) *Mapping {
	var do func(hashmap.Entry) bool
	switch f := fn.(type) {
	case func(Pair):
		do = func(e hashmap.Entry) bool {
			f(Pair{key: e.Key().(string), value: e.Value().(*Value)})
			return true
		}
	case func(Pair) bool:
		do = func(e hashmap.Entry) bool {
			return f(Pair{key: e.Key().(string), value: e.Value().(*Value)})
		}
	case func(string, *Value):
		do = func(e hashmap.Entry) bool {
			f(e.Key().(string), e.Value().(*Value))
			return true
		}
	case func(string, *Value) bool:
		do = func(e hashmap.Entry) bool {
			return f(e.Key().(string), e.Value().(*Value))
		}
	case func(*Value):
		do = func(e hashmap.Entry) bool {
			f(e.Value().(*Value))
			return true
		}
	case func(*Value) bool:
		do = func(e hashmap.Entry) bool {
			return f(e.Value().(*Value))
		}
	case func(string):
		do = func(e hashmap.Entry) bool {
			f(e.Key().(string))
			return true
		}
	case func(string) bool:
		do = func(e hashmap.Entry) bool {
			return f(e.Key().(string))
		}
	default:
		panic("invalid range function")
	}
	m.store.Range(do)
	return m
}

// Keys returns the mapping's keys in sorted order.
func (m *Mapping) Keys() []string {
	keys := make([]string, 0, m.Length())
	m.Range(func(key string) {
		keys = append(keys, key)
	})
	sort.Strings(keys)
	return keys
}

// At returns the Value at the key's location or nil if it doesn't exist.
func (m *Mapping) At(key string) *Value {
	out, ok := m.store.Find(key)
	if !ok {
		return nil
	}
	return out.(*Value)
}

// Contains returns true if the key exists in the mapping.
func (m *Mapping) Contains(key string) bool {
	return m.store.Contains(key)
}

// Find returns the value at the key or nil if it doesn't exist and
// whether the key was in the mapping.
func (m *Mapping) Find(key string) (*Value, bool) {
	out, ok := m.store.Find(key)
	if !ok {
		return nil, ok
	}
	return out.(*Value), ok
}

// Assoc associates a new value with the key.
func (m *Mapping) Assoc(key string, value interface{}) *Mapping {
	m.store = m.store.Assoc(key, ValueNew(value))
	return m
}

// Delete removes a key from the mapping.
func (m *Mapping) Delete(key string) *Mapping {
	m.store = m.store.Delete(key)
	return m
}

// Clear removes all members from the mapping.
func (m *Mapping) Clear() *Mapping {
	m.store = hashmap.Empty()
	return m
}

// Length returns the number of members in the mapping.
func (m *Mapping) Length() int {
	return m.store.Length()
}

// Copy returns a shallow copy of the mapping: a new mapping holding
// the same value handles under the same keys.
func (m *Mapping) Copy() *Mapping {
	return &Mapping{
		store: m.store,
	}
}

// DeepCopy returns a copy of the mapping that shares no composite
// with the receiver at any depth. Shared substructure and cycles are
// reproduced in the copy.
func (m *Mapping) DeepCopy() *Mapping {
	return MustDeepCopy(ValueNew(m)).AsMapping()
}

// toNative produces a go native map[string]interface{} from the mapping.
func (m *Mapping) toNative() interface{} {
	out := make(map[string]interface{}, m.Length())
	m.Range(func(key string, val *Value) {
		out[key] = val.ToNative()
	})
	return out
}

// Equal implements equality for mappings. A mapping is equal to another
// mapping if they have the same keys and each key holds equal values.
// Equality checks are linear with respect to the number of keys.
func (m *Mapping) Equal(other interface{}) bool {
	om, isMapping := other.(*Mapping)
	if !isMapping || om.Length() != m.Length() {
		return false
	}
	if om == m || om.store == m.store {
		return true
	}
	eq := true
	m.Range(func(key string, val *Value) bool {
		ov, ok := om.Find(key)
		eq = ok && equal(val, ov)
		return eq
	})
	return eq
}

// String returns a string representation of the Mapping.
func (m *Mapping) String() string {
	var buf bytes.Buffer
	m.marshalRFC7951(&buf, visitedNew())
	return buf.String()
}
