// Copyright (c) 2020, AT&T Intellectual Property.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package data

import "math"

// interner returns the first value seen for each key so repeated
// literals share storage while parsing.
type interner[K comparable, V any] struct {
	vals map[K]V
	key  func(V) K
}

func (i *interner[K, V]) Intern(v V) V {
	k := i.key(v)
	if out, ok := i.vals[k]; ok {
		return out
	}
	i.vals[k] = v
	return v
}

type stringInterner = interner[string, string]

func stringInternerNew() *stringInterner {
	return &stringInterner{
		vals: make(map[string]string),
		key:  func(s string) string { return s },
	}
}

// valueInterner only ever holds atoms; composites are mutable and must
// not be shared between places in a literal.
type valueInterner = interner[interface{}, *Value]

// floatKey keys float atoms by their bits so that -0.0 and 0.0 stay
// distinct.
type floatKey uint64

func valueInternerNew() *valueInterner {
	return &valueInterner{
		vals: make(map[interface{}]*Value),
		key:  atomKey,
	}
}

func atomKey(val *Value) interface{} {
	if f, isFloat := val.data.(float64); isFloat {
		return floatKey(math.Float64bits(f))
	}
	return val.data
}
