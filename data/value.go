// Copyright (c) 2020, AT&T Intellectual Property.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package data

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"reflect"

	"jsouthworth.net/go/dyn"
)

// Kind identifies which member of the closed container variant a
// Value holds.
type Kind int

const (
	// AtomKind is an immutable scalar: nil, bool, int64, uint64,
	// float64 or string.
	AtomKind Kind = iota
	// SequenceKind is an ordered *Sequence.
	SequenceKind
	// MappingKind is a string keyed *Mapping.
	MappingKind
)

func (k Kind) String() string {
	switch k {
	case AtomKind:
		return "atom"
	case SequenceKind:
		return "sequence"
	case MappingKind:
		return "mapping"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ValueNew turns a native go value into a Value. Native []interface{}
// and map[string]interface{} are converted recursively into new
// composites; *Sequence and *Mapping are wrapped as is, so the new
// Value aliases them. A nil *Value becomes the null atom. ValueNew
// will panic if the value is not a supported type.
func ValueNew(data interface{}) *Value {
	return valueNew(data)
}

func valueNew(data interface{}) *Value {
	if data == nil {
		return &Value{data: nil}
	}
	switch d := data.(type) {
	case *Value:
		if d == nil {
			return &Value{data: nil}
		}
		return d
	case *Sequence, *Mapping:
	case int, int8, int16, int32, int64:
		data = reflect.ValueOf(d).Int()
	case uint, uint8, uint16, uint32, uint64, uintptr:
		// Unsigned values that fit are stored signed so that
		// ValueNew(1) and ValueNew(uint(1)) are equal.
		data = inferIntType(reflect.ValueOf(d).Uint())
	case float32:
		data = float64(d)
	case float64:
	case bool:
	case string:
	case []interface{}:
		data = SequenceFrom(d)
	case map[string]interface{}:
		data = MappingFrom(d)
	default:
		panic(errors.New("cannot create value, invalid type"))
	}
	return &Value{
		data: data,
	}
}

func inferIntType(v uint64) interface{} {
	if v <= math.MaxInt64 {
		return int64(v)
	}
	return v
}

// Value is a container value. Values hold either an atom (nil, bool,
// int64, uint64, float64, string) or a handle to a composite
// (*Sequence or *Mapping). The Value itself is immutable; the
// composites it refers to are not.
type Value struct {
	data interface{}
}

// Kind returns which member of the container variant the value holds.
func (val *Value) Kind() Kind {
	switch val.data.(type) {
	case *Sequence:
		return SequenceKind
	case *Mapping:
		return MappingKind
	default:
		return AtomKind
	}
}

// IsComposite returns whether the value holds a *Sequence or *Mapping.
func (val *Value) IsComposite() bool {
	return val.Kind() != AtomKind
}

// AsSequence returns a *Sequence if the value is a Sequence and panics otherwise.
func (val *Value) AsSequence() *Sequence {
	return val.data.(*Sequence)
}

// IsSequence returns if the data stored in the value is a Sequence.
func (val *Value) IsSequence() bool {
	_, isSequence := val.data.(*Sequence)
	return isSequence
}

// ToSequence returns a *Sequence and allows the user to define a
// default. The value (*Sequence)(nil) is returned if no default is defined
// and the value is not a *Sequence.
func (val *Value) ToSequence(defaultVal ...*Sequence) *Sequence {
	seq, isSequence := val.data.(*Sequence)
	if isSequence {
		return seq
	}
	if len(defaultVal) != 0 {
		return defaultVal[0]
	}
	return nil
}

// AsMapping returns a *Mapping if the value is a Mapping and panics otherwise.
func (val *Value) AsMapping() *Mapping {
	return val.data.(*Mapping)
}

// IsMapping returns if the data stored in the value is a Mapping.
func (val *Value) IsMapping() bool {
	_, isMapping := val.data.(*Mapping)
	return isMapping
}

// ToMapping returns a *Mapping and allows the user to define a
// default. The value (*Mapping)(nil) is returned if no default is defined
// and the value is not a *Mapping.
func (val *Value) ToMapping(defaultVal ...*Mapping) *Mapping {
	m, isMapping := val.data.(*Mapping)
	if isMapping {
		return m
	}
	if len(defaultVal) != 0 {
		return defaultVal[0]
	}
	return nil
}

// AsString returns a string if the value is a string and panics otherwise.
func (val *Value) AsString() string {
	return val.data.(string)
}

// IsString returns if the data stored in the value is a string.
func (val *Value) IsString() bool {
	_, isString := val.data.(string)
	return isString
}

// ToString returns a string and allows the user to define a
// default. The value "" is returned if no default is defined
// and the value is not a string.
func (val *Value) ToString(defaultVal ...string) string {
	str, isString := val.data.(string)
	if isString {
		return str
	}
	if len(defaultVal) != 0 {
		return defaultVal[0]
	}
	return ""
}

// AsInt64 returns an int64 if the value is an integer that fits and
// panics otherwise.
func (val *Value) AsInt64() int64 {
	switch d := val.data.(type) {
	case int64:
		return d
	default:
		panic(fmt.Errorf("cannot convert %T to int64", val.data))
	}
}

// IsInt64 returns if the value is an int64.
func (val *Value) IsInt64() bool {
	_, isInt := val.data.(int64)
	return isInt
}

// ToInt64 returns an int64 if the value is an int64 and returns the
// user supplied default or 0 otherwise.
func (val *Value) ToInt64(defaultVal ...int64) int64 {
	i, isInt := val.data.(int64)
	if isInt {
		return i
	}
	if len(defaultVal) != 0 {
		return defaultVal[0]
	}
	return 0
}

// AsUint64 returns a uint64 if the value is a non-negative integer and
// panics otherwise.
func (val *Value) AsUint64() uint64 {
	switch d := val.data.(type) {
	case uint64:
		return d
	case int64:
		if d < 0 {
			panic(fmt.Errorf("cannot convert %d to uint64", d))
		}
		return uint64(d)
	default:
		panic(fmt.Errorf("cannot convert %T to uint64", val.data))
	}
}

// AsFloat returns a float64 if the value is numeric and panics otherwise.
func (val *Value) AsFloat() float64 {
	switch d := val.data.(type) {
	case float64:
		return d
	case int64:
		return float64(d)
	case uint64:
		return float64(d)
	default:
		panic(fmt.Errorf("cannot convert %T to float64", val.data))
	}
}

// IsFloat returns if the value is a float.
func (val *Value) IsFloat() bool {
	_, isFloat := val.data.(float64)
	return isFloat
}

// AsBoolean returns a bool if the value is a bool and panics otherwise.
func (val *Value) AsBoolean() bool {
	return val.data.(bool)
}

// IsBoolean returns if the value is a bool.
func (val *Value) IsBoolean() bool {
	_, isBoolean := val.data.(bool)
	return isBoolean
}

// IsNull returns whether the values data is nil.
func (val *Value) IsNull() bool {
	return val.data == nil
}

// ToInterface returns the held data directly. Composites are returned
// as their handles.
func (val *Value) ToInterface() interface{} {
	return val.data
}

// ToNative converts a value to go native types, composites become
// []interface{} and map[string]interface{}. The conversion does not
// terminate on cyclic values.
func (val *Value) ToNative() interface{} {
	switch d := val.data.(type) {
	case interface {
		toNative() interface{}
	}:
		return d.toNative()
	default:
		return d
	}
}

// Is reports identity. Two composite values are identical when they
// hold the same handle; atoms are identical only when they are the
// same *Value.
func (val *Value) Is(other *Value) bool {
	if val == nil || other == nil {
		return val == other
	}
	switch d := val.data.(type) {
	case *Sequence:
		o, isSequence := other.data.(*Sequence)
		return isSequence && o == d
	case *Mapping:
		o, isMapping := other.data.(*Mapping)
		return isMapping && o == d
	default:
		return val == other
	}
}

// handle returns the composite handle the value refers to, or nil for
// atoms.
func (val *Value) handle() interface{} {
	switch d := val.data.(type) {
	case *Sequence, *Mapping:
		return d
	default:
		return nil
	}
}

// Equal provides an implementation of Equality for Value types.
// Composites are compared structurally; comparing cyclic values does
// not terminate.
func (val *Value) Equal(other interface{}) bool {
	if other == nil {
		return val == nil
	}
	ov, isValue := other.(*Value)
	if !isValue {
		return false
	}
	return (val == nil && ov == nil) ||
		(val != nil && ov != nil && equal(val.data, ov.data))
}

// Compare provides an implementation of Comparison for Value types.
func (val *Value) Compare(other interface{}) int {
	return dyn.Compare(val.data, other.(*Value).data)
}

// String returns a go string representation of the Value. Composites
// are rendered as RFC7951 literals.
func (val *Value) String() string {
	if val.IsComposite() {
		var buf bytes.Buffer
		val.marshalRFC7951(&buf, visitedNew())
		return buf.String()
	}
	return fmt.Sprintf("%v", val.data)
}

func equal(v1, v2 interface{}) bool {
	if v1 == nil || v2 == nil {
		return v1 == v2
	}
	if e, ok := v1.(interface{ Equal(interface{}) bool }); ok {
		return e.Equal(v2)
	}
	return dyn.Equal(v1, v2)
}
