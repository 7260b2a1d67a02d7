// Copyright (c) 2020, AT&T Intellectual Property.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package data

import (
	"bytes"
	"reflect"
	"sort"

	"jsouthworth.net/go/immutable/vector"
)

// SequenceNew creates a new empty sequence.
func SequenceNew() *Sequence {
	return sequenceNew()
}

func sequenceNew() *Sequence {
	return &Sequence{
		store: vector.Empty(),
	}
}

// SequenceWith creates a sequence and initializes it with the provided elements
func SequenceWith(elements ...interface{}) *Sequence {
	return SequenceNew().from(elements)
}

// SequenceFrom creates a sequence and initializes it with the elements from the provided slice
func SequenceFrom(in interface{}) *Sequence {
	return SequenceNew().from(in)
}

// Sequence is an ordered, mutable composite. The mutation methods
// change the receiver in place and return it to allow chaining.
//
// The elements are held in a persistent vector; mutation replaces the
// vector held by the sequence. This makes Copy O(1): the copy starts
// out sharing the vector and the two diverge on the next mutation of
// either one. The elements themselves are shared handles, so nested
// composites remain aliased between a sequence and its copy.
type Sequence struct {
	store *vector.Vector
}

// from converts a go slice to the elements of the sequence.
func (seq *Sequence) from(ins interface{}) *Sequence {
	val := reflect.ValueOf(ins)
	vals := make([]*Value, val.Len())
	for i := 0; i < val.Len(); i++ {
		vals[i] = ValueNew(val.Index(i).Interface())
	}
	seq.store = vector.From(vals)
	return seq
}

// At returns the value at the index of the sequence, if the index is out
// of bounds, nil is returned.
func (seq *Sequence) At(index int) *Value {
	if !seq.Contains(index) {
		return nil
	}
	return seq.store.At(index).(*Value)
}

// Contains returns whether the index is in the bounds of the sequence.
func (seq *Sequence) Contains(index int) bool {
	return index < seq.store.Length() && index >= 0
}

// Find returns the value at the index or nil if it doesn't exist and
// whether the index was in the sequence.
func (seq *Sequence) Find(index int) (*Value, bool) {
	v, ok := seq.store.Find(index)
	if !ok {
		return nil, ok
	}
	return v.(*Value), ok
}

// Length returns the number of elements in the sequence.
func (seq *Sequence) Length() int {
	return seq.store.Length()
}

// Assoc associates the value with the index in the sequence. If the
// index is out of bounds the sequence is padded with null values to
// that index and the value is associated. A negative index is ignored.
func (seq *Sequence) Assoc(index int, value interface{}) *Sequence {
	if index < 0 {
		return seq
	}
	store := seq.store
	for i := store.Length(); i < index+1; i++ {
		store = store.Append(ValueNew(nil))
	}
	seq.store = store.Assoc(index, ValueNew(value))
	return seq
}

// Append adds a new value to the end of the sequence.
func (seq *Sequence) Append(value interface{}) *Sequence {
	seq.store = seq.store.Append(ValueNew(value))
	return seq
}

// Extend appends each of the values in order.
func (seq *Sequence) Extend(values ...interface{}) *Sequence {
	seq.store = seq.store.Transform(
		func(store *vector.TVector) *vector.TVector {
			for _, v := range values {
				store = store.Append(ValueNew(v))
			}
			return store
		})
	return seq
}

// Insert places the value before the element at index. An index past
// the end appends; a negative index inserts at the front.
func (seq *Sequence) Insert(index int, value interface{}) *Sequence {
	if index >= seq.Length() {
		return seq.Append(value)
	}
	if index < 0 {
		index = 0
	}
	elem := ValueNew(value)
	seq.store = vector.Empty().Transform(
		func(store *vector.TVector) *vector.TVector {
			seq.Range(func(i int, v *Value) {
				if i == index {
					store = store.Append(elem)
				}
				store = store.Append(v)
			})
			return store
		})
	return seq
}

// Delete removes an element at the supplied index from the sequence.
// Out of bounds indices are ignored.
func (seq *Sequence) Delete(index int) *Sequence {
	if !seq.Contains(index) {
		return seq
	}
	seq.store = seq.store.Delete(index)
	return seq
}

// Clear removes all elements from the sequence.
func (seq *Sequence) Clear() *Sequence {
	seq.store = vector.Empty()
	return seq
}

// Range iterates over the sequence's elements. Range can take a set of
// functions matched by type. If the function returns a bool this is
// treated as a loop termination variable if false the loop will
// terminate.
//
//	func(int, *Value) iterates over indices and values.
//	func(int, *Value) bool
//	func(int) iterates over only the indices
//	func(int) bool
//	func(*Value) iterates over only the values
//	func(*Value) bool
func (seq *Sequence) Range(fn interface{}) *Sequence {
	var do func(int, interface{}) bool
	switch f := fn.(type) {
	case func(int, *Value):
		do = func(idx int, val interface{}) bool {
			f(idx, val.(*Value))
			return true
		}
	case func(int, *Value) bool:
		do = func(idx int, val interface{}) bool {
			return f(idx, val.(*Value))
		}
	case func(*Value):
		do = func(idx int, val interface{}) bool {
			f(val.(*Value))
			return true
		}
	case func(*Value) bool:
		do = func(idx int, val interface{}) bool {
			return f(val.(*Value))
		}
	case func(int):
		do = func(idx int, val interface{}) bool {
			f(idx)
			return true
		}
	case func(int) bool:
		do = func(idx int, val interface{}) bool {
			return f(idx)
		}
	default:
		panic("invalid range function")
	}
	seq.store.Range(do)
	return seq
}

// Copy returns a shallow copy of the sequence: a new sequence holding
// the same element handles in the same order.
func (seq *Sequence) Copy() *Sequence {
	return &Sequence{
		store: seq.store,
	}
}

// DeepCopy returns a copy of the sequence that shares no composite
// with the receiver at any depth. Shared substructure and cycles are
// reproduced in the copy.
func (seq *Sequence) DeepCopy() *Sequence {
	return MustDeepCopy(ValueNew(seq)).AsSequence()
}

// toNative returns a go native []interface{} from the sequence.
func (seq *Sequence) toNative() interface{} {
	out := make([]interface{}, seq.Length())
	seq.Range(func(idx int, value *Value) {
		out[idx] = value.ToNative()
	})
	return out
}

// Equal implements equality for sequences. A sequence is equal to another
// sequence if all their values at each index are equal. Equality checks are
// linear with respect to the number of elements.
func (seq *Sequence) Equal(other interface{}) bool {
	oseq, isSequence := other.(*Sequence)
	if !isSequence || oseq.Length() != seq.Length() {
		return false
	}
	if oseq == seq || oseq.store == seq.store {
		return true
	}
	eq := true
	seq.Range(func(i int, v *Value) bool {
		eq = equal(v, oseq.At(i))
		return eq
	})
	return eq
}

// String returns a string representation of the Sequence.
func (seq *Sequence) String() string {
	var buf bytes.Buffer
	seq.marshalRFC7951(&buf, visitedNew())
	return buf.String()
}

// Sort sorts the sequence in place. By default sort will use
// dyn.Compare as the comparison operator this may be overridden using
// the Compare option.
func (seq *Sequence) Sort(options ...SortOption) *Sequence {
	var opts sortOpts
	opts.compare = func(v1, v2 *Value) int {
		return v1.Compare(v2)
	}
	for _, opt := range options {
		opt(&opts)
	}
	sorter := sequenceSorter{
		elems: seq.store.AsTransient(),
		opts:  &opts,
	}
	sort.Stable(&sorter)
	seq.store = sorter.elems.AsPersistent()
	return seq
}

type sequenceSorter struct {
	elems *vector.TVector
	opts  *sortOpts
}

func (s *sequenceSorter) Len() int {
	return s.elems.Length()
}

func (s *sequenceSorter) Less(i, j int) bool {
	return s.opts.compare(s.elems.At(i).(*Value),
		s.elems.At(j).(*Value)) < 0
}

func (s *sequenceSorter) Swap(i, j int) {
	a, b := s.elems.At(i), s.elems.At(j)
	s.elems = s.elems.Assoc(i, b)
	s.elems = s.elems.Assoc(j, a)
}

type sortOpts struct {
	compare func(v1, v2 *Value) int
}

// SortOption is an option to the Sequence.Sort function
type SortOption func(*sortOpts)

// Compare takes a comparison function and returns a sort option
// A compare function takes two values and returns a trinary state as
// an integer. Less than zero indicates the first was less than the last,
// zero indicates the two values were equal, and greater than zero
// indicates that the first was greater than the last.
func Compare(fn func(a, b *Value) int) SortOption {
	return func(opts *sortOpts) {
		opts.compare = fn
	}
}
