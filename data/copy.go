// Copyright (c) 2020, AT&T Intellectual Property.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package data

import (
	"go.uber.org/zap"
	"jsouthworth.net/go/immutable/hashmap"
	"jsouthworth.net/go/immutable/vector"
	"jsouthworth.net/go/try"
)

// DeepCopier is implemented by types that can produce a copy of
// themselves sharing no mutable state.
type DeepCopier[T any] interface {
	DeepCopy() T
}

var (
	_ DeepCopier[*Sequence] = (*Sequence)(nil)
	_ DeepCopier[*Mapping]  = (*Mapping)(nil)
)

// CyclePolicy selects how DeepCopy treats a composite that is reached
// more than once.
type CyclePolicy int

const (
	// CyclePreserve remembers every copied composite. A composite
	// reached again maps to its existing copy so shared substructure
	// and cycles are reproduced in the result.
	CyclePreserve CyclePolicy = iota
	// CycleReject fails with ErrCycleDetected when a composite is
	// reached again while it is still being copied. Substructure that
	// is shared without forming a cycle is copied separately at each
	// place it is reached.
	CycleReject
)

func (p CyclePolicy) String() string {
	switch p {
	case CyclePreserve:
		return "preserve"
	case CycleReject:
		return "reject"
	default:
		return "unknown"
	}
}

type copyOpts struct {
	cycles CyclePolicy
	log    *zap.Logger
}

// CopyOption is an option to DeepCopy.
type CopyOption func(*copyOpts)

// Cycles sets the policy for composites reached more than once.
func Cycles(policy CyclePolicy) CopyOption {
	return func(opts *copyOpts) {
		opts.cycles = policy
	}
}

// WithLogger sets the logger used to trace the copy.
func WithLogger(log *zap.Logger) CopyOption {
	return func(opts *copyOpts) {
		if log != nil {
			opts.log = log
		}
	}
}

// ShallowCopy duplicates the top level of a composite. The result is a
// new composite of the same kind holding the same element handles, so
// adding or removing members of either one is not observed by the
// other while mutating a nested composite is. Atoms are immutable and
// are returned as is.
func ShallowCopy(val *Value) *Value {
	if val == nil {
		return nil
	}
	switch d := val.data.(type) {
	case *Sequence:
		return &Value{data: d.Copy()}
	case *Mapping:
		return &Value{data: d.Copy()}
	default:
		return val
	}
}

// DeepCopy duplicates val at every depth. Every composite in the
// result is newly allocated; atoms are shared since they are
// immutable. An error is only returned under CycleReject.
func DeepCopy(val *Value, options ...CopyOption) (*Value, error) {
	if val == nil {
		return nil, nil
	}
	opts := copyOpts{
		cycles: CyclePreserve,
		log:    zap.NewNop(),
	}
	for _, opt := range options {
		opt(&opts)
	}
	c := &copier{
		opts:   &opts,
		memo:   make(map[interface{}]*Value),
		active: make(map[interface{}]struct{}),
	}
	out, err := try.Apply(c.copyValue, val)
	switch {
	case c.err != nil:
		return nil, c.err
	case err != nil:
		// Only a rejected cycle is an error; anything else is a bug.
		panic(err)
	}
	return out.(*Value), nil
}

// MustDeepCopy is DeepCopy but panics on error.
func MustDeepCopy(val *Value, options ...CopyOption) *Value {
	out, err := DeepCopy(val, options...)
	if err != nil {
		panic(err)
	}
	return out
}

// copier holds the traversal state of one DeepCopy. A rejected cycle
// unwinds the traversal by panicking with a *CycleError.
type copier struct {
	opts   *copyOpts
	memo   map[interface{}]*Value
	active map[interface{}]struct{}
	path   []interface{}
	err    *CycleError
}

func (c *copier) copyValue(val *Value) *Value {
	h := val.handle()
	if h == nil {
		return val
	}
	switch c.opts.cycles {
	case CycleReject:
		if _, onPath := c.active[h]; onPath {
			c.err = cycleErrorNew(c.path)
			c.opts.log.Debug("rejecting cycle",
				zap.Stringer("kind", val.Kind()),
				zap.String("path", c.err.pathString()))
			panic(c.err)
		}
		c.active[h] = struct{}{}
		defer delete(c.active, h)
	default:
		if out, seen := c.memo[h]; seen {
			c.opts.log.Debug("reusing copied composite",
				zap.Stringer("kind", val.Kind()),
				zap.String("path", pathString(c.path)))
			return out
		}
	}
	switch d := val.data.(type) {
	case *Sequence:
		return c.copySequence(h, d)
	case *Mapping:
		return c.copyMapping(h, d)
	default:
		return val
	}
}

// remember records the copy of a composite before its members are
// copied so that a cycle back to it resolves to the new node.
func (c *copier) remember(h interface{}, val *Value) {
	if c.opts.cycles == CyclePreserve {
		c.memo[h] = val
	}
}

func (c *copier) copySequence(h interface{}, seq *Sequence) *Value {
	out := sequenceNew()
	val := &Value{data: out}
	c.remember(h, val)
	out.store = out.store.Transform(
		func(store *vector.TVector) *vector.TVector {
			seq.Range(func(i int, elem *Value) {
				c.path = append(c.path, i)
				store = store.Append(c.copyValue(elem))
				c.path = c.path[:len(c.path)-1]
			})
			return store
		})
	return val
}

func (c *copier) copyMapping(h interface{}, m *Mapping) *Value {
	out := mappingNew()
	val := &Value{data: out}
	c.remember(h, val)
	out.store = out.store.Transform(
		func(store *hashmap.TMap) *hashmap.TMap {
			m.Range(func(key string, elem *Value) {
				c.path = append(c.path, key)
				store = store.Assoc(key, c.copyValue(elem))
				c.path = c.path[:len(c.path)-1]
			})
			return store
		})
	return val
}
