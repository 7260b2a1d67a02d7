// Copyright (c) 2020, AT&T Intellectual Property.
//
// SPDX-License-Identifier: MPL-2.0

// Package data implements a model of nested container values and the
// two ways of duplicating them. A Value is either an immutable atom
// (nil, bool, integer, float or string) or a handle to a mutable
// composite: an ordered Sequence or a string keyed Mapping. Handles
// alias; storing the same Sequence in two places makes changes made
// through one visible through the other.
//
// ShallowCopy produces a new top level composite holding the same
// member handles as the original, so nested composites stay shared.
// DeepCopy produces a new composite at every depth; nothing that can
// be mutated is shared with the original. How DeepCopy treats
// composites that are reached more than once, including cycles, is
// selected with the Cycles option.
//
// Values can be written as RFC7951 (JSON) or YAML literals with Parse
// and ParseYAML and are rendered back by String and MarshalRFC7951.
package data
