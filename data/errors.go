// Copyright (c) 2020, AT&T Intellectual Property.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

package data

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCycleDetected is returned by DeepCopy under CycleReject when the
// value refers back to a composite that encloses it.
var ErrCycleDetected = errors.New("cycle detected")

// CycleError reports where a rejected cycle was found. Path holds the
// sequence indices (int) and mapping keys (string) leading from the
// root to the member that refers back to an enclosing composite.
type CycleError struct {
	Path []interface{}
}

func cycleErrorNew(path []interface{}) *CycleError {
	return &CycleError{
		Path: append([]interface{}(nil), path...),
	}
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s at %s", ErrCycleDetected, e.pathString())
}

// Unwrap allows errors.Is(err, ErrCycleDetected).
func (e *CycleError) Unwrap() error {
	return ErrCycleDetected
}

func (e *CycleError) pathString() string {
	return pathString(e.Path)
}

func pathString(path []interface{}) string {
	if len(path) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, elem := range path {
		b.WriteByte('/')
		fmt.Fprint(&b, elem)
	}
	return b.String()
}
