// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

import (
	"strconv"

	"github.com/bsonkit/bsonkit/bsonerr"
)

// Array is a Document whose keys are the decimal representations of
// 0..N-1 in order. Array<->Document conversion is purely a view change:
// both share the same underlying byte representation.
type Array []byte

// NewArray returns an empty, valid Array.
func NewArray() Array {
	return Array(NewDocument())
}

// AsDocument views a as a Document.
func (a Array) AsDocument() Document { return Document(a) }

// AsArray views d as an Array without checking that its keys are
// sequential; use Validate to check that.
func (d Document) AsArray() Array { return Array(d) }

// BuildArray constructs an Array from pre-built value byte slices, one per
// index, assigning keys "0", "1", ... in order.
func BuildArray(values ...Value) Array {
	var elements [][]byte
	for i, v := range values {
		elements = append(elements, AppendElement(nil, strconv.Itoa(i), v))
	}
	return Array(BuildDocument(elements...))
}

// Values returns a's values in index order.
func (a Array) Values() ([]Value, error) {
	return a.AsDocument().Values()
}

// Index returns the value at position index, panicking if it is out of
// bounds or a is malformed.
func (a Array) Index(index uint) Value {
	v, err := a.IndexErr(index)
	if err != nil {
		panic(err)
	}
	return v
}

// IndexErr is the same as Index but returns an error instead of panicking.
func (a Array) IndexErr(index uint) (Value, error) {
	elem, err := a.AsDocument().Index(index)
	if err != nil {
		return Value{}, err
	}
	return elem.Value(), nil
}

// Validate checks that a is a well-formed Document and that its keys are
// exactly "0", "1", ..., in order.
func (a Array) Validate() error {
	if err := a.AsDocument().Validate(); err != nil {
		return err
	}
	elements, err := a.AsDocument().Elements()
	if err != nil {
		return err
	}
	for i, elem := range elements {
		want := strconv.Itoa(i)
		if elem.Key() != want {
			return bsonerr.NewInternal("array key %q is out of order or invalid, expected %q", elem.Key(), want)
		}
	}
	return nil
}

// String implements fmt.Stringer, returning a as an Extended JSON array.
func (a Array) String() string {
	s, _ := a.StringN(-1)
	return s
}

// StringN renders a as an Extended JSON array, truncated to n bytes if n is
// non-negative.
func (a Array) StringN(n int) (string, bool) {
	elements, err := a.AsDocument().Elements()
	if err != nil {
		return "", false
	}
	if n == 0 {
		return "", true
	}
	var buf []byte
	buf = append(buf, '[')
	var truncated bool
	for i, elem := range elements {
		if truncated {
			break
		}
		needLen := -1
		if n > 0 {
			if len(buf) >= n {
				truncated = true
				break
			}
			needLen = n - len(buf)
		}
		if i != 0 {
			buf = append(buf, ',')
			if needLen > 0 {
				needLen--
				if needLen == 0 {
					truncated = true
					break
				}
			}
		}
		str, wasTruncated := elem.Value().StringN(needLen)
		buf = append(buf, str...)
		if wasTruncated {
			truncated = true
		}
	}
	if n <= 0 || (len(buf) < n && !truncated) {
		buf = append(buf, ']')
	} else {
		truncated = true
	}
	return string(buf), truncated
}

// DebugString is like String but substitutes "<malformed>" for any element
// that fails to stringify instead of propagating the failure.
func (a Array) DebugString() string {
	elements, err := a.AsDocument().Elements()
	if err != nil {
		return "<malformed>"
	}
	var buf []byte
	buf = append(buf, '[')
	for i, elem := range elements {
		if i != 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, elem.Value().DebugString()...)
	}
	buf = append(buf, ']')
	return string(buf)
}
