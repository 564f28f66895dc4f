// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

import (
	"github.com/bsonkit/bsonkit/bsonerr"
	"github.com/bsonkit/bsonkit/bsontype"
)

// Element is the raw bytes of one document element: a type byte, a
// NUL-terminated key, and the value's payload, exactly as it appears on the
// wire (without the surrounding document length prefix or terminator).
type Element []byte

// AppendHeader appends a type byte and a NUL-terminated key to dst.
func AppendHeader(dst []byte, t bsontype.Type, key string) []byte {
	dst = append(dst, byte(t))
	return appendCString(dst, key)
}

// AppendElement appends key and value as a complete element.
func AppendElement(dst []byte, key string, value Value) []byte {
	dst = AppendHeader(dst, value.Type, key)
	return append(dst, value.Data...)
}

// ReadElement reads one element from the front of src, returning it, the
// remaining bytes, and whether the read succeeded.
func ReadElement(src []byte) (Element, []byte, bool) {
	if len(src) < 2 {
		return nil, src, false
	}
	t := bsontype.Type(src[0])
	_, rem, ok := readCString(src[1:])
	if !ok {
		return nil, src, false
	}
	_, valueRem, ok := readValue(rem, t)
	if !ok {
		return nil, src, false
	}
	length := len(src) - len(valueRem)
	return Element(src[:length]), valueRem, true
}

// Type returns e's BSON type tag.
func (e Element) Type() bsontype.Type {
	if len(e) == 0 {
		return 0
	}
	return bsontype.Type(e[0])
}

// Key returns e's key.
func (e Element) Key() string {
	key, _, ok := e.KeyOK()
	if !ok {
		return ""
	}
	return key
}

// KeyOK is the same as Key, but reports whether e is well-formed enough to
// have a key.
func (e Element) KeyOK() (string, []byte, bool) {
	if len(e) < 2 {
		return "", nil, false
	}
	return readCString(e[1:])
}

// Value returns e's value.
func (e Element) Value() Value {
	v, ok := e.ValueOK()
	if !ok {
		return Value{}
	}
	return v
}

// ValueOK is the same as Value, but returns a boolean instead of a zero
// value on failure.
func (e Element) ValueOK() (Value, bool) {
	_, rem, ok := e.KeyOK()
	if !ok {
		return Value{}, false
	}
	data, _, ok := readValue(rem, e.Type())
	if !ok {
		return Value{}, false
	}
	return Value{Type: e.Type(), Data: data}, true
}

// Validate reports whether e is a well-formed element: a valid type tag, a
// key with no interior NUL, and a value whose payload matches its type's
// byte layout.
func (e Element) Validate() error {
	if len(e) < 2 {
		return newInsufficientBytesError(e, nil)
	}
	t := e.Type()
	if !t.IsValid() {
		return bsonerr.NewInternal("invalid BSON type byte 0x%02X", byte(t))
	}
	_, rem, ok := readCString(e[1:])
	if !ok {
		return bsonerr.NewInternal("element key is missing its NUL terminator")
	}
	value, _, ok := readValue(rem, t)
	if !ok {
		return newInsufficientBytesError(e, nil)
	}
	return Value{Type: t, Data: value}.Validate()
}
