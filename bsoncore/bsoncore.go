// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bsoncore implements the BSON binary codec: a little-endian
// byte-buffer layer, the scalar read/write rules for every BSON type, the
// Document/Array container, and a single-pass forward iterator.
package bsoncore

import (
	"github.com/bsonkit/bsonkit/bsonerr"
	"github.com/bsonkit/bsonkit/bsontype"
)

// DocumentSizeLimit is the maximum size, in bytes, of a BSON document: 16 MiB.
const DocumentSizeLimit = 16 * 1024 * 1024

// ElementTypeError reports that a method on Value or Element was called
// against the wrong BSON type.
type ElementTypeError struct {
	Method string
	Type   bsontype.Type
}

func (e ElementTypeError) Error() string {
	return bsonerr.NewTypeMismatch(e.Method, e.Type.String()).Error()
}

func lengthError(component string, length, rem int) error {
	return bsonerr.NewInternal("%s length %d exceeds the %d bytes available", component, length, rem)
}

func newInsufficientBytesError(src, rem []byte) error {
	return bsonerr.NewInternalAt(len(src)-len(rem), "insufficient bytes to read a complete value")
}

// appendi32 appends a little-endian int32.
func appendi32(dst []byte, i32 int32) []byte {
	return append(dst, byte(i32), byte(i32>>8), byte(i32>>16), byte(i32>>24))
}

// readi32 reads a little-endian int32.
func readi32(src []byte) (int32, []byte, bool) {
	if len(src) < 4 {
		return 0, src, false
	}
	return int32(src[0]) | int32(src[1])<<8 | int32(src[2])<<16 | int32(src[3])<<24, src[4:], true
}

// appendu32 appends a little-endian uint32.
func appendu32(dst []byte, u32 uint32) []byte {
	return append(dst, byte(u32), byte(u32>>8), byte(u32>>16), byte(u32>>24))
}

func readu32(src []byte) (uint32, []byte, bool) {
	if len(src) < 4 {
		return 0, src, false
	}
	return uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16 | uint32(src[3])<<24, src[4:], true
}

// appendi64 appends a little-endian int64.
func appendi64(dst []byte, i64 int64) []byte {
	return appendu64(dst, uint64(i64))
}

func readi64(src []byte) (int64, []byte, bool) {
	u64, rem, ok := readu64(src)
	return int64(u64), rem, ok
}

// appendu64 appends a little-endian uint64.
func appendu64(dst []byte, u64 uint64) []byte {
	return append(dst,
		byte(u64), byte(u64>>8), byte(u64>>16), byte(u64>>24),
		byte(u64>>32), byte(u64>>40), byte(u64>>48), byte(u64>>56),
	)
}

func readu64(src []byte) (uint64, []byte, bool) {
	if len(src) < 8 {
		return 0, src, false
	}
	u64 := uint64(src[0]) | uint64(src[1])<<8 | uint64(src[2])<<16 | uint64(src[3])<<24 |
		uint64(src[4])<<32 | uint64(src[5])<<40 | uint64(src[6])<<48 | uint64(src[7])<<56
	return u64, src[8:], true
}

// appendLength is an alias for appendi32, used at call sites that build a
// length-prefixed field rather than a plain integer value.
func appendLength(dst []byte, length int32) []byte {
	return appendi32(dst, length)
}

// ReadLength reads a document/array/binary/string length prefix.
func ReadLength(src []byte) (int32, []byte, bool) {
	return ReadI32(src)
}

// ReadI32 reads a little-endian int32 from src, returning the value, the
// remaining bytes, and whether the read succeeded.
func ReadI32(src []byte) (int32, []byte, bool) { return readi32(src) }

// ReadI64 reads a little-endian int64 from src.
func ReadI64(src []byte) (int64, []byte, bool) { return readi64(src) }

// ReadU32 reads a little-endian uint32 from src.
func ReadU32(src []byte) (uint32, []byte, bool) { return readu32(src) }

// ReadU64 reads a little-endian uint64 from src.
func ReadU64(src []byte) (uint64, []byte, bool) { return readu64(src) }

// ReserveLength appends four placeholder bytes to dst for a length prefix to
// be filled in later by UpdateLength, returning the index at which the
// placeholder begins and the extended buffer.
func ReserveLength(dst []byte) (int32, []byte) {
	index := int32(len(dst))
	return index, append(dst, 0x00, 0x00, 0x00, 0x00)
}

// UpdateLength writes length as a little-endian int32 into dst at index,
// returning dst.
func UpdateLength(dst []byte, index, length int32) []byte {
	dst[index] = byte(length)
	dst[index+1] = byte(length >> 8)
	dst[index+2] = byte(length >> 16)
	dst[index+3] = byte(length >> 24)
	return dst
}

// appendCString appends s followed by a NUL terminator. s must not contain
// an interior NUL; callers that accept untrusted keys are responsible for
// checking that invariant.
func appendCString(dst []byte, s string) []byte {
	dst = append(dst, s...)
	return append(dst, 0x00)
}

// readCString reads bytes up to and consuming a NUL terminator.
func readCString(src []byte) (string, []byte, bool) {
	idx := indexNUL(src)
	if idx < 0 {
		return "", src, false
	}
	return string(src[:idx]), src[idx+1:], true
}

func indexNUL(src []byte) int {
	for i, b := range src {
		if b == 0x00 {
			return i
		}
	}
	return -1
}

// appendstring appends a BSON string payload: int32 lengthIncludingNUL |
// UTF-8 bytes | 0x00.
func appendstring(dst []byte, s string) []byte {
	dst = appendLength(dst, int32(len(s)+1))
	dst = append(dst, s...)
	return append(dst, 0x00)
}

// readstring reads a BSON string payload, validating that the declared
// length matches the actual NUL-terminated content.
func readstring(src []byte) (string, []byte, bool) {
	length, rem, ok := readi32(src)
	if !ok || length < 1 || int(length) > len(rem) {
		return "", src, false
	}
	if rem[length-1] != 0x00 {
		return "", src, false
	}
	return string(rem[:length-1]), rem[length:], true
}

// appendBinarySubtype2 appends the legacy binary-old payload, which carries
// a redundant inner length prefix equal to the outer length minus 4.
func appendBinarySubtype2(dst []byte, subtype byte, data []byte) []byte {
	dst = appendLength(dst, int32(len(data)+4))
	dst = append(dst, subtype)
	dst = appendLength(dst, int32(len(data)))
	return append(dst, data...)
}
