// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveAndUpdateLength(t *testing.T) {
	t.Parallel()

	idx, buf := ReserveLength(nil)
	assert.Equal(t, int32(0), idx)
	assert.Len(t, buf, 4)

	buf = append(buf, 0x01, 0x02, 0x03)
	buf = UpdateLength(buf, idx, int32(len(buf)))

	length, rem, ok := ReadLength(buf)
	require.True(t, ok)
	assert.Equal(t, int32(7), length)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, rem)
}

func TestReadLengthInsufficientBytes(t *testing.T) {
	t.Parallel()

	_, _, ok := ReadLength([]byte{0x01, 0x02})
	assert.False(t, ok)
}

func TestCStringRoundTrip(t *testing.T) {
	t.Parallel()

	buf := appendCString(nil, "hello")
	assert.Equal(t, []byte{'h', 'e', 'l', 'l', 'o', 0x00}, buf)

	s, rem, ok := readCString(buf)
	require.True(t, ok)
	assert.Equal(t, "hello", s)
	assert.Empty(t, rem)
}

func TestReadCStringMissingNUL(t *testing.T) {
	t.Parallel()

	_, _, ok := readCString([]byte{'h', 'e', 'l', 'l', 'o'})
	assert.False(t, ok)
}

func TestStringPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	buf := appendstring(nil, "world")
	s, rem, ok := readstring(buf)
	require.True(t, ok)
	assert.Equal(t, "world", s)
	assert.Empty(t, rem)
}

func TestAppendBinarySubtype2(t *testing.T) {
	t.Parallel()

	// Subtype 0x02 carries its own inner length prefix ahead of the data.
	buf := appendBinarySubtype2(nil, 0x02, []byte{0xAA, 0xBB})
	assert.Equal(t, byte(0x02), buf[4])
	inner, _, ok := ReadLength(buf[5:])
	require.True(t, ok)
	assert.Equal(t, int32(2), inner)
}

func TestElementTypeErrorMessage(t *testing.T) {
	t.Parallel()

	err := ElementTypeError{Method: "Int32", Type: 0x02}
	assert.Contains(t, err.Error(), "Int32")
}
