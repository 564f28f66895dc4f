// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package codec

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsonkit/bsonkit/bsoncore"
	"github.com/bsonkit/bsonkit/bsontype"
)

func TestUUIDToBinaryAndFromValueRoundTrip(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	subtype, data := UUIDToBinary(id)
	assert.Equal(t, bsontype.BinaryUUID, subtype)

	v := bsoncore.Value{Type: bsontype.Binary, Data: bsoncore.AppendBinary(nil, subtype, data)}
	got, err := UUIDFromValue(v)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestUUIDFromValueAcceptsLegacySubtype(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	v := bsoncore.Value{Type: bsontype.Binary, Data: bsoncore.AppendBinary(nil, bsontype.BinaryUUIDOld, id[:])}
	got, err := UUIDFromValue(v)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestUUIDFromValueRejectsWrongSubtype(t *testing.T) {
	t.Parallel()

	v := bsoncore.Value{Type: bsontype.Binary, Data: bsoncore.AppendBinary(nil, bsontype.BinaryGeneric, make([]byte, 16))}
	_, err := UUIDFromValue(v)
	assert.Error(t, err)
}

func TestUUIDFromValueRejectsWrongLength(t *testing.T) {
	t.Parallel()

	v := bsoncore.Value{Type: bsontype.Binary, Data: bsoncore.AppendBinary(nil, bsontype.BinaryUUID, make([]byte, 8))}
	_, err := UUIDFromValue(v)
	assert.Error(t, err)
}

func TestUUIDFromValueRejectsNonBinary(t *testing.T) {
	t.Parallel()

	v := bsoncore.Value{Type: bsontype.Int32, Data: bsoncore.AppendInt32(nil, 1)}
	_, err := UUIDFromValue(v)
	assert.Error(t, err)
}

func TestAppendUUIDElementDefersToDataWhenRequested(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	opts := NewEncodeOptions().SetUUIDEncoding(UUIDEncodingDeferToData)
	buf := AppendUUIDElement(nil, "id", id, opts)

	elem, rest, ok := bsoncore.ReadElement(buf)
	require.True(t, ok)
	assert.Empty(t, rest)
	subtype, data, ok := elem.Value().BinaryOK()
	require.True(t, ok)
	assert.Equal(t, bsontype.BinaryGeneric, subtype)
	assert.Equal(t, id[:], data)
}

func TestAppendUUIDElementDefaultsToStandardSubtype(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	buf := AppendUUIDElement(nil, "id", id, nil)

	elem, rest, ok := bsoncore.ReadElement(buf)
	require.True(t, ok)
	assert.Empty(t, rest)
	subtype, _, ok := elem.Value().BinaryOK()
	require.True(t, ok)
	assert.Equal(t, bsontype.BinaryUUID, subtype)
}
