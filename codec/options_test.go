// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeEncodeOptionsLaterOverridesEarlier(t *testing.T) {
	t.Parallel()

	first := NewEncodeOptions().SetDateEncoding(DateEncodingISO8601String).SetKeyStrategy(KeyStrategySnakeCase)
	second := NewEncodeOptions().SetDateEncoding(DateEncodingMillisecondsInt64)

	merged := MergeEncodeOptions(first, second)
	require.NotNil(t, merged.DateEncoding)
	assert.Equal(t, DateEncodingMillisecondsInt64, *merged.DateEncoding)
	require.NotNil(t, merged.KeyStrategy)
	assert.Equal(t, KeyStrategySnakeCase, *merged.KeyStrategy)
}

func TestMergeEncodeOptionsSkipsNil(t *testing.T) {
	t.Parallel()

	opt := NewEncodeOptions().SetBinarySubtype(0x05)
	merged := MergeEncodeOptions(nil, opt, nil)
	require.NotNil(t, merged.BinarySubtype)
	assert.Equal(t, byte(0x05), *merged.BinarySubtype)
}

func TestMergeEncodeOptionsUnsetFieldsStayNil(t *testing.T) {
	t.Parallel()

	merged := MergeEncodeOptions(NewEncodeOptions())
	assert.Nil(t, merged.DateEncoding)
	assert.Nil(t, merged.DataEncoding)
	assert.Nil(t, merged.UUIDEncoding)
	assert.Nil(t, merged.KeyStrategy)
	assert.Nil(t, merged.BinarySubtype)
	assert.Nil(t, merged.NilSliceAsEmpty)
}

func TestMergeDecodeOptionsLaterOverridesEarlier(t *testing.T) {
	t.Parallel()

	first := NewDecodeOptions().SetErrorOnMissingKey(true)
	second := NewDecodeOptions().SetErrorOnMissingKey(false)

	merged := MergeDecodeOptions(first, second)
	require.NotNil(t, merged.ErrorOnMissingKey)
	assert.False(t, *merged.ErrorOnMissingKey)
}

func TestSetNilSliceAsEmpty(t *testing.T) {
	t.Parallel()

	opt := NewEncodeOptions().SetNilSliceAsEmpty(true)
	require.NotNil(t, opt.NilSliceAsEmpty)
	assert.True(t, *opt.NilSliceAsEmpty)
}
