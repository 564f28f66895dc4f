// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsonerr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInvalidArgumentFormatsReason(t *testing.T) {
	t.Parallel()

	err := NewInvalidArgument("bad value %q", "x")
	assert.Equal(t, `invalid argument: bad value "x"`, err.Error())
}

func TestNewInternalWithAndWithoutOffset(t *testing.T) {
	t.Parallel()

	err := NewInternal("short read")
	assert.Equal(t, "internal: short read", err.Error())

	err = NewInternalAt(12, "length mismatch")
	assert.Equal(t, "internal: length mismatch (at offset 12)", err.Error())
}

func TestNewLogic(t *testing.T) {
	t.Parallel()

	err := NewLogic("index %d out of range", 5)
	assert.Equal(t, "logic error: index 5 out of range", err.Error())
}

func TestNewDocumentTooLarge(t *testing.T) {
	t.Parallel()

	err := NewDocumentTooLarge(16*1024*1024+1, 16*1024*1024)
	assert.Contains(t, err.Error(), "document too large")
}

func TestDataCorruptedErrorFormatsKeyPath(t *testing.T) {
	t.Parallel()

	err := NewDataCorrupted([]string{"a", "b"}, "invalid value %q", "x")
	assert.Equal(t, `a.b: invalid value "x"`, err.Error())

	err = NewDataCorrupted(nil, "bad top-level value")
	assert.Equal(t, "data corrupted: bad top-level value", err.Error())
}

func TestWithKeyPrependsToDataCorruptedError(t *testing.T) {
	t.Parallel()

	err := NewDataCorrupted([]string{"b"}, "bad")
	wrapped := WithKey(err, "a")
	assert.Equal(t, "a.b: bad", wrapped.Error())
}

func TestWithKeyLeavesOtherErrorsUnchanged(t *testing.T) {
	t.Parallel()

	err := NewInvalidArgument("bad")
	wrapped := WithKey(err, "a")
	assert.Same(t, err, wrapped)
}

func TestNewTypeMismatch(t *testing.T) {
	t.Parallel()

	err := NewTypeMismatch("Int32", "string")
	assert.Equal(t, "call of Int32 on string type", err.Error())
}
