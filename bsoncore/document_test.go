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

	"github.com/bsonkit/bsonkit/bsontype"
)

func helloWorldDoc(t *testing.T) Document {
	t.Helper()
	b := NewDocumentBuilder().AppendString("hello", "world")
	doc, err := b.Build()
	require.NoError(t, err)
	return doc
}

// S1: encoding {"hello":"world"} produces this exact byte sequence.
func TestDocumentS1EncodeHelloWorld(t *testing.T) {
	t.Parallel()

	doc := helloWorldDoc(t)
	want := []byte{
		0x16, 0x00, 0x00, 0x00,
		0x02, 'h', 'e', 'l', 'l', 'o', 0x00,
		0x06, 0x00, 0x00, 0x00, 'w', 'o', 'r', 'l', 'd', 0x00,
		0x00,
	}
	assert.Equal(t, want, []byte(doc))
}

func TestDocumentValidateAndLen(t *testing.T) {
	t.Parallel()

	doc := helloWorldDoc(t)
	require.NoError(t, doc.Validate())
	length, ok := doc.Len()
	require.True(t, ok)
	assert.Equal(t, int32(len(doc)), length)
}

func TestDocumentValidateRejectsBadLength(t *testing.T) {
	t.Parallel()

	doc := Document{0x10, 0x00, 0x00, 0x00, 0x00}
	assert.Error(t, doc.Validate())
}

func TestDocumentElementsRejectsLengthMismatch(t *testing.T) {
	t.Parallel()

	doc := Document{0x10, 0x00, 0x00, 0x00, 0x00}
	_, err := doc.Elements()
	assert.Error(t, err)
}

func TestDocumentLookupAndDuplicateKeys(t *testing.T) {
	t.Parallel()

	doc, err := NewDocument().Append("a", Value{Type: bsontype.Int32, Data: AppendInt32(nil, 1)})
	require.NoError(t, err)
	doc, err = doc.Append("a", Value{Type: bsontype.Int32, Data: AppendInt32(nil, 2)})
	require.NoError(t, err)

	v, err := doc.Lookup("a")
	require.NoError(t, err)
	i, ok := v.Int32OK()
	require.True(t, ok)
	assert.Equal(t, int32(1), i, "Lookup resolves to the first matching key")

	elements, err := doc.Elements()
	require.NoError(t, err)
	assert.Len(t, elements, 2)
}

func TestDocumentSetSameLengthPreservesPosition(t *testing.T) {
	t.Parallel()

	doc, err := NewDocument().Append("a", Value{Type: bsontype.Int32, Data: AppendInt32(nil, 1)})
	require.NoError(t, err)
	doc, err = doc.Append("b", Value{Type: bsontype.Int32, Data: AppendInt32(nil, 2)})
	require.NoError(t, err)

	doc, err = doc.Set("a", Value{Type: bsontype.Int32, Data: AppendInt32(nil, 99)})
	require.NoError(t, err)

	elements, err := doc.Elements()
	require.NoError(t, err)
	require.Len(t, elements, 2)
	assert.Equal(t, "a", elements[0].Key(), "same-byte-length replace keeps position")
	assert.Equal(t, "b", elements[1].Key())
}

func TestDocumentSetDifferentLengthMovesToEnd(t *testing.T) {
	t.Parallel()

	doc, err := NewDocument().Append("a", Value{Type: bsontype.Int32, Data: AppendInt32(nil, 1)})
	require.NoError(t, err)
	doc, err = doc.Append("b", Value{Type: bsontype.Int32, Data: AppendInt32(nil, 2)})
	require.NoError(t, err)

	doc, err = doc.Set("a", Value{Type: bsontype.Int64, Data: AppendInt64(nil, 99)})
	require.NoError(t, err)

	elements, err := doc.Elements()
	require.NoError(t, err)
	require.Len(t, elements, 2)
	assert.Equal(t, "b", elements[0].Key(), "differing-length replace moves the key to the end")
	assert.Equal(t, "a", elements[1].Key())
}

func TestDocumentRemove(t *testing.T) {
	t.Parallel()

	doc := helloWorldDoc(t)
	doc, removed := doc.Remove("hello")
	assert.True(t, removed)
	_, err := doc.Lookup("hello")
	assert.Error(t, err)

	_, removed = doc.Remove("missing")
	assert.False(t, removed)
}

func TestDocumentSizeLimit(t *testing.T) {
	t.Parallel()

	b := NewDocumentBuilder()
	// A document built to exactly 16 MiB succeeds; one more byte fails.
	// overhead = 4 (doc length) + 1 (type) + 2 ("p\x00") + 4 (binary length) + 1 (subtype) + 1 (doc terminator)
	padding := make([]byte, DocumentSizeLimit-13)
	b.AppendBinary("p", 0x00, padding)
	doc, err := b.Build()
	require.NoError(t, err)
	assert.Len(t, doc, DocumentSizeLimit)

	b2 := NewDocumentBuilder()
	b2.AppendBinary("p", 0x00, append(padding, 0x00))
	_, err = b2.Build()
	assert.Error(t, err)
}

func TestDocumentFunctionalOperations(t *testing.T) {
	t.Parallel()

	b := NewDocumentBuilder()
	for i := int32(0); i < 5; i++ {
		b.AppendInt32(string(rune('a'+i)), i)
	}
	doc, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, 3, doc.Prefix(3).count())
	assert.Equal(t, 3, doc.Suffix(3).count())
	assert.Equal(t, 2, doc.DropFirst(3).count())
	assert.Equal(t, 2, doc.DropLast(3).count())

	filtered, err := doc.Filter(func(e Element) bool {
		i, _ := e.Value().Int32OK()
		return i%2 == 0
	})
	require.NoError(t, err)
	assert.Equal(t, 3, filtered.count())

	mapped, err := doc.Map(func(e Element) Element {
		i, _ := e.Value().Int32OK()
		return Element(AppendInt32Element(nil, e.Key(), i*10))
	})
	require.NoError(t, err)
	v, err := mapped.Lookup("b")
	require.NoError(t, err)
	i, _ := v.Int32OK()
	assert.Equal(t, int32(10), i)
}

func TestDocumentSplit(t *testing.T) {
	t.Parallel()

	b := NewDocumentBuilder()
	b.AppendInt32("a", 1)
	b.AppendNull("sep")
	b.AppendInt32("b", 2)
	doc, err := b.Build()
	require.NoError(t, err)

	groups := doc.Split(func(e Element) bool { return e.Type() == bsontype.Null }, 0, true)
	require.Len(t, groups, 2)
	assert.Equal(t, 1, groups[0].count())
	assert.Equal(t, 1, groups[1].count())
}

func TestDocumentSubsequenceClamps(t *testing.T) {
	t.Parallel()

	doc := helloWorldDoc(t)
	assert.Equal(t, 1, doc.Subsequence(-5, 100).count())
	assert.Equal(t, 0, doc.Subsequence(5, 10).count())
}
