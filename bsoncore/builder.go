// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

import (
	"github.com/bsonkit/bsonkit/bsonerr"
	"github.com/bsonkit/bsonkit/bsontype"
	"github.com/bsonkit/bsonkit/decimal128"
	"github.com/bsonkit/bsonkit/objectid"
)

// Builder incrementally constructs a single BSON document or array by
// appending elements, including nested documents/arrays via a start/end
// pair that reserves the length prefix up front and backfills it on Build.
type Builder struct {
	buf []byte
	idx int32
}

// NewDocumentBuilder returns a Builder ready to accumulate the elements of
// a top-level document.
func NewDocumentBuilder() *Builder {
	b := &Builder{}
	b.idx, b.buf = ReserveLength(b.buf)
	return b
}

// Build finalizes b, appending the terminator and backfilling the length
// prefix, and returns the resulting Document. It fails if the finished
// document would exceed the 16 MiB size limit.
func (b *Builder) Build() (Document, error) {
	buf := append(b.buf, 0x00)
	if len(buf) > DocumentSizeLimit {
		return nil, bsonerr.NewDocumentTooLarge(len(buf), DocumentSizeLimit)
	}
	return Document(UpdateLength(buf, b.idx, int32(len(buf)))), nil
}

// BuildArray is the same as Build but returns the result as an Array.
func (b *Builder) BuildArray() (Array, error) {
	doc, err := b.Build()
	return Array(doc), err
}

func (b *Builder) AppendDouble(key string, f float64) *Builder {
	b.buf = AppendDoubleElement(b.buf, key, f)
	return b
}

func (b *Builder) AppendString(key, s string) *Builder {
	b.buf = AppendStringElement(b.buf, key, s)
	return b
}

// AppendDocumentStart writes key's header and reserves the nested
// document's length prefix, returning the index needed by AppendDocumentEnd.
func (b *Builder) AppendDocumentStart(key string) int32 {
	b.buf = AppendHeader(b.buf, bsontype.EmbeddedDocument, key)
	idx, buf := ReserveLength(b.buf)
	b.buf = buf
	return idx
}

// AppendDocumentEnd closes the nested document started at idx.
func (b *Builder) AppendDocumentEnd(idx int32) *Builder {
	b.buf = append(b.buf, 0x00)
	b.buf = UpdateLength(b.buf, idx, int32(len(b.buf))-idx)
	return b
}

// AppendArrayStart writes key's header and reserves the nested array's
// length prefix, returning the index needed by AppendArrayEnd.
func (b *Builder) AppendArrayStart(key string) int32 {
	b.buf = AppendHeader(b.buf, bsontype.Array, key)
	idx, buf := ReserveLength(b.buf)
	b.buf = buf
	return idx
}

// AppendArrayEnd closes the nested array started at idx.
func (b *Builder) AppendArrayEnd(idx int32) *Builder {
	return b.AppendDocumentEnd(idx)
}

func (b *Builder) AppendDocument(key string, doc Document) *Builder {
	b.buf = AppendDocumentElement(b.buf, key, doc)
	return b
}

func (b *Builder) AppendArray(key string, arr Array) *Builder {
	b.buf = AppendArrayElement(b.buf, key, arr)
	return b
}

func (b *Builder) AppendBinary(key string, subtype byte, data []byte) *Builder {
	b.buf = AppendBinaryElement(b.buf, key, subtype, data)
	return b
}

func (b *Builder) AppendUndefined(key string) *Builder {
	b.buf = AppendUndefinedElement(b.buf, key)
	return b
}

func (b *Builder) AppendObjectID(key string, oid objectid.ObjectID) *Builder {
	b.buf = AppendObjectIDElement(b.buf, key, oid)
	return b
}

func (b *Builder) AppendBoolean(key string, v bool) *Builder {
	b.buf = AppendBooleanElement(b.buf, key, v)
	return b
}

func (b *Builder) AppendDateTime(key string, dt int64) *Builder {
	b.buf = AppendDateTimeElement(b.buf, key, dt)
	return b
}

func (b *Builder) AppendNull(key string) *Builder {
	b.buf = AppendHeader(b.buf, bsontype.Null, key)
	return b
}

func (b *Builder) AppendRegex(key, pattern, options string) *Builder {
	b.buf = AppendRegexElement(b.buf, key, pattern, options)
	return b
}

func (b *Builder) AppendDBPointer(key, ns string, oid objectid.ObjectID) *Builder {
	b.buf = AppendDBPointerElement(b.buf, key, ns, oid)
	return b
}

func (b *Builder) AppendJavaScript(key, js string) *Builder {
	b.buf = AppendJavaScriptElement(b.buf, key, js)
	return b
}

func (b *Builder) AppendSymbol(key, symbol string) *Builder {
	b.buf = AppendSymbolElement(b.buf, key, symbol)
	return b
}

func (b *Builder) AppendCodeWithScope(key, code string, scope Document) *Builder {
	b.buf = AppendCodeWithScopeElement(b.buf, key, code, scope)
	return b
}

func (b *Builder) AppendInt32(key string, i32 int32) *Builder {
	b.buf = AppendInt32Element(b.buf, key, i32)
	return b
}

func (b *Builder) AppendTimestamp(key string, increment, seconds uint32) *Builder {
	b.buf = AppendTimestampElement(b.buf, key, increment, seconds)
	return b
}

func (b *Builder) AppendInt64(key string, i64 int64) *Builder {
	b.buf = AppendInt64Element(b.buf, key, i64)
	return b
}

func (b *Builder) AppendDecimal128(key string, d decimal128.Decimal128) *Builder {
	b.buf = AppendDecimal128Element(b.buf, key, d)
	return b
}

func (b *Builder) AppendMinKey(key string) *Builder {
	b.buf = AppendMinKeyElement(b.buf, key)
	return b
}

func (b *Builder) AppendMaxKey(key string) *Builder {
	b.buf = AppendMaxKeyElement(b.buf, key)
	return b
}

func (b *Builder) AppendValue(key string, v Value) *Builder {
	b.buf = AppendElement(b.buf, key, v)
	return b
}
