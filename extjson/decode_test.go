// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package extjson

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsonkit/bsonkit/bsoncore"
	"github.com/bsonkit/bsonkit/bsontype"
	"github.com/bsonkit/bsonkit/decimal128"
)

func TestUnmarshalHelloWorld(t *testing.T) {
	t.Parallel()

	doc, err := Unmarshal([]byte(`{"hello":"world"}`))
	require.NoError(t, err)

	v, err := doc.Lookup("hello")
	require.NoError(t, err)
	s, ok := v.StringValueOK()
	require.True(t, ok)
	assert.Equal(t, "world", s)
}

func TestUnmarshalWrapperTypes(t *testing.T) {
	t.Parallel()

	doc, err := Unmarshal([]byte(`{
		"i32":{"$numberInt":"42"},
		"i64":{"$numberLong":"9223372036854775807"},
		"dbl":{"$numberDouble":"3.14"},
		"oid":{"$oid":"507f1f77bcf86cd799439011"},
		"min":{"$minKey":1},
		"max":{"$maxKey":1},
		"und":{"$undefined":true},
		"sym":{"$symbol":"s"},
		"code":{"$code":"function(){}"}
	}`))
	require.NoError(t, err)

	checks := []struct {
		key  string
		want bsontype.Type
	}{
		{"i32", bsontype.Int32},
		{"i64", bsontype.Int64},
		{"dbl", bsontype.Double},
		{"oid", bsontype.ObjectID},
		{"min", bsontype.MinKey},
		{"max", bsontype.MaxKey},
		{"und", bsontype.Undefined},
		{"sym", bsontype.Symbol},
		{"code", bsontype.JavaScript},
	}
	for _, c := range checks {
		v, err := doc.Lookup(c.key)
		require.NoError(t, err, c.key)
		assert.Equal(t, c.want, v.Type, c.key)
	}
}

// S3: decoding {"$numberDecimal":"1.2E+10"} through Extended JSON and
// re-encoding it produces the same wire bytes as parsing the literal
// directly.
func TestUnmarshalDecimal128MatchesDirectParse(t *testing.T) {
	t.Parallel()

	doc, err := Unmarshal([]byte(`{"value":{"$numberDecimal":"1.2E+10"}}`))
	require.NoError(t, err)
	v, err := doc.Lookup("value")
	require.NoError(t, err)
	d, ok := v.Decimal128OK()
	require.True(t, ok)
	assert.Equal(t, "1.2E+10", d.String())

	want, err := decimal128.Parse("1.2E+10")
	require.NoError(t, err)
	assert.Equal(t, want, d)
	assert.Equal(t, bsoncore.AppendDecimal128(nil, want), v.Data)
}

// S5: a relaxed $date ISO-8601 string decodes to msSinceEpoch == 978312200000.
func TestUnmarshalRelaxedDateISO8601(t *testing.T) {
	t.Parallel()

	doc, err := Unmarshal([]byte(`{"value":{"$date":"2001-01-01T01:23:20Z"}}`))
	require.NoError(t, err)
	v, err := doc.Lookup("value")
	require.NoError(t, err)
	ms, ok := v.DateTimeOK()
	require.True(t, ok)
	assert.Equal(t, int64(978_312_200_000), ms)
}

func TestUnmarshalCanonicalDateNumberLong(t *testing.T) {
	t.Parallel()

	doc, err := Unmarshal([]byte(`{"value":{"$date":{"$numberLong":"1000"}}}`))
	require.NoError(t, err)
	v, err := doc.Lookup("value")
	require.NoError(t, err)
	ms, ok := v.DateTimeOK()
	require.True(t, ok)
	assert.Equal(t, int64(1000), ms)
}

// S6: a canonical $binary value decodes and re-encodes losslessly.
func TestUnmarshalCanonicalBinaryRoundTrip(t *testing.T) {
	t.Parallel()

	doc, err := Unmarshal([]byte(`{"value":{"$binary":{"base64":"3q0=","subType":"00"}}}`))
	require.NoError(t, err)
	v, err := doc.Lookup("value")
	require.NoError(t, err)
	subtype, data, ok := v.BinaryOK()
	require.True(t, ok)
	assert.Equal(t, byte(0x00), subtype)
	assert.Equal(t, []byte{0xDE, 0xAD}, data)

	s, err := MarshalCanonical(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"value":{"$binary":{"base64":"3q0=","subType":"00"}}}`, s)
}

func TestUnmarshalLegacyBinaryForm(t *testing.T) {
	t.Parallel()

	doc, err := Unmarshal([]byte(`{"value":{"$binary":"3q0=","$type":"00"}}`))
	require.NoError(t, err)
	v, err := doc.Lookup("value")
	require.NoError(t, err)
	subtype, data, ok := v.BinaryOK()
	require.True(t, ok)
	assert.Equal(t, byte(0x00), subtype)
	assert.Equal(t, []byte{0xDE, 0xAD}, data)
}

func TestUnmarshalCanonicalBinaryRejectsReservedSubtype(t *testing.T) {
	t.Parallel()

	_, err := Unmarshal([]byte(`{"value":{"$binary":{"base64":"3q0=","subType":"10"}}}`))
	assert.Error(t, err)
}

func TestUnmarshalLegacyBinaryRejectsReservedSubtype(t *testing.T) {
	t.Parallel()

	_, err := Unmarshal([]byte(`{"value":{"$binary":"3q0=","$type":"10"}}`))
	assert.Error(t, err)
}

func TestUnmarshalCanonicalBinaryRejectsShortUUIDSubtype(t *testing.T) {
	t.Parallel()

	_, err := Unmarshal([]byte(`{"value":{"$binary":{"base64":"3q0=","subType":"04"}}}`))
	assert.Error(t, err)
}

func TestUnmarshalUUIDShorthand(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	doc, err := Unmarshal([]byte(`{"value":{"$uuid":"` + id.String() + `"}}`))
	require.NoError(t, err)
	v, err := doc.Lookup("value")
	require.NoError(t, err)
	subtype, data, ok := v.BinaryOK()
	require.True(t, ok)
	assert.Equal(t, bsontype.BinaryUUID, subtype)
	assert.Equal(t, id[:], data)
}

func TestUnmarshalTimestamp(t *testing.T) {
	t.Parallel()

	doc, err := Unmarshal([]byte(`{"value":{"$timestamp":{"t":100,"i":5}}}`))
	require.NoError(t, err)
	v, err := doc.Lookup("value")
	require.NoError(t, err)
	increment, seconds, ok := v.TimestampOK()
	require.True(t, ok)
	assert.Equal(t, uint32(100), seconds)
	assert.Equal(t, uint32(5), increment)
}

func TestUnmarshalRegularExpression(t *testing.T) {
	t.Parallel()

	doc, err := Unmarshal([]byte(`{"value":{"$regularExpression":{"pattern":"^a","options":"imx"}}}`))
	require.NoError(t, err)
	v, err := doc.Lookup("value")
	require.NoError(t, err)
	pattern, options, ok := v.RegexOK()
	require.True(t, ok)
	assert.Equal(t, "^a", pattern)
	assert.Equal(t, "imx", options)
}

func TestUnmarshalRegularExpressionRejectsInvalidOption(t *testing.T) {
	t.Parallel()

	_, err := Unmarshal([]byte(`{"value":{"$regularExpression":{"pattern":"^a","options":"z"}}}`))
	assert.Error(t, err)
}

func TestUnmarshalDBPointer(t *testing.T) {
	t.Parallel()

	doc, err := Unmarshal([]byte(`{"value":{"$dbPointer":{"$ref":"coll","$id":{"$oid":"507f1f77bcf86cd799439011"}}}}`))
	require.NoError(t, err)
	v, err := doc.Lookup("value")
	require.NoError(t, err)
	ns, oid, ok := v.DBPointerOK()
	require.True(t, ok)
	assert.Equal(t, "coll", ns)
	assert.Equal(t, "507f1f77bcf86cd799439011", oid.Hex())
}

func TestUnmarshalCodeWithScope(t *testing.T) {
	t.Parallel()

	doc, err := Unmarshal([]byte(`{"value":{"$code":"function(){}","$scope":{"x":1}}}`))
	require.NoError(t, err)
	v, err := doc.Lookup("value")
	require.NoError(t, err)
	code, scope, ok := v.CodeWithScopeOK()
	require.True(t, ok)
	assert.Equal(t, "function(){}", code)
	sv, err := scope.Lookup("x")
	require.NoError(t, err)
	i, ok := sv.Int32OK()
	require.True(t, ok)
	assert.Equal(t, int32(1), i)
}

func TestUnmarshalErrorIncludesKeyPath(t *testing.T) {
	t.Parallel()

	_, err := Unmarshal([]byte(`{"a":{"b":{"$oid":"not-hex"}}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.b")
}

func TestUnmarshalNestedDocumentFallsThroughFromUnknownWrapper(t *testing.T) {
	t.Parallel()

	doc, err := Unmarshal([]byte(`{"a":{"x":1,"y":2}}`))
	require.NoError(t, err)
	v, err := doc.Lookup("a")
	require.NoError(t, err)
	inner, ok := v.DocumentOK()
	require.True(t, ok)
	elements, err := inner.Elements()
	require.NoError(t, err)
	assert.Len(t, elements, 2)
}

func TestUnmarshalBareNumberDecodesAsDouble(t *testing.T) {
	t.Parallel()

	doc, err := Unmarshal([]byte(`{"n":5.05}`))
	require.NoError(t, err)
	v, err := doc.Lookup("n")
	require.NoError(t, err)
	f, ok := v.DoubleOK()
	require.True(t, ok)
	assert.InDelta(t, 5.05, f, 1e-12)
}

func TestUnmarshalBareIntegerDecodesAsInt32(t *testing.T) {
	t.Parallel()

	doc, err := Unmarshal([]byte(`{"n":1}`))
	require.NoError(t, err)
	v, err := doc.Lookup("n")
	require.NoError(t, err)
	i, ok := v.Int32OK()
	require.True(t, ok)
	assert.Equal(t, int32(1), i)
}

func TestUnmarshalBareLargeIntegerDecodesAsInt64(t *testing.T) {
	t.Parallel()

	doc, err := Unmarshal([]byte(`{"n":9223372036854775807}`))
	require.NoError(t, err)
	v, err := doc.Lookup("n")
	require.NoError(t, err)
	i, ok := v.Int64OK()
	require.True(t, ok)
	assert.Equal(t, int64(9223372036854775807), i)
}
