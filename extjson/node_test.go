// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package extjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreservesObjectKeyOrder(t *testing.T) {
	t.Parallel()

	node, err := Parse([]byte(`{"z":1,"a":2,"m":3}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m"}, node.Keys)
}

func TestParseLargeIntegerLiteralSurvivesVerbatim(t *testing.T) {
	t.Parallel()

	node, err := Parse([]byte(`9223372036854775807`))
	require.NoError(t, err)
	assert.Equal(t, KindNumber, node.Kind)
	assert.Equal(t, "9223372036854775807", node.Num)
}

func TestParseRejectsTrailingData(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`{"a":1} garbage`))
	assert.Error(t, err)
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`{"a":`))
	assert.Error(t, err)
}

func TestNodeFieldAndWithField(t *testing.T) {
	t.Parallel()

	n := Object([]string{"a"}, []Node{Number("1")})
	v, ok := n.Field("a")
	require.True(t, ok)
	assert.Equal(t, "1", v.Num)

	_, ok = n.Field("missing")
	assert.False(t, ok)

	n = n.WithField("b", String("hi"))
	assert.Equal(t, []string{"a", "b"}, n.Keys)

	n = n.WithField("a", Number("2"))
	v, ok = n.Field("a")
	require.True(t, ok)
	assert.Equal(t, "2", v.Num)
	assert.Len(t, n.Keys, 2, "replacing an existing key does not grow Keys")
}

func TestMarshalRoundTripsThroughParse(t *testing.T) {
	t.Parallel()

	node := Object([]string{"a", "b"}, []Node{Number("1"), Array(String("x"), Bool(true), Null())})
	s := Marshal(node)

	reparsed, err := Parse([]byte(s))
	require.NoError(t, err)
	assert.Equal(t, node, reparsed)
}

func TestMarshalEscapesControlCharacters(t *testing.T) {
	t.Parallel()

	s := Marshal(String("a\nb\"c\\d\x01"))
	assert.Equal(t, "\"a\\nb\\\"c\\\\d\\u0001\"", s)
}
