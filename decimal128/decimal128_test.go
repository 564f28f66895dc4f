// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package decimal128

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStringRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []string{
		"0", "-0", "1", "-1", "1.2E+10", "0.1", "123456789012345678901234567890123",
		"5.05",
	}
	for _, c := range cases {
		c := c
		t.Run(c, func(t *testing.T) {
			t.Parallel()
			d, err := Parse(c)
			require.NoError(t, err)
			assert.Equal(t, c, d.String())
		})
	}
}

func TestParseNaNAndInfinityCaseInsensitiveWithSign(t *testing.T) {
	t.Parallel()

	nanVal, err := Parse("nan")
	require.NoError(t, err)
	assert.True(t, nanVal.IsNaN())

	posInfVal, err := Parse("Infinity")
	require.NoError(t, err)
	assert.Equal(t, 1, posInfVal.IsInf())

	negInfVal, err := Parse("-INF")
	require.NoError(t, err)
	assert.Equal(t, -1, negInfVal.IsInf())
}

func TestParseRejectsEmptyString(t *testing.T) {
	t.Parallel()

	_, err := Parse("")
	assert.Error(t, err)
}

func TestParseRejectsMalformedLiteral(t *testing.T) {
	t.Parallel()

	cases := []string{"abc", "1.2.3", "1e", "."}
	for _, c := range cases {
		_, err := Parse(c)
		assert.Errorf(t, err, "expected error for %q", c)
	}
}

func TestParseRejectsTooManySignificantDigits(t *testing.T) {
	t.Parallel()

	// 35 significant digits exceeds the 34-digit limit.
	_, err := Parse("12345678901234567890123456789012345")
	assert.Error(t, err)
}

func TestParseUnderflowRejectsNonZeroDigitLoss(t *testing.T) {
	t.Parallel()

	_, err := Parse("1E-6177")
	assert.Error(t, err)
}

func TestNewAndBytesRoundTrip(t *testing.T) {
	t.Parallel()

	d := New(0x3040000000000000, 0x0000000000000001)
	h, l := d.Bytes()
	assert.Equal(t, uint64(0x3040000000000000), h)
	assert.Equal(t, uint64(0x0000000000000001), l)
}

func TestSpecialValueConstructors(t *testing.T) {
	t.Parallel()

	assert.True(t, NaN().IsNaN())
	assert.Equal(t, 1, PositiveInfinity().IsInf())
	assert.Equal(t, -1, NegativeInfinity().IsInf())
	assert.Equal(t, 0, NaN().IsInf())
	assert.False(t, PositiveInfinity().IsNaN())
}

func TestBigIntRoundTrip(t *testing.T) {
	t.Parallel()

	d, err := Parse("1.2E+10")
	require.NoError(t, err)
	significand, exponent, err := d.BigInt()
	require.NoError(t, err)
	assert.Equal(t, "12", significand.String())
	assert.Equal(t, 9, exponent)
}

func TestBigIntRejectsNaNAndInfinity(t *testing.T) {
	t.Parallel()

	_, _, err := NaN().BigInt()
	assert.Error(t, err)

	_, _, err = PositiveInfinity().BigInt()
	assert.Error(t, err)
}

func TestFromBigIntClampsExponentDownward(t *testing.T) {
	t.Parallel()

	// 100 * 10^(MinExponent-2) == 1 * 10^MinExponent, losslessly clampable.
	d, err := Parse("100E-6178")
	require.NoError(t, err)
	significand, exponent, err := d.BigInt()
	require.NoError(t, err)
	assert.Equal(t, MinExponent, exponent)
	assert.Equal(t, "1", significand.String())
}
