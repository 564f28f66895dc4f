// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package decimal128 implements the IEEE 754-2008 128-bit decimal
// floating-point binary integer significand encoding used by BSON's
// Decimal128 type: parsing from a decimal string, formatting back to one,
// and the two-uint64 wire layout.
package decimal128

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/bsonkit/bsonkit/bsonerr"
)

// Exponent range after decimal-point normalization, bias 6176.
const (
	MaxExponent = 6111
	MinExponent = -6176
	bias        = 6176
)

// Decimal128 holds a 128-bit IEEE 754-2008 decimal floating-point value as
// its two 64-bit halves. The wire form writes the low half first, both
// little-endian; String/Parse operate on the decimal text form.
type Decimal128 struct {
	h, l uint64
}

// New constructs a Decimal128 directly from its high and low 64-bit halves,
// as they would appear after reading the wire form (low half first, then
// high half, both already byte-swapped to host order).
func New(high, low uint64) Decimal128 {
	return Decimal128{h: high, l: low}
}

// Bytes returns the high and low 64-bit halves of d, in the order they must
// be written to the wire: low first, then high.
func (d Decimal128) Bytes() (high, low uint64) {
	return d.h, d.l
}

var (
	nan    = Decimal128{h: 0x1F << 58}
	posInf = Decimal128{h: 0x1E << 58}
	negInf = Decimal128{h: 0x3E << 58}
)

// NaN returns the canonical not-a-number Decimal128.
func NaN() Decimal128 { return nan }

// PositiveInfinity returns the canonical +Infinity Decimal128.
func PositiveInfinity() Decimal128 { return posInf }

// NegativeInfinity returns the canonical -Infinity Decimal128.
func NegativeInfinity() Decimal128 { return negInf }

// IsNaN reports whether d is NaN (ignoring the sign bit).
func (d Decimal128) IsNaN() bool {
	return d.h>>58&(1<<5-1) == 0x1F
}

// IsInf reports whether d is an infinity: +1 for +Inf, -1 for -Inf, 0
// otherwise.
func (d Decimal128) IsInf() int {
	if d.h>>58&(1<<5-1) != 0x1E {
		return 0
	}
	if d.h>>63&1 == 0 {
		return 1
	}
	return -1
}

func divmod(h, l uint64, div uint32) (qh, ql uint64, rem uint32) {
	div64 := uint64(div)
	a := h >> 32
	aq := a / div64
	ar := a % div64
	b := ar<<32 + h&(1<<32-1)
	bq := b / div64
	br := b % div64
	c := br<<32 + l>>32
	cq := c / div64
	cr := c % div64
	d := cr<<32 + l&(1<<32-1)
	dq := d / div64
	dr := d % div64
	return (aq<<32 | bq), (cq<<32 | dq), uint32(dr)
}

// String formats d as a decimal string: plain decimal when the exponent and
// digit count keep it in a readable range, scientific notation otherwise.
// NaN and the two infinities format as "NaN", "Infinity", and "-Infinity".
//
// The digit extraction walks the 113-bit significand four limbs at a time
// via repeated division by 1e9 (divmod above), rather than pulling in an
// arbitrary-precision bignum type, mirroring the BSON spec's two-uint64
// design note.
func (d Decimal128) String() string {
	var pos int
	var exp int
	var h, l uint64

	if d.h>>63&1 == 0 {
		pos = 1
	}

	switch d.h >> 58 & (1<<5 - 1) {
	case 0x1F:
		return "NaN"
	case 0x1E:
		return "-Infinity"[pos:]
	}

	l = d.l
	if d.h>>61&3 == 3 {
		// Large-form encoding: bits 1*sign 2*ignored 14*exponent
		// 111*significand with an implicit leading 0b100. This library
		// never emits the large form but must still parse it on read, and
		// treats the implied significand as zero.
		exp = int(d.h>>47&(1<<14-1)) - bias
		h, l = 0, 0
	} else {
		exp = int(d.h>>49&(1<<14-1)) - bias
		h = d.h & (1<<49 - 1)
	}

	if h == 0 && l == 0 && exp == 0 {
		return "-0"[pos:]
	}

	var repr [48]byte
	last := len(repr)
	i := len(repr)
	dot := len(repr) + exp
	var rem uint32
Loop:
	for d9 := 0; d9 < 5; d9++ {
		h, l, rem = divmod(h, l, 1e9)
		for d1 := 0; d1 < 9; d1++ {
			if i < len(repr) && (dot == i || l == 0 && h == 0 && rem > 0 && rem < 10 && (dot < i-6 || exp > 0)) {
				exp += len(repr) - i
				i--
				repr[i] = '.'
				last = i - 1
				dot = len(repr)
			}
			c := '0' + byte(rem%10)
			rem /= 10
			i--
			repr[i] = c
			if l == 0 && h == 0 && rem == 0 && i == len(repr)-1 && (dot < i-5 || exp > 0) {
				last = i
				break Loop
			}
			if c != '0' {
				last = i
			}
			if dot > i && l == 0 && h == 0 && rem == 0 {
				break Loop
			}
		}
	}
	repr[last-1] = '-'
	last--

	if exp > 0 {
		return string(repr[last+pos:]) + "E+" + strconv.Itoa(exp)
	}
	if exp < 0 {
		return string(repr[last+pos:]) + "E" + strconv.Itoa(exp)
	}
	return string(repr[last+pos:])
}

var decimalPattern = regexp.MustCompile(`^([-+]?)(\d*)(?:\.(\d+))?(?:[Ee]([-+]?\d+))?$`)

// Parse parses a decimal string into a Decimal128. "NaN"/"Inf"/"Infinity"
// (case-insensitive, with optional sign) map to the special bit patterns;
// otherwise the integer and fractional digit runs are concatenated into a
// significand and the exponent is adjusted by the fractional length, then
// clamped into [MinExponent, MaxExponent] by trading trailing zero digits
// for exponent.
func Parse(s string) (Decimal128, error) {
	if s == "" {
		return nan, bsonerr.NewInvalidArgument("decimal128: empty string")
	}

	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "+"), "-")
	neg := strings.HasPrefix(s, "-")
	switch strings.ToLower(trimmed) {
	case "nan":
		return nan, nil
	case "inf", "infinity":
		if neg {
			return negInf, nil
		}
		return posInf, nil
	}

	match := decimalPattern.FindStringSubmatch(s)
	if match == nil {
		return nan, bsonerr.NewInvalidArgument("%q is not a valid decimal128 literal", s)
	}

	sign, intPart, fracPart, expPart := match[1], match[2], match[3], match[4]
	if intPart == "" && fracPart == "" {
		return nan, bsonerr.NewInvalidArgument("%q is not a valid decimal128 literal", s)
	}

	exp := 0
	if expPart != "" {
		e, err := strconv.Atoi(expPart)
		if err != nil {
			return nan, bsonerr.NewInvalidArgument("%q has an invalid exponent", s)
		}
		exp = e
	}
	exp -= len(fracPart)

	digits := intPart + fracPart
	// Drop leading zeros, but keep at least one digit.
	for len(digits) > 1 && digits[0] == '0' {
		digits = digits[1:]
	}
	if strings.Trim(digits, "0") == "" {
		digits = "0"
	}

	if len(digits) > 34 {
		return nan, bsonerr.NewInvalidArgument("%q has too many significant digits", s)
	}

	bi, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nan, bsonerr.NewInvalidArgument("%q is not a valid decimal128 literal", s)
	}
	if sign == "-" {
		bi.Neg(bi)
	}

	d, err := FromBigInt(bi, exp)
	if err != nil {
		return nan, err
	}
	// big.Int has no negative zero, so a "-0"-style literal's sign survives
	// only here, set directly on the encoded bits.
	if sign == "-" && bi.Sign() == 0 {
		d.h |= 1 << 63
	}
	return d, nil
}

var (
	ten       = big.NewInt(10)
	zero      = new(big.Int)
	maxSignif = new(big.Int).SetBytes([]byte{0x1, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}) // 2^113 - 1
)

// FromBigInt packs significand bi and exponent exp into a Decimal128,
// clamping the exponent into range by multiplying or dividing the
// significand by powers of ten. It fails with overflow/underflow if
// clamping cannot bring the pair into range without losing a non-zero
// digit.
func FromBigInt(bi *big.Int, exp int) (Decimal128, error) {
	bi = new(big.Int).Set(bi)
	r := new(big.Int)

	// A zero significand carries no digits to lose, so any exponent clamps
	// to the nearest bound in one step instead of looping one digit at a
	// time toward it.
	if bi.Sign() == 0 {
		switch {
		case exp < MinExponent:
			exp = MinExponent
		case exp > MaxExponent:
			exp = MaxExponent
		}
		h := uint64(exp-MinExponent) & (1<<14 - 1) << 49
		return Decimal128{h: h, l: 0}, nil
	}

	// Clamp downward: trade trailing zero digits for a smaller exponent.
	for exp < MinExponent {
		bi.QuoRem(bi, ten, r)
		if r.Cmp(zero) != 0 {
			return Decimal128{}, bsonerr.NewInvalidArgument("decimal128: underflow, exponent %d below minimum %d", exp, MinExponent)
		}
		exp++
	}

	// Clamp upward: append zero digits while the significand still fits.
	for exp > MaxExponent {
		bi.Mul(bi, ten)
		if bi.CmpAbs(maxSignif) == 1 {
			return Decimal128{}, bsonerr.NewInvalidArgument("decimal128: overflow, exponent %d above maximum %d", exp, MaxExponent)
		}
		exp--
	}

	for bi.CmpAbs(maxSignif) == 1 {
		bi.QuoRem(bi, ten, r)
		if r.Cmp(zero) != 0 {
			return Decimal128{}, bsonerr.NewInvalidArgument("decimal128: significand exceeds 34 digits and cannot be truncated losslessly")
		}
		exp++
		if exp > MaxExponent {
			return Decimal128{}, bsonerr.NewInvalidArgument("decimal128: overflow, exponent %d above maximum %d", exp, MaxExponent)
		}
	}

	b := bi.Bytes()
	var h, l uint64
	for i := 0; i < len(b); i++ {
		if i < len(b)-8 {
			h = h<<8 | uint64(b[i])
		} else {
			l = l<<8 | uint64(b[i])
		}
	}

	h |= uint64(exp-MinExponent) & (1<<14 - 1) << 49
	if bi.Sign() == -1 {
		h |= 1 << 63
	}

	return Decimal128{h: h, l: l}, nil
}

// BigInt returns d's significand as a *big.Int along with its exponent,
// such that d == significand * 10^exponent. It fails for NaN and Infinity,
// which have no finite significand.
func (d Decimal128) BigInt() (significand *big.Int, exponent int, err error) {
	if d.IsNaN() {
		return nil, 0, bsonerr.NewInvalidArgument("cannot convert NaN to a significand")
	}
	if inf := d.IsInf(); inf != 0 {
		return nil, 0, bsonerr.NewInvalidArgument("cannot convert Infinity to a significand")
	}

	h, l := d.h, d.l
	var pos int
	if h>>63&1 == 0 {
		pos = 1
	}

	var exp int
	if h>>61&3 == 3 {
		exp = int(h>>47&(1<<14-1)) - bias
		h, l = 0, 0
	} else {
		exp = int(h>>49&(1<<14-1)) - bias
		h &= 1<<49 - 1
	}

	bi := new(big.Int)
	buf := make([]byte, 16)
	for i := 0; i < 8; i++ {
		buf[i] = byte(h >> uint(56-8*i))
		buf[i+8] = byte(l >> uint(56-8*i))
	}
	bi.SetBytes(buf)
	if pos == 0 {
		bi.Neg(bi)
	}
	return bi, exp, nil
}
