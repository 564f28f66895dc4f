// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bsonkit/bsonkit/bsonerr"
	"github.com/bsonkit/bsonkit/bsontype"
	"github.com/bsonkit/bsonkit/decimal128"
	"github.com/bsonkit/bsonkit/objectid"
)

// Value is a BSON value: a type tag plus its payload bytes, exactly as they
// appear on the wire without the preceding type byte or key.
type Value struct {
	Type bsontype.Type
	Data []byte
}

// Validate reports whether v's Data is a complete, well-formed payload for
// its Type.
func (v Value) Validate() error {
	_, rem, ok := readValue(v.Data, v.Type)
	if !ok || len(rem) != 0 {
		return newInsufficientBytesError(v.Data, rem)
	}
	if v.Type == bsontype.Binary {
		return validateBinarySubtype(v.Data)
	}
	return nil
}

// validateBinarySubtype rejects a binary payload whose subtype falls in the
// reserved range, or whose subtype is a UUID subtype but whose data is not
// exactly 16 bytes.
func validateBinarySubtype(data []byte) error {
	subtype, payload, _, ok := ReadBinary(data)
	if !ok {
		return newInsufficientBytesError(data, data)
	}
	if !bsontype.ValidSubtype(subtype) {
		return bsonerr.NewInvalidArgument("binary subtype %#x is in the reserved range", subtype)
	}
	if (subtype == bsontype.BinaryUUID || subtype == bsontype.BinaryUUIDOld) && len(payload) != 16 {
		return bsonerr.NewInvalidArgument("UUID binary data must be 16 bytes, got %d", len(payload))
	}
	return nil
}

// Equal reports whether v and v2 have the same type and byte-identical data.
func (v Value) Equal(v2 Value) bool {
	return v.Type == v2.Type && bytes.Equal(v.Data, v2.Data)
}

// IsNumber reports whether v holds one of the four numeric BSON types.
func (v Value) IsNumber() bool {
	switch v.Type {
	case bsontype.Double, bsontype.Int32, bsontype.Int64, bsontype.Decimal128:
		return true
	default:
		return false
	}
}

// readValue splits the payload belonging to t from the front of src,
// returning it and the remaining bytes. It validates only enough structure
// to know where the value ends (length prefixes, NUL terminators); deeper
// per-type checks live in Validate.
func readValue(src []byte, t bsontype.Type) (data, rem []byte, ok bool) {
	switch t {
	case bsontype.Double, bsontype.DateTime, bsontype.Timestamp, bsontype.Int64:
		return splitN(src, 8)
	case bsontype.String, bsontype.JavaScript, bsontype.Symbol:
		return splitString(src)
	case bsontype.EmbeddedDocument, bsontype.Array:
		return splitLengthPrefixed(src, 5)
	case bsontype.Binary:
		return splitBinary(src)
	case bsontype.Undefined, bsontype.Null, bsontype.MinKey, bsontype.MaxKey:
		return splitN(src, 0)
	case bsontype.ObjectID:
		return splitN(src, 12)
	case bsontype.Boolean:
		return splitN(src, 1)
	case bsontype.Regex:
		return splitRegex(src)
	case bsontype.DBPointer:
		return splitDBPointer(src)
	case bsontype.CodeWithScope:
		return splitLengthPrefixed(src, 9)
	case bsontype.Int32:
		return splitN(src, 4)
	case bsontype.Decimal128:
		return splitN(src, 16)
	default:
		return nil, src, false
	}
}

func splitN(src []byte, n int) ([]byte, []byte, bool) {
	if len(src) < n {
		return nil, src, false
	}
	return src[:n], src[n:], true
}

func splitString(src []byte) ([]byte, []byte, bool) {
	length, rest, ok := readi32(src)
	if !ok || length < 1 || int(length) > len(rest) {
		return nil, src, false
	}
	if rest[length-1] != 0x00 {
		return nil, src, false
	}
	total := 4 + int(length)
	return src[:total], src[total:], true
}

func splitLengthPrefixed(src []byte, minLen int32) ([]byte, []byte, bool) {
	length, _, ok := readi32(src)
	if !ok || length < minLen || int(length) > len(src) {
		return nil, src, false
	}
	return src[:length], src[length:], true
}

func splitBinary(src []byte) ([]byte, []byte, bool) {
	length, rest, ok := readi32(src)
	if !ok || length < 0 || len(rest) < 1 {
		return nil, src, false
	}
	total := 5 + int(length)
	if total > len(src) {
		return nil, src, false
	}
	return src[:total], src[total:], true
}

func splitRegex(src []byte) ([]byte, []byte, bool) {
	_, rem1, ok := readCString(src)
	if !ok {
		return nil, src, false
	}
	_, rem2, ok := readCString(rem1)
	if !ok {
		return nil, src, false
	}
	total := len(src) - len(rem2)
	return src[:total], rem2, true
}

func splitDBPointer(src []byte) ([]byte, []byte, bool) {
	strData, rem, ok := splitString(src)
	if !ok || len(rem) < 12 {
		return nil, src, false
	}
	total := len(strData) + 12
	return src[:total], rem[12:], true
}

// --- scalar Append/Read pairs ---

// AppendDouble appends f as a BSON double payload.
func AppendDouble(dst []byte, f float64) []byte { return appendu64(dst, math.Float64bits(f)) }

// AppendDoubleElement appends a complete double element.
func AppendDoubleElement(dst []byte, key string, f float64) []byte {
	dst = AppendHeader(dst, bsontype.Double, key)
	return AppendDouble(dst, f)
}

// ReadDouble reads a BSON double payload.
func ReadDouble(src []byte) (float64, []byte, bool) {
	bits, rem, ok := readu64(src)
	if !ok {
		return 0, src, false
	}
	return math.Float64frombits(bits), rem, true
}

// AppendString appends s as a BSON string payload.
func AppendString(dst []byte, s string) []byte { return appendstring(dst, s) }

// AppendStringElement appends a complete string element.
func AppendStringElement(dst []byte, key, s string) []byte {
	dst = AppendHeader(dst, bsontype.String, key)
	return AppendString(dst, s)
}

// ReadString reads a BSON string payload.
func ReadString(src []byte) (string, []byte, bool) { return readstring(src) }

// AppendDocument appends doc's raw bytes.
func AppendDocument(dst []byte, doc []byte) []byte { return append(dst, doc...) }

// AppendDocumentElement appends a complete embedded-document element.
func AppendDocumentElement(dst []byte, key string, doc []byte) []byte {
	dst = AppendHeader(dst, bsontype.EmbeddedDocument, key)
	return AppendDocument(dst, doc)
}

// ReadDocument reads a BSON embedded document, returning it as a Document.
func ReadDocument(src []byte) (Document, []byte, bool) {
	data, rem, ok := splitLengthPrefixed(src, 5)
	if !ok {
		return nil, src, false
	}
	return Document(data), rem, true
}

// AppendArray appends arr's raw bytes.
func AppendArray(dst []byte, arr []byte) []byte { return append(dst, arr...) }

// AppendArrayElement appends a complete array element.
func AppendArrayElement(dst []byte, key string, arr []byte) []byte {
	dst = AppendHeader(dst, bsontype.Array, key)
	return AppendArray(dst, arr)
}

// ReadArray reads a BSON array, returning it as an Array.
func ReadArray(src []byte) (Array, []byte, bool) {
	data, rem, ok := splitLengthPrefixed(src, 5)
	if !ok {
		return nil, src, false
	}
	return Array(data), rem, true
}

// AppendBinary appends subtype and data as a BSON binary payload. Subtype
// 0x02 gets the legacy redundant inner length prefix.
func AppendBinary(dst []byte, subtype byte, data []byte) []byte {
	if subtype == 0x02 {
		return appendBinarySubtype2(dst, subtype, data)
	}
	dst = appendLength(dst, int32(len(data)))
	dst = append(dst, subtype)
	return append(dst, data...)
}

// AppendBinaryElement appends a complete binary element.
func AppendBinaryElement(dst []byte, key string, subtype byte, data []byte) []byte {
	dst = AppendHeader(dst, bsontype.Binary, key)
	return AppendBinary(dst, subtype, data)
}

// ReadBinary reads a BSON binary payload.
func ReadBinary(src []byte) (subtype byte, data []byte, rem []byte, ok bool) {
	length, rest, ok := readi32(src)
	if !ok || length < 0 || len(rest) < 1 {
		return 0, nil, src, false
	}
	subtype = rest[0]
	payload := rest[1:]
	if subtype == 0x02 {
		innerLen, inner, ok := readi32(payload)
		if !ok || innerLen != length-4 || int(innerLen) > len(inner) {
			return 0, nil, src, false
		}
		return subtype, inner[:innerLen], inner[innerLen:], true
	}
	if int(length) > len(payload) {
		return 0, nil, src, false
	}
	return subtype, payload[:length], payload[length:], true
}

// AppendUndefinedElement appends a complete undefined element.
func AppendUndefinedElement(dst []byte, key string) []byte {
	return AppendHeader(dst, bsontype.Undefined, key)
}

// AppendObjectID appends oid's 12 bytes.
func AppendObjectID(dst []byte, oid objectid.ObjectID) []byte { return append(dst, oid[:]...) }

// AppendObjectIDElement appends a complete ObjectID element.
func AppendObjectIDElement(dst []byte, key string, oid objectid.ObjectID) []byte {
	dst = AppendHeader(dst, bsontype.ObjectID, key)
	return AppendObjectID(dst, oid)
}

// ReadObjectID reads a BSON ObjectID payload.
func ReadObjectID(src []byte) (objectid.ObjectID, []byte, bool) {
	data, rem, ok := splitN(src, 12)
	if !ok {
		return objectid.Nil, src, false
	}
	var oid objectid.ObjectID
	copy(oid[:], data)
	return oid, rem, true
}

// AppendBoolean appends b as a single BSON boolean byte.
func AppendBoolean(dst []byte, b bool) []byte {
	if b {
		return append(dst, 0x01)
	}
	return append(dst, 0x00)
}

// AppendBooleanElement appends a complete boolean element.
func AppendBooleanElement(dst []byte, key string, b bool) []byte {
	dst = AppendHeader(dst, bsontype.Boolean, key)
	return AppendBoolean(dst, b)
}

// ReadBoolean reads a BSON boolean payload. Any byte other than 0 or 1 is an
// error.
func ReadBoolean(src []byte) (bool, []byte, bool) {
	data, rem, ok := splitN(src, 1)
	if !ok {
		return false, src, false
	}
	switch data[0] {
	case 0x00:
		return false, rem, true
	case 0x01:
		return true, rem, true
	default:
		return false, src, false
	}
}

// AppendDateTime appends dt, milliseconds since the Unix epoch.
func AppendDateTime(dst []byte, dt int64) []byte { return appendi64(dst, dt) }

// AppendDateTimeElement appends a complete datetime element.
func AppendDateTimeElement(dst []byte, key string, dt int64) []byte {
	dst = AppendHeader(dst, bsontype.DateTime, key)
	return AppendDateTime(dst, dt)
}

// AppendTime appends t as a BSON datetime, clamping to the representable
// int64-millisecond range if t falls outside it.
func AppendTime(dst []byte, t time.Time) []byte {
	return AppendDateTime(dst, TimeToMilliseconds(t))
}

// TimeToMilliseconds converts t to milliseconds since the Unix epoch,
// clamping to the int64 range on overflow.
func TimeToMilliseconds(t time.Time) int64 {
	sec := t.Unix()
	if sec > (math.MaxInt64-999)/1000 {
		return math.MaxInt64
	}
	if sec < math.MinInt64/1000 {
		return math.MinInt64
	}
	return sec*1000 + int64(t.Nanosecond())/1e6
}

// ReadDateTime reads a BSON datetime payload.
func ReadDateTime(src []byte) (int64, []byte, bool) { return readi64(src) }

// AppendRegex appends pattern and options as two consecutive C-strings.
func AppendRegex(dst []byte, pattern, options string) []byte {
	dst = appendCString(dst, pattern)
	return appendCString(dst, options)
}

// AppendRegexElement appends a complete regex element.
func AppendRegexElement(dst []byte, key, pattern, options string) []byte {
	dst = AppendHeader(dst, bsontype.Regex, key)
	return AppendRegex(dst, pattern, options)
}

// ReadRegex reads a BSON regex payload.
func ReadRegex(src []byte) (pattern, options string, rem []byte, ok bool) {
	pattern, rem1, ok := readCString(src)
	if !ok {
		return "", "", src, false
	}
	options, rem2, ok := readCString(rem1)
	if !ok {
		return "", "", src, false
	}
	return pattern, options, rem2, true
}

// AppendDBPointer appends ns and oid.
func AppendDBPointer(dst []byte, ns string, oid objectid.ObjectID) []byte {
	dst = AppendString(dst, ns)
	return AppendObjectID(dst, oid)
}

// AppendDBPointerElement appends a complete DBPointer element.
func AppendDBPointerElement(dst []byte, key, ns string, oid objectid.ObjectID) []byte {
	dst = AppendHeader(dst, bsontype.DBPointer, key)
	return AppendDBPointer(dst, ns, oid)
}

// ReadDBPointer reads a BSON DBPointer payload.
func ReadDBPointer(src []byte) (ns string, oid objectid.ObjectID, rem []byte, ok bool) {
	ns, rem1, ok := readstring(src)
	if !ok {
		return "", objectid.Nil, src, false
	}
	oid, rem2, ok := ReadObjectID(rem1)
	if !ok {
		return "", objectid.Nil, src, false
	}
	return ns, oid, rem2, true
}

// AppendJavaScript appends js as a BSON code payload.
func AppendJavaScript(dst []byte, js string) []byte { return appendstring(dst, js) }

// AppendJavaScriptElement appends a complete code element.
func AppendJavaScriptElement(dst []byte, key, js string) []byte {
	dst = AppendHeader(dst, bsontype.JavaScript, key)
	return AppendJavaScript(dst, js)
}

// ReadJavaScript reads a BSON code payload.
func ReadJavaScript(src []byte) (string, []byte, bool) { return readstring(src) }

// AppendSymbol appends symbol as a legacy BSON symbol payload.
func AppendSymbol(dst []byte, symbol string) []byte { return appendstring(dst, symbol) }

// AppendSymbolElement appends a complete symbol element.
func AppendSymbolElement(dst []byte, key, symbol string) []byte {
	dst = AppendHeader(dst, bsontype.Symbol, key)
	return AppendSymbol(dst, symbol)
}

// ReadSymbol reads a BSON symbol payload.
func ReadSymbol(src []byte) (string, []byte, bool) { return readstring(src) }

// AppendCodeWithScope appends code and scope as a code-with-scope payload,
// with a self-inclusive total length prefix.
func AppendCodeWithScope(dst []byte, code string, scope []byte) []byte {
	length := int32(4 + 4 + len(code) + 1 + len(scope))
	dst = appendLength(dst, length)
	dst = appendstring(dst, code)
	return append(dst, scope...)
}

// AppendCodeWithScopeElement appends a complete code-with-scope element.
func AppendCodeWithScopeElement(dst []byte, key, code string, scope []byte) []byte {
	dst = AppendHeader(dst, bsontype.CodeWithScope, key)
	return AppendCodeWithScope(dst, code, scope)
}

// ReadCodeWithScope reads a BSON code-with-scope payload.
func ReadCodeWithScope(src []byte) (code string, scope Document, rem []byte, ok bool) {
	total, _, ok := readi32(src)
	if !ok || total < 4 || int(total) > len(src) {
		return "", nil, src, false
	}
	body := src[4:total]
	code, bodyRem, ok := readstring(body)
	if !ok {
		return "", nil, src, false
	}
	scopeLen, _, ok := readi32(bodyRem)
	if !ok || int(scopeLen) != len(bodyRem) {
		return "", nil, src, false
	}
	return code, Document(bodyRem), src[total:], true
}

// AppendInt32 appends i32.
func AppendInt32(dst []byte, i32 int32) []byte { return appendi32(dst, i32) }

// AppendInt32Element appends a complete int32 element.
func AppendInt32Element(dst []byte, key string, i32 int32) []byte {
	dst = AppendHeader(dst, bsontype.Int32, key)
	return AppendInt32(dst, i32)
}

// ReadInt32 reads a BSON int32 payload.
func ReadInt32(src []byte) (int32, []byte, bool) { return readi32(src) }

// AppendTimestamp appends increment and seconds, both little-endian uint32,
// increment first and seconds second.
func AppendTimestamp(dst []byte, increment, seconds uint32) []byte {
	dst = appendu32(dst, increment)
	return appendu32(dst, seconds)
}

// AppendTimestampElement appends a complete timestamp element.
func AppendTimestampElement(dst []byte, key string, increment, seconds uint32) []byte {
	dst = AppendHeader(dst, bsontype.Timestamp, key)
	return AppendTimestamp(dst, increment, seconds)
}

// ReadTimestamp reads a BSON timestamp payload.
func ReadTimestamp(src []byte) (increment, seconds uint32, rem []byte, ok bool) {
	increment, rem1, ok := readu32(src)
	if !ok {
		return 0, 0, src, false
	}
	seconds, rem2, ok := readu32(rem1)
	if !ok {
		return 0, 0, src, false
	}
	return increment, seconds, rem2, true
}

// AppendInt64 appends i64.
func AppendInt64(dst []byte, i64 int64) []byte { return appendi64(dst, i64) }

// AppendInt64Element appends a complete int64 element.
func AppendInt64Element(dst []byte, key string, i64 int64) []byte {
	dst = AppendHeader(dst, bsontype.Int64, key)
	return AppendInt64(dst, i64)
}

// ReadInt64 reads a BSON int64 payload.
func ReadInt64(src []byte) (int64, []byte, bool) { return readi64(src) }

// AppendDecimal128 appends d's wire form: low half first, then high half.
func AppendDecimal128(dst []byte, d decimal128.Decimal128) []byte {
	high, low := d.Bytes()
	dst = appendu64(dst, low)
	return appendu64(dst, high)
}

// AppendDecimal128Element appends a complete decimal128 element.
func AppendDecimal128Element(dst []byte, key string, d decimal128.Decimal128) []byte {
	dst = AppendHeader(dst, bsontype.Decimal128, key)
	return AppendDecimal128(dst, d)
}

// ReadDecimal128 reads a BSON decimal128 payload.
func ReadDecimal128(src []byte) (decimal128.Decimal128, []byte, bool) {
	low, rem1, ok := readu64(src)
	if !ok {
		return decimal128.Decimal128{}, src, false
	}
	high, rem2, ok := readu64(rem1)
	if !ok {
		return decimal128.Decimal128{}, src, false
	}
	return decimal128.New(high, low), rem2, true
}

// AppendMaxKeyElement appends a complete max-key element.
func AppendMaxKeyElement(dst []byte, key string) []byte {
	return AppendHeader(dst, bsontype.MaxKey, key)
}

// AppendMinKeyElement appends a complete min-key element.
func AppendMinKeyElement(dst []byte, key string) []byte {
	return AppendHeader(dst, bsontype.MinKey, key)
}

// --- Value accessors ---

// Double returns v's float64 value, panicking if v.Type is not Double.
func (v Value) Double() float64 {
	f, ok := v.DoubleOK()
	if !ok {
		panic(ElementTypeError{"Double", v.Type})
	}
	return f
}

// DoubleOK is the same as Double but returns ok instead of panicking.
func (v Value) DoubleOK() (float64, bool) {
	if v.Type != bsontype.Double {
		return 0, false
	}
	f, _, ok := ReadDouble(v.Data)
	return f, ok
}

// StringValue returns v's string value, panicking if v.Type is not String.
func (v Value) StringValue() string {
	s, ok := v.StringValueOK()
	if !ok {
		panic(ElementTypeError{"StringValue", v.Type})
	}
	return s
}

// StringValueOK is the same as StringValue but returns ok instead of panicking.
func (v Value) StringValueOK() (string, bool) {
	if v.Type != bsontype.String {
		return "", false
	}
	s, _, ok := ReadString(v.Data)
	return s, ok
}

// Document returns v's embedded document, panicking if v.Type is not
// EmbeddedDocument.
func (v Value) Document() Document {
	d, ok := v.DocumentOK()
	if !ok {
		panic(ElementTypeError{"Document", v.Type})
	}
	return d
}

// DocumentOK is the same as Document but returns ok instead of panicking.
func (v Value) DocumentOK() (Document, bool) {
	if v.Type != bsontype.EmbeddedDocument {
		return nil, false
	}
	d, _, ok := ReadDocument(v.Data)
	return d, ok
}

// Array returns v's array, panicking if v.Type is not Array.
func (v Value) Array() Array {
	a, ok := v.ArrayOK()
	if !ok {
		panic(ElementTypeError{"Array", v.Type})
	}
	return a
}

// ArrayOK is the same as Array but returns ok instead of panicking.
func (v Value) ArrayOK() (Array, bool) {
	if v.Type != bsontype.Array {
		return nil, false
	}
	a, _, ok := ReadArray(v.Data)
	return a, ok
}

// Binary returns v's subtype and payload, panicking if v.Type is not Binary.
func (v Value) Binary() (subtype byte, data []byte) {
	subtype, data, ok := v.BinaryOK()
	if !ok {
		panic(ElementTypeError{"Binary", v.Type})
	}
	return subtype, data
}

// BinaryOK is the same as Binary but returns ok instead of panicking.
func (v Value) BinaryOK() (subtype byte, data []byte, ok bool) {
	if v.Type != bsontype.Binary {
		return 0, nil, false
	}
	subtype, data, _, ok = ReadBinary(v.Data)
	return subtype, data, ok
}

// ObjectID returns v's ObjectID, panicking if v.Type is not ObjectID.
func (v Value) ObjectID() objectid.ObjectID {
	oid, ok := v.ObjectIDOK()
	if !ok {
		panic(ElementTypeError{"ObjectID", v.Type})
	}
	return oid
}

// ObjectIDOK is the same as ObjectID but returns ok instead of panicking.
func (v Value) ObjectIDOK() (objectid.ObjectID, bool) {
	if v.Type != bsontype.ObjectID {
		return objectid.Nil, false
	}
	oid, _, ok := ReadObjectID(v.Data)
	return oid, ok
}

// Boolean returns v's bool, panicking if v.Type is not Boolean.
func (v Value) Boolean() bool {
	b, ok := v.BooleanOK()
	if !ok {
		panic(ElementTypeError{"Boolean", v.Type})
	}
	return b
}

// BooleanOK is the same as Boolean but returns ok instead of panicking.
func (v Value) BooleanOK() (bool, bool) {
	if v.Type != bsontype.Boolean {
		return false, false
	}
	b, _, ok := ReadBoolean(v.Data)
	return b, ok
}

// DateTime returns v's milliseconds-since-epoch, panicking if v.Type is not
// DateTime.
func (v Value) DateTime() int64 {
	dt, ok := v.DateTimeOK()
	if !ok {
		panic(ElementTypeError{"DateTime", v.Type})
	}
	return dt
}

// DateTimeOK is the same as DateTime but returns ok instead of panicking.
func (v Value) DateTimeOK() (int64, bool) {
	if v.Type != bsontype.DateTime {
		return 0, false
	}
	dt, _, ok := ReadDateTime(v.Data)
	return dt, ok
}

// Time returns v's DateTime as a time.Time.
func (v Value) Time() time.Time {
	dt := v.DateTime()
	return time.UnixMilli(dt).UTC()
}

// Regex returns v's pattern and options, panicking if v.Type is not Regex.
func (v Value) Regex() (pattern, options string) {
	pattern, options, ok := v.RegexOK()
	if !ok {
		panic(ElementTypeError{"Regex", v.Type})
	}
	return pattern, options
}

// RegexOK is the same as Regex but returns ok instead of panicking.
func (v Value) RegexOK() (pattern, options string, ok bool) {
	if v.Type != bsontype.Regex {
		return "", "", false
	}
	pattern, options, _, ok = ReadRegex(v.Data)
	return pattern, options, ok
}

// DBPointer returns v's namespace and ObjectID, panicking if v.Type is not
// DBPointer.
func (v Value) DBPointer() (string, objectid.ObjectID) {
	ns, oid, ok := v.DBPointerOK()
	if !ok {
		panic(ElementTypeError{"DBPointer", v.Type})
	}
	return ns, oid
}

// DBPointerOK is the same as DBPointer but returns ok instead of panicking.
func (v Value) DBPointerOK() (string, objectid.ObjectID, bool) {
	if v.Type != bsontype.DBPointer {
		return "", objectid.Nil, false
	}
	ns, oid, _, ok := ReadDBPointer(v.Data)
	return ns, oid, ok
}

// JavaScript returns v's code string, panicking if v.Type is not JavaScript.
func (v Value) JavaScript() string {
	js, ok := v.JavaScriptOK()
	if !ok {
		panic(ElementTypeError{"JavaScript", v.Type})
	}
	return js
}

// JavaScriptOK is the same as JavaScript but returns ok instead of panicking.
func (v Value) JavaScriptOK() (string, bool) {
	if v.Type != bsontype.JavaScript {
		return "", false
	}
	js, _, ok := ReadJavaScript(v.Data)
	return js, ok
}

// Symbol returns v's symbol string, panicking if v.Type is not Symbol.
func (v Value) Symbol() string {
	s, ok := v.SymbolOK()
	if !ok {
		panic(ElementTypeError{"Symbol", v.Type})
	}
	return s
}

// SymbolOK is the same as Symbol but returns ok instead of panicking.
func (v Value) SymbolOK() (string, bool) {
	if v.Type != bsontype.Symbol {
		return "", false
	}
	s, _, ok := ReadSymbol(v.Data)
	return s, ok
}

// CodeWithScope returns v's code and scope, panicking if v.Type is not
// CodeWithScope.
func (v Value) CodeWithScope() (string, Document) {
	code, scope, ok := v.CodeWithScopeOK()
	if !ok {
		panic(ElementTypeError{"CodeWithScope", v.Type})
	}
	return code, scope
}

// CodeWithScopeOK is the same as CodeWithScope but returns ok instead of panicking.
func (v Value) CodeWithScopeOK() (string, Document, bool) {
	if v.Type != bsontype.CodeWithScope {
		return "", nil, false
	}
	code, scope, _, ok := ReadCodeWithScope(v.Data)
	return code, scope, ok
}

// Int32 returns v's int32, panicking if v.Type is not Int32.
func (v Value) Int32() int32 {
	i, ok := v.Int32OK()
	if !ok {
		panic(ElementTypeError{"Int32", v.Type})
	}
	return i
}

// Int32OK is the same as Int32 but returns ok instead of panicking.
func (v Value) Int32OK() (int32, bool) {
	if v.Type != bsontype.Int32 {
		return 0, false
	}
	i, _, ok := ReadInt32(v.Data)
	return i, ok
}

// Timestamp returns v's increment and seconds, panicking if v.Type is not
// Timestamp.
func (v Value) Timestamp() (increment, seconds uint32) {
	increment, seconds, ok := v.TimestampOK()
	if !ok {
		panic(ElementTypeError{"Timestamp", v.Type})
	}
	return increment, seconds
}

// TimestampOK is the same as Timestamp but returns ok instead of panicking.
func (v Value) TimestampOK() (increment, seconds uint32, ok bool) {
	if v.Type != bsontype.Timestamp {
		return 0, 0, false
	}
	increment, seconds, _, ok = ReadTimestamp(v.Data)
	return increment, seconds, ok
}

// Int64 returns v's int64, panicking if v.Type is not Int64.
func (v Value) Int64() int64 {
	i, ok := v.Int64OK()
	if !ok {
		panic(ElementTypeError{"Int64", v.Type})
	}
	return i
}

// Int64OK is the same as Int64 but returns ok instead of panicking.
func (v Value) Int64OK() (int64, bool) {
	if v.Type != bsontype.Int64 {
		return 0, false
	}
	i, _, ok := ReadInt64(v.Data)
	return i, ok
}

// Decimal128 returns v's Decimal128, panicking if v.Type is not Decimal128.
func (v Value) Decimal128() decimal128.Decimal128 {
	d, ok := v.Decimal128OK()
	if !ok {
		panic(ElementTypeError{"Decimal128", v.Type})
	}
	return d
}

// Decimal128OK is the same as Decimal128 but returns ok instead of panicking.
func (v Value) Decimal128OK() (decimal128.Decimal128, bool) {
	if v.Type != bsontype.Decimal128 {
		return decimal128.Decimal128{}, false
	}
	d, _, ok := ReadDecimal128(v.Data)
	return d, ok
}

// AsInt32 coerces any numeric value to int32, panicking if v is not numeric
// or is a Decimal128 (which has no lossless narrow-integer coercion here).
func (v Value) AsInt32() int32 {
	i, ok := v.AsInt32OK()
	if !ok {
		panic(ElementTypeError{"AsInt32", v.Type})
	}
	return i
}

// AsInt32OK is the same as AsInt32 but returns ok instead of panicking.
func (v Value) AsInt32OK() (int32, bool) {
	switch v.Type {
	case bsontype.Double:
		f, ok := v.DoubleOK()
		return int32(f), ok
	case bsontype.Int32:
		return v.Int32OK()
	case bsontype.Int64:
		i, ok := v.Int64OK()
		return int32(i), ok
	default:
		return 0, false
	}
}

// AsInt64 coerces any numeric value except Decimal128 to int64.
func (v Value) AsInt64() int64 {
	i, ok := v.AsInt64OK()
	if !ok {
		panic(ElementTypeError{"AsInt64", v.Type})
	}
	return i
}

// AsInt64OK is the same as AsInt64 but returns ok instead of panicking.
func (v Value) AsInt64OK() (int64, bool) {
	switch v.Type {
	case bsontype.Double:
		f, ok := v.DoubleOK()
		return int64(f), ok
	case bsontype.Int32:
		i, ok := v.Int32OK()
		return int64(i), ok
	case bsontype.Int64:
		return v.Int64OK()
	default:
		return 0, false
	}
}

// String implements fmt.Stringer, returning v in (non-truncated) Extended
// JSON form. Returns "" if v is malformed.
func (v Value) String() string {
	s, _ := v.StringN(-1)
	return s
}

// StringN renders v as Extended JSON, truncated to n bytes if n is
// non-negative. The second return reports whether truncation occurred.
func (v Value) StringN(n int) (string, bool) {
	var str string
	switch v.Type {
	case bsontype.String:
		s, ok := v.StringValueOK()
		if !ok {
			return "", false
		}
		str = escapeString(s)
	case bsontype.EmbeddedDocument:
		doc, ok := v.DocumentOK()
		if !ok {
			return "", false
		}
		return doc.StringN(n)
	case bsontype.Array:
		arr, ok := v.ArrayOK()
		if !ok {
			return "", false
		}
		return arr.StringN(n)
	case bsontype.Double:
		f, ok := v.DoubleOK()
		if !ok {
			return "", false
		}
		str = fmt.Sprintf(`{"$numberDouble":"%s"}`, formatDouble(f))
	case bsontype.Binary:
		subtype, data, ok := v.BinaryOK()
		if !ok {
			return "", false
		}
		str = fmt.Sprintf(`{"$binary":{"base64":"%s","subType":"%02x"}}`, base64.StdEncoding.EncodeToString(data), subtype)
	case bsontype.Undefined:
		str = `{"$undefined":true}`
	case bsontype.ObjectID:
		oid, ok := v.ObjectIDOK()
		if !ok {
			return "", false
		}
		str = fmt.Sprintf(`{"$oid":"%s"}`, oid.Hex())
	case bsontype.Boolean:
		b, ok := v.BooleanOK()
		if !ok {
			return "", false
		}
		str = strconv.FormatBool(b)
	case bsontype.DateTime:
		dt, ok := v.DateTimeOK()
		if !ok {
			return "", false
		}
		str = fmt.Sprintf(`{"$date":{"$numberLong":"%d"}}`, dt)
	case bsontype.Null:
		str = "null"
	case bsontype.Regex:
		pattern, options, ok := v.RegexOK()
		if !ok {
			return "", false
		}
		str = fmt.Sprintf(`{"$regularExpression":{"pattern":%s,"options":"%s"}}`, escapeString(pattern), sortAscending(options))
	case bsontype.DBPointer:
		ns, oid, ok := v.DBPointerOK()
		if !ok {
			return "", false
		}
		str = fmt.Sprintf(`{"$dbPointer":{"$ref":%s,"$id":{"$oid":"%s"}}}`, escapeString(ns), oid.Hex())
	case bsontype.JavaScript:
		js, ok := v.JavaScriptOK()
		if !ok {
			return "", false
		}
		str = fmt.Sprintf(`{"$code":%s}`, escapeString(js))
	case bsontype.Symbol:
		s, ok := v.SymbolOK()
		if !ok {
			return "", false
		}
		str = fmt.Sprintf(`{"$symbol":%s}`, escapeString(s))
	case bsontype.CodeWithScope:
		code, scope, ok := v.CodeWithScopeOK()
		if !ok {
			return "", false
		}
		str = fmt.Sprintf(`{"$code":%s,"$scope":%s}`, escapeString(code), scope.String())
	case bsontype.Int32:
		i, ok := v.Int32OK()
		if !ok {
			return "", false
		}
		str = fmt.Sprintf(`{"$numberInt":"%d"}`, i)
	case bsontype.Timestamp:
		increment, seconds, ok := v.TimestampOK()
		if !ok {
			return "", false
		}
		str = fmt.Sprintf(`{"$timestamp":{"t":%d,"i":%d}}`, seconds, increment)
	case bsontype.Int64:
		i, ok := v.Int64OK()
		if !ok {
			return "", false
		}
		str = fmt.Sprintf(`{"$numberLong":"%d"}`, i)
	case bsontype.Decimal128:
		d, ok := v.Decimal128OK()
		if !ok {
			return "", false
		}
		str = fmt.Sprintf(`{"$numberDecimal":"%s"}`, d.String())
	case bsontype.MinKey:
		str = `{"$minKey":1}`
	case bsontype.MaxKey:
		str = `{"$maxKey":1}`
	default:
		str = ""
	}
	if n >= 0 && len(str) > n {
		return truncate(str, n), true
	}
	return str, false
}

// DebugString is like String but substitutes "<malformed>" for any
// sub-value that fails to stringify instead of propagating the failure.
func (v Value) DebugString() string {
	switch v.Type {
	case bsontype.String:
		s, ok := v.StringValueOK()
		if !ok {
			return "<malformed>"
		}
		return escapeString(s)
	case bsontype.EmbeddedDocument:
		doc, ok := v.DocumentOK()
		if !ok {
			return "<malformed>"
		}
		return doc.DebugString()
	case bsontype.Array:
		arr, ok := v.ArrayOK()
		if !ok {
			return "<malformed>"
		}
		return arr.DebugString()
	default:
		str := v.String()
		if str == "" {
			return "<malformed>"
		}
		return str
	}
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if n >= len(s) {
		return s
	}
	return s[:n]
}

func formatDouble(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}
	s := strconv.FormatFloat(f, 'G', -1, 64)
	if !strings.ContainsRune(s, '.') && !strings.ContainsRune(s, 'E') {
		s += ".0"
	}
	return s
}

func sortAscending(s string) string {
	r := []rune(s)
	sort.Slice(r, func(i, j int) bool { return r[i] < r[j] })
	return string(r)
}

var hexDigits = "0123456789abcdef"

func escapeString(s string) string {
	var buf bytes.Buffer
	buf.WriteByte('"')
	start := 0
	for i := 0; i < len(s); {
		if b := s[i]; b < utf8.RuneSelf {
			if b >= 0x20 && b != '"' && b != '\\' {
				i++
				continue
			}
			if start < i {
				buf.WriteString(s[start:i])
			}
			switch b {
			case '\\', '"':
				buf.WriteByte('\\')
				buf.WriteByte(b)
			case '\n':
				buf.WriteString(`\n`)
			case '\r':
				buf.WriteString(`\r`)
			case '\t':
				buf.WriteString(`\t`)
			default:
				buf.WriteString(`\u00`)
				buf.WriteByte(hexDigits[b>>4])
				buf.WriteByte(hexDigits[b&0xF])
			}
			i++
			start = i
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	if start < len(s) {
		buf.WriteString(s[start:])
	}
	buf.WriteByte('"')
	return buf.String()
}
