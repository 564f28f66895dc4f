// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package extjson

import (
	"encoding/base64"
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bsonkit/bsonkit/bsoncore"
	"github.com/bsonkit/bsonkit/bsonerr"
	"github.com/bsonkit/bsonkit/bsontype"
	"github.com/bsonkit/bsonkit/decimal128"
	"github.com/bsonkit/bsonkit/objectid"
)

// Unmarshal parses data as Extended JSON (either profile; the reader
// accepts both canonical and relaxed forms interchangeably) into a
// bsoncore.Document.
func Unmarshal(data []byte) (bsoncore.Document, error) {
	node, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return ParseDocument(node, nil)
}

// ParseDocument reads node, which must be a JSON object, as a BSON
// document. keyPath is the structural path to node, used to qualify any
// data-corrupted error.
func ParseDocument(node Node, keyPath []string) (bsoncore.Document, error) {
	if node.Kind != KindObject {
		return nil, bsonerr.NewDataCorrupted(keyPath, "expected a JSON object, got %s", kindName(node.Kind))
	}
	b := bsoncore.NewDocumentBuilder()
	for i, key := range node.Keys {
		v, err := FromExtJSON(node.Vals[i], append(keyPath, key))
		if err != nil {
			return nil, err
		}
		b.AppendValue(key, v)
	}
	return b.Build()
}

// ParseArray reads node, which must be a JSON array, as a BSON array.
func ParseArray(node Node, keyPath []string) (bsoncore.Array, error) {
	if node.Kind != KindArray {
		return nil, bsonerr.NewDataCorrupted(keyPath, "expected a JSON array, got %s", kindName(node.Kind))
	}
	b := bsoncore.NewDocumentBuilder()
	for i, elem := range node.Elems {
		v, err := FromExtJSON(elem, append(keyPath, strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		b.AppendValue(strconv.Itoa(i), v)
	}
	return b.BuildArray()
}

// FromExtJSON reads a single Node into a bsoncore.Value. A JSON object is
// first tried against the canonical/legacy wrapper tables; if none match,
// it is read as an embedded document. keyPath qualifies any resulting
// data-corrupted error with the "a.b.c: <reason>" trail.
func FromExtJSON(node Node, keyPath []string) (bsoncore.Value, error) {
	switch node.Kind {
	case KindNull:
		return bsoncore.Value{Type: bsontype.Null}, nil
	case KindBool:
		return bsoncore.Value{Type: bsontype.Boolean, Data: bsoncore.AppendBoolean(nil, node.Bool)}, nil
	case KindString:
		return bsoncore.Value{Type: bsontype.String, Data: bsoncore.AppendString(nil, node.Str)}, nil
	case KindNumber:
		return numberValue(node.Num), nil
	case KindArray:
		arr, err := ParseArray(node, keyPath)
		if err != nil {
			return bsoncore.Value{}, err
		}
		return bsoncore.Value{Type: bsontype.Array, Data: arr}, nil
	case KindObject:
		v, ok, err := tryWrapper(node, keyPath)
		if err != nil {
			return bsoncore.Value{}, err
		}
		if ok {
			return v, nil
		}
		doc, err := ParseDocument(node, keyPath)
		if err != nil {
			return bsoncore.Value{}, err
		}
		return bsoncore.Value{Type: bsontype.EmbeddedDocument, Data: doc}, nil
	default:
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "unrecognized JSON node")
	}
}

// numberValue interprets a bare JSON number literal under the relaxed
// profile: a literal with no fractional digits or exponent decodes as the
// smallest of Int32/Int64 that holds it exactly; anything else decodes as
// Double.
func numberValue(literal string) bsoncore.Value {
	if !strings.ContainsAny(literal, ".eE") {
		if n, err := strconv.ParseInt(literal, 10, 32); err == nil {
			return bsoncore.Value{Type: bsontype.Int32, Data: bsoncore.AppendInt32(nil, int32(n))}
		}
		if n, err := strconv.ParseInt(literal, 10, 64); err == nil {
			return bsoncore.Value{Type: bsontype.Int64, Data: bsoncore.AppendInt64(nil, n)}
		}
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		f = 0
	}
	return bsoncore.Value{Type: bsontype.Double, Data: bsoncore.AppendDouble(nil, f)}
}

// tryWrapper attempts to interpret an object Node as one of the canonical
// or legacy Extended JSON wrappers. ok is false (not-applicable) when node
// does not match any known wrapper shape, signaling the caller to fall
// through to reading it as a plain embedded document.
func tryWrapper(node Node, keyPath []string) (bsoncore.Value, bool, error) {
	switch len(node.Keys) {
	case 1:
		key, val := node.Keys[0], node.Vals[0]
		switch key {
		case "$numberInt":
			return wrapperString(val, keyPath, "$numberInt", func(s string) (bsoncore.Value, error) {
				n, err := strconv.ParseInt(s, 10, 32)
				if err != nil {
					return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "invalid $numberInt value %q", s)
				}
				return bsoncore.Value{Type: bsontype.Int32, Data: bsoncore.AppendInt32(nil, int32(n))}, nil
			})
		case "$numberLong":
			return wrapperString(val, keyPath, "$numberLong", func(s string) (bsoncore.Value, error) {
				n, err := strconv.ParseInt(s, 10, 64)
				if err != nil {
					return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "invalid $numberLong value %q", s)
				}
				return bsoncore.Value{Type: bsontype.Int64, Data: bsoncore.AppendInt64(nil, n)}, nil
			})
		case "$numberDouble":
			return wrapperString(val, keyPath, "$numberDouble", func(s string) (bsoncore.Value, error) {
				f, err := parseExtDouble(s)
				if err != nil {
					return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "invalid $numberDouble value %q", s)
				}
				return bsoncore.Value{Type: bsontype.Double, Data: bsoncore.AppendDouble(nil, f)}, nil
			})
		case "$numberDecimal":
			return wrapperString(val, keyPath, "$numberDecimal", func(s string) (bsoncore.Value, error) {
				d, err := decimal128.Parse(s)
				if err != nil {
					return bsoncore.Value{}, bsonerr.NewDataCorrupted(append(append([]string(nil), keyPath...), "$numberDecimal"), "invalid $numberDecimal value %q: %v", s, err)
				}
				return bsoncore.Value{Type: bsontype.Decimal128, Data: bsoncore.AppendDecimal128(nil, d)}, nil
			})
		case "$oid":
			return wrapperString(val, keyPath, "$oid", func(s string) (bsoncore.Value, error) {
				oid, err := objectid.FromHex(s)
				if err != nil {
					return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "invalid $oid value %q: %v", s, err)
				}
				return bsoncore.Value{Type: bsontype.ObjectID, Data: bsoncore.AppendObjectID(nil, oid)}, nil
			})
		case "$symbol":
			return wrapperString(val, keyPath, "$symbol", func(s string) (bsoncore.Value, error) {
				return bsoncore.Value{Type: bsontype.Symbol, Data: bsoncore.AppendSymbol(nil, s)}, nil
			})
		case "$code":
			return wrapperString(val, keyPath, "$code", func(s string) (bsoncore.Value, error) {
				return bsoncore.Value{Type: bsontype.JavaScript, Data: bsoncore.AppendJavaScript(nil, s)}, nil
			})
		case "$minKey":
			return bsoncore.Value{Type: bsontype.MinKey}, true, nil
		case "$maxKey":
			return bsoncore.Value{Type: bsontype.MaxKey}, true, nil
		case "$undefined":
			return bsoncore.Value{Type: bsontype.Undefined}, true, nil
		case "$binary":
			v, err := parseBinaryWrapper(val, keyPath)
			return v, true, err
		case "$uuid":
			v, err := parseUUIDShorthand(val, keyPath)
			return v, true, err
		case "$date":
			v, err := parseDateWrapper(val, keyPath)
			return v, true, err
		case "$timestamp":
			v, err := parseTimestampWrapper(val, keyPath)
			return v, true, err
		case "$regularExpression":
			v, err := parseRegexWrapper(val, keyPath)
			return v, true, err
		case "$dbPointer":
			v, err := parseDBPointerWrapper(val, keyPath)
			return v, true, err
		}
		return bsoncore.Value{}, false, nil
	case 2:
		if code, ok := node.Field("$code"); ok {
			if scope, ok := node.Field("$scope"); ok {
				return parseCodeWithScope(code, scope, keyPath)
			}
		}
		if b64, ok := node.Field("$binary"); ok {
			if typ, ok := node.Field("$type"); ok {
				v, err := parseLegacyBinary(b64, typ, keyPath)
				return v, true, err
			}
		}
		return bsoncore.Value{}, false, nil
	default:
		return bsoncore.Value{}, false, nil
	}
}

func wrapperString(val Node, keyPath []string, wrapperKey string, f func(string) (bsoncore.Value, error)) (bsoncore.Value, bool, error) {
	if val.Kind != KindString {
		return bsoncore.Value{}, false, bsonerr.NewDataCorrupted(keyPath, "expected %s field to have a string value", wrapperKey)
	}
	v, err := f(val.Str)
	return v, true, err
}

// parseExtDouble accepts NaN/Infinity/-Infinity in addition to ordinary
// decimal literals, matching $numberDouble's canonical text forms.
func parseExtDouble(s string) (float64, error) {
	switch s {
	case "NaN":
		return math.NaN(), nil
	case "Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	default:
		return strconv.ParseFloat(s, 64)
	}
}

func parseBinaryWrapper(val Node, keyPath []string) (bsoncore.Value, error) {
	if val.Kind != KindObject {
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "expected $binary field to be an object")
	}
	b64Node, hasB64 := val.Field("base64")
	subTypeNode, hasSub := val.Field("subType")
	if !hasB64 || !hasSub || b64Node.Kind != KindString || subTypeNode.Kind != KindString {
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "expected $binary object with base64 and subType string fields")
	}
	data, decErr := base64.StdEncoding.DecodeString(b64Node.Str)
	if decErr != nil {
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "invalid base64 in $binary field")
	}
	subtype, hexErr := parseSubtypeHex(subTypeNode.Str)
	if hexErr != nil {
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "invalid subType in $binary field: %v", hexErr)
	}
	return newBinaryValue(subtype, data, keyPath)
}

// newBinaryValue builds a binary Value from subtype and data, rejecting a
// reserved subtype or a UUID subtype whose data isn't exactly 16 bytes.
func newBinaryValue(subtype byte, data []byte, keyPath []string) (bsoncore.Value, error) {
	if !bsontype.ValidSubtype(subtype) {
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "binary subtype %#x is in the reserved range", subtype)
	}
	if (subtype == bsontype.BinaryUUID || subtype == bsontype.BinaryUUIDOld) && len(data) != 16 {
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "UUID binary data must be 16 bytes, got %d", len(data))
	}
	return bsoncore.Value{Type: bsontype.Binary, Data: bsoncore.AppendBinary(nil, subtype, data)}, nil
}

func parseSubtypeHex(s string) (byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != 1 {
		return 0, bsonerr.NewInvalidArgument("subtype %q is not a single hex byte", s)
	}
	return b[0], nil
}

// parseLegacyBinary reads the v1 form {"$binary":"<b64>","$type":"<hex or
// number>"}. This form is accepted on read for compatibility but never
// produced by Marshal.
func parseLegacyBinary(b64Node, typeNode Node, keyPath []string) (bsoncore.Value, error) {
	if b64Node.Kind != KindString {
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "expected $binary field to have a string value")
	}
	data, err := base64.StdEncoding.DecodeString(b64Node.Str)
	if err != nil {
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "invalid base64 in legacy $binary field")
	}
	var subtype byte
	switch typeNode.Kind {
	case KindString:
		s := strings.TrimPrefix(typeNode.Str, "0x")
		b, hexErr := hex.DecodeString(s)
		if hexErr != nil || len(b) != 1 {
			return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "invalid legacy $type value %q", typeNode.Str)
		}
		subtype = b[0]
	case KindNumber:
		n, numErr := strconv.ParseInt(typeNode.Num, 10, 16)
		if numErr != nil || n < 0 || n > 0xFF {
			return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "invalid legacy $type value %q", typeNode.Num)
		}
		subtype = byte(n)
	default:
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "expected legacy $type field to be a string or number")
	}
	return newBinaryValue(subtype, data, keyPath)
}

// parseUUIDShorthand reads the {"$uuid":"<36-char uuid string>"} legacy
// shorthand into a subtype-0x04 binary value.
func parseUUIDShorthand(val Node, keyPath []string) (bsoncore.Value, error) {
	if val.Kind != KindString {
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "expected $uuid field to have a string value")
	}
	id, err := uuid.Parse(val.Str)
	if err != nil {
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "invalid $uuid value %q: %v", val.Str, err)
	}
	return bsoncore.Value{Type: bsontype.Binary, Data: bsoncore.AppendBinary(nil, bsontype.BinaryUUID, id[:])}, nil
}

func parseDateWrapper(val Node, keyPath []string) (bsoncore.Value, error) {
	switch val.Kind {
	case KindString:
		t, err := parseISO8601(val.Str)
		if err != nil {
			return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "invalid $date value %q: %v", val.Str, err)
		}
		return bsoncore.Value{Type: bsontype.DateTime, Data: bsoncore.AppendDateTime(nil, bsoncore.TimeToMilliseconds(t))}, nil
	case KindObject:
		inner, ok := val.Field("$numberLong")
		if !ok || inner.Kind != KindString {
			return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "expected $date object to contain a $numberLong string field")
		}
		ms, err := strconv.ParseInt(inner.Str, 10, 64)
		if err != nil {
			return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "invalid $date.$numberLong value %q", inner.Str)
		}
		return bsoncore.Value{Type: bsontype.DateTime, Data: bsoncore.AppendDateTime(nil, ms)}, nil
	default:
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "expected $date field to be a string or an object")
	}
}

// parseISO8601 parses with two formatters depending on whether the input
// carries a fractional-second component.
func parseISO8601(s string) (time.Time, error) {
	if strings.Contains(s, ".") {
		return time.Parse("2006-01-02T15:04:05.999Z07:00", s)
	}
	return time.Parse("2006-01-02T15:04:05Z07:00", s)
}

func parseTimestampWrapper(val Node, keyPath []string) (bsoncore.Value, error) {
	if val.Kind != KindObject {
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "expected $timestamp field to be an object")
	}
	tNode, hasT := val.Field("t")
	iNode, hasI := val.Field("i")
	if !hasT || !hasI || tNode.Kind != KindNumber || iNode.Kind != KindNumber {
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "expected $timestamp object with numeric t and i fields")
	}
	seconds, err := strconv.ParseUint(tNode.Num, 10, 32)
	if err != nil {
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "invalid $timestamp.t value %q", tNode.Num)
	}
	increment, err := strconv.ParseUint(iNode.Num, 10, 32)
	if err != nil {
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "invalid $timestamp.i value %q", iNode.Num)
	}
	return bsoncore.Value{Type: bsontype.Timestamp, Data: bsoncore.AppendTimestamp(nil, uint32(increment), uint32(seconds))}, nil
}

func parseRegexWrapper(val Node, keyPath []string) (bsoncore.Value, error) {
	if val.Kind != KindObject {
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "expected $regularExpression field to be an object")
	}
	patternNode, hasPattern := val.Field("pattern")
	optionsNode, hasOptions := val.Field("options")
	if !hasPattern || !hasOptions || patternNode.Kind != KindString || optionsNode.Kind != KindString {
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "expected $regularExpression object with string pattern and options fields")
	}
	for _, o := range optionsNode.Str {
		switch o {
		case 'i', 'm', 'x', 's', 'l', 'u':
		default:
			return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "invalid regular expression option %q", o)
		}
	}
	return bsoncore.Value{Type: bsontype.Regex, Data: bsoncore.AppendRegex(nil, patternNode.Str, optionsNode.Str)}, nil
}

func parseDBPointerWrapper(val Node, keyPath []string) (bsoncore.Value, error) {
	if val.Kind != KindObject {
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "expected $dbPointer field to be an object")
	}
	refNode, hasRef := val.Field("$ref")
	idNode, hasID := val.Field("$id")
	if !hasRef || !hasID || refNode.Kind != KindString {
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "expected $dbPointer object with a string $ref field and an $id field")
	}
	idVal, err := FromExtJSON(idNode, append(keyPath, "$id"))
	if err != nil {
		return bsoncore.Value{}, err
	}
	oid, ok := idVal.ObjectIDOK()
	if !ok {
		return bsoncore.Value{}, bsonerr.NewDataCorrupted(keyPath, "expected $dbPointer.$id field to be an $oid")
	}
	return bsoncore.Value{Type: bsontype.DBPointer, Data: bsoncore.AppendDBPointer(nil, refNode.Str, oid)}, nil
}

func parseCodeWithScope(codeNode, scopeNode Node, keyPath []string) (bsoncore.Value, bool, error) {
	if codeNode.Kind != KindString {
		return bsoncore.Value{}, true, bsonerr.NewDataCorrupted(keyPath, "expected $code field to have a string value")
	}
	scope, err := ParseDocument(scopeNode, append(keyPath, "$scope"))
	if err != nil {
		return bsoncore.Value{}, true, err
	}
	return bsoncore.Value{Type: bsontype.CodeWithScope, Data: bsoncore.AppendCodeWithScope(nil, codeNode.Str, scope)}, true, nil
}

func kindName(k Kind) string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}
