// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package extjson

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bsonkit/bsonkit/bsoncore"
	"github.com/bsonkit/bsonkit/bsontype"
)

// relaxedDateMin and relaxedDateMax bound the instants the relaxed profile
// renders as an ISO-8601 string; outside that range it falls back to the
// canonical $date wrapper.
var (
	relaxedDateMin = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	relaxedDateMax = time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)
)

// MarshalCanonical renders doc in canonical Extended JSON.
func MarshalCanonical(doc bsoncore.Document) (string, error) {
	node, err := DocumentToCanonical(doc)
	if err != nil {
		return "", err
	}
	return Marshal(node), nil
}

// MarshalRelaxed renders doc in relaxed Extended JSON.
func MarshalRelaxed(doc bsoncore.Document) (string, error) {
	node, err := DocumentToRelaxed(doc)
	if err != nil {
		return "", err
	}
	return Marshal(node), nil
}

// DocumentToCanonical converts doc to its canonical Node form.
func DocumentToCanonical(doc bsoncore.Document) (Node, error) {
	return documentToNode(doc, ToCanonical)
}

// DocumentToRelaxed converts doc to its relaxed Node form.
func DocumentToRelaxed(doc bsoncore.Document) (Node, error) {
	return documentToNode(doc, ToRelaxed)
}

func documentToNode(doc bsoncore.Document, convert func(bsoncore.Value) (Node, error)) (Node, error) {
	elements, err := doc.Elements()
	if err != nil {
		return Node{}, err
	}
	obj := Node{Kind: KindObject}
	for _, elem := range elements {
		v, err := convert(elem.Value())
		if err != nil {
			return Node{}, err
		}
		obj.Keys = append(obj.Keys, elem.Key())
		obj.Vals = append(obj.Vals, v)
	}
	return obj, nil
}

func arrayToNode(arr bsoncore.Array, convert func(bsoncore.Value) (Node, error)) (Node, error) {
	values, err := arr.Values()
	if err != nil {
		return Node{}, err
	}
	elems := make([]Node, 0, len(values))
	for _, v := range values {
		n, err := convert(v)
		if err != nil {
			return Node{}, err
		}
		elems = append(elems, n)
	}
	return Node{Kind: KindArray, Elems: elems}, nil
}

// ToCanonical converts a single BSON value to its canonical Node form,
// wrapping every non-object/array/string/bool/null type in its "$number..."
// or equivalent type tag.
func ToCanonical(v bsoncore.Value) (Node, error) {
	switch v.Type {
	case bsontype.Double:
		f, ok := v.DoubleOK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToCanonical", Type: v.Type}
		}
		return wrap1("$numberDouble", String(formatCanonicalDouble(f))), nil
	case bsontype.Int32:
		i, ok := v.Int32OK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToCanonical", Type: v.Type}
		}
		return wrap1("$numberInt", String(strconv.FormatInt(int64(i), 10))), nil
	case bsontype.Int64:
		i, ok := v.Int64OK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToCanonical", Type: v.Type}
		}
		return wrap1("$numberLong", String(strconv.FormatInt(i, 10))), nil
	case bsontype.Decimal128:
		d, ok := v.Decimal128OK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToCanonical", Type: v.Type}
		}
		return wrap1("$numberDecimal", String(d.String())), nil
	case bsontype.Binary:
		subtype, data, ok := v.BinaryOK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToCanonical", Type: v.Type}
		}
		return binaryNode(subtype, data), nil
	case bsontype.ObjectID:
		oid, ok := v.ObjectIDOK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToCanonical", Type: v.Type}
		}
		return wrap1("$oid", String(oid.Hex())), nil
	case bsontype.DateTime:
		ms, ok := v.DateTimeOK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToCanonical", Type: v.Type}
		}
		return dateCanonicalNode(ms), nil
	case bsontype.Timestamp:
		increment, seconds, ok := v.TimestampOK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToCanonical", Type: v.Type}
		}
		return wrap1("$timestamp", Object([]string{"t", "i"}, []Node{Number(strconv.FormatUint(uint64(seconds), 10)), Number(strconv.FormatUint(uint64(increment), 10))})), nil
	case bsontype.Regex:
		pattern, options, ok := v.RegexOK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToCanonical", Type: v.Type}
		}
		return wrap1("$regularExpression", Object([]string{"pattern", "options"}, []Node{String(pattern), String(sortChars(options))})), nil
	case bsontype.JavaScript:
		js, ok := v.JavaScriptOK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToCanonical", Type: v.Type}
		}
		return wrap1("$code", String(js)), nil
	case bsontype.CodeWithScope:
		code, scope, ok := v.CodeWithScopeOK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToCanonical", Type: v.Type}
		}
		scopeNode, err := DocumentToCanonical(scope)
		if err != nil {
			return Node{}, err
		}
		return Object([]string{"$code", "$scope"}, []Node{String(code), scopeNode}), nil
	case bsontype.Symbol:
		s, ok := v.SymbolOK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToCanonical", Type: v.Type}
		}
		return wrap1("$symbol", String(s)), nil
	case bsontype.MinKey:
		return wrap1("$minKey", Number("1")), nil
	case bsontype.MaxKey:
		return wrap1("$maxKey", Number("1")), nil
	case bsontype.Undefined:
		return wrap1("$undefined", Bool(true)), nil
	case bsontype.DBPointer:
		ns, oid, ok := v.DBPointerOK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToCanonical", Type: v.Type}
		}
		return wrap1("$dbPointer", Object([]string{"$ref", "$id"}, []Node{String(ns), wrap1("$oid", String(oid.Hex()))})), nil
	case bsontype.Null:
		return Null(), nil
	case bsontype.Boolean:
		b, ok := v.BooleanOK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToCanonical", Type: v.Type}
		}
		return Bool(b), nil
	case bsontype.String:
		s, ok := v.StringValueOK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToCanonical", Type: v.Type}
		}
		return String(s), nil
	case bsontype.Array:
		arr, ok := v.ArrayOK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToCanonical", Type: v.Type}
		}
		return arrayToNode(arr, ToCanonical)
	case bsontype.EmbeddedDocument:
		doc, ok := v.DocumentOK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToCanonical", Type: v.Type}
		}
		return DocumentToCanonical(doc)
	default:
		return Node{}, bsoncore.ElementTypeError{Method: "ToCanonical", Type: v.Type}
	}
}

// ToRelaxed converts a single BSON value to its relaxed Node form. It
// differs from ToCanonical only for int32/int64 (plain number when
// lossless in a double), double (plain number unless non-finite), and
// datetime (ISO-8601 string within the representable range); every other
// type defers to ToCanonical.
func ToRelaxed(v bsoncore.Value) (Node, error) {
	switch v.Type {
	case bsontype.Int32:
		i, ok := v.Int32OK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToRelaxed", Type: v.Type}
		}
		return Number(strconv.FormatInt(int64(i), 10)), nil
	case bsontype.Int64:
		i, ok := v.Int64OK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToRelaxed", Type: v.Type}
		}
		if fitsLosslessInDouble(i) {
			return Number(strconv.FormatInt(i, 10)), nil
		}
		return ToCanonical(v)
	case bsontype.Double:
		f, ok := v.DoubleOK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToRelaxed", Type: v.Type}
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return ToCanonical(v)
		}
		return Number(formatRelaxedDouble(f)), nil
	case bsontype.DateTime:
		ms, ok := v.DateTimeOK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToRelaxed", Type: v.Type}
		}
		t := time.UnixMilli(ms).UTC()
		if t.Before(relaxedDateMin) || !t.Before(relaxedDateMax) {
			return ToCanonical(v)
		}
		return wrap1("$date", String(formatISO8601(t))), nil
	case bsontype.Array:
		arr, ok := v.ArrayOK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToRelaxed", Type: v.Type}
		}
		return arrayToNode(arr, ToRelaxed)
	case bsontype.EmbeddedDocument:
		doc, ok := v.DocumentOK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToRelaxed", Type: v.Type}
		}
		return DocumentToRelaxed(doc)
	case bsontype.CodeWithScope:
		code, scope, ok := v.CodeWithScopeOK()
		if !ok {
			return Node{}, bsoncore.ElementTypeError{Method: "ToRelaxed", Type: v.Type}
		}
		scopeNode, err := DocumentToRelaxed(scope)
		if err != nil {
			return Node{}, err
		}
		return Object([]string{"$code", "$scope"}, []Node{String(code), scopeNode}), nil
	default:
		return ToCanonical(v)
	}
}

func wrap1(key string, v Node) Node {
	return Object([]string{key}, []Node{v})
}

func binaryNode(subtype byte, data []byte) Node {
	sub := Object([]string{"base64", "subType"}, []Node{
		String(base64.StdEncoding.EncodeToString(data)),
		String(fmt.Sprintf("%02x", subtype)),
	})
	return wrap1("$binary", sub)
}

func dateCanonicalNode(ms int64) Node {
	return wrap1("$date", wrap1("$numberLong", String(strconv.FormatInt(ms, 10))))
}

func fitsLosslessInDouble(i int64) bool {
	const maxExact = int64(1) << 53
	return i >= -maxExact && i <= maxExact
}

func formatCanonicalDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	s := strconv.FormatFloat(f, 'G', -1, 64)
	if !strings.ContainsAny(s, ".E") {
		s += ".0"
	}
	return s
}

func formatRelaxedDouble(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	return s
}

func sortChars(s string) string {
	r := []rune(s)
	for i := 1; i < len(r); i++ {
		for j := i; j > 0 && r[j-1] > r[j]; j-- {
			r[j-1], r[j] = r[j], r[j-1]
		}
	}
	return string(r)
}

// formatISO8601 renders t with millisecond precision if its sub-second part
// is non-zero, otherwise without.
func formatISO8601(t time.Time) string {
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02T15:04:05Z")
	}
	return t.Format("2006-01-02T15:04:05.000Z")
}
