// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package extjson implements the two Extended JSON text profiles (canonical
// and relaxed) as the reverse side of bsoncore's binary codec. Every BSON
// value converts to a Node tree via ToCanonical/ToRelaxed; the
// reverse direction, FromExtJSON, reads a Node back into a bsoncore.Value,
// reporting either a typed result or a keypath-qualified data-corrupted
// error. The not-applicable outcome exists only inside wrapper matching:
// an object that matches no Extended JSON wrapper is read as an embedded
// document, and FromExtJSON never reports not-applicable to its caller.
package extjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/bsonkit/bsonkit/bsonerr"
)

// Kind discriminates the variant of a Node.
type Kind int

// Node kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Node is a minimal JSON value tree that, unlike encoding/json's
// map[string]interface{}, preserves object key order — required because a
// BSON document's element order is significant and must round-trip through
// its Extended JSON rendering.
type Node struct {
	Kind Kind

	Bool bool
	// Num holds a KindNumber node's literal text, exactly as written, so
	// that large int64/Decimal128 magnitudes survive without float64
	// rounding.
	Num string
	Str string

	Elems []Node

	Keys []string
	Vals []Node
}

// Null returns the null Node.
func Null() Node { return Node{Kind: KindNull} }

// Bool returns a boolean Node.
func Bool(b bool) Node { return Node{Kind: KindBool, Bool: b} }

// Number returns a numeric Node from its literal decimal text.
func Number(literal string) Node { return Node{Kind: KindNumber, Num: literal} }

// String returns a string Node.
func String(s string) Node { return Node{Kind: KindString, Str: s} }

// Array returns an array Node.
func Array(elems ...Node) Node { return Node{Kind: KindArray, Elems: elems} }

// Object returns an object Node from keys and values given in order. The
// caller owns the relationship between keys[i] and vals[i]; their lengths
// must match.
func Object(keys []string, vals []Node) Node {
	return Node{Kind: KindObject, Keys: keys, Vals: vals}
}

// Field looks up key in an object Node in insertion order, returning
// not-found if node is not an object or the key is absent.
func (n Node) Field(key string) (Node, bool) {
	if n.Kind != KindObject {
		return Node{}, false
	}
	for i, k := range n.Keys {
		if k == key {
			return n.Vals[i], true
		}
	}
	return Node{}, false
}

// WithField appends (or, if key already exists, replaces in place) a field
// on an object Node, returning the updated node.
func (n Node) WithField(key string, v Node) Node {
	for i, k := range n.Keys {
		if k == key {
			n.Vals[i] = v
			return n
		}
	}
	n.Keys = append(n.Keys, key)
	n.Vals = append(n.Vals, v)
	return n
}

// Parse reads data as a single JSON value, preserving object key order.
func Parse(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	node, err := parseValue(dec)
	if err != nil {
		return Node{}, bsonerr.NewInvalidArgument("malformed JSON: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Node{}, bsonerr.NewInvalidArgument("trailing data after JSON value")
	}
	return node, nil
}

func parseValue(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return Node{}, err
	}
	return parseToken(dec, tok)
}

func parseToken(dec *json.Decoder, tok json.Token) (Node, error) {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		default:
			return Node{}, fmt.Errorf("unexpected delimiter %q", v)
		}
	case json.Number:
		return Number(v.String()), nil
	case string:
		return String(v), nil
	case bool:
		return Bool(v), nil
	case nil:
		return Null(), nil
	default:
		return Node{}, fmt.Errorf("unexpected JSON token %v", tok)
	}
}

func parseObject(dec *json.Decoder) (Node, error) {
	obj := Node{Kind: KindObject}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Node{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return Node{}, fmt.Errorf("expected object key, got %v", keyTok)
		}
		val, err := parseValue(dec)
		if err != nil {
			return Node{}, err
		}
		obj.Keys = append(obj.Keys, key)
		obj.Vals = append(obj.Vals, val)
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return Node{}, err
	}
	return obj, nil
}

func parseArray(dec *json.Decoder) (Node, error) {
	arr := Node{Kind: KindArray}
	for dec.More() {
		val, err := parseValue(dec)
		if err != nil {
			return Node{}, err
		}
		arr.Elems = append(arr.Elems, val)
	}
	if _, err := dec.Token(); err != nil { // consume ']'
		return Node{}, err
	}
	return arr, nil
}

// Marshal renders node as compact JSON text.
func Marshal(node Node) string {
	var buf bytes.Buffer
	writeNode(&buf, node)
	return buf.String()
}

func writeNode(buf *bytes.Buffer, node Node) {
	switch node.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(node.Bool))
	case KindNumber:
		buf.WriteString(node.Num)
	case KindString:
		writeJSONString(buf, node.Str)
	case KindArray:
		buf.WriteByte('[')
		for i, elem := range node.Elems {
			if i != 0 {
				buf.WriteByte(',')
			}
			writeNode(buf, elem)
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, key := range node.Keys {
			if i != 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, key)
			buf.WriteByte(':')
			writeNode(buf, node.Vals[i])
		}
		buf.WriteByte('}')
	}
}

var hexDigits = "0123456789abcdef"

func writeJSONString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			buf.WriteByte('\\')
			buf.WriteRune(r)
		case r == '\n':
			buf.WriteString(`\n`)
		case r == '\r':
			buf.WriteString(`\r`)
		case r == '\t':
			buf.WriteString(`\t`)
		case r < 0x20:
			buf.WriteString(`\u00`)
			buf.WriteByte(hexDigits[(r>>4)&0xF])
			buf.WriteByte(hexDigits[r&0xF])
		default:
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}
