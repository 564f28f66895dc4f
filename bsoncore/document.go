// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

import (
	"strings"

	"github.com/bsonkit/bsonkit/bsonerr"
)

// ErrMissingNull is returned when a document/array's trailing terminator
// byte is missing or is not 0x00.
var ErrMissingNull = bsonerr.NewInternal("document is missing its terminating null byte")

// Document is the raw wire bytes of a BSON document: an int32 total length,
// followed by zero or more elements, followed by a trailing 0x00. Every
// operation below treats Document as an immutable value; mutators return a
// new Document rather than modifying the receiver in place.
type Document []byte

// NewDocument returns an empty, valid Document.
func NewDocument() Document {
	return Document{0x05, 0x00, 0x00, 0x00, 0x00}
}

// BuildDocument constructs a Document from pre-built element byte slices.
func BuildDocument(elements ...[]byte) Document {
	idx, buf := ReserveLength(nil)
	for _, elem := range elements {
		buf = append(buf, elem...)
	}
	buf = append(buf, 0x00)
	buf = UpdateLength(buf, idx, int32(len(buf)))
	return Document(buf)
}

// Len reads d's declared total length from its length prefix. It does not
// validate that the declared length matches len(d); use Validate for that.
func (d Document) Len() (int32, bool) {
	length, _, ok := ReadLength(d)
	return length, ok
}

// Validate checks structural well-formedness: the length prefix matches
// the buffer, the buffer ends in 0x00, and every element between is itself
// well-formed.
func (d Document) Validate() error {
	length, rem, ok := ReadLength(d)
	if !ok {
		return newInsufficientBytesError(d, rem)
	}
	if int(length) != len(d) {
		return lengthError("document", int(length), len(d))
	}
	if d[length-1] != 0x00 {
		return ErrMissingNull
	}
	body := rem[:length-5]
	for len(body) > 0 {
		elem, next, ok := ReadElement(body)
		if !ok {
			return newInsufficientBytesError(d, body)
		}
		if err := elem.Validate(); err != nil {
			return err
		}
		body = next
	}
	return nil
}

// Elements returns every element in d, in wire (insertion) order.
func (d Document) Elements() ([]Element, error) {
	length, rem, ok := ReadLength(d)
	if !ok || length < 5 || int(length) != len(d) {
		return nil, newInsufficientBytesError(d, rem)
	}
	body := rem[:length-5]
	var elements []Element
	for len(body) > 0 {
		elem, next, ok := ReadElement(body)
		if !ok {
			return elements, newInsufficientBytesError(d, body)
		}
		elements = append(elements, elem)
		body = next
	}
	return elements, nil
}

// Values returns the value of every element in d, in wire order.
func (d Document) Values() ([]Value, error) {
	elements, err := d.Elements()
	if err != nil {
		return nil, err
	}
	values := make([]Value, 0, len(elements))
	for _, elem := range elements {
		values = append(values, elem.Value())
	}
	return values, nil
}

// Lookup returns the value of the first element with the given key, scanning
// from the start, so duplicate keys resolve to the first match.
func (d Document) Lookup(key string) (Value, error) {
	elements, err := d.Elements()
	if err != nil {
		return Value{}, err
	}
	for _, elem := range elements {
		if elem.Key() == key {
			return elem.Value(), nil
		}
	}
	return Value{}, bsonerr.NewLogic("key %q not found", key)
}

// Index returns the nth (key, value) pair; O(n), since elements are not
// random-access on the wire.
func (d Document) Index(index uint) (Element, error) {
	elements, err := d.Elements()
	if err != nil {
		return nil, err
	}
	if int(index) >= len(elements) {
		return nil, bsonerr.NewLogic("index %d out of range (len %d)", index, len(elements))
	}
	return elements[index], nil
}

// Set returns a copy of d with key replaced by value, or appended if absent.
// If the existing element's byte length equals the new one's, the
// replacement happens in place, preserving position; otherwise the old
// element is removed and the new one appended just before the terminator,
// so it becomes the last key.
func (d Document) Set(key string, value Value) (Document, error) {
	elements, err := d.Elements()
	if err != nil {
		return nil, err
	}

	newElemLen := len(AppendElement(nil, key, value))
	found := -1
	for i, elem := range elements {
		if elem.Key() == key {
			found = i
			break
		}
	}

	var body []byte
	switch {
	case found < 0:
		for _, elem := range elements {
			body = append(body, elem...)
		}
		body = AppendElement(body, key, value)
	case len(elements[found]) == newElemLen:
		for i, elem := range elements {
			if i == found {
				body = AppendElement(body, key, value)
				continue
			}
			body = append(body, elem...)
		}
	default:
		for i, elem := range elements {
			if i == found {
				continue
			}
			body = append(body, elem...)
		}
		body = AppendElement(body, key, value)
	}

	total := 5 + len(body)
	if total > DocumentSizeLimit {
		return nil, bsonerr.NewDocumentTooLarge(total, DocumentSizeLimit)
	}
	return buildFromBody(body), nil
}

// Append returns a copy of d with a new element appended unconditionally,
// even if key already exists (producing a duplicate-key document; Lookup
// still resolves to the first).
func (d Document) Append(key string, value Value) (Document, error) {
	body := bodyOf(d)
	body = AppendElement(body, key, value)
	total := 5 + len(body)
	if total > DocumentSizeLimit {
		return nil, bsonerr.NewDocumentTooLarge(total, DocumentSizeLimit)
	}
	return buildFromBody(body), nil
}

// Remove returns a copy of d with the first element named key removed, and
// reports whether a matching key was found.
func (d Document) Remove(key string) (Document, bool) {
	elements, err := d.Elements()
	if err != nil {
		return d, false
	}
	var body []byte
	removed := false
	for _, elem := range elements {
		if !removed && elem.Key() == key {
			removed = true
			continue
		}
		body = append(body, elem...)
	}
	if !removed {
		return d, false
	}
	return buildFromBody(body), true
}

func bodyOf(d Document) []byte {
	length, rem, ok := ReadLength(d)
	if !ok || int(length) > len(d) {
		return nil
	}
	return append([]byte(nil), rem[:length-5]...)
}

func buildFromBody(body []byte) Document {
	buf := make([]byte, 0, 5+len(body))
	idx, buf := ReserveLength(buf)
	buf = append(buf, body...)
	buf = append(buf, 0x00)
	return Document(UpdateLength(buf, idx, int32(len(buf))))
}

// Subsequence returns a fresh Document containing the elements at index
// positions [start, end). Out-of-range bounds clamp to the valid range.
func (d Document) Subsequence(start, end int) Document {
	elements, err := d.Elements()
	if err != nil {
		return NewDocument()
	}
	start = clamp(start, 0, len(elements))
	end = clamp(end, start, len(elements))
	var body []byte
	for _, elem := range elements[start:end] {
		body = append(body, elem...)
	}
	return buildFromBody(body)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Map returns a Document built by applying f to every element of d, in order.
func (d Document) Map(f func(Element) Element) (Document, error) {
	elements, err := d.Elements()
	if err != nil {
		return nil, err
	}
	var body []byte
	for _, elem := range elements {
		body = append(body, f(elem)...)
	}
	return buildFromBody(body), nil
}

// Filter returns a Document containing only the elements for which f
// reports true, in order.
func (d Document) Filter(f func(Element) bool) (Document, error) {
	elements, err := d.Elements()
	if err != nil {
		return nil, err
	}
	var body []byte
	for _, elem := range elements {
		if f(elem) {
			body = append(body, elem...)
		}
	}
	return buildFromBody(body), nil
}

// DropFirst returns d without its first n elements.
func (d Document) DropFirst(n int) Document {
	return d.Subsequence(n, d.count())
}

// DropLast returns d without its last n elements.
func (d Document) DropLast(n int) Document {
	return d.Subsequence(0, d.count()-n)
}

// Prefix returns d's first n elements.
func (d Document) Prefix(n int) Document {
	return d.Subsequence(0, n)
}

// Suffix returns d's last n elements.
func (d Document) Suffix(n int) Document {
	c := d.count()
	return d.Subsequence(c-n, c)
}

// DropWhile returns d without its leading run of elements for which f
// reports true.
func (d Document) DropWhile(f func(Element) bool) Document {
	elements, err := d.Elements()
	if err != nil {
		return NewDocument()
	}
	i := 0
	for i < len(elements) && f(elements[i]) {
		i++
	}
	return d.Subsequence(i, len(elements))
}

// PrefixWhile returns d's leading run of elements for which f reports true.
func (d Document) PrefixWhile(f func(Element) bool) Document {
	elements, err := d.Elements()
	if err != nil {
		return NewDocument()
	}
	i := 0
	for i < len(elements) && f(elements[i]) {
		i++
	}
	return d.Subsequence(0, i)
}

// Split divides d into sub-Documents at elements for which isSeparator
// reports true. maxSplits limits the number of splits (0 means unlimited);
// when omittingEmpty is true, empty sub-Documents are dropped from the
// result.
func (d Document) Split(isSeparator func(Element) bool, maxSplits int, omittingEmpty bool) []Document {
	elements, err := d.Elements()
	if err != nil {
		return nil
	}
	var groups []Document
	var current []byte
	splits := 0
	flush := func() {
		if omittingEmpty && len(current) == 0 {
			current = nil
			return
		}
		groups = append(groups, buildFromBody(current))
		current = nil
	}
	for _, elem := range elements {
		if isSeparator(elem) && (maxSplits <= 0 || splits < maxSplits) {
			flush()
			splits++
			continue
		}
		current = append(current, elem...)
	}
	flush()
	return groups
}

func (d Document) count() int {
	elements, err := d.Elements()
	if err != nil {
		return 0
	}
	return len(elements)
}

// String implements fmt.Stringer, returning d in (non-truncated) Extended
// JSON form. Returns "" if d is malformed.
func (d Document) String() string {
	s, _ := d.StringN(-1)
	return s
}

// StringN renders d as an Extended JSON object, truncated to n bytes if n is
// non-negative.
func (d Document) StringN(n int) (string, bool) {
	elements, err := d.Elements()
	if err != nil {
		return "", false
	}
	if n == 0 {
		return "", true
	}
	var buf strings.Builder
	buf.WriteByte('{')
	var truncated bool
	for i, elem := range elements {
		if truncated {
			break
		}
		needLen := -1
		if n > 0 {
			if buf.Len() >= n {
				truncated = true
				break
			}
			needLen = n - buf.Len()
		}
		if i != 0 {
			buf.WriteByte(',')
			if needLen > 0 {
				needLen--
				if needLen == 0 {
					truncated = true
					break
				}
			}
		}
		buf.WriteString(escapeString(elem.Key()))
		buf.WriteByte(':')
		str, wasTruncated := elem.Value().StringN(needLen)
		buf.WriteString(str)
		if wasTruncated {
			truncated = true
		}
	}
	if n <= 0 || (buf.Len() < n && !truncated) {
		buf.WriteByte('}')
	} else {
		truncated = true
	}
	s := buf.String()
	if n > 0 && len(s) > n {
		s = s[:n]
	}
	return s, truncated
}

// DebugString is like String but substitutes "<malformed>" for any element
// that fails to stringify instead of propagating the failure.
func (d Document) DebugString() string {
	elements, err := d.Elements()
	if err != nil {
		return "<malformed>"
	}
	var buf strings.Builder
	buf.WriteByte('{')
	for i, elem := range elements {
		if i != 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(escapeString(elem.Key()))
		buf.WriteByte(':')
		buf.WriteString(elem.Value().DebugString())
	}
	buf.WriteByte('}')
	return buf.String()
}
