// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bsoncore

import "github.com/bsonkit/bsonkit/bsontype"

// Iterator is a single-pass forward scan over a Document's bytes. Each
// step reads one type byte, one key C-string, and one value payload.
// Iteration is poisoned by its first error: once Next returns
// false with a non-nil Err, subsequent calls keep returning false. Multiple
// independent Iterators over the same Document are safe because they only
// borrow its bytes immutably.
type Iterator struct {
	rem  []byte
	cur  Element
	err  error
	done bool
}

// NewIterator returns an Iterator positioned before doc's first element.
// It does not itself validate doc's length prefix; a malformed prefix
// surfaces as an error from the first call to Next.
func NewIterator(doc Document) *Iterator {
	_, rem, ok := ReadLength(doc)
	if !ok {
		return &Iterator{err: newInsufficientBytesError(doc, doc)}
	}
	return &Iterator{rem: rem}
}

// Next advances the iterator, reporting whether an element was produced.
// It returns false both at the natural end of the document (Err is nil)
// and on a fatal read failure (Err is non-nil).
func (it *Iterator) Next() bool {
	if it.done || it.err != nil {
		return false
	}
	if len(it.rem) == 0 {
		it.err = newInsufficientBytesError(nil, nil)
		return false
	}
	if len(it.rem) == 1 {
		if it.rem[0] != 0x00 {
			it.err = ErrMissingNull
			return false
		}
		it.done = true
		return false
	}
	elem, rest, ok := ReadElement(it.rem)
	if !ok {
		it.err = newInsufficientBytesError(it.rem, nil)
		return false
	}
	it.cur = elem
	it.rem = rest
	return true
}

// Element returns the element produced by the most recent successful Next.
func (it *Iterator) Element() Element { return it.cur }

// Key returns the key of the element produced by the most recent successful
// Next.
func (it *Iterator) Key() string { return it.cur.Key() }

// Value returns the value of the element produced by the most recent
// successful Next.
func (it *Iterator) Value() Value { return it.cur.Value() }

// Err returns the error that stopped iteration, or nil if iteration has not
// stopped or stopped because it reached the end normally.
func (it *Iterator) Err() error { return it.err }

// DocumentIterator wraps Iterator and additionally requires every value to
// be an embedded document, as used when scanning an array of documents.
type DocumentIterator struct {
	it *Iterator
}

// NewDocumentIterator returns a DocumentIterator positioned before doc's
// first element.
func NewDocumentIterator(doc Document) *DocumentIterator {
	return &DocumentIterator{it: NewIterator(doc)}
}

// Next advances the iterator, reporting whether a document element was
// produced. It fails fatally if the current value is not an embedded
// document.
func (di *DocumentIterator) Next() bool {
	if !di.it.Next() {
		return false
	}
	if di.it.Value().Type != bsontype.EmbeddedDocument {
		di.it.err = ElementTypeError{"DocumentIterator.Next", di.it.Value().Type}
		return false
	}
	return true
}

// Document returns the document produced by the most recent successful
// Next.
func (di *DocumentIterator) Document() Document {
	return di.it.Value().Document()
}

// Err returns the error that stopped iteration, if any.
func (di *DocumentIterator) Err() error { return di.it.err }
