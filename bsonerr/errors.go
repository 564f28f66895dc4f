// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bsonerr holds the error taxonomy shared by every bsonkit package.
//
// Every BSON-related failure in this module falls into one of six buckets:
// malformed user input (InvalidArgument), inconsistent wire bytes
// (Internal), API misuse (Logic), a size-limit breach (DocumentTooLarge), a
// corrupted Extended JSON document (DataCorrupted, which carries a key
// path), or an adapter-boundary type mismatch (TypeMismatch).
package bsonerr

import (
	"errors"
	"fmt"
	"strings"
)

// InvalidArgumentError reports malformed user input: a bad hex string, bad
// base64, an out-of-range Decimal128 literal, an unknown binary subtype
// number, and so on.
type InvalidArgumentError struct {
	// Reason names the offending input or rule that was violated.
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return "invalid argument: " + e.Reason
}

// NewInvalidArgument constructs an InvalidArgumentError naming the
// offending input literally rather than just the rule it broke.
func NewInvalidArgument(format string, args ...interface{}) error {
	return &InvalidArgumentError{Reason: fmt.Sprintf(format, args...)}
}

// InternalError reports wire bytes that are inconsistent with the BSON
// format: a short read, a length mismatch, an unknown type tag.
type InternalError struct {
	Reason string
	// Offset is the byte offset at which the inconsistency was detected, or
	// -1 if no particular offset applies.
	Offset int
}

func (e *InternalError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("internal: %s (at offset %d)", e.Reason, e.Offset)
	}
	return "internal: " + e.Reason
}

// NewInternal constructs an InternalError without an associated offset.
func NewInternal(format string, args ...interface{}) error {
	return &InternalError{Reason: fmt.Sprintf(format, args...), Offset: -1}
}

// NewInternalAt constructs an InternalError naming the failing byte offset.
func NewInternalAt(offset int, format string, args ...interface{}) error {
	return &InternalError{Reason: fmt.Sprintf(format, args...), Offset: offset}
}

// LogicError reports misuse of the API: an out-of-range index, or a key
// that Lookup does not find. Document's DropFirst, DropLast, Prefix and
// Suffix clamp a negative count instead of returning a LogicError.
type LogicError struct {
	Reason string
}

func (e *LogicError) Error() string {
	return "logic error: " + e.Reason
}

// NewLogic constructs a LogicError.
func NewLogic(format string, args ...interface{}) error {
	return &LogicError{Reason: fmt.Sprintf(format, args...)}
}

// DocumentTooLargeError reports that appending a value to a Document would
// push its total byte length past the 16 MiB BSON document size limit.
type DocumentTooLargeError struct {
	// Size is the size in bytes the document would have reached.
	Size int
	// Limit is the maximum permitted size, always 16*1024*1024 today.
	Limit int
}

func (e *DocumentTooLargeError) Error() string {
	return fmt.Sprintf("document too large: %d bytes exceeds the %d byte limit", e.Size, e.Limit)
}

// NewDocumentTooLarge constructs a DocumentTooLargeError.
func NewDocumentTooLarge(size, limit int) error {
	return &DocumentTooLargeError{Size: size, Limit: limit}
}

// DataCorruptedError reports a failure while reading Extended JSON. It
// carries the dotted key path to the offending sub-value so the final
// message can read "a.b.c: <reason>".
type DataCorruptedError struct {
	KeyPath []string
	Reason  string
}

func (e *DataCorruptedError) Error() string {
	if len(e.KeyPath) == 0 {
		return "data corrupted: " + e.Reason
	}
	return fmt.Sprintf("%s: %s", strings.Join(e.KeyPath, "."), e.Reason)
}

// NewDataCorrupted constructs a DataCorruptedError for the given key path.
func NewDataCorrupted(keyPath []string, format string, args ...interface{}) error {
	return &DataCorruptedError{KeyPath: keyPath, Reason: fmt.Sprintf(format, args...)}
}

// WithKey prepends key to the error's key path if err is a
// *DataCorruptedError; otherwise it returns err unchanged. This is how a
// nested Extended JSON reader builds up the "a.b.c" trail as failures
// unwind out of recursive calls.
func WithKey(err error, key string) error {
	var dc *DataCorruptedError
	if errors.As(err, &dc) {
		return &DataCorruptedError{KeyPath: append([]string{key}, dc.KeyPath...), Reason: dc.Reason}
	}
	return err
}

// TypeMismatchError reports that an adapter asked for a BSON value of one
// type (Method) but the underlying value holds another (Actual).
type TypeMismatchError struct {
	Method string
	Actual string
}

func (e *TypeMismatchError) Error() string {
	return "call of " + e.Method + " on " + e.Actual + " type"
}

// NewTypeMismatch constructs a TypeMismatchError.
func NewTypeMismatch(method, actual string) error {
	return &TypeMismatchError{Method: method, Actual: actual}
}
