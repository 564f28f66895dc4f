// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bsontype holds the one-byte BSON type tag and binary subtype
// constants shared by every other bsonkit package.
package bsontype

// Type represents a BSON element type, the one-byte tag that precedes every
// key in a document's wire form.
type Type byte

// BSON element types as described in https://bsonspec.org/spec.html.
const (
	Double           Type = 0x01
	String           Type = 0x02
	EmbeddedDocument Type = 0x03
	Array            Type = 0x04
	Binary           Type = 0x05
	Undefined        Type = 0x06
	ObjectID         Type = 0x07
	Boolean          Type = 0x08
	DateTime         Type = 0x09
	Null             Type = 0x0A
	Regex            Type = 0x0B
	DBPointer        Type = 0x0C
	JavaScript       Type = 0x0D
	Symbol           Type = 0x0E
	CodeWithScope    Type = 0x0F
	Int32            Type = 0x10
	Timestamp        Type = 0x11
	Int64            Type = 0x12
	Decimal128       Type = 0x13
	MaxKey           Type = 0x7F
	MinKey           Type = 0xFF
)

// String returns the human-readable name of t, as used in debug output and
// TypeMismatch error messages.
func (t Type) String() string {
	switch t {
	case Double:
		return "double"
	case String:
		return "string"
	case EmbeddedDocument:
		return "embedded document"
	case Array:
		return "array"
	case Binary:
		return "binary"
	case Undefined:
		return "undefined"
	case ObjectID:
		return "objectID"
	case Boolean:
		return "boolean"
	case DateTime:
		return "UTC datetime"
	case Null:
		return "null"
	case Regex:
		return "regex"
	case DBPointer:
		return "dbPointer"
	case JavaScript:
		return "javascript"
	case Symbol:
		return "symbol"
	case CodeWithScope:
		return "code with scope"
	case Int32:
		return "32-bit integer"
	case Timestamp:
		return "timestamp"
	case Int64:
		return "64-bit integer"
	case Decimal128:
		return "decimal128"
	case MinKey:
		return "min key"
	case MaxKey:
		return "max key"
	default:
		return "invalid"
	}
}

// IsValid reports whether t is one of the known BSON element types.
func (t Type) IsValid() bool {
	switch t {
	case Double, String, EmbeddedDocument, Array, Binary, Undefined, ObjectID,
		Boolean, DateTime, Null, Regex, DBPointer, JavaScript, Symbol,
		CodeWithScope, Int32, Timestamp, Int64, Decimal128, MinKey, MaxKey:
		return true
	default:
		return false
	}
}

// Binary subtypes, as described in https://bsonspec.org/spec.html.
const (
	BinaryGeneric     byte = 0x00
	BinaryFunction    byte = 0x01
	BinaryBinaryOld   byte = 0x02
	BinaryUUIDOld     byte = 0x03
	BinaryUUID        byte = 0x04
	BinaryMD5         byte = 0x05
	BinaryEncrypted   byte = 0x06
	BinaryColumn      byte = 0x07
	binaryReservedMin byte = 0x08
	binaryReservedMax byte = 0x7F
	BinaryUserDefined byte = 0x80
)

// ValidSubtype reports whether subtype is a legal binary subtype byte: the
// named subtypes, or anything in the user-defined range 0x80..0xFF. The
// range 0x08..0x7F is reserved and rejected.
func ValidSubtype(subtype byte) bool {
	switch {
	case subtype >= binaryReservedMin && subtype <= binaryReservedMax:
		return false
	default:
		return true
	}
}
