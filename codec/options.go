// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package codec holds the abstract adapter contract a reflection-based
// struct walker would implement on top of bsoncore: the marshaler
// interfaces a native type can satisfy, and the functional-options structs
// that govern date/binary/UUID/key encoding. No walker is implemented here
// (out of scope); this package exists solely so such an adapter has a
// contract to build against.
package codec

import (
	"github.com/bsonkit/bsonkit/bsoncore"
	"github.com/bsonkit/bsonkit/bsontype"
)

// ValueMarshaler is implemented by a native type that knows how to encode
// itself directly to a BSON value, bypassing the (out-of-scope) generic
// reflection walker.
type ValueMarshaler interface {
	MarshalBSONValue() (bsontype.Type, []byte, error)
}

// ValueUnmarshaler is the reverse of ValueMarshaler.
type ValueUnmarshaler interface {
	UnmarshalBSONValue(bsontype.Type, []byte) error
}

// Marshaler is implemented by a native type that encodes itself as a
// complete BSON document rather than a single value.
type Marshaler interface {
	MarshalBSON() (bsoncore.Document, error)
}

// Unmarshaler is the reverse of Marshaler.
type Unmarshaler interface {
	UnmarshalBSON(bsoncore.Document) error
}

// DateEncoding selects how an adapter represents a native date/time value.
type DateEncoding int

// Date encoding strategies.
const (
	DateEncodingBSONDateTime DateEncoding = iota
	DateEncodingMillisecondsInt64
	DateEncodingSecondsFloat64
	DateEncodingISO8601String
)

// DataEncoding selects how an adapter represents a native byte-slice value.
type DataEncoding int

// Data encoding strategies.
const (
	DataEncodingBinaryGeneric DataEncoding = iota
	DataEncodingBase64String
	DataEncodingBinarySubtype
)

// UUIDEncoding selects how an adapter represents a native UUID value.
type UUIDEncoding int

// UUID encoding strategies.
const (
	UUIDEncodingBinaryUUID UUIDEncoding = iota
	UUIDEncodingDeferToData
)

// KeyStrategy selects how an adapter derives a document key from a native
// field name.
type KeyStrategy int

// Key strategies.
const (
	KeyStrategyUseDefaults KeyStrategy = iota
	KeyStrategySnakeCase
)

// EncodeOptions governs how the (out-of-scope) reflective encoder would
// translate native values into BSON. Every field is a pointer so that
// MergeEncodeOptions can distinguish "unset" from "set to the zero value",
// matching the teacher's bsonoptions pointer-field convention.
type EncodeOptions struct {
	DateEncoding    *DateEncoding
	DataEncoding    *DataEncoding
	UUIDEncoding    *UUIDEncoding
	KeyStrategy     *KeyStrategy
	BinarySubtype   *byte
	NilSliceAsEmpty *bool
}

// NewEncodeOptions returns an EncodeOptions with every field unset.
func NewEncodeOptions() *EncodeOptions {
	return &EncodeOptions{}
}

// SetDateEncoding sets the DateEncoding field.
func (o *EncodeOptions) SetDateEncoding(e DateEncoding) *EncodeOptions {
	o.DateEncoding = &e
	return o
}

// SetDataEncoding sets the DataEncoding field.
func (o *EncodeOptions) SetDataEncoding(e DataEncoding) *EncodeOptions {
	o.DataEncoding = &e
	return o
}

// SetUUIDEncoding sets the UUIDEncoding field.
func (o *EncodeOptions) SetUUIDEncoding(e UUIDEncoding) *EncodeOptions {
	o.UUIDEncoding = &e
	return o
}

// SetKeyStrategy sets the KeyStrategy field.
func (o *EncodeOptions) SetKeyStrategy(s KeyStrategy) *EncodeOptions {
	o.KeyStrategy = &s
	return o
}

// SetBinarySubtype sets the subtype used when DataEncoding is
// DataEncodingBinarySubtype.
func (o *EncodeOptions) SetBinarySubtype(subtype byte) *EncodeOptions {
	o.BinarySubtype = &subtype
	return o
}

// SetNilSliceAsEmpty sets whether a nil native slice encodes as an empty
// BSON array rather than null.
func (o *EncodeOptions) SetNilSliceAsEmpty(v bool) *EncodeOptions {
	o.NilSliceAsEmpty = &v
	return o
}

// MergeEncodeOptions combines multiple EncodeOptions into one, with fields
// set in a later argument overriding the same field set in an earlier one.
func MergeEncodeOptions(opts ...*EncodeOptions) *EncodeOptions {
	merged := NewEncodeOptions()
	for _, o := range opts {
		if o == nil {
			continue
		}
		if o.DateEncoding != nil {
			merged.DateEncoding = o.DateEncoding
		}
		if o.DataEncoding != nil {
			merged.DataEncoding = o.DataEncoding
		}
		if o.UUIDEncoding != nil {
			merged.UUIDEncoding = o.UUIDEncoding
		}
		if o.KeyStrategy != nil {
			merged.KeyStrategy = o.KeyStrategy
		}
		if o.BinarySubtype != nil {
			merged.BinarySubtype = o.BinarySubtype
		}
		if o.NilSliceAsEmpty != nil {
			merged.NilSliceAsEmpty = o.NilSliceAsEmpty
		}
	}
	return merged
}

// DecodeOptions governs how the (out-of-scope) reflective decoder would
// translate BSON values into native ones. It mirrors EncodeOptions.
type DecodeOptions struct {
	DateEncoding      *DateEncoding
	DataEncoding      *DataEncoding
	UUIDEncoding      *UUIDEncoding
	KeyStrategy       *KeyStrategy
	ErrorOnMissingKey *bool
}

// NewDecodeOptions returns a DecodeOptions with every field unset.
func NewDecodeOptions() *DecodeOptions {
	return &DecodeOptions{}
}

// SetDateEncoding sets the DateEncoding field.
func (o *DecodeOptions) SetDateEncoding(e DateEncoding) *DecodeOptions {
	o.DateEncoding = &e
	return o
}

// SetDataEncoding sets the DataEncoding field.
func (o *DecodeOptions) SetDataEncoding(e DataEncoding) *DecodeOptions {
	o.DataEncoding = &e
	return o
}

// SetUUIDEncoding sets the UUIDEncoding field.
func (o *DecodeOptions) SetUUIDEncoding(e UUIDEncoding) *DecodeOptions {
	o.UUIDEncoding = &e
	return o
}

// SetKeyStrategy sets the KeyStrategy field.
func (o *DecodeOptions) SetKeyStrategy(s KeyStrategy) *DecodeOptions {
	o.KeyStrategy = &s
	return o
}

// SetErrorOnMissingKey sets whether decoding into a struct field with no
// matching document key is a hard error rather than a no-op.
func (o *DecodeOptions) SetErrorOnMissingKey(v bool) *DecodeOptions {
	o.ErrorOnMissingKey = &v
	return o
}

// MergeDecodeOptions combines multiple DecodeOptions into one, with fields
// set in a later argument overriding the same field set in an earlier one.
func MergeDecodeOptions(opts ...*DecodeOptions) *DecodeOptions {
	merged := NewDecodeOptions()
	for _, o := range opts {
		if o == nil {
			continue
		}
		if o.DateEncoding != nil {
			merged.DateEncoding = o.DateEncoding
		}
		if o.DataEncoding != nil {
			merged.DataEncoding = o.DataEncoding
		}
		if o.UUIDEncoding != nil {
			merged.UUIDEncoding = o.UUIDEncoding
		}
		if o.KeyStrategy != nil {
			merged.KeyStrategy = o.KeyStrategy
		}
		if o.ErrorOnMissingKey != nil {
			merged.ErrorOnMissingKey = o.ErrorOnMissingKey
		}
	}
	return merged
}
