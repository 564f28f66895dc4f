// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package codec

import (
	"github.com/google/uuid"

	"github.com/bsonkit/bsonkit/bsoncore"
	"github.com/bsonkit/bsonkit/bsonerr"
	"github.com/bsonkit/bsonkit/bsontype"
)

// UUIDToBinary encodes id as a BSON binary value of subtype 0x04, the
// standardized UUID subtype.
func UUIDToBinary(id uuid.UUID) (subtype byte, data []byte) {
	b := id[:]
	return bsontype.BinaryUUID, append([]byte(nil), b...)
}

// UUIDFromValue decodes v into a uuid.UUID. v must be a binary value of
// subtype 0x04 (standard) or 0x03 (legacy), exactly 16 bytes long.
func UUIDFromValue(v bsoncore.Value) (uuid.UUID, error) {
	subtype, data, ok := v.BinaryOK()
	if !ok {
		return uuid.UUID{}, bsoncore.ElementTypeError{Method: "UUIDFromValue", Type: v.Type}
	}
	if subtype != bsontype.BinaryUUID && subtype != bsontype.BinaryUUIDOld {
		return uuid.UUID{}, bsonerr.NewInvalidArgument("unsupported binary subtype %#x for UUID", subtype)
	}
	if len(data) != 16 {
		return uuid.UUID{}, bsonerr.NewInvalidArgument("UUID binary data must be %d bytes, got %d", 16, len(data))
	}
	var id uuid.UUID
	copy(id[:], data)
	return id, nil
}

// AppendUUIDElement appends a binary-subtype-0x04 element encoding id,
// honoring EncodeOptions.UUIDEncoding when opts is non-nil and requests the
// DeferToData strategy (treat id as opaque generic binary instead).
func AppendUUIDElement(dst []byte, key string, id uuid.UUID, opts *EncodeOptions) []byte {
	if opts != nil && opts.UUIDEncoding != nil && *opts.UUIDEncoding == UUIDEncodingDeferToData {
		return bsoncore.AppendBinaryElement(dst, key, bsontype.BinaryGeneric, id[:])
	}
	_, data := UUIDToBinary(id)
	return bsoncore.AppendBinaryElement(dst, key, bsontype.BinaryUUID, data)
}
