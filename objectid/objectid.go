// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0
//
// Based on gopkg.in/mgo.v2/bson by Gustavo Niemeyer
// See THIRD-PARTY-NOTICES for original license terms.

// Package objectid implements the 12-byte BSON ObjectID scalar: a 4-byte
// big-endian seconds-since-epoch timestamp, a 5-byte per-process random
// value, and a 3-byte big-endian counter that wraps at 2^24.
package objectid

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/bsonkit/bsonkit/bsonerr"
)

// ObjectID is the BSON ObjectID scalar.
type ObjectID [12]byte

// Nil is the zero value for ObjectID.
var Nil ObjectID

// counter and processUnique hold process-wide generator state: an atomic
// 24-bit counter seeded from a crypto-random source, and a 5-byte random
// value captured once at package init and shared by every ID generated in
// this process.
var (
	counter       = readRandomUint32()
	processUnique = processUniqueBytes()
)

// New generates a new ObjectID using the current time.
func New() ObjectID {
	return NewFromTimestamp(time.Now())
}

// NewFromTimestamp generates a new ObjectID embedding the given time as its
// 4-byte timestamp field. The random and counter fields come from the
// process-wide generator state; concurrent calls observe distinct counter
// values because the increment is atomic, and the 3-byte counter field
// wraps from 0xFFFFFF to 0.
func NewFromTimestamp(timestamp time.Time) ObjectID {
	var b [12]byte
	binary.BigEndian.PutUint32(b[0:4], uint32(timestamp.Unix()))
	copy(b[4:9], processUnique[:])
	next := atomic.AddUint32(&counter, 1)
	putUint24(b[9:12], next-1)
	return b
}

// Timestamp extracts the embedded creation time.
func (id ObjectID) Timestamp() time.Time {
	unixSecs := binary.BigEndian.Uint32(id[0:4])
	return time.Unix(int64(unixSecs), 0).UTC()
}

// Hex returns the lowercase 24-character hex encoding of id.
func (id ObjectID) Hex() string {
	var buf [24]byte
	hex.Encode(buf[:], id[:])
	return string(buf[:])
}

// String implements fmt.Stringer.
func (id ObjectID) String() string {
	return `ObjectID("` + id.Hex() + `")`
}

// IsZero reports whether id is the all-zero ObjectID.
func (id ObjectID) IsZero() bool {
	return id == Nil
}

// FromHex parses a 24-character hex string into an ObjectID. Input case is
// insensitive; output of Hex is always lowercase.
func FromHex(s string) (ObjectID, error) {
	if len(s) != 24 {
		return Nil, bsonerr.NewInvalidArgument("objectid: hex string %q must be 24 characters", s)
	}
	var oid [12]byte
	if _, err := hex.Decode(oid[:], []byte(s)); err != nil {
		return Nil, bsonerr.NewInvalidArgument("objectid: %q is not valid hex: %v", s, err)
	}
	return oid, nil
}

func processUniqueBytes() [5]byte {
	var b [5]byte
	if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
		panic(fmt.Errorf("objectid: cannot read from crypto/rand: %w", err))
	}
	return b
}

func readRandomUint32() uint32 {
	var b [4]byte
	if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
		panic(fmt.Errorf("objectid: cannot read from crypto/rand: %w", err))
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}
