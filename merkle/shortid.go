// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle

import (
	"encoding/hex"

	"github.com/bitmark-inc/permchain/fault"
)

// size and position of the short id within a transaction id
const (
	ShortIdLength = 16
	ShortIdOffset = DigestLength - ShortIdLength
)

// ShortId - the upper half of an entity's creating transaction id
//
// this is what scripts carry to refer to an entity
type ShortId [ShortIdLength]byte

// ShortIdFromBytes - validate and convert a byte slice
func ShortIdFromBytes(s *ShortId, buffer []byte) error {
	if ShortIdLength != len(buffer) {
		return fault.ErrInvalidShortId
	}
	copy(s[:], buffer)
	return nil
}

// String - big endian hex, matching the tail of the digest text
func (s ShortId) String() string {
	return hex.EncodeToString(reversed(s[:]))
}

// MarshalText - little endian hex text
func (s ShortId) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(ShortIdLength))
	hex.Encode(buffer, s[:])
	return buffer, nil
}

// UnmarshalText - convert little endian hex text
func (s *ShortId) UnmarshalText(text []byte) error {
	if ShortIdLength != hex.DecodedLen(len(text)) {
		return fault.ErrInvalidShortId
	}
	_, err := hex.Decode(s[:], text)
	return err
}

// ShortIdFromString - convert the big endian text form
func ShortIdFromString(s string) (ShortId, error) {
	id := ShortId{}
	buffer, err := hex.DecodeString(s)
	if nil != err {
		return id, err
	}
	if ShortIdLength != len(buffer) {
		return id, fault.ErrInvalidShortId
	}
	copy(id[:], reversed(buffer))
	return id, nil
}
