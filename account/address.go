// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"bytes"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/permchain/fault"
)

// AddressLength - number of bytes in a destination
const AddressLength = 20

// version byte prefixed to the text form
const (
	KeyHashVersion    = 0x00
	ScriptHashVersion = 0x05
)

const checksumLength = 4

// Address - a 20 byte key or script hash destination
//
// the zero address is used for "no destination"
type Address [AddressLength]byte

// FromPublicKey - hash a public key to its destination
func FromPublicKey(publicKey []byte) Address {
	digest := sha3.Sum256(publicKey)
	var a Address
	copy(a[:], digest[:AddressLength])
	return a
}

// FromBytes - convert and validate a byte slice
func FromBytes(a *Address, buffer []byte) error {
	if AddressLength != len(buffer) {
		return fault.ErrInvalidAddress
	}
	copy(a[:], buffer)
	return nil
}

// FromBase58 - decode the text form, also returning the version byte
func FromBase58(s string) (Address, byte, error) {
	var a Address

	decoded, err := base58.Decode(s)
	if nil != err {
		return a, 0, fault.ErrInvalidAddress
	}
	if 1+AddressLength+checksumLength != len(decoded) {
		return a, 0, fault.ErrInvalidAddress
	}

	version := decoded[0]
	if KeyHashVersion != version && ScriptHashVersion != version {
		return a, 0, fault.ErrInvalidAddress
	}

	n := 1 + AddressLength
	checksum := sha3.Sum256(decoded[:n])
	if !bytes.Equal(checksum[:checksumLength], decoded[n:]) {
		return a, 0, fault.ErrChecksumMismatch
	}
	copy(a[:], decoded[1:n])
	return a, version, nil
}

// IsZero - true for the "no destination" value
func (a Address) IsZero() bool {
	return a == Address{}
}

// Encode - text form with the given version byte
func (a Address) Encode(version byte) string {
	buffer := make([]byte, 0, 1+AddressLength+checksumLength)
	buffer = append(buffer, version)
	buffer = append(buffer, a[:]...)
	checksum := sha3.Sum256(buffer)
	buffer = append(buffer, checksum[:checksumLength]...)
	return base58.Encode(buffer)
}

// String - text form of a key hash destination
func (a Address) String() string {
	return a.Encode(KeyHashVersion)
}

// MarshalText - key hash text form for JSON
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText - accepts either version
func (a *Address) UnmarshalText(s []byte) error {
	decoded, _, err := FromBase58(string(s))
	if nil != err {
		return err
	}
	*a = decoded
	return nil
}
