// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package permission

import (
	"encoding/binary"

	"github.com/bitmark-inc/permchain/account"
	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/merkle"
	"github.com/bitmark-inc/permchain/util"
)

// Record - one permission bit held by an address for an entity
//
// the record is active while From <= height+1 < To
type Record struct {
	Entity    merkle.Digest   `json:"entity"`
	Address   account.Address `json:"address"`
	Type      Type            `json:"type"`
	Admin     account.Address `json:"admin"`
	From      uint32          `json:"from"`
	To        uint32          `json:"to"`
	Timestamp uint32          `json:"timestamp"`
	Flags     Flags           `json:"flags"`
	Offset    int             `json:"offset"`
}

// IsActive - true if the record applies to the block after height
func (r *Record) IsActive(height int) bool {
	next := int64(height) + 1
	return int64(r.From) <= next && next < int64(r.To)
}

const recordKeyLength = merkle.DigestLength + account.AddressLength + 4

// entity ++ address ++ type
func recordKey(entity merkle.Digest, address account.Address, t Type) []byte {
	key := make([]byte, 0, recordKeyLength)
	key = append(key, entity[:]...)
	key = append(key, address[:]...)
	bit := make([]byte, 4)
	binary.BigEndian.PutUint32(bit, uint32(t))
	return append(key, bit...)
}

// entity ++ address
func recordPrefix(entity merkle.Digest, address account.Address) []byte {
	key := make([]byte, 0, recordKeyLength)
	key = append(key, entity[:]...)
	return append(key, address[:]...)
}

// pack the value part of the record
func (r *Record) pack() []byte {
	buffer := make([]byte, 0, account.AddressLength+20)
	buffer = append(buffer, r.Admin[:]...)
	buffer = util.AppendVarint64(buffer, uint64(r.From))
	buffer = util.AppendVarint64(buffer, uint64(r.To))
	buffer = util.AppendVarint64(buffer, uint64(r.Timestamp))
	buffer = util.AppendVarint64(buffer, uint64(r.Flags))
	// offset is -1 for unconfirmed so shift by one
	buffer = util.AppendVarint64(buffer, uint64(r.Offset+1))
	return buffer
}

// unpack a record from its key and value
func unpackRecord(key []byte, value []byte) (*Record, error) {
	if recordKeyLength != len(key) || len(value) < account.AddressLength {
		return nil, fault.ErrNotPermissionRecord
	}

	r := &Record{}
	n := copy(r.Entity[:], key)
	n += copy(r.Address[:], key[n:])
	r.Type = Type(binary.BigEndian.Uint32(key[n:]))

	n = copy(r.Admin[:], value)

	fields := make([]uint64, 5)
	for i := range fields {
		v, count := util.FromVarint64(value[n:])
		if 0 == count {
			return nil, fault.ErrNotPermissionRecord
		}
		fields[i] = v
		n += count
	}
	if n != len(value) {
		return nil, fault.ErrNotPermissionRecord
	}

	r.From = uint32(fields[0])
	r.To = uint32(fields[1])
	r.Timestamp = uint32(fields[2])
	r.Flags = Flags(fields[3])
	r.Offset = int(fields[4]) - 1
	return r, nil
}
