// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package entity

import (
	"fmt"

	"github.com/bitmark-inc/permchain/account"
	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/merkle"
	"github.com/bitmark-inc/permchain/transactionrecord"
	"github.com/bitmark-inc/permchain/util"
)

// Record - a registered entity or one of its follow-on updates
type Record struct {
	TxId    merkle.Digest                `json:"txId"`
	Type    transactionrecord.EntityType `json:"type"`
	Details transactionrecord.Details    `json:"details"`

	// position; block is -1 and offset is -1 while unconfirmed
	Block  int `json:"block"`
	Offset int `json:"offset"`

	// quantity issued by this record
	Quantity int64 `json:"quantity"`

	// creation txId for follow-ons, zero for the entity itself
	Origin merkle.Digest `json:"origin"`

	Issuers []account.Address `json:"issuers"`
}

// IsFollowOn - true for follow-on issues and updates
func (r *Record) IsFollowOn() bool {
	return !r.Origin.IsZero()
}

// EntityTxId - the creation txId of the entity this record belongs to
func (r *Record) EntityTxId() merkle.Digest {
	if r.IsFollowOn() {
		return r.Origin
	}
	return r.TxId
}

// ShortId - short id of the entity
func (r *Record) ShortId() merkle.ShortId {
	return r.EntityTxId().ShortId()
}

// Name - the entity name, may be empty
func (r *Record) Name() string {
	return r.Details.Name()
}

// Ref - the "block-offset-prefix" reference, empty while unconfirmed
func (r *Record) Ref() string {
	if r.Block < 0 || r.Offset < 0 {
		return ""
	}
	return fmt.Sprintf("%d-%d-%d", r.Block, r.Offset, refPrefix(r.TxId))
}

func (r *Record) AllowFollowOns() bool {
	return r.Details.Flag(transactionrecord.ParamFollowOns)
}

func (r *Record) AnyoneCanWrite() bool {
	return r.Details.Flag(transactionrecord.ParamAnyoneCanWrite)
}

// Multiple - raw units per display unit, default one
func (r *Record) Multiple() int64 {
	m, ok := r.Details.Uint32(transactionrecord.ParamMultiple)
	if !ok || 0 == m {
		return 1
	}
	return int64(m)
}

// Restrictions - stream restriction bits
func (r *Record) Restrictions() uint8 {
	v, ok := r.Details.Get(transactionrecord.ParamRestrictions)
	if !ok || 0 == len(v) {
		return 0
	}
	return v[0]
}

// PermissionRestrictions - per entity permission types that are
// enforced, e.g. send and receive for restricted assets
func (r *Record) PermissionRestrictions() uint32 {
	m, _ := r.Details.Uint32(transactionrecord.ParamPermissions)
	return m
}

func (r *Record) UpgradeStartBlock() uint32 {
	b, _ := r.Details.Uint32(transactionrecord.ParamStartBlock)
	return b
}

func (r *Record) FilterCode() string {
	code, _ := r.Details.Get(transactionrecord.ParamFilterCode)
	return string(code)
}

func (r *Record) IsStreamFilter() bool {
	v, ok := r.Details.Get(transactionrecord.ParamFilterType)
	return ok && 1 == len(v) && transactionrecord.StreamFilter == v[0]
}

// Value - JSON value of a variable
func (r *Record) Value() ([]byte, bool) {
	return r.Details.Get(transactionrecord.ParamJSONValue)
}

// reference prefix from the first two bytes of the txId
func refPrefix(txId merkle.Digest) int {
	return int(txId[0]) | int(txId[1])<<8
}

// pack the value part of the record; the key holds the txId
func (r *Record) pack() []byte {
	buffer := util.ToVarint64(uint64(r.Type))
	buffer = append(buffer, r.Details.Pack()...)
	buffer = util.AppendVarint64(buffer, uint64(r.Block+1))
	buffer = util.AppendVarint64(buffer, uint64(r.Offset+1))
	buffer = util.AppendVarint64(buffer, uint64(r.Quantity))
	buffer = append(buffer, r.Origin[:]...)
	buffer = util.AppendVarint64(buffer, uint64(len(r.Issuers)))
	for _, a := range r.Issuers {
		buffer = append(buffer, a[:]...)
	}
	return buffer
}

func unpackRecord(txId []byte, buffer []byte) (r *Record, err error) {
	defer func() {
		if e := recover(); nil != e {
			err = fault.ErrNotEntityRecord
		}
	}()

	if merkle.DigestLength != len(txId) {
		return nil, fault.ErrNotEntityRecord
	}

	r = &Record{}
	copy(r.TxId[:], txId)

	n := 0
	next := func() uint64 {
		v, count := util.FromVarint64(buffer[n:])
		if 0 == count {
			panic("truncated")
		}
		n += count
		return v
	}

	r.Type = transactionrecord.EntityType(next())

	// details are length delimited by their own count
	start := n
	count := int(next())
	for i := 0; i < count; i += 1 {
		n += 1 // code
		length := int(next())
		n += length
	}
	r.Details, err = transactionrecord.UnpackDetails(buffer[start:n])
	if nil != err {
		return nil, fault.ErrNotEntityRecord
	}

	r.Block = int(next()) - 1
	r.Offset = int(next()) - 1
	r.Quantity = int64(next())
	n += copy(r.Origin[:], buffer[n:n+merkle.DigestLength])

	issuers := int(next())
	for i := 0; i < issuers; i += 1 {
		a := account.Address{}
		n += copy(a[:], buffer[n:n+account.AddressLength])
		r.Issuers = append(r.Issuers, a)
	}
	if n != len(buffer) {
		return nil, fault.ErrNotEntityRecord
	}
	return r, nil
}
