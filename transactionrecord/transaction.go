// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"github.com/bitmark-inc/permchain/account"
	"github.com/bitmark-inc/permchain/merkle"
)

// Packed - packed records are just a byte slice
type Packed []byte

// ScriptKind - classification of an output script
type ScriptKind uint64

// enumerate the output script classes
const (
	NonStandard = ScriptKind(iota) // no extractable destination
	PubKey      = ScriptKind(iota) // bare public key
	PubKeyHash  = ScriptKind(iota) // single key hash destination
	ScriptHash  = ScriptKind(iota) // single script hash destination
	MultiSig    = ScriptKind(iota) // bare m-of-n multisig
	NullData    = ScriptKind(iota) // data carrier, holds no value

	// this item must be last
	invalidScriptKind = ScriptKind(iota)
)

// String - name of the kind
func (k ScriptKind) String() string {
	switch k {
	case NonStandard:
		return "nonstandard"
	case PubKey:
		return "pubkey"
	case PubKeyHash:
		return "pubkeyhash"
	case ScriptHash:
		return "scripthash"
	case MultiSig:
		return "multisig"
	case NullData:
		return "nulldata"
	default:
		return "invalid"
	}
}

// EntityType - type byte of a registered entity
type EntityType uint8

// entity types; values are part of the wire format
const (
	NoEntity     = EntityType(0x00)
	Asset        = EntityType(0x01)
	Stream       = EntityType(0x02)
	StreamMax    = EntityType(0x0f) // 0x02..0x0f are (pseudo)streams
	Upgrade      = EntityType(0x10)
	Filter       = EntityType(0x11)
	LicenseToken = EntityType(0x12)
	Variable     = EntityType(0x13)

	MaxEntityType = Variable
)

// IsStream - true for streams and pseudo-streams
func (t EntityType) IsStream() bool {
	return t >= Stream && t <= StreamMax
}

// IsAssetLike - entities that are issued as a quantity
func (t EntityType) IsAssetLike() bool {
	return Asset == t || LicenseToken == t
}

// String - name of the type
func (t EntityType) String() string {
	switch {
	case Asset == t:
		return "asset"
	case Stream == t:
		return "stream"
	case t.IsStream():
		return "pseudo-stream"
	case Upgrade == t:
		return "upgrade"
	case Filter == t:
		return "filter"
	case LicenseToken == t:
		return "license-token"
	case Variable == t:
		return "variable"
	default:
		return "unknown"
	}
}

// Transaction - the unpacked transaction
type Transaction struct {
	Coinbase bool     `json:"coinbase"`
	Inputs   []Input  `json:"inputs"`
	Outputs  []Output `json:"outputs"`
}

// OutPoint - reference to a previous output
type OutPoint struct {
	TxId  merkle.Digest `json:"txId"`
	Index uint32        `json:"index"`
}

// Input - spends a previous output
type Input struct {
	Previous        OutPoint `json:"previous"`
	SignatureScript []byte   `json:"signatureScript"`
}

// Output - a value and its locking script
type Output struct {
	Value  int64  `json:"value"`
	Script Script `json:"script"`
}

// Script - the structured form of an output script
//
// Destinations holds the key or script hashes that the output pays
// to, for NullData it is empty. Elements are the ordered metadata
// elements carried by the script.
type Script struct {
	Kind         ScriptKind        `json:"kind"`
	Required     int               `json:"required"`
	Destinations []account.Address `json:"destinations"`
	Elements     []Element         `json:"elements"`
}

// IsMetadata - true for data carrier outputs
func (s *Script) IsMetadata() bool {
	return NullData == s.Kind
}

// Destination - the single destination of a standard script
//
// false for non-standard, multisig and data carrier scripts
func (s *Script) Destination() (account.Address, bool) {
	switch s.Kind {
	case PubKey, PubKeyHash, ScriptHash:
		if 1 == len(s.Destinations) {
			return s.Destinations[0], true
		}
	}
	return account.Address{}, false
}

// TxId - compute the transaction id
func (tx *Transaction) TxId() merkle.Digest {
	return merkle.NewDigest(tx.Pack())
}
