// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"github.com/bitmark-inc/permchain/merkle"
)

// TagType - type code for script elements
type TagType uint64

// enumerate the possible script element types
// this is encoded a Varint64 at start of each element
const (
	// null marks beginning of list - not used as an element type
	NullTag = TagType(iota)

	EntityReferenceTag = TagType(iota) // refer to an entity by short id
	PermissionGrantTag = TagType(iota) // grant or revoke permissions
	AssetGenesisTag    = TagType(iota) // first issue of an asset
	AssetTransferTag   = TagType(iota) // move asset quantities
	AssetFollowOnTag   = TagType(iota) // further issue of an asset
	CachedScriptTag    = TagType(iota) // copies of spent output scripts
	NewEntityTag       = TagType(iota) // entity creation details
	EntityUpdateTag    = TagType(iota) // entity update details
	ItemKeyTag         = TagType(iota) // stream item key
	ApprovalTag        = TagType(iota) // upgrade or filter vote
	RawDataTag         = TagType(iota) // payload
	DataFormatTag      = TagType(iota) // payload format header

	// this item must be last
	InvalidTag = TagType(iota)
)

// Element - one item of a script
type Element interface {
	Tag() TagType
	pack(buffer Packed) Packed
}

// EntityReference - selects the entity for the following element
type EntityReference struct {
	Entity merkle.ShortId `json:"entity"`
}

// PermissionGrant - grant types for the block range from..to
//
// a range with from >= to revokes
type PermissionGrant struct {
	Types     uint32 `json:"types"`
	From      uint32 `json:"from"`
	To        uint32 `json:"to"`
	Timestamp uint32 `json:"timestamp"`
}

// AssetGenesis - quantity issued to the output by its own transaction
type AssetGenesis struct {
	Quantity int64 `json:"quantity"`
}

// AssetQuantity - quantity of one asset
type AssetQuantity struct {
	Asset    merkle.ShortId `json:"asset"`
	Quantity int64          `json:"quantity"`
}

// AssetTransfer - quantities moved to the output
type AssetTransfer struct {
	Quantities []AssetQuantity `json:"quantities"`
}

// AssetFollowOn - quantities newly issued to the output
type AssetFollowOn struct {
	Quantities []AssetQuantity `json:"quantities"`
}

// CachedScriptEntry - the script of the output spent by Input
type CachedScriptEntry struct {
	Input  uint32 `json:"input"`
	Script []byte `json:"script"`
}

// CachedScript - proves knowledge of spent output scripts
type CachedScript struct {
	Entries []CachedScriptEntry `json:"entries"`
}

// NewEntity - creation of an entity
type NewEntity struct {
	Type    EntityType `json:"type"`
	Details Details    `json:"details"`
}

// EntityUpdate - follow-on details for an existing entity
type EntityUpdate struct {
	Type    EntityType `json:"type"`
	Details Details    `json:"details"`
}

// ItemKey - key of a stream item
type ItemKey struct {
	Key []byte `json:"key"`
}

// Approval - approve or disapprove an upgrade or filter
type Approval struct {
	Approve   bool   `json:"approve"`
	Timestamp uint32 `json:"timestamp"`
}

// RawData - payload bytes
type RawData struct {
	Data []byte `json:"data"`
}

// DataFormat - header describing the payload
type DataFormat struct {
	Format   uint8  `json:"format"`
	OffChain bool   `json:"offChain"`
	Salted   bool   `json:"salted"`
	Size     uint64 `json:"size"`
}

// Tag - element type codes
func (EntityReference) Tag() TagType { return EntityReferenceTag }
func (PermissionGrant) Tag() TagType { return PermissionGrantTag }
func (AssetGenesis) Tag() TagType    { return AssetGenesisTag }
func (AssetTransfer) Tag() TagType   { return AssetTransferTag }
func (AssetFollowOn) Tag() TagType   { return AssetFollowOnTag }
func (CachedScript) Tag() TagType    { return CachedScriptTag }
func (NewEntity) Tag() TagType       { return NewEntityTag }
func (EntityUpdate) Tag() TagType    { return EntityUpdateTag }
func (ItemKey) Tag() TagType         { return ItemKeyTag }
func (Approval) Tag() TagType        { return ApprovalTag }
func (RawData) Tag() TagType         { return RawDataTag }
func (DataFormat) Tag() TagType      { return DataFormatTag }

// IsMetadataElement - elements permitted in data carrier outputs
func IsMetadataElement(e Element) bool {
	switch e.Tag() {
	case EntityReferenceTag, CachedScriptTag, NewEntityTag, EntityUpdateTag,
		ItemKeyTag, ApprovalTag, RawDataTag, DataFormatTag:
		return true
	default:
		return false
	}
}
