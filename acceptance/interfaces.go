// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package acceptance

import (
	"github.com/bitmark-inc/permchain/account"
	"github.com/bitmark-inc/permchain/entity"
	"github.com/bitmark-inc/permchain/merkle"
	"github.com/bitmark-inc/permchain/permission"
	"github.com/bitmark-inc/permchain/transactionrecord"
)

// PermissionStore - the permission ledger operations used by validation
//
// satisfied by *permission.Store
type PermissionStore interface {
	CanConnect(merkle.Digest, account.Address) bool
	CanSend(merkle.Digest, account.Address) bool
	CanReceive(merkle.Digest, account.Address) bool
	CanWrite(merkle.Digest, account.Address) bool
	CanRead(merkle.Digest, account.Address) bool
	CanFilter(merkle.Digest, account.Address) bool
	CanCreate(merkle.Digest, account.Address) bool
	CanIssue(merkle.Digest, account.Address) bool
	CanMine(merkle.Digest, account.Address) bool
	CanAdmin(merkle.Digest, account.Address) bool
	CanActivate(merkle.Digest, account.Address) bool

	CustomLowTypes() permission.Type
	CustomHighTypes() permission.Type
	IsActivateEnough(permission.Type) bool

	SetPermission(entity merkle.Digest, address account.Address, t permission.Type, admin account.Address, from uint32, to uint32, timestamp uint32, flags permission.Flags, offset int) error
	SetApproval(entity merkle.Digest, approve bool, admin account.Address, startBlock uint32, timestamp uint32, flags permission.Flags, offset int) error

	Height() int
	SetCheckPoint() error
	RollBackToCheckPoint()
	Commit() error
	ClearMemPool() error
}

// EntityStore - the entity registry operations used by validation
//
// satisfied by *entity.Store
type EntityStore interface {
	FindEntityByTxId(merkle.Digest) (*entity.Record, bool)
	FindEntityByShortId(merkle.ShortId) (*entity.Record, bool)
	FindEntityByName(string) (*entity.Record, bool)
	FindEntityByRef(string) (*entity.Record, bool)

	InsertEntity(txId merkle.Digest, offset int, entityType transactionrecord.EntityType, details transactionrecord.Details) error
	InsertAsset(txId merkle.Digest, offset int, entityType transactionrecord.EntityType, quantity int64, details transactionrecord.Details, issuers []account.Address) error
	InsertFollowOn(origin merkle.Digest, txId merkle.Digest, offset int, quantity int64, details transactionrecord.Details, issuers []account.Address) error
	GetTotalQuantity(merkle.Digest) (int64, int)

	SetCheckPoint() error
	RollBackToCheckPoint()
	Commit() error
	ClearMemPool() error
}

// FilterGateway - runs the approved user transaction filters
//
// RunTxFilters returns an empty reason when every filter passed,
// otherwise the reason and the filter that rejected; count is the
// number of filters that were run
type FilterGateway interface {
	Add(id merkle.ShortId, effectiveImmediately bool) error
	RunTxFilters(tx *transactionrecord.Transaction, relevant []merkle.ShortId, onlyOnce bool) (reason string, applied merkle.ShortId, count int)
	ClearMemPool()
}

// CustomHook - final chain specific acceptance step
type CustomHook interface {
	Accept(tx *transactionrecord.Transaction, previous PreviousOutputs, offset int, commit bool) (Replay, error)
}

// PreviousOutputs - the outputs spent by a transaction
type PreviousOutputs interface {
	Output(transactionrecord.OutPoint) (*transactionrecord.Output, bool)
}

// Features - read-only chain parameters and protocol feature flags
//
// satisfied by *policy.Parameters
type Features interface {
	CachedInputScript() bool
	PushOnlySignatures() bool
	SighashSingleNeedsOutput() bool
	PerAssetPermissions() bool
	Filters() bool
	RejectUnknownEntityTypes() bool
	StreamFilters() bool
	Variables() bool
	LicenseTokens() bool

	SupportMinerPrecheck() bool
	AnyoneCanReceive() bool
	AnyoneCanReceiveEmpty() bool
	AllowArbitraryOutputs() bool
	AllowMultisigOutputs() bool
	AllowP2SHOutputs() bool
	RequireStandard() bool
	MandatoryFeePerKB() int64
	MaxMetadataElements() int
	DustThreshold() int64
	ProtocolVersion() int
	NodeVersion() int
	SeedNode() (account.Address, bool)
}
