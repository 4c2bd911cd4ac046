// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package permission

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permchain/account"
	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/merkle"
	"github.com/bitmark-inc/permchain/storage"
)

// Global - the entity used for chain wide permissions
var Global = merkle.Digest{}

// Options - chain parameters affecting permission queries
type Options struct {
	AnyoneCanConnect  bool
	AnyoneCanSend     bool
	AnyoneCanReceive  bool
	AnyoneCanIssue    bool
	AnyoneCanCreate   bool
	AnyoneCanMine     bool
	AnyoneCanActivate bool
	AnyoneCanAdmin    bool
	CustomPermissions bool
}

// Store - the permission ledger
type Store struct {
	log       *logger.L
	options   Options
	records   *storage.PoolHandle
	approvals *storage.PoolHandle
	access    storage.Access
	mempool   *storage.MemPool

	// last confirmed block, -1 before the genesis block
	height int
}

// New - permission store over an open database
func New(db *storage.Database, options Options) *Store {
	return &Store{
		log:       logger.New("permission"),
		options:   options,
		records:   db.Pool.Permissions,
		approvals: db.Pool.Approvals,
		access:    db.PermissionsAccess(),
		mempool:   storage.NewMemPool(db.PermissionsAccess()),
		height:    -1,
	}
}

// SetHeight - set the current chain height
func (s *Store) SetHeight(height int) {
	s.height = height
}

// Height - the current chain height
func (s *Store) Height() int {
	return s.height
}

// SetCheckPoint - start holding changes so they can be rolled back
func (s *Store) SetCheckPoint() error {
	return s.access.Begin()
}

// RollBackToCheckPoint - discard every change since the checkpoint
func (s *Store) RollBackToCheckPoint() {
	s.access.Abort()
	s.mempool.Abort()
}

// Commit - keep every change since the checkpoint
func (s *Store) Commit() error {
	err := s.access.Commit()
	if nil != err {
		s.log.Errorf("commit error: %s", err)
		s.mempool.Abort()
		return err
	}
	s.mempool.Commit()
	return nil
}

// ClearMemPool - drop every record and vote written by unconfirmed
// transactions; call before applying a block
func (s *Store) ClearMemPool() error {
	n := s.mempool.Size()
	if err := s.mempool.Clear(); nil != err {
		s.log.Errorf("clear mempool error: %s", err)
		return err
	}
	if n > 0 {
		s.log.Debugf("cleared mempool: keys: %d", n)
	}
	return nil
}

// unconfirmed writes are journalled so ClearMemPool can undo them
func (s *Store) put(pool *storage.PoolHandle, key []byte, value []byte, offset int) {
	if offset < 0 {
		s.mempool.Record(pool, key)
	}
	pool.Put(key, value)
}

// Get - the stored record for a single permission bit
func (s *Store) Get(entity merkle.Digest, address account.Address, t Type) (*Record, bool) {
	value := s.records.Get(recordKey(entity, address, t))
	if nil == value {
		return nil, false
	}
	r, err := unpackRecord(recordKey(entity, address, t), value)
	if nil != err {
		s.log.Criticalf("corrupt permission record: entity: %v  address: %v  type: %s", entity, address, t)
		return nil, false
	}
	return r, true
}

// Records - every record held by an address for an entity
func (s *Store) Records(entity merkle.Digest, address account.Address) ([]*Record, error) {
	prefix := recordPrefix(entity, address)
	result := []*Record(nil)
	err := s.records.NewFetchCursor().Prefix(prefix).Map(func(key []byte, value []byte) error {
		r, err := unpackRecord(key, value)
		if nil != err {
			return err
		}
		result = append(result, r)
		return nil
	})
	return result, err
}

// true if any bit of t is active for the address
func (s *Store) has(entity merkle.Digest, address account.Address, t Type) bool {
	for _, bit := range t.Bits() {
		r, ok := s.Get(entity, address, bit)
		if ok && r.IsActive(s.height) {
			return true
		}
	}
	return false
}

// CanConnect - connect, or any of admin, activate or mine
func (s *Store) CanConnect(entity merkle.Digest, address account.Address) bool {
	if Global == entity && s.options.AnyoneCanConnect {
		return true
	}
	return s.has(entity, address, Connect|Admin|Activate|Mine)
}

// CanSend - send, or any of issue, create, admin or activate
func (s *Store) CanSend(entity merkle.Digest, address account.Address) bool {
	if Global == entity && s.options.AnyoneCanSend {
		return true
	}
	return s.has(entity, address, Send|Issue|Create|Admin|Activate)
}

// CanReceive - receive, or any of admin or activate
func (s *Store) CanReceive(entity merkle.Digest, address account.Address) bool {
	if Global == entity && s.options.AnyoneCanReceive {
		return true
	}
	return s.has(entity, address, Receive|Admin|Activate)
}

func (s *Store) CanWrite(entity merkle.Digest, address account.Address) bool {
	return s.has(entity, address, Write)
}

func (s *Store) CanRead(entity merkle.Digest, address account.Address) bool {
	return s.has(entity, address, Read)
}

func (s *Store) CanFilter(entity merkle.Digest, address account.Address) bool {
	return s.has(entity, address, Filter)
}

func (s *Store) CanCreate(entity merkle.Digest, address account.Address) bool {
	if Global == entity && s.options.AnyoneCanCreate {
		return true
	}
	return s.has(entity, address, Create)
}

func (s *Store) CanIssue(entity merkle.Digest, address account.Address) bool {
	if Global == entity && s.options.AnyoneCanIssue {
		return true
	}
	return s.has(entity, address, Issue)
}

func (s *Store) CanMine(entity merkle.Digest, address account.Address) bool {
	if Global == entity && s.options.AnyoneCanMine {
		return true
	}
	return s.has(entity, address, Mine)
}

// CanAdmin - always true before the genesis block is confirmed
func (s *Store) CanAdmin(entity merkle.Digest, address account.Address) bool {
	if -1 == s.height {
		return true
	}
	if Global == entity && s.options.AnyoneCanAdmin {
		return true
	}
	return s.has(entity, address, Admin)
}

// CanActivate - activate or admin
func (s *Store) CanActivate(entity merkle.Digest, address account.Address) bool {
	if Global == entity && s.options.AnyoneCanActivate {
		return true
	}
	if s.has(entity, address, Activate) {
		return true
	}
	return s.CanAdmin(entity, address)
}

// CanCustom - a custom permission type
func (s *Store) CanCustom(entity merkle.Digest, address account.Address, t Type) bool {
	return s.has(entity, address, t)
}

// CustomLowTypes - custom types granted with the low priority types
func (s *Store) CustomLowTypes() Type {
	if s.options.CustomPermissions {
		return CustomLow
	}
	return None
}

// CustomHighTypes - custom types granted with the high priority types
func (s *Store) CustomHighTypes() Type {
	if s.options.CustomPermissions {
		return CustomHigh
	}
	return None
}

// IsActivateEnough - true if holding activate allows granting t
func (s *Store) IsActivateEnough(t Type) bool {
	if 0 != t&(Admin|Issue|Mine|Activate|Create|Filter) {
		return false
	}
	if 0 != t&s.CustomHighTypes() {
		return false
	}
	return true
}

// SetPermission - write a record for each bit of t
//
// the admin must be able to admin the entity, or activate it when
// that is enough for t; entity genesis records of non-global
// entities are exempt
func (s *Store) SetPermission(entity merkle.Digest, address account.Address, t Type, admin account.Address, from uint32, to uint32, timestamp uint32, flags Flags, offset int) error {
	if Global == entity || 0 == flags&FlagEntityGenesis {
		if !s.CanAdmin(entity, admin) {
			if !s.IsActivateEnough(t) || !s.CanActivate(entity, admin) {
				return fault.ErrNotAllowed
			}
		}
	}

	for _, bit := range t.Bits() {
		r := &Record{
			Entity:    entity,
			Address:   address,
			Type:      bit,
			Admin:     admin,
			From:      from,
			To:        to,
			Timestamp: timestamp,
			Flags:     flags,
			Offset:    offset,
		}
		s.put(s.records, recordKey(entity, address, bit), r.pack(), offset)
	}

	s.log.Debugf("set: entity: %v  address: %v  type: %s  from: %d  to: %d", entity, address, t, from, to)
	return nil
}
