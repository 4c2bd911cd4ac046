// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package entity

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permchain/account"
	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/merkle"
	"github.com/bitmark-inc/permchain/storage"
	"github.com/bitmark-inc/permchain/transactionrecord"
)

// Store - the entity registry
type Store struct {
	log       *logger.L
	entities  *storage.PoolHandle
	names     *storage.PoolHandle
	shortIds  *storage.PoolHandle
	refs      *storage.PoolHandle
	totals    *storage.PoolHandle
	followOns *storage.PoolHandle
	access    storage.Access
	mempool   *storage.MemPool

	// last confirmed block, -1 before the genesis block
	height int
}

// New - entity store over an open database
func New(db *storage.Database) *Store {
	return &Store{
		log:       logger.New("entity"),
		entities:  db.Pool.Entities,
		names:     db.Pool.EntityNames,
		shortIds:  db.Pool.EntityShortIds,
		refs:      db.Pool.EntityRefs,
		totals:    db.Pool.AssetTotals,
		followOns: db.Pool.FollowOns,
		access:    db.EntitiesAccess(),
		mempool:   storage.NewMemPool(db.EntitiesAccess()),
		height:    -1,
	}
}

// SetHeight - the block that confirmed insertions belong to is height+1
func (s *Store) SetHeight(height int) {
	s.height = height
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

// ClearMemPool - remove every record written by unconfirmed
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

// write through the mempool journal when unconfirmed
func (s *Store) put(pool *storage.PoolHandle, key []byte, value []byte, offset int) {
	if offset < 0 {
		s.mempool.Record(pool, key)
	}
	pool.Put(key, value)
}

// FindEntityByTxId - entity or follow-on record created by txId
func (s *Store) FindEntityByTxId(txId merkle.Digest) (*Record, bool) {
	value := s.entities.Get(txId[:])
	if nil == value {
		return nil, false
	}
	r, err := unpackRecord(txId[:], value)
	if nil != err {
		s.log.Criticalf("corrupt entity record: txId: %v  error: %s", txId, err)
		return nil, false
	}
	return r, true
}

// FindEntityByShortId - entity whose txId ends in the short id
func (s *Store) FindEntityByShortId(id merkle.ShortId) (*Record, bool) {
	return s.findIndexed(s.shortIds, id[:])
}

// FindEntityByName - case insensitive name lookup
func (s *Store) FindEntityByName(name string) (*Record, bool) {
	if "" == name {
		return nil, false
	}
	return s.findIndexed(s.names, []byte(transactionrecord.CanonicalName(name)))
}

// FindEntityByRef - "block-offset-prefix" lookup of a confirmed entity
func (s *Store) FindEntityByRef(ref string) (*Record, bool) {
	key, ok := parseRef(ref)
	if !ok {
		return nil, false
	}
	return s.findIndexed(s.refs, key)
}

// FindEntity - lookup by txId, short id, ref or name
func (s *Store) FindEntity(identifier string) (*Record, bool) {
	if 2*merkle.DigestLength == len(identifier) {
		txId := merkle.Digest{}
		if _, err := fmt.Sscan(identifier, &txId); nil == err {
			return s.FindEntityByTxId(txId)
		}
	}
	if id, err := merkle.ShortIdFromString(identifier); nil == err {
		if r, ok := s.FindEntityByShortId(id); ok {
			return r, ok
		}
	}
	if r, ok := s.FindEntityByRef(identifier); ok {
		return r, ok
	}
	return s.FindEntityByName(identifier)
}

func (s *Store) findIndexed(pool *storage.PoolHandle, key []byte) (*Record, bool) {
	txId := merkle.Digest{}
	value := pool.Get(key)
	if nil == value || nil != merkle.DigestFromBytes(&txId, value) {
		return nil, false
	}
	return s.FindEntityByTxId(txId)
}

// InsertEntity - register a stream, upgrade, filter or variable
func (s *Store) InsertEntity(txId merkle.Digest, offset int, entityType transactionrecord.EntityType, details transactionrecord.Details) error {
	r := &Record{
		TxId:    txId,
		Type:    entityType,
		Details: details,
	}
	return s.insert(r, offset)
}

// InsertAsset - register an asset or license token with its genesis
// quantity and issuers
func (s *Store) InsertAsset(txId merkle.Digest, offset int, entityType transactionrecord.EntityType, quantity int64, details transactionrecord.Details, issuers []account.Address) error {
	r := &Record{
		TxId:     txId,
		Type:     entityType,
		Details:  details,
		Quantity: quantity,
		Issuers:  issuers,
	}
	err := s.insert(r, offset)
	if nil != err {
		return err
	}
	s.putTotal(txId, quantity, 0, offset)
	return nil
}

// InsertFollowOn - record a follow-on issue of an asset or an update
// of a variable
func (s *Store) InsertFollowOn(origin merkle.Digest, txId merkle.Digest, offset int, quantity int64, details transactionrecord.Details, issuers []account.Address) error {
	entity, ok := s.FindEntityByTxId(origin)
	if !ok || entity.IsFollowOn() {
		return fault.ErrEntityNotFound
	}
	if err := details.Validate(); nil != err {
		return err
	}
	if s.entities.Has(txId[:]) {
		return fault.ErrDuplicateEntity
	}

	r := &Record{
		TxId:     txId,
		Type:     entity.Type,
		Details:  details,
		Quantity: quantity,
		Origin:   origin,
		Issuers:  issuers,
	}
	s.setPosition(r, offset)
	s.put(s.entities, txId[:], r.pack(), offset)

	total, index := s.GetTotalQuantity(origin)
	index += 1
	s.putTotal(origin, total+quantity, index, offset)
	s.put(s.followOns, followOnKey(origin, index), txId[:], offset)

	s.log.Debugf("follow-on: entity: %v  txId: %v  quantity: %d  index: %d", origin, txId, quantity, index)
	return nil
}

// GetTotalQuantity - total issued so far and the index of the last
// issue, zero for the genesis
func (s *Store) GetTotalQuantity(txId merkle.Digest) (int64, int) {
	buffer := s.totals.Get(txId[:])
	if len(buffer) < 16 {
		return 0, 0
	}
	total := int64(binary.BigEndian.Uint64(buffer[:8]))
	index := int(binary.BigEndian.Uint64(buffer[8:16]))
	return total, index
}

// FollowOns - follow-on records of an entity in chain order
func (s *Store) FollowOns(origin merkle.Digest) []*Record {
	result := []*Record(nil)
	_ = s.followOns.NewFetchCursor().Prefix(origin[:]).Map(func(key []byte, value []byte) error {
		txId := merkle.Digest{}
		if nil != merkle.DigestFromBytes(&txId, value) {
			return nil
		}
		if r, ok := s.FindEntityByTxId(txId); ok {
			result = append(result, r)
		}
		return nil
	})
	return result
}

// Latest - the most recent details of an entity
func (s *Store) Latest(origin merkle.Digest) (*Record, bool) {
	_, index := s.GetTotalQuantity(origin)
	if 0 != index {
		value := s.followOns.Get(followOnKey(origin, index))
		txId := merkle.Digest{}
		if nil == merkle.DigestFromBytes(&txId, value) {
			return s.FindEntityByTxId(txId)
		}
	}
	return s.FindEntityByTxId(origin)
}

func (s *Store) insert(r *Record, offset int) error {
	if err := r.Details.Validate(); nil != err {
		return err
	}
	if s.entities.Has(r.TxId[:]) {
		return fault.ErrDuplicateEntity
	}
	id := r.TxId.ShortId()
	if s.shortIds.Has(id[:]) {
		return fault.ErrDuplicateEntity
	}
	name := transactionrecord.CanonicalName(r.Name())
	if "" != name && s.names.Has([]byte(name)) {
		return fault.ErrDuplicateEntity
	}

	s.setPosition(r, offset)

	s.put(s.entities, r.TxId[:], r.pack(), offset)
	s.put(s.shortIds, id[:], r.TxId[:], offset)
	if "" != name {
		s.put(s.names, []byte(name), r.TxId[:], offset)
	}
	if ref := r.Ref(); "" != ref {
		key, _ := parseRef(ref)
		s.put(s.refs, key, r.TxId[:], offset)
	}

	s.log.Debugf("insert: type: %s  txId: %v  name: %q  ref: %q", r.Type, r.TxId, r.Name(), r.Ref())
	return nil
}

// confirmed records belong to the next block
func (s *Store) setPosition(r *Record, offset int) {
	if offset < 0 {
		r.Block = -1
		r.Offset = -1
		return
	}
	r.Block = s.height + 1
	r.Offset = offset
}

func (s *Store) putTotal(txId merkle.Digest, total int64, index int, offset int) {
	buffer := make([]byte, 16)
	binary.BigEndian.PutUint64(buffer[:8], uint64(total))
	binary.BigEndian.PutUint64(buffer[8:], uint64(index))
	s.put(s.totals, txId[:], buffer, offset)
}

func followOnKey(origin merkle.Digest, index int) []byte {
	key := make([]byte, merkle.DigestLength+4)
	copy(key, origin[:])
	binary.BigEndian.PutUint32(key[merkle.DigestLength:], uint32(index))
	return key
}

// block(4) ++ offset(4) ++ prefix(2), all big endian
func parseRef(ref string) ([]byte, bool) {
	parts := strings.Split(ref, "-")
	if 3 != len(parts) {
		return nil, false
	}
	values := [3]uint64{}
	limits := [3]int{32, 32, 16}
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, limits[i])
		if nil != err {
			return nil, false
		}
		values[i] = v
	}
	key := make([]byte, 10)
	binary.BigEndian.PutUint32(key[0:4], uint32(values[0]))
	binary.BigEndian.PutUint32(key[4:8], uint32(values[1]))
	binary.BigEndian.PutUint16(key[8:10], uint16(values[2]))
	return key, true
}
