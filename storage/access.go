// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permchain/fault"
)

// Access - checkpointed access to one database
//
// between Begin and Commit/Abort every write is held in a batch and
// a cache overlay so reads see it; outside that writes go straight
// to the database
type Access interface {
	Abort()
	Begin() error
	Changes(*ldb_util.Range) []Change
	Commit() error
	Delete([]byte)
	DumpTx() []byte
	Get([]byte) ([]byte, error)
	Has([]byte) (bool, error)
	InUse() bool
	Iterator(*ldb_util.Range) iterator.Iterator
	Put([]byte, []byte)
}

// AccessData - the Access for a LevelDB database
type AccessData struct {
	sync.Mutex
	inUse bool
	db    *leveldb.DB
	batch *leveldb.Batch
	cache Cache
}

func newDA(db *leveldb.DB, batch *leveldb.Batch, cache Cache) Access {
	return &AccessData{
		inUse: false,
		db:    db,
		batch: batch,
		cache: cache,
	}
}

// Begin - start holding writes; only one batch may be open at a time
func (d *AccessData) Begin() error {
	d.Lock()
	defer d.Unlock()

	if d.inUse {
		return fault.ErrCheckpointInUse
	}

	d.inUse = true
	return nil
}

func (d *AccessData) Put(key []byte, value []byte) {
	d.Lock()
	defer d.Unlock()

	if !d.inUse {
		err := d.db.Put(key, value, nil)
		logger.PanicIfError("access.Put", err)
		return
	}
	d.cache.Set(dbPut, string(key), value)
	d.batch.Put(key, value)
}

func (d *AccessData) Delete(key []byte) {
	d.Lock()
	defer d.Unlock()

	if !d.inUse {
		err := d.db.Delete(key, nil)
		logger.PanicIfError("access.Delete", err)
		return
	}
	d.cache.Set(dbDelete, string(key), nil)
	d.batch.Delete(key)
}

// Commit - write the batch and close it
func (d *AccessData) Commit() error {
	d.Lock()
	defer d.Unlock()

	err := d.db.Write(d.batch, nil)
	d.batch.Reset()
	d.cache.Clear()
	d.inUse = false
	return err
}

// Abort - discard the batch and close it
func (d *AccessData) Abort() {
	d.Lock()
	defer d.Unlock()

	d.batch.Reset()
	d.cache.Clear()
	d.inUse = false
}

func (d *AccessData) DumpTx() []byte {
	return d.batch.Dump()
}

// Get - the value with any uncommitted write applied
func (d *AccessData) Get(key []byte) ([]byte, error) {
	val, deleted, found := d.cache.Get(string(key))
	if deleted {
		return nil, leveldb.ErrNotFound
	}
	if found {
		return val, nil
	}
	return d.db.Get(key, nil)
}

func (d *AccessData) Has(key []byte) (bool, error) {
	_, deleted, found := d.cache.Get(string(key))
	if deleted {
		return false, nil
	}
	if found {
		return true, nil
	}
	return d.db.Has(key, nil)
}

// Iterator - committed data only, combine with Changes to see the batch
func (d *AccessData) Iterator(searchRange *ldb_util.Range) iterator.Iterator {
	return d.db.NewIterator(searchRange, nil)
}

// Changes - uncommitted writes within the range in key order
func (d *AccessData) Changes(searchRange *ldb_util.Range) []Change {
	return d.cache.Range(string(searchRange.Start), string(searchRange.Limit))
}

func (d *AccessData) InUse() bool {
	return d.inUse
}
