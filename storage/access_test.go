// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_storage "github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/bitmark-inc/permchain/fault"
)

const (
	defaultKey = "key"
)

var (
	defaultValue = []byte{'a'}
)

func newMemoryDB(t *testing.T) *leveldb.DB {
	db, err := leveldb.Open(ldb_storage.NewMemStorage(), nil)
	if nil != err {
		t.Fatalf("open memory db error: %s", err)
	}
	return db
}

func newMockCache(t *testing.T) (*MockCache, *gomock.Controller) {
	ctl := gomock.NewController(t)
	return NewMockCache(ctl), ctl
}

func setupDummyMockCache(t *testing.T) (*MockCache, *gomock.Controller) {
	mockCache, ctl := newMockCache(t)

	mockCache.EXPECT().Get(gomock.Any()).Return(nil, false, false).AnyTimes()
	mockCache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockCache.EXPECT().Clear().AnyTimes()

	return mockCache, ctl
}

func TestBeginShouldErrorWhenAlreadyInTransaction(t *testing.T) {
	mc, ctl := setupDummyMockCache(t)
	defer ctl.Finish()

	db := newMemoryDB(t)
	defer db.Close()
	da := newDA(db, new(leveldb.Batch), mc)

	err := da.Begin()
	assert.Nil(t, err, "first time Begin should not error")

	err = da.Begin()
	assert.Equal(t, fault.ErrCheckpointInUse, err, "second time Begin should return error")
}

func TestCommitUnlocksInUse(t *testing.T) {
	mc, ctl := setupDummyMockCache(t)
	defer ctl.Finish()

	db := newMemoryDB(t)
	defer db.Close()
	da := newDA(db, new(leveldb.Batch), mc)

	_ = da.Begin()
	_ = da.Commit()

	assert.False(t, da.InUse(), "commit did not reset in use")
	err := da.Begin()
	assert.Nil(t, err, "Begin after Commit")
}

func TestCommitResetsBatch(t *testing.T) {
	mc, ctl := setupDummyMockCache(t)
	defer ctl.Finish()

	db := newMemoryDB(t)
	defer db.Close()
	da := newDA(db, new(leveldb.Batch), mc)

	_ = da.Begin()
	da.Put([]byte(defaultKey), defaultValue)
	assert.NotEqual(t, 0, len(da.DumpTx()), "batch should hold the put")

	_ = da.Commit()
	assert.Equal(t, 0, len(da.DumpTx()), "Commit did not reset batch")
}

func TestCommitWriteToDB(t *testing.T) {
	mc, ctl := setupDummyMockCache(t)
	defer ctl.Finish()

	db := newMemoryDB(t)
	defer db.Close()
	da := newDA(db, new(leveldb.Batch), mc)

	_ = da.Begin()
	da.Put([]byte(defaultKey), defaultValue)
	_ = da.Commit()

	actual, err := db.Get([]byte(defaultKey), nil)
	assert.Nil(t, err, "db get")
	assert.Equal(t, defaultValue, actual, "commit not write to db")
}

func TestPutWritesCacheAndBatch(t *testing.T) {
	mc, ctl := newMockCache(t)
	defer ctl.Finish()

	db := newMemoryDB(t)
	defer db.Close()
	da := newDA(db, new(leveldb.Batch), mc)

	mc.EXPECT().Set(dbPut, defaultKey, defaultValue).Times(1)
	mc.EXPECT().Set(dbDelete, defaultKey, gomock.Nil()).Times(1)

	_ = da.Begin()
	da.Put([]byte(defaultKey), defaultValue)
	da.Delete([]byte(defaultKey))

	has, _ := db.Has([]byte(defaultKey), nil)
	assert.False(t, has, "write reached db before commit")
}

func TestPutWithoutBeginWritesThrough(t *testing.T) {
	mc, ctl := newMockCache(t)
	defer ctl.Finish()

	db := newMemoryDB(t)
	defer db.Close()
	da := newDA(db, new(leveldb.Batch), mc)

	// no cache calls expected
	da.Put([]byte(defaultKey), defaultValue)

	actual, err := db.Get([]byte(defaultKey), nil)
	assert.Nil(t, err, "db get")
	assert.Equal(t, defaultValue, actual, "direct put")
}

func TestGetReadsCacheFirst(t *testing.T) {
	mc, ctl := newMockCache(t)
	defer ctl.Finish()

	db := newMemoryDB(t)
	defer db.Close()
	_ = db.Put([]byte(defaultKey), []byte("db"), nil)
	da := newDA(db, new(leveldb.Batch), mc)

	mc.EXPECT().Get(defaultKey).Return(defaultValue, false, true).Times(1)
	actual, err := da.Get([]byte(defaultKey))
	assert.Nil(t, err, "cache get")
	assert.Equal(t, defaultValue, actual, "cached value")

	mc.EXPECT().Get(defaultKey).Return(nil, true, true).Times(2)
	_, err = da.Get([]byte(defaultKey))
	assert.Equal(t, leveldb.ErrNotFound, err, "deleted in cache")
	has, _ := da.Has([]byte(defaultKey))
	assert.False(t, has, "deleted key has")

	mc.EXPECT().Get(defaultKey).Return(nil, false, false).Times(1)
	actual, _ = da.Get([]byte(defaultKey))
	assert.Equal(t, []byte("db"), actual, "db value")
}

func TestAbortDiscards(t *testing.T) {
	db := newMemoryDB(t)
	defer db.Close()
	da := newDA(db, new(leveldb.Batch), newCache())

	_ = da.Begin()
	da.Put([]byte(defaultKey), defaultValue)

	actual, err := da.Get([]byte(defaultKey))
	assert.Nil(t, err, "uncommitted get")
	assert.Equal(t, defaultValue, actual, "uncommitted value visible")

	da.Abort()

	_, err = da.Get([]byte(defaultKey))
	assert.Equal(t, leveldb.ErrNotFound, err, "aborted value")
	assert.False(t, da.InUse(), "abort did not reset in use")
}

func TestCacheRange(t *testing.T) {
	c := newCache()
	c.Set(dbPut, "b2", []byte("2"))
	c.Set(dbPut, "a1", []byte("1"))
	c.Set(dbDelete, "b1", nil)
	c.Set(dbPut, "c1", []byte("3"))

	changes := c.Range("b", "c")
	assert.Equal(t, []Change{
		{Key: []byte("b1"), Deleted: true},
		{Key: []byte("b2"), Value: []byte("2")},
	}, changes, "range")

	assert.Equal(t, 4, len(c.Range("", "")), "unbounded")

	c.Clear()
	_, _, found := c.Get("a1")
	assert.False(t, found, "cleared")
}
