// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sort"

	cache "github.com/patrickmn/go-cache"
)

// Cache - overlay of the uncommitted writes of an Access
type Cache interface {
	Get(string) (value []byte, deleted bool, found bool)
	Set(int, string, []byte)
	Range(start string, limit string) []Change
	Clear()
}

const (
	dbPut = iota
	dbDelete
)

// Change - one uncommitted write
type Change struct {
	Key     []byte
	Value   []byte
	Deleted bool
}

type dbCache struct {
	cache *cache.Cache
}

type cacheData struct {
	op    int
	value []byte
}

// entries live until the batch is committed or aborted
func newCache() Cache {
	return &dbCache{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (c *dbCache) Get(key string) ([]byte, bool, bool) {
	obj, found := c.cache.Get(key)
	if !found {
		return nil, false, false
	}

	data := obj.(cacheData)
	if dbDelete == data.op {
		return nil, true, true
	}
	return data.value, false, true
}

func (c *dbCache) Set(op int, key string, value []byte) {
	cached := cacheData{
		op:    op,
		value: value,
	}
	c.cache.Set(key, cached, cache.NoExpiration)
}

// Range - changes with start <= key < limit in key order
//
// an empty limit means no upper bound
func (c *dbCache) Range(start string, limit string) []Change {
	changes := []Change(nil)
	for key, item := range c.cache.Items() {
		if key < start || ("" != limit && key >= limit) {
			continue
		}
		data := item.Object.(cacheData)
		changes = append(changes, Change{
			Key:     []byte(key),
			Value:   data.value,
			Deleted: dbDelete == data.op,
		})
	}
	sort.Slice(changes, func(i, j int) bool {
		return string(changes[i].Key) < string(changes[j].Key)
	})
	return changes
}

func (c *dbCache) Clear() {
	c.cache.Flush()
}
