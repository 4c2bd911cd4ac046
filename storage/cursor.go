// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"

	"github.com/syndtr/goleveldb/leveldb/util"
)

// FetchCursor - cursor structure
type FetchCursor struct {
	pool     *PoolHandle
	maxRange util.Range
}

// NewFetchCursor - initialise a cursor to the start of a key range
func (p *PoolHandle) NewFetchCursor() *FetchCursor {
	return &FetchCursor{
		pool: p,
		maxRange: util.Range{
			Start: []byte{p.prefix}, // Start of key range, included in the range
			Limit: p.limit,          // Limit of key range, excluded from the range
		},
	}
}

// Prefix - restrict the cursor to keys beginning with key
func (cursor *FetchCursor) Prefix(key []byte) *FetchCursor {
	r := util.BytesPrefix(cursor.pool.prefixKey(key))
	cursor.maxRange = *r
	return cursor
}

// Map - run a function on all elements in the range in key order
//
// uncommitted writes of an open batch are merged in
func (cursor *FetchCursor) Map(f func(key []byte, value []byte) error) error {
	changes := cursor.pool.dataAccess.Changes(&cursor.maxRange)
	iter := cursor.pool.dataAccess.Iterator(&cursor.maxRange)
	defer iter.Release()

	// emit a change, skipping deletions
	apply := func(c Change) error {
		if c.Deleted {
			return nil
		}
		return f(c.Key[1:], c.Value)
	}

	c := 0
	for iter.Next() {

		// contents of the returned slice must not be modified, and are
		// only valid until the next call to Next
		key := iter.Key()

		for c < len(changes) && bytes.Compare(changes[c].Key, key) < 0 {
			if err := apply(changes[c]); nil != err {
				return err
			}
			c += 1
		}
		if c < len(changes) && bytes.Equal(changes[c].Key, key) {
			if err := apply(changes[c]); nil != err {
				return err
			}
			c += 1
			continue
		}

		dataKey := make([]byte, len(key)-1) // strip the prefix
		copy(dataKey, key[1:])              // ...

		value := iter.Value()
		dataValue := make([]byte, len(value))
		copy(dataValue, value)

		if err := f(dataKey, dataValue); nil != err {
			return err
		}
	}
	if err := iter.Error(); nil != err {
		return err
	}

	for ; c < len(changes); c += 1 {
		if err := apply(changes[c]); nil != err {
			return err
		}
	}
	return nil
}
