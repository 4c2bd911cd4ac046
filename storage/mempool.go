// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

// MemPool - undo journal for writes made by unconfirmed transactions
//
// each key keeps the value it had before the first mempool write, so
// Clear restores the confirmed state whatever order the mempool
// writes came in. Clear must run before a block's transactions are
// applied, otherwise block writes to the same keys would be undone.
type MemPool struct {
	access  Access
	pending []undo
	journal []undo
	seen    map[string]struct{}
}

type undo struct {
	pool  *PoolHandle
	key   []byte
	value []byte // nil: key was absent
}

// NewMemPool - journal for the pools of one database
func NewMemPool(access Access) *MemPool {
	return &MemPool{
		access: access,
		seen:   make(map[string]struct{}),
	}
}

// Record - note the value of a key before a mempool write to it
func (m *MemPool) Record(pool *PoolHandle, key []byte) {
	u := undo{
		pool: pool,
		key:  append([]byte(nil), key...),
	}
	if value := pool.Get(key); nil != value {
		u.value = append([]byte(nil), value...)
	}
	m.pending = append(m.pending, u)

	// outside a checkpoint the write is immediate
	if !m.access.InUse() {
		m.Commit()
	}
}

// Commit - the checkpoint was committed, keep its undo entries
func (m *MemPool) Commit() {
	for _, u := range m.pending {
		k := string(u.pool.prefixKey(u.key))
		if _, ok := m.seen[k]; ok {
			continue
		}
		m.seen[k] = struct{}{}
		m.journal = append(m.journal, u)
	}
	m.pending = nil
}

// Abort - the checkpoint was rolled back, forget its undo entries
func (m *MemPool) Abort() {
	m.pending = nil
}

// Size - number of keys written by the mempool
func (m *MemPool) Size() int {
	return len(m.journal)
}

// Clear - restore every key written by the mempool in one batch
func (m *MemPool) Clear() error {
	if 0 == len(m.journal) {
		return nil
	}
	if err := m.access.Begin(); nil != err {
		return err
	}
	for i := len(m.journal) - 1; i >= 0; i -= 1 {
		u := m.journal[i]
		if nil == u.value {
			u.pool.Delete(u.key)
		} else {
			u.pool.Put(u.key, u.value)
		}
	}
	if err := m.access.Commit(); nil != err {
		return err
	}
	m.journal = nil
	m.seen = make(map[string]struct{})
	return nil
}
