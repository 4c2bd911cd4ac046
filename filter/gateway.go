// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package filter

import (
	"context"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/patrickmn/go-cache"
	lua "github.com/yuin/gopher-lua"

	"github.com/bitmark-inc/permchain/entity"
	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/merkle"
	"github.com/bitmark-inc/permchain/transactionrecord"
)

// the function every filter must define
const entryPoint = "filtertransaction"

// DefaultTimeout - run time allowed to a single filter call
const DefaultTimeout = time.Second

// how long a mempool pass is remembered for the block check
const (
	passedExpiry  = 30 * time.Minute
	passedCleanup = time.Hour
)

// EntityStore - where filter code is found
type EntityStore interface {
	FindEntityByShortId(id merkle.ShortId) (*entity.Record, bool)
}

// ApprovalStore - the admin votes on each filter
type ApprovalStore interface {
	FilterApproved(entity merkle.Digest) bool
}

// Gateway - runs the approved transaction filters in creation order
type Gateway struct {
	sync.Mutex

	log       *logger.L
	entities  EntityStore
	approvals ApprovalStore
	timeout   time.Duration

	active  []merkle.ShortId
	pending []merkle.ShortId

	// active filters created by mempool transactions
	unconfirmed []merkle.ShortId

	// transactions that passed every active filter in the mempool
	passed *cache.Cache
}

// New - create a gateway, a zero timeout selects DefaultTimeout
func New(entities EntityStore, approvals ApprovalStore, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{
		log:       logger.New("filter"),
		entities:  entities,
		approvals: approvals,
		timeout:   timeout,
		passed:    cache.New(passedExpiry, passedCleanup),
	}
}

// Add - register a newly created filter
//
// a filter created in a block waits for Activate
func (g *Gateway) Add(id merkle.ShortId, effectiveImmediately bool) error {
	r, ok := g.entities.FindEntityByShortId(id)
	if !ok {
		return fault.ErrEntityNotFound
	}
	if transactionrecord.Filter != r.Type {
		return fault.ErrNotFilterEntity
	}
	if r.IsStreamFilter() {
		g.log.Debugf("stream filter: %v  not run on transactions", id)
		return nil
	}

	g.Lock()
	defer g.Unlock()

	if contains(g.active, id) || contains(g.pending, id) {
		return nil
	}
	if effectiveImmediately {
		g.active = append(g.active, id)
		g.unconfirmed = append(g.unconfirmed, id)
		g.passed.Flush()
	} else {
		g.pending = append(g.pending, id)
	}
	g.log.Infof("add filter: %v  immediate: %t", id, effectiveImmediately)
	return nil
}

// Activate - make the filters created in the last block effective
func (g *Gateway) Activate() {
	g.Lock()
	defer g.Unlock()

	if 0 == len(g.pending) {
		return
	}
	g.active = append(g.active, g.pending...)
	g.pending = nil
	g.passed.Flush()
	g.log.Infof("active filters: %d", len(g.active))
}

// ClearMemPool - drop the filters created by mempool transactions;
// a block that confirms one adds it again
func (g *Gateway) ClearMemPool() {
	g.Lock()
	defer g.Unlock()

	if 0 == len(g.unconfirmed) {
		return
	}
	active := g.active[:0]
	for _, id := range g.active {
		if !contains(g.unconfirmed, id) {
			active = append(active, id)
		}
	}
	g.active = active
	g.unconfirmed = nil
	g.passed.Flush()
	g.log.Infof("active filters: %d", len(g.active))
}

// Active - the filters currently run, in order
func (g *Gateway) Active() []merkle.ShortId {
	g.Lock()
	defer g.Unlock()

	return append([]merkle.ShortId(nil), g.active...)
}

// RunTxFilters - run each approved filter over a transaction
//
// returns the first rejection reason and the filter that gave it, or
// an empty reason. With onlyOnce a transaction that already passed in
// the mempool is not filtered again.
func (g *Gateway) RunTxFilters(tx *transactionrecord.Transaction, relevant []merkle.ShortId, onlyOnce bool) (string, merkle.ShortId, int) {
	g.Lock()
	defer g.Unlock()

	txId := tx.TxId()
	key := txId.String()
	if onlyOnce {
		if _, found := g.passed.Get(key); found {
			return "", merkle.ShortId{}, 0
		}
	}

	count := 0
	for _, id := range g.active {
		r, ok := g.entities.FindEntityByShortId(id)
		if !ok {
			g.log.Warnf("filter: %v  not found", id)
			continue
		}
		if !g.approvals.FilterApproved(r.TxId) {
			continue
		}

		count += 1
		reason := g.run(r, tx, relevant)
		if "" != reason {
			g.log.Debugf("tx: %v  rejected by filter: %v  reason: %s", txId, id, reason)
			return reason, id, count
		}
	}

	if !onlyOnce {
		g.passed.Set(key, count, cache.DefaultExpiration)
	}
	return "", merkle.ShortId{}, count
}

// run one filter in a fresh interpreter, any failure is a rejection
func (g *Gateway) run(r *entity.Record, tx *transactionrecord.Transaction, relevant []merkle.ShortId) string {
	L := newState()
	defer L.Close()

	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()
	L.SetContext(ctx)

	reason, err := call(L, r.FilterCode(), transactionTable(L, tx, relevant))
	if nil == err {
		return reason
	}
	if context.DeadlineExceeded == ctx.Err() {
		g.log.Warnf("filter: %v  timed out after %s", r.ShortId(), g.timeout)
		return "filter timed out"
	}
	g.log.Debugf("filter: %v  error: %s", r.ShortId(), err)
	return err.Error()
}

// load the code and call its entry point with the transaction
func call(L *lua.LState, code string, tx *lua.LTable) (string, error) {
	if err := L.DoString(code); nil != err {
		return "", err
	}
	fn := L.GetGlobal(entryPoint)
	if lua.LTFunction != fn.Type() {
		return "", fault.ErrFilterEntryPoint
	}

	err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, tx)
	if nil != err {
		return "", err
	}
	result := L.Get(-1)
	L.Pop(1)

	if s, ok := result.(lua.LString); ok {
		return string(s), nil
	}
	return "", nil
}

func contains(ids []merkle.ShortId, id merkle.ShortId) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}
