// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package acceptance

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/permission"
	"github.com/bitmark-inc/permchain/transactionrecord"
)

// Replay - what the caller must re-validate after an accepted
// transaction changed permissions or entities
type Replay uint32

// replay bits
const (
	ReplayRequired        = Replay(0x01) // mempool must be re-validated
	ReplayAdminMinerGrant = Replay(0x02) // admin or mine permission changed
)

// Result - the verdict on one transaction
type Result struct {
	Accepted     bool
	Reason       string
	MandatoryFee int64
	Replay       Replay

	Bypass         Bypass
	FiltersApplied int

	// the seed node held connect before this transaction and does
	// not after it
	SeedNodeLostConnect bool
}

// Validator - accepts transactions against a pair of stores
//
// not safe for concurrent use: only one transaction may hold the
// store checkpoints at a time
type Validator struct {
	log         *logger.L
	permissions PermissionStore
	entities    EntityStore
	features    Features
	filters     FilterGateway
	hook        CustomHook

	// time of the chain tip, seconds since the epoch
	tipTime uint32
}

// New - create a validator over the given stores
func New(permissions PermissionStore, entities EntityStore, features Features) *Validator {
	return &Validator{
		log:         logger.New("acceptance"),
		permissions: permissions,
		entities:    entities,
		features:    features,
	}
}

// SetFilterGateway - install the user filter runner, nil disables
func (v *Validator) SetFilterGateway(filters FilterGateway) {
	v.filters = filters
}

// SetCustomHook - install the final acceptance step, nil disables
func (v *Validator) SetCustomHook(hook CustomHook) {
	v.hook = hook
}

// SetTipTime - record the time of the current chain tip
func (v *Validator) SetTipTime(timestamp uint32) {
	v.tipTime = timestamp
}

// TipTime - time of the current chain tip
func (v *Validator) TipTime() uint32 {
	return v.tipTime
}

// ClearMemPool - undo every change made by mempool transactions
//
// call before the transactions of a block are accepted, the block
// then confirms whichever of them it contains
func (v *Validator) ClearMemPool() error {
	if err := v.entities.ClearMemPool(); nil != err {
		return err
	}
	if err := v.permissions.ClearMemPool(); nil != err {
		return err
	}
	if nil != v.filters {
		v.filters.ClearMemPool()
	}
	return nil
}

// checkpoint over both stores, rolled back unless committed
type checkpoint struct {
	v    *Validator
	open bool
	done bool
}

func (v *Validator) newCheckpoint() (*checkpoint, error) {
	if err := v.permissions.SetCheckPoint(); nil != err {
		return nil, err
	}
	if err := v.entities.SetCheckPoint(); nil != err {
		v.permissions.RollBackToCheckPoint()
		return nil, err
	}
	return &checkpoint{v: v, open: true}, nil
}

// release in reverse order of creation
func (c *checkpoint) release() {
	if !c.open || c.done {
		return
	}
	c.v.entities.RollBackToCheckPoint()
	c.v.permissions.RollBackToCheckPoint()
	c.open = false
}

// entities first: a failed entity commit leaves the permission
// checkpoint open for release to roll back
func (c *checkpoint) commit() error {
	if err := c.v.entities.Commit(); nil != err {
		return err
	}
	if err := c.v.permissions.Commit(); nil != err {
		return err
	}
	c.done = true
	return nil
}

// AcceptTransaction - validate a transaction and apply its
// permission and entity changes
//
// offset is the position in the block being connected, or -1 for
// the mempool. With commit false, or on any rejection, every store
// change is rolled back before returning.
func (v *Validator) AcceptTransaction(tx *transactionrecord.Transaction, previous PreviousOutputs, offset int, commit bool) Result {
	ctx := newContext(tx, offset)

	result, err := v.accept(ctx, previous, commit)
	result.Replay |= ctx.replay()
	result.MandatoryFee = ctx.mandatoryFee
	result.Bypass = ctx.bypass
	if nil != err {
		v.log.Debugf("rejected: tx: %v  offset: %d  reason: %s", ctx.txId, offset, err)
		result.Accepted = false
		result.Reason = err.Error()
		return result
	}

	result.Accepted = true
	v.log.Debugf("accepted: tx: %v  offset: %d  commit: %t  replay: 0x%02x", ctx.txId, offset, commit, uint32(result.Replay))
	return result
}

func (v *Validator) accept(ctx *Context, previous PreviousOutputs, commit bool) (Result, error) {
	result := Result{}

	if err := v.resolveInputs(ctx, previous); nil != err {
		return result, err
	}

	seed, hasSeed := v.features.SeedNode()
	seedCouldConnect := hasSeed && v.permissions.CanConnect(permission.Global, seed)

	cp, err := v.newCheckpoint()
	if nil != err {
		v.log.Errorf("checkpoint: tx: %v  error: %s", ctx.txId, err)
		return result, err
	}
	defer cp.release()

	stages := []func(*Context) error{
		v.classifyOutputs,
		v.checkCachedScripts,
		v.processPermissions,
		v.processItems,
		v.processIssuance,
		v.checkMandatoryFee,
		v.checkConservation,
		v.processEntityCreation,
	}
	for _, stage := range stages {
		if err := stage(ctx); nil != err {
			return result, err
		}
	}

	v.checkBypass(ctx)

	if v.shouldRunFilters(ctx) {
		count, err := v.runFilters(ctx)
		result.FiltersApplied = count
		if nil != err {
			return result, err
		}
	}

	if nil != v.hook {
		replay, err := v.hook.Accept(ctx.tx, previous, ctx.offset, commit)
		result.Replay |= replay
		if nil != err {
			return result, err
		}
	}

	if ctx.seedNodeInvolved && seedCouldConnect && !v.permissions.CanConnect(permission.Global, seed) {
		result.SeedNodeLostConnect = true
	}

	if !commit {
		return result, nil
	}

	if err := cp.commit(); nil != err {
		v.log.Errorf("commit: tx: %v  error: %s", ctx.txId, err)
		return result, err
	}

	if result.SeedNodeLostConnect {
		v.log.Warnf("seed node: %v  lost connect permission: tx: %v", seed, ctx.txId)
	}

	// mempool filters take effect immediately
	if nil != ctx.newFilter && nil != v.filters {
		if err := v.filters.Add(*ctx.newFilter, ctx.offset < 0); nil != err {
			v.log.Errorf("filter add: %v  error: %s", *ctx.newFilter, err)
		}
	}
	return result, nil
}

// a coinbase that only pays the miner
func isStandardCoinbase(tx *transactionrecord.Transaction) bool {
	if !tx.Coinbase {
		return false
	}
	for _, out := range tx.Outputs {
		if out.Script.IsMetadata() || 0 != len(out.Script.Elements) {
			return false
		}
	}
	return true
}

func (v *Validator) shouldRunFilters(ctx *Context) bool {
	switch {
	case nil == v.filters, !v.features.Filters():
		return false
	case BypassValid == ctx.bypass:
		return false
	case isStandardCoinbase(ctx.tx):
		return false
	case ctx.licenseTransfer:
		return false
	}
	return true
}

// run the approved user filters over the transaction; a block
// transaction is filtered only once
func (v *Validator) runFilters(ctx *Context) (int, error) {
	relevant := ctx.relevant.ToSlice()
	sort.Slice(relevant, func(i, j int) bool {
		return bytes.Compare(relevant[i][:], relevant[j][:]) < 0
	})

	reason, applied, count := v.filters.RunTxFilters(ctx.tx, relevant, ctx.offset >= 0)
	if "" == reason {
		return count, nil
	}
	return count, fault.FilterError(fmt.Sprintf("The transaction did not pass filter %s: %s", applied, reason))
}
