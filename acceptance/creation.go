// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package acceptance

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/bitmark-inc/permchain/account"
	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/permission"
	"github.com/bitmark-inc/permchain/transactionrecord"
)

// grants every opener receives on a new entity
func defaultGrants(t transactionrecord.EntityType) permission.Type {
	switch t {
	case transactionrecord.Stream, transactionrecord.Filter:
		return permission.Admin | permission.Activate | permission.Write | permission.Read
	default:
		return permission.None
	}
}

// create a stream, upgrade or filter
//
// reads: newEntity, inputs
// writes: newFilter, fullReplay, relevant
func (v *Validator) processEntityCreation(ctx *Context) error {
	ne := ctx.newEntity
	if nil == ne {
		return nil
	}
	switch ne.entityType {
	case transactionrecord.Stream, transactionrecord.Upgrade, transactionrecord.Filter:
	default:
		return nil
	}

	// upgrades and transaction filters change the chain rules
	needsAdmin := transactionrecord.Upgrade == ne.entityType
	if transactionrecord.Filter == ne.entityType {
		needsAdmin = !(v.features.StreamFilters() && isStreamFilter(ne.details))
	}

	seen := mapset.NewThreadUnsafeSet[account.Address]()
	openers := []account.Address(nil)
	for i, in := range ctx.inputs {
		if !in.hasDestination || !ctx.signs(i, ne.output) {
			continue
		}
		if !v.permissions.CanCreate(permission.Global, in.destination) {
			continue
		}
		if needsAdmin && !v.permissions.CanAdmin(permission.Global, in.destination) {
			continue
		}
		if seen.Add(in.destination) {
			openers = append(openers, in.destination)
		}
	}
	if 0 == len(openers) {
		return fault.ErrInputsNotValidCreator
	}

	ctx.fullReplay = true

	if err := v.insertEntity(ctx, ne.entityType, ne.details); nil != err {
		return err
	}

	genesisRecord := transactionrecord.Upgrade != ne.entityType
	if err := v.grantEntityGenesis(ctx, ne.details, openers, defaultGrants(ne.entityType), genesisRecord); nil != err {
		v.log.Errorf("entity grants: tx: %v  error: %s", ctx.txId, err)
		return fault.ErrCannotUpdateEntityGrants
	}

	if transactionrecord.Filter == ne.entityType {
		id := ctx.txId.ShortId()
		ctx.newFilter = &id
	}

	v.log.Debugf("create: %s: %v  name: %q  openers: %d", ne.entityType, ctx.txId, ne.details.Name(), len(openers))
	return nil
}

func (v *Validator) insertEntity(ctx *Context, t transactionrecord.EntityType, details transactionrecord.Details) error {
	err := v.entities.InsertEntity(ctx.txId, ctx.offset, t, details)
	switch {
	case nil == err:
	case fault.ErrDuplicateEntity == err:
		return fault.ErrEntityExists
	case fault.ErrInvalidDetails == err:
		return fault.ErrEntityScriptError
	default:
		v.log.Errorf("insert %s: tx: %v  error: %s", t, ctx.txId, err)
		return fault.ErrCannotInsertEntity
	}
	ctx.relevant.Add(ctx.txId.ShortId())
	return nil
}

func isStreamFilter(details transactionrecord.Details) bool {
	value, ok := details.Get(transactionrecord.ParamFilterType)
	return ok && 1 == len(value) && transactionrecord.StreamFilter == value[0]
}
