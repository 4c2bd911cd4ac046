// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package acceptance

import (
	"github.com/bitmark-inc/permchain/entity"
	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/transactionrecord"
)

// check every metadata output addressed to an existing entity
//
// reads: items, inputs, adminsBefore
// writes: update, disapprovals, bypass, relevant
func (v *Validator) processItems(ctx *Context) error {
	for _, it := range ctx.items {
		r, ok := v.entities.FindEntityByShortId(it.entity)
		if !ok {
			return fault.ErrMetadataEntityNotFound
		}

		var err error
		switch {
		case r.Type.IsAssetLike(), transactionrecord.Variable == r.Type:
			err = v.entityUpdateItem(ctx, it, r)

		case transactionrecord.Upgrade == r.Type, transactionrecord.Filter == r.Type:
			err = v.approvalItem(ctx, it, r)

		case r.Type.IsStream():
			err = v.streamItem(ctx, it, r)

		default:
			if v.features.RejectUnknownEntityTypes() {
				return fault.ErrUnsupportedItemEntityType
			}
			v.log.Warnf("item for unsupported entity type: 0x%02x  entity: %v  tx: %v", uint8(r.Type), r.TxId, ctx.txId)
		}
		if nil != err {
			return err
		}
	}
	return nil
}

// new details for an asset or a variable; applied by processIssuance
func (v *Validator) entityUpdateItem(ctx *Context, it *item, r *entity.Record) error {
	if 1 != len(it.elements) {
		return fault.ErrTooManyUpdateElements
	}
	update, ok := it.elements[0].(transactionrecord.EntityUpdate)
	if !ok {
		return fault.ErrShouldBeEntityUpdate
	}
	if update.Type != r.Type {
		return fault.ErrEntityUpdateTypeMismatch
	}
	if nil != update.Details.Validate() {
		return fault.ErrEntityDetails
	}
	if transactionrecord.Variable == r.Type && !update.Details.Has(transactionrecord.ParamJSONValue) {
		return fault.ErrVariableValueMissing
	}
	if nil != ctx.update {
		return fault.ErrTooManyEntityUpdates
	}
	ctx.update = &entityUpdate{
		output:  it.output,
		entity:  r,
		details: update.Details,
	}
	return nil
}

// a vote for an upgrade or a filter by the chain admins that held
// that role before this transaction
func (v *Validator) approvalItem(ctx *Context, it *item, r *entity.Record) error {
	if 1 != len(it.elements) {
		return fault.ErrTooManyApprovalElements
	}
	approval, ok := it.elements[0].(transactionrecord.Approval)
	if !ok {
		return fault.ErrShouldBeApproval
	}

	if approval.Approve {
		v.log.Infof("approval: %s: %v  tx: %v", r.Type, r.TxId, ctx.txId)
	} else {
		v.log.Infof("disapproval: %s: %v  tx: %v", r.Type, r.TxId, ctx.txId)
	}

	found := false
	for i, in := range ctx.inputs {
		if !ctx.adminsBefore[i] || !ctx.signs(i, it.output) {
			continue
		}
		err := v.permissions.SetApproval(r.TxId, approval.Approve, in.destination, r.UpgradeStartBlock(), approval.Timestamp, 0, ctx.offset)
		if nil == err {
			found = true
		}
	}
	if !found {
		return fault.ErrInputsNotValidApprovalAdmin
	}

	if transactionrecord.Filter == r.Type && !approval.Approve {
		ctx.disapprovals = append(ctx.disapprovals, it.output)
		ctx.bypass = BypassCandidate
	}
	return nil
}

// stream items: keys, a writer and the stream's data restrictions
func (v *Validator) streamItem(ctx *Context, it *item, r *entity.Record) error {
	for _, e := range it.elements {
		key, ok := e.(transactionrecord.ItemKey)
		if !ok {
			return fault.ErrShouldBeItemKey
		}
		if len(key.Key) > transactionrecord.MaxItemKeyLength {
			return fault.ErrItemKeyTooLong
		}
	}

	if !r.AnyoneCanWrite() {
		writer := false
		for i, in := range ctx.inputs {
			if in.hasDestination && ctx.signs(i, it.output) && v.permissions.CanWrite(r.TxId, in.destination) {
				writer = true
				break
			}
		}
		if !writer {
			return fault.ErrInputsNotValidPublisher
		}
	}

	restrictions := r.Restrictions()
	offChain := nil != it.format && it.format.OffChain
	switch {
	case offChain && 0 != restrictions&transactionrecord.RestrictOffChain:
		return fault.ErrOffChainItemNotAllowed
	case !offChain && 0 != restrictions&transactionrecord.RestrictOnChain:
		return fault.ErrOnChainItemNotAllowed
	case offChain && 0 != restrictions&transactionrecord.RestrictNeedSalted && !it.format.Salted:
		return fault.ErrUnsaltedOffChainItem
	}
	return nil
}
