// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package acceptance

import (
	"math"

	"github.com/bitmark-inc/permchain/account"
	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/merkle"
	"github.com/bitmark-inc/permchain/permission"
	"github.com/bitmark-inc/permchain/transactionrecord"
	"github.com/bitmark-inc/permchain/util"
)

// quantities newly issued by the value outputs
type issuance struct {
	genesisOutputs []int
	genesisTotal   int64

	followOnOutputs int
	followOnAsset   merkle.ShortId
	hasFollowOnId   bool
	followOnTotal   int64
}

// issue a new asset or license token, issue more of an existing
// asset, or create or update a variable
//
// reads: outputs, newEntity, update, inputs
// writes: licenseIssue, fullReplay, relevant
func (v *Validator) processIssuance(ctx *Context) error {
	is, err := scanIssuance(ctx)
	if nil != err {
		return err
	}

	ne := ctx.newEntity
	newAsset := nil != ne && ne.entityType.IsAssetLike()
	newVariable := nil != ne && transactionrecord.Variable == ne.entityType
	newOther := nil != ne && !newAsset && !newVariable

	variableUpdate := nil != ctx.update && transactionrecord.Variable == ctx.update.entity.Type
	assetUpdate := nil != ctx.update && !variableUpdate

	newIssue := len(is.genesisOutputs) > 0
	followOn := is.followOnOutputs > 0

	if newVariable || variableUpdate {
		if newIssue || followOn {
			return fault.ErrNewVariableWithValueOutput
		}
		if newVariable && nil != ctx.update {
			return fault.ErrTooManyEntityUpdates
		}
		ctx.fullReplay = true
		if newVariable {
			return v.createVariable(ctx)
		}
		return v.updateVariable(ctx)
	}

	if newAsset && !newIssue {
		return fault.ErrAssetDetails
	}
	if assetUpdate && !followOn {
		return fault.ErrFollowOnAssetMismatch
	}
	if !newIssue && !followOn {
		return nil
	}
	if newIssue && followOn {
		return fault.ErrFollowOnAndIssue
	}
	if newIssue && newOther {
		return fault.ErrIssueConflictsWithEntity
	}

	ctx.fullReplay = true
	if newIssue {
		return v.issueAsset(ctx, is)
	}
	return v.issueFollowOn(ctx, is)
}

func scanIssuance(ctx *Context) (*issuance, error) {
	is := &issuance{}

	for j := range ctx.tx.Outputs {
		flags := ctx.outputs[j]
		if 0 == flags&(outputGenesis|outputFollowOn) {
			continue
		}
		script := &ctx.tx.Outputs[j].Script

		hasTransfer := false
		for _, e := range script.Elements {
			switch element := e.(type) {
			case transactionrecord.AssetGenesis:
				if element.Quantity < 0 {
					return nil, fault.ErrNegativeIssueQuantity
				}
				total, ok := util.AddInt64(is.genesisTotal, element.Quantity)
				if !ok {
					return nil, fault.ErrAssetIssueOverflow
				}
				is.genesisTotal = total

			case transactionrecord.AssetFollowOn:
				for _, q := range element.Quantities {
					if !is.hasFollowOnId {
						is.followOnAsset = q.Asset
						is.hasFollowOnId = true
					} else if q.Asset != is.followOnAsset {
						return nil, fault.ErrFollowOnForSeveralAssets
					}
					if q.Quantity < 0 {
						return nil, fault.ErrNegativeIssueQuantity
					}
					total, ok := util.AddInt64(is.followOnTotal, q.Quantity)
					if !ok {
						return nil, fault.ErrAssetIssueOverflow
					}
					is.followOnTotal = total
				}

			case transactionrecord.AssetTransfer:
				hasTransfer = true
			}
		}

		if _, ok := script.Destination(); !ok {
			return nil, fault.ErrAssetIssueDestination
		}
		if 0 != flags&outputGenesis {
			if hasTransfer {
				return nil, fault.ErrAssetIssueWithTransfer
			}
			is.genesisOutputs = append(is.genesisOutputs, j)
		}
		if 0 != flags&outputFollowOn {
			is.followOnOutputs += 1
		}
	}
	return is, nil
}

// first issue: the transaction id becomes the asset id
func (v *Validator) issueAsset(ctx *Context, is *issuance) error {
	entityType := transactionrecord.Asset
	details := transactionrecord.Details(nil)
	if nil != ctx.newEntity {
		entityType = ctx.newEntity.entityType
		details = ctx.newEntity.details
	}

	issuers := []account.Address(nil)
	if transactionrecord.LicenseToken == entityType {
		if err := v.checkLicense(ctx, details, is); nil != err {
			return err
		}
		issuers = ctx.signers()
		ctx.licenseIssue = true
	} else {
		for _, a := range ctx.signers() {
			if v.permissions.CanIssue(permission.Global, a) {
				issuers = append(issuers, a)
			}
		}
		if 0 == len(issuers) {
			return fault.ErrInputsNotValidIssuer
		}
	}

	err := v.entities.InsertAsset(ctx.txId, ctx.offset, entityType, is.genesisTotal, details, issuers)
	switch {
	case nil == err:
	case fault.ErrDuplicateEntity == err:
		return fault.ErrAssetExists
	case fault.ErrInvalidDetails == err:
		return fault.ErrAssetDetails
	default:
		v.log.Errorf("insert asset: tx: %v  error: %s", ctx.txId, err)
		return fault.ErrCannotInsertAsset
	}
	ctx.relevant.Add(ctx.txId.ShortId())

	types := permission.Admin | permission.Issue
	if v.features.PerAssetPermissions() {
		types |= permission.Activate | permission.Send | permission.Receive
	}
	if err := v.grantEntityGenesis(ctx, details, issuers, types, true); nil != err {
		v.log.Errorf("asset grants: tx: %v  error: %s", ctx.txId, err)
		return fault.ErrCannotUpdateAssetGrants
	}

	v.log.Debugf("issue: %s: %v  quantity: %d  issuers: %d", entityType, ctx.txId, is.genesisTotal, len(issuers))
	return nil
}

// further issue of an asset that allows follow-ons
func (v *Validator) issueFollowOn(ctx *Context, is *issuance) error {
	if !is.hasFollowOnId {
		return fault.ErrFollowOnAssetNotFound
	}
	asset, ok := v.entities.FindEntityByShortId(is.followOnAsset)
	if !ok {
		return fault.ErrFollowOnAssetNotFound
	}
	ctx.relevant.Add(is.followOnAsset)

	if transactionrecord.Asset != asset.Type || !asset.AllowFollowOns() {
		return fault.ErrFollowOnsNotAllowed
	}

	details := transactionrecord.Details(nil)
	if nil != ctx.update {
		if ctx.update.entity.TxId != asset.TxId {
			return fault.ErrFollowOnAssetMismatch
		}
		details = ctx.update.details
	}

	issuers := []account.Address(nil)
	for _, a := range ctx.signers() {
		if v.permissions.CanIssue(asset.TxId, a) {
			issuers = append(issuers, a)
		}
	}
	if 0 == len(issuers) {
		return fault.ErrInputsNotValidIssuer
	}

	total, _ := v.entities.GetTotalQuantity(asset.TxId)
	if _, ok := util.AddInt64(total, is.followOnTotal); !ok {
		return fault.ErrFollowOnExceedsMaximum
	}

	err := v.entities.InsertFollowOn(asset.TxId, ctx.txId, ctx.offset, is.followOnTotal, details, issuers)
	switch {
	case nil == err:
	case fault.ErrDuplicateEntity == err:
		return fault.ErrAssetExists
	case fault.ErrInvalidDetails == err:
		return fault.ErrAssetDetails
	default:
		v.log.Errorf("insert follow-on: asset: %v  tx: %v  error: %s", asset.TxId, ctx.txId, err)
		return fault.ErrCannotInsertAsset
	}

	v.log.Debugf("follow-on: asset: %v  quantity: %d  tx: %v", asset.TxId, is.followOnTotal, ctx.txId)
	return nil
}

func (v *Validator) createVariable(ctx *Context) error {
	creators := []account.Address(nil)
	for _, a := range ctx.signers() {
		if v.permissions.CanCreate(permission.Global, a) {
			creators = append(creators, a)
		}
	}
	if 0 == len(creators) {
		return fault.ErrInputsNotValidCreator
	}

	details := ctx.newEntity.details
	if err := v.insertEntity(ctx, transactionrecord.Variable, details); nil != err {
		return err
	}

	types := permission.Admin | permission.Activate | permission.Write
	if err := v.grantEntityGenesis(ctx, details, creators, types, true); nil != err {
		v.log.Errorf("variable grants: tx: %v  error: %s", ctx.txId, err)
		return fault.ErrCannotUpdateEntityGrants
	}
	return nil
}

func (v *Validator) updateVariable(ctx *Context) error {
	u := ctx.update
	writers := []account.Address(nil)
	for i, in := range ctx.inputs {
		if in.hasDestination && ctx.signs(i, u.output) && v.permissions.CanWrite(u.entity.TxId, in.destination) {
			writers = append(writers, in.destination)
		}
	}
	if 0 == len(writers) {
		return fault.ErrInputsNotValidWriter
	}

	err := v.entities.InsertFollowOn(u.entity.TxId, ctx.txId, ctx.offset, 0, u.details, writers)
	if nil != err {
		v.log.Errorf("update variable: %v  tx: %v  error: %s", u.entity.TxId, ctx.txId, err)
		return fault.ErrCannotInsertEntity
	}
	ctx.relevant.Add(u.entity.ShortId())
	return nil
}

// the permission records every new entity starts with
//
// a connect record to the zero address marks the entity genesis, then
// each grantee receives types on the entity
func (v *Validator) grantEntityGenesis(ctx *Context, details transactionrecord.Details, grantees []account.Address, types permission.Type, genesisRecord bool) error {
	timestamp, _ := details.Uint32(transactionrecord.ParamTimestamp)

	if genesisRecord {
		admin := account.Address{}
		if len(grantees) > 0 {
			admin = grantees[0]
		}
		err := v.permissions.SetPermission(ctx.txId, account.Address{}, permission.Connect, admin, 0, math.MaxUint32, timestamp, permission.FlagEntityGenesis, ctx.offset)
		if nil != err {
			return err
		}
	}

	if permission.None == types {
		return nil
	}
	for _, a := range grantees {
		flags := permission.FlagEntityGenesis
		if ctx.isScriptHashSigner(a) {
			flags |= permission.FlagIsScriptHash
		}
		err := v.permissions.SetPermission(ctx.txId, a, types, a, 0, math.MaxUint32, timestamp, flags, ctx.offset)
		if nil != err {
			return err
		}
	}
	return nil
}
