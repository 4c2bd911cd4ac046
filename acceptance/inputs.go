// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package acceptance

import (
	"github.com/bitmark-inc/permchain/account"
	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/merkle"
	"github.com/bitmark-inc/permchain/permission"
	"github.com/bitmark-inc/permchain/transactionrecord"
	"github.com/bitmark-inc/permchain/util"
)

// resolve the signer of every input and total the value and assets
// being spent
//
// writes: inputs, inputValue, inputAssets, rejectMetadata,
// restricted, relevant
func (v *Validator) resolveInputs(ctx *Context, previous PreviousOutputs) error {
	tx := ctx.tx

	if tx.Coinbase {
		ctx.inputs = []inputState{v.coinbaseInput(tx)}
		return nil
	}

	// without miner precheck support the cached script proves
	// nothing so every input may grant admin and mine
	checkCachedScript := v.features.CachedInputScript() && v.features.SupportMinerPrecheck()

	ctx.inputs = make([]inputState, len(tx.Inputs))
	for i, input := range tx.Inputs {

		if v.features.PushOnlySignatures() && !transactionrecord.IsPushOnly(input.SignatureScript) {
			return fault.ErrSigScriptNotPushOnly
		}

		out, ok := previous.Output(input.Previous)
		if !ok {
			return fault.ErrInputNotFound
		}

		state := &ctx.inputs[i]
		state.kind = out.Script.Kind
		state.destination, state.hasDestination = out.Script.Destination()
		state.sigHash = transactionrecord.SignatureHashType(input.SignatureScript, out.Script.Kind)
		state.script = out.Script.Pack()
		state.canGrantAdminMine = !checkCachedScript

		if transactionrecord.SigHashSingle == state.sigHash && i >= len(tx.Outputs) {
			if v.features.SighashSingleNeedsOutput() {
				return fault.ErrSighashSingleWithoutOutput
			}
		}

		// the signer of these cannot be tied to a single address
		switch out.Script.Kind {
		case transactionrecord.PubKey, transactionrecord.MultiSig,
			transactionrecord.NonStandard, transactionrecord.NullData:
			ctx.rejectMetadata = true
		}

		total, ok := util.AddInt64(ctx.inputValue, out.Value)
		if !ok || out.Value < 0 {
			return fault.ErrValueOverflow
		}
		ctx.inputValue = total

		if err := v.extractInputAssets(ctx, state, input.Previous.TxId, &out.Script); nil != err {
			return err
		}
	}
	return nil
}

// the signer of a coinbase
//
// only the genesis coinbase has one: the address that receives the
// full set of global permissions
func (v *Validator) coinbaseInput(tx *transactionrecord.Transaction) inputState {
	if -1 == v.permissions.Height() {
		if admin, ok := genesisAdmin(tx); ok {
			return inputState{
				kind:              transactionrecord.PubKeyHash,
				destination:       admin,
				hasDestination:    true,
				sigHash:           transactionrecord.SigHashAll,
				canGrantAdminMine: true,
			}
		}
	}
	return inputState{
		kind:    transactionrecord.NonStandard,
		sigHash: transactionrecord.SigHashNone,
	}
}

// destination of the first output granting every global permission
func genesisAdmin(tx *transactionrecord.Transaction) (account.Address, bool) {
	for _, out := range tx.Outputs {
		if out.Script.IsMetadata() {
			continue
		}
		scoped := false
		for _, e := range out.Script.Elements {
			switch element := e.(type) {
			case transactionrecord.EntityReference:
				scoped = true
			case transactionrecord.PermissionGrant:
				if !scoped && permission.GlobalAll == permission.Type(element.Types) {
					if address, ok := out.Script.Destination(); ok {
						return address, true
					}
				}
				scoped = false
			}
		}
	}
	return account.Address{}, false
}

// add the asset quantities held by a spent output to the input
// ledger
//
// a genesis element is keyed by the asset created by the spent
// transaction itself
func (v *Validator) extractInputAssets(ctx *Context, state *inputState, previousTxId merkle.Digest, script *transactionrecord.Script) error {
	for _, e := range script.Elements {
		switch element := e.(type) {

		case transactionrecord.AssetGenesis:
			asset, ok := v.entities.FindEntityByTxId(previousTxId)
			if !ok || asset.IsFollowOn() {
				return fault.ErrIssueTxNotFound
			}
			if err := v.addInputAsset(ctx, state, asset.ShortId(), element.Quantity); nil != err {
				return err
			}

		case transactionrecord.AssetTransfer:
			for _, q := range element.Quantities {
				if err := v.addInputAsset(ctx, state, q.Asset, q.Quantity); nil != err {
					return err
				}
			}

		case transactionrecord.AssetFollowOn:
			for _, q := range element.Quantities {
				if err := v.addInputAsset(ctx, state, q.Asset, q.Quantity); nil != err {
					return err
				}
			}
		}
	}
	return nil
}

func (v *Validator) addInputAsset(ctx *Context, state *inputState, id merkle.ShortId, quantity int64) error {
	if quantity < 0 {
		return fault.ErrAssetQuantityMismatch
	}
	if err := ctx.inputAssets.add(id, quantity); nil != err {
		return err
	}
	ctx.relevant.Add(id)

	if !v.features.PerAssetPermissions() {
		return nil
	}
	asset, ok := v.entities.FindEntityByShortId(id)
	if !ok {
		return fault.ErrTransferAssetNotFound
	}
	restrictions := asset.PermissionRestrictions()
	if 0 == restrictions&uint32(permission.Send|permission.Receive) {
		return nil
	}
	if transactionrecord.LicenseToken != asset.Type {
		ctx.restricted.Add(id)
	}
	if 0 != restrictions&uint32(permission.Send) {
		if !state.hasDestination || !v.permissions.CanSend(asset.TxId, state.destination) {
			return fault.ErrAssetSendNotAllowed
		}
	}
	return nil
}
