// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package acceptance

import (
	"math"

	"github.com/bitmark-inc/permchain/entity"
	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/permission"
	"github.com/bitmark-inc/permchain/transactionrecord"
)

// the fee charged for off-chain data
//
// reads: offChainSize, inputValue, outputValue
// writes: mandatoryFee
func (v *Validator) checkMandatoryFee(ctx *Context) error {
	perKB := v.features.MandatoryFeePerKB()
	if perKB <= 0 || 0 == ctx.offChainSize {
		return nil
	}
	if ctx.offChainSize > math.MaxInt64/perKB {
		return fault.ErrValueOverflow
	}
	ctx.mandatoryFee = ctx.offChainSize * perKB / 1000

	if ctx.tx.Coinbase {
		return nil
	}
	if ctx.inputValue-ctx.outputValue < ctx.mandatoryFee {
		return fault.ErrInsufficientFee
	}
	return nil
}

// every asset unit spent must be sent on, and every value output must
// be able to receive what it is sent
//
// reads: outputs, inputAssets, inputs, licenseIssue
// writes: outputAssets, restricted, licenseTransfer, relevant
func (v *Validator) checkConservation(ctx *Context) error {
	f := v.features
	tx := ctx.tx

	licenseOutputs := 0
	otherAssets := false

	for j := range tx.Outputs {
		if 0 != ctx.outputs[j]&outputMetadata {
			continue
		}
		out := &tx.Outputs[j]
		script := &out.Script
		required := receiveRequired(script)

		// follow-ons count towards permissions but not conservation
		assets := make(ledger)
		for _, e := range script.Elements {
			switch element := e.(type) {
			case transactionrecord.AssetTransfer:
				for _, q := range element.Quantities {
					if q.Quantity < 0 {
						return fault.ErrAssetQuantityMismatch
					}
					if err := ctx.outputAssets.add(q.Asset, q.Quantity); nil != err {
						return err
					}
					if err := assets.add(q.Asset, q.Quantity); nil != err {
						return err
					}
				}
			case transactionrecord.AssetFollowOn:
				for _, q := range element.Quantities {
					if err := assets.add(q.Asset, q.Quantity); nil != err {
						return err
					}
				}
			}
		}

		onlyLicenses := len(assets) > 0 && 0 == ctx.outputs[j]&outputGenesis
		for _, id := range assets.keys() {
			asset, ok := v.entities.FindEntityByShortId(id)
			if !ok {
				return fault.ErrTransferAssetNotFound
			}
			ctx.relevant.Add(id)
			if transactionrecord.LicenseToken != asset.Type {
				onlyLicenses = false
				otherAssets = true
			}
			if f.PerAssetPermissions() {
				if err := v.checkAssetReceive(ctx, asset, script, required); nil != err {
					return err
				}
			}
		}
		if onlyLicenses {
			ctx.outputs[j] |= outputLicenseTransfer
			licenseOutputs += 1
		}

		if 0 != ctx.outputs[j]&(outputPurePermission|outputLicenseTransfer) {
			continue
		}

		if ctx.offset < 0 && f.RequireStandard() && !tx.Coinbase && out.Value < f.DustThreshold() {
			return fault.ErrDustOutput
		}

		// a miner may pay itself without receive permission
		receivers := 0
		for _, d := range script.Destinations {
			if v.permissions.CanReceive(permission.Global, d) || (tx.Coinbase && v.permissions.CanMine(permission.Global, d)) {
				receivers += 1
			}
		}
		if receivers < required {
			if out.Value > 0 || len(script.Elements) > 0 || !f.AnyoneCanReceiveEmpty() {
				return fault.ErrOutputCannotReceive
			}
		}
	}

	if ctx.restricted.Cardinality() > 1 {
		return fault.ErrTooManyRestrictedAssets
	}

	all := make(ledger)
	for id := range ctx.inputAssets {
		all[id] = 0
	}
	for id := range ctx.outputAssets {
		all[id] = 0
	}
	for _, id := range all.keys() {
		if ctx.inputAssets[id] != ctx.outputAssets[id] {
			v.log.Debugf("asset: %v  in: %d  out: %d  tx: %v", id, ctx.inputAssets[id], ctx.outputAssets[id], ctx.txId)
			return fault.ErrAssetQuantityMismatch
		}
	}

	ctx.licenseTransfer = licenseOutputs > 0 && !otherAssets && !ctx.licenseIssue
	return nil
}

// restricted assets need enough destinations holding receive on the
// asset itself
func (v *Validator) checkAssetReceive(ctx *Context, asset *entity.Record, script *transactionrecord.Script, required int) error {
	restrictions := asset.PermissionRestrictions()
	if 0 == restrictions&uint32(permission.Send|permission.Receive) {
		return nil
	}
	if transactionrecord.LicenseToken != asset.Type {
		ctx.restricted.Add(asset.ShortId())
	}
	if 0 == restrictions&uint32(permission.Receive) {
		return nil
	}

	receivers := 0
	for _, d := range script.Destinations {
		if v.permissions.CanReceive(asset.TxId, d) {
			receivers += 1
		}
	}
	if receivers < required {
		return fault.ErrAssetReceiveNotAllowed
	}
	return nil
}

// number of destinations that must be able to receive; for bare
// multisig enough that the signers cannot all lack it
func receiveRequired(script *transactionrecord.Script) int {
	n := len(script.Destinations)
	if transactionrecord.MultiSig == script.Kind && script.Required > 0 {
		required := n - script.Required + 1
		if required < n {
			return required
		}
	}
	return n
}
