// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package acceptance

import (
	"github.com/bitmark-inc/permchain/entity"
	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/permission"
	"github.com/bitmark-inc/permchain/transactionrecord"
	"github.com/bitmark-inc/permchain/util"
)

// largest declared off-chain payload, keeps the fee product in range
const maxOffChainSize = 1 << 40

// check the structure of every output and collect the grants, items
// and new entity for the later stages
//
// nothing is written to the stores here
//
// writes: outputs, outputValue, offChainSize, grants, items,
// newEntity, cachedScript, adminsBefore, relevant
func (v *Validator) classifyOutputs(ctx *Context) error {
	f := v.features

	// a destination can only be omitted when every kind of output
	// is allowed and anyone may receive
	shouldHaveDestination := !(f.AllowArbitraryOutputs() && f.AnyoneCanReceive() &&
		f.AllowMultisigOutputs() && f.AllowP2SHOutputs())

	for j := range ctx.tx.Outputs {
		out := &ctx.tx.Outputs[j]

		if out.Value < 0 {
			return fault.ErrNegativeValue
		}
		total, ok := util.AddInt64(ctx.outputValue, out.Value)
		if !ok {
			return fault.ErrValueOverflow
		}
		ctx.outputValue = total

		var err error
		if out.Script.IsMetadata() {
			ctx.outputs[j] |= outputMetadata
			err = v.classifyMetadata(ctx, j, &out.Script)
		} else {
			err = v.classifyValue(ctx, j, out, shouldHaveDestination)
		}
		if nil != err {
			return err
		}
	}
	return nil
}

// data carrier layout: [DataFormat] element... [RawData]
func (v *Validator) classifyMetadata(ctx *Context, j int, script *transactionrecord.Script) error {
	elements := script.Elements
	if len(elements) > v.features.MaxMetadataElements() {
		return fault.ErrTooManyElements
	}

	var format *transactionrecord.DataFormat
	var raw *transactionrecord.RawData
	body := elements
	if len(body) > 0 {
		if f, ok := body[0].(transactionrecord.DataFormat); ok {
			format = &f
			body = body[1:]
		}
	}
	if len(body) > 0 {
		if r, ok := body[len(body)-1].(transactionrecord.RawData); ok {
			raw = &r
			body = body[:len(body)-1]
		}
	}

	for _, e := range body {
		switch e.Tag() {
		case transactionrecord.DataFormatTag, transactionrecord.RawDataTag:
			return fault.ErrDirtyMetadata
		}
		if !transactionrecord.IsMetadataElement(e) {
			return fault.ErrDirtyMetadata
		}
	}

	if nil != format {
		size := uint64(0)
		if format.OffChain {
			size = format.Size
		} else if nil != raw {
			size = uint64(len(raw.Data))
		}
		if size > maxOffChainSize {
			return fault.ErrValueOverflow
		}
		ctx.offChainSize += int64(size)
	}

	// plain payload
	if 0 == len(body) {
		return nil
	}

	if ctx.rejectMetadata {
		return fault.ErrMetadataInputsNotAllowed
	}
	signed := false
	for i := range ctx.inputs {
		if ctx.signs(i, j) {
			signed = true
			break
		}
	}
	if !signed {
		return fault.ErrMetadataNotSigned
	}

	if 1 == len(body) {
		switch element := body[0].(type) {
		case transactionrecord.CachedScript:
			if !v.features.CachedInputScript() {
				return fault.ErrUnrecognisedMetadata
			}
			if nil != ctx.cachedScript {
				return fault.ErrTooManyCachedScripts
			}
			ctx.cachedScript = &element
			return nil

		case transactionrecord.NewEntity:
			return v.classifyNewEntity(ctx, j, element)

		case transactionrecord.EntityUpdate:
			return fault.ErrEntityUpdateWithoutRef

		default:
			return fault.ErrUnrecognisedMetadata
		}
	}

	ref, ok := body[0].(transactionrecord.EntityReference)
	if !ok {
		return fault.ErrShouldBeEntityRef
	}
	it := &item{
		output:   j,
		entity:   ref.Entity,
		elements: body[1:],
		format:   format,
	}
	ctx.items = append(ctx.items, it)
	ctx.relevant.Add(ref.Entity)

	// votes count only admins from before this transaction's grants
	for _, e := range it.elements {
		if transactionrecord.ApprovalTag == e.Tag() && nil == ctx.adminsBefore {
			ctx.adminsBefore = make([]bool, len(ctx.inputs))
			for i, in := range ctx.inputs {
				ctx.adminsBefore[i] = in.hasDestination && v.permissions.CanAdmin(permission.Global, in.destination)
			}
		}
	}
	return nil
}

func (v *Validator) classifyNewEntity(ctx *Context, j int, element transactionrecord.NewEntity) error {
	switch element.Type {
	case transactionrecord.Asset, transactionrecord.Stream, transactionrecord.Upgrade:
	case transactionrecord.Filter:
		if !v.features.Filters() {
			return fault.ErrUnsupportedEntityType
		}
	case transactionrecord.Variable:
		if !v.features.Variables() {
			return fault.ErrUnsupportedEntityType
		}
	case transactionrecord.LicenseToken:
		if !v.features.LicenseTokens() {
			return fault.ErrUnsupportedEntityType
		}
	default:
		return fault.ErrUnsupportedEntityType
	}

	if nil != element.Details.Validate() {
		return fault.ErrEntityDetails
	}
	if transactionrecord.Filter == element.Type && !element.Details.Has(transactionrecord.ParamFilterCode) {
		return fault.ErrEntityDetails
	}
	if nil != ctx.newEntity {
		return fault.ErrTooManyNewEntities
	}

	ctx.newEntity = &newEntity{
		output:     j,
		entityType: element.Type,
		details:    element.Details,
	}
	return nil
}

// value output: destination policy, then the entity/grant sequence
func (v *Validator) classifyValue(ctx *Context, j int, out *transactionrecord.Output, shouldHaveDestination bool) error {
	f := v.features
	script := &out.Script

	if shouldHaveDestination {
		if 0 == len(script.Destinations) && (!f.AnyoneCanReceive() || !f.AllowArbitraryOutputs()) {
			return fault.ErrDestinationRequired
		}
		if !f.AllowArbitraryOutputs() {
			if transactionrecord.MultiSig == script.Kind && !f.AllowMultisigOutputs() {
				return fault.ErrMultisigNotAllowed
			}
			if transactionrecord.ScriptHash == script.Kind && !f.AllowP2SHOutputs() {
				return fault.ErrP2SHNotAllowed
			}
		}
	}

	highTypes := permission.Create | permission.Issue | permission.Activate | permission.Filter | v.permissions.CustomHighTypes()
	topTypes := permission.Mine | permission.Admin

	pure := len(script.Elements) > 0 && 0 == out.Value

	var scoped *entity.Record
	for e, element := range script.Elements {
		switch el := element.(type) {

		case transactionrecord.EntityReference:
			if nil != scoped {
				return fault.ErrDuplicateEntityScript
			}
			r, ok := v.entities.FindEntityByShortId(el.Entity)
			if !ok {
				return fault.ErrScriptEntityNotFound
			}
			scoped = r
			ctx.relevant.Add(el.Entity)
			continue

		case transactionrecord.PermissionGrant:
			address, ok := script.Destination()
			if !ok {
				return fault.ErrPermissionDestination
			}
			flags := permission.FlagNone
			if transactionrecord.ScriptHash == script.Kind {
				flags = permission.FlagIsScriptHash
			}
			types := permission.Type(el.Types)
			if nil != scoped {
				types &= entityScopedTypes(scoped.Type)
				if permission.None == types {
					return fault.ErrEntityScriptError
				}
			}
			ctx.grants = append(ctx.grants, &grant{
				output:    j,
				element:   e,
				entity:    scoped,
				address:   address,
				flags:     flags,
				types:     types,
				from:      el.From,
				to:        el.To,
				timestamp: el.Timestamp,
			})
			ctx.outputs[j] |= outputPermission
			if 0 != types&highTypes {
				ctx.outputs[j] |= outputNeedsHigh
			}
			if 0 != types&topTypes {
				ctx.outputs[j] |= outputNeedsAdminMine
			}
			scoped = nil
			continue

		case transactionrecord.AssetGenesis:
			ctx.outputs[j] |= outputGenesis

		case transactionrecord.AssetFollowOn:
			ctx.outputs[j] |= outputFollowOn

		case transactionrecord.AssetTransfer:

		default:
			return fault.ErrUnexpectedValueElement
		}

		// only a grant may follow an entity reference
		if nil != scoped {
			return fault.ErrEntityWithoutGrant
		}
		pure = false
	}
	if nil != scoped {
		return fault.ErrIncompleteEntityScript
	}
	if pure {
		ctx.outputs[j] |= outputPurePermission
	}
	return nil
}

// the permission types that can be held on an entity of each type
func entityScopedTypes(t transactionrecord.EntityType) permission.Type {
	switch {
	case t.IsAssetLike():
		return permission.Admin | permission.Activate | permission.Issue | permission.Send | permission.Receive
	case t.IsStream():
		return permission.Admin | permission.Activate | permission.Write | permission.Read
	case transactionrecord.Variable == t:
		return permission.Admin | permission.Activate | permission.Write
	default:
		return permission.None
	}
}
