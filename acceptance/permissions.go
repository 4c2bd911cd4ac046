// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package acceptance

import (
	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/permission"
)

// apply every permission grant of the transaction
//
// grants are applied in three passes: first the low priority types,
// then the high priority types and finally admin and mine, which
// also need a proven input script; a pass only visits outputs that
// the classifier flagged for it
//
// reads: grants, inputs, outputs
// writes: admins, activators, seedNodeInvolved, fullReplay,
// adminMinerGrant
func (v *Validator) processPermissions(ctx *Context) error {
	if 0 == len(ctx.grants) {
		return nil
	}

	v.computeGranters(ctx)

	low := permission.Connect | permission.Send | permission.Receive |
		permission.Write | permission.Read | v.permissions.CustomLowTypes()
	high := permission.Create | permission.Issue | permission.Activate |
		permission.Filter | v.permissions.CustomHighTypes()
	top := permission.Mine | permission.Admin

	if err := v.grantPass(ctx, low, 0); nil != err {
		return err
	}
	if err := v.grantPass(ctx, high, outputNeedsHigh); nil != err {
		return err
	}
	return v.grantPass(ctx, top, outputNeedsAdminMine)
}

// which inputs may sign each grant, decided before any grant of this
// transaction has taken effect
func (v *Validator) computeGranters(ctx *Context) {
	for _, g := range ctx.grants {
		id := g.entityId()
		for i, in := range ctx.inputs {
			if !in.hasDestination || !ctx.signs(i, g.output) {
				continue
			}
			key := grantKey{input: i, output: g.output, element: g.element}
			if v.permissions.CanAdmin(id, in.destination) {
				ctx.admins.Add(key)
			}
			if v.permissions.CanActivate(id, in.destination) {
				ctx.activators.Add(key)
			}
		}
	}
}

func (v *Validator) grantPass(ctx *Context, mask permission.Type, needs outputFlags) error {
	for _, g := range ctx.grants {
		if 0 != needs && 0 == ctx.outputs[g.output]&needs {
			continue
		}
		t := g.types & mask
		if permission.None == t {
			continue
		}
		if err := v.applyGrant(ctx, g, t); nil != err {
			return err
		}
	}
	return nil
}

// write one grant once for every eligible input; the last eligible
// input is recorded as the admin
func (v *Validator) applyGrant(ctx *Context, g *grant, t permission.Type) error {
	adminMine := 0 != t&(permission.Admin|permission.Mine)
	if adminMine {
		ctx.adminMinerGrant = true
	}

	if 0 != t&permission.Connect && 0 == g.flags&permission.FlagIsScriptHash {
		if seed, ok := v.features.SeedNode(); ok && seed == g.address {
			ctx.seedNodeInvolved = true
		}
	}

	activateIsEnough := v.permissions.IsActivateEnough(t)
	id := g.entityId()

	found := false
	foundWithoutCachedScript := false
	for i, in := range ctx.inputs {
		key := grantKey{input: i, output: g.output, element: g.element}
		if activateIsEnough {
			if !ctx.activators.Contains(key) {
				continue
			}
		} else if !ctx.admins.Contains(key) {
			continue
		}

		// entity scoped admin needs no miner precheck
		if adminMine && !in.canGrantAdminMine && nil == g.entity {
			foundWithoutCachedScript = true
			continue
		}

		ctx.fullReplay = true
		err := v.permissions.SetPermission(id, g.address, t, in.destination, g.from, g.to, g.timestamp, g.flags, ctx.offset)
		if nil != err {
			v.log.Debugf("grant: %s  to: %v  by: %v  error: %s", t, g.address, in.destination, err)
			continue
		}
		found = true
	}

	if !found {
		if foundWithoutCachedScript {
			return fault.ErrInputsRequireCachedScript
		}
		return fault.ErrInputsNotValidAdmin
	}

	v.log.Debugf("grant: entity: %v  address: %v  type: %s  from: %d  to: %d", id, g.address, t, g.from, g.to)
	return nil
}
