// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package acceptance

import (
	"github.com/bitmark-inc/permchain/transactionrecord"
)

// Bypass - whether a transaction may skip the user filters
type Bypass int

// bypass states
const (
	BypassNone      = Bypass(iota) // filters run
	BypassCandidate                // contains a filter disapproval
	BypassValid                    // a bare filter disapproval, filters skipped
)

func (b Bypass) String() string {
	switch b {
	case BypassNone:
		return "none"
	case BypassCandidate:
		return "candidate"
	case BypassValid:
		return "valid"
	default:
		return "unknown"
	}
}

// a filter that rejects everything must not be able to block its own
// disapproval, so a transaction that does nothing else skips the
// filters
//
// reads: bypass, disapprovals, inputs
// writes: bypass
func (v *Validator) checkBypass(ctx *Context) {
	if BypassCandidate != ctx.bypass {
		return
	}
	ctx.bypass = BypassNone

	tx := ctx.tx
	if tx.Coinbase || 1 != len(ctx.inputs) || 1 != len(ctx.disapprovals) {
		return
	}
	in := ctx.inputs[0]
	if !in.hasDestination {
		return
	}

	others := 0
	for j := range tx.Outputs {
		script := &tx.Outputs[j].Script
		if j == ctx.disapprovals[0] {
			if !isBareDisapproval(script.Elements) {
				return
			}
			continue
		}
		others += 1
		if others > 1 || 0 != len(script.Elements) {
			return
		}
		destination, ok := script.Destination()
		if !ok || destination != in.destination {
			return
		}
	}

	v.log.Infof("filter disapproval bypasses filters: tx: %v", ctx.txId)
	ctx.bypass = BypassValid
}

func isBareDisapproval(elements []transactionrecord.Element) bool {
	if 2 != len(elements) {
		return false
	}
	if _, ok := elements[0].(transactionrecord.EntityReference); !ok {
		return false
	}
	approval, ok := elements[1].(transactionrecord.Approval)
	return ok && !approval.Approve
}
