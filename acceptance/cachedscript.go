// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package acceptance

import (
	"bytes"

	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/transactionrecord"
)

// compare the cached copies of spent output scripts with the
// scripts actually spent
//
// an input whose script is proven this way and which signed the
// whole transaction becomes able to grant admin and mine
//
// reads: cachedScript, inputs
// writes: inputs[].canGrantAdminMine
func (v *Validator) checkCachedScripts(ctx *Context) error {
	if nil == ctx.cachedScript {
		return nil
	}
	if 0 == len(ctx.cachedScript.Entries) {
		return fault.ErrCachedScriptError
	}

	checkCachedScript := v.features.CachedInputScript() && v.features.SupportMinerPrecheck()

	for _, entry := range ctx.cachedScript.Entries {
		i := int(entry.Input)
		if i < 0 || i >= len(ctx.inputs) || nil == ctx.inputs[i].script {
			return fault.ErrCachedScriptInvalidInput
		}
		in := &ctx.inputs[i]
		if !bytes.Equal(entry.Script, in.script) {
			return fault.ErrCachedScriptMismatch
		}
		if checkCachedScript && transactionrecord.SigHashAll == in.sigHash {
			in.canGrantAdminMine = true
		}
	}
	return nil
}
