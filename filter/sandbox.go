// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package filter

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/bitmark-inc/permchain/merkle"
	"github.com/bitmark-inc/permchain/permission"
	"github.com/bitmark-inc/permchain/transactionrecord"
)

// an interpreter with only the pure libraries loaded
func newState() *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		// cannot fail for the built in libraries
		_ = L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name))
	}

	// no file access from filter code
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "collectgarbage"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// the transaction as seen by filter code
//
//	tx.txid, tx.coinbase, tx.relevant = {shortid...}
//	tx.vin  = {{txid, vout}...}
//	tx.vout = {{value, kind, destinations, metadata, assets, permissions,
//	            entity, keys, data}...}
func transactionTable(L *lua.LState, tx *transactionrecord.Transaction, relevant []merkle.ShortId) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("txid", lua.LString(tx.TxId().String()))
	t.RawSetString("coinbase", lua.LBool(tx.Coinbase))

	ids := L.NewTable()
	for _, id := range relevant {
		ids.Append(lua.LString(id.String()))
	}
	t.RawSetString("relevant", ids)

	vin := L.NewTable()
	for _, in := range tx.Inputs {
		i := L.NewTable()
		i.RawSetString("txid", lua.LString(in.Previous.TxId.String()))
		i.RawSetString("vout", lua.LNumber(in.Previous.Index))
		vin.Append(i)
	}
	t.RawSetString("vin", vin)

	vout := L.NewTable()
	for j := range tx.Outputs {
		vout.Append(outputTable(L, &tx.Outputs[j]))
	}
	t.RawSetString("vout", vout)
	return t
}

func outputTable(L *lua.LState, out *transactionrecord.Output) *lua.LTable {
	o := L.NewTable()
	o.RawSetString("value", lua.LNumber(out.Value))
	o.RawSetString("kind", lua.LString(out.Script.Kind.String()))
	o.RawSetString("metadata", lua.LBool(out.Script.IsMetadata()))

	destinations := L.NewTable()
	for _, d := range out.Script.Destinations {
		destinations.Append(lua.LString(d.String()))
	}
	o.RawSetString("destinations", destinations)

	assets := L.NewTable()
	permissions := L.NewTable()
	keys := L.NewTable()
	for _, e := range out.Script.Elements {
		switch element := e.(type) {
		case transactionrecord.AssetGenesis:
			assets.Append(quantityTable(L, "", element.Quantity))
		case transactionrecord.AssetTransfer:
			for _, q := range element.Quantities {
				assets.Append(quantityTable(L, q.Asset.String(), q.Quantity))
			}
		case transactionrecord.AssetFollowOn:
			for _, q := range element.Quantities {
				assets.Append(quantityTable(L, q.Asset.String(), q.Quantity))
			}
		case transactionrecord.PermissionGrant:
			p := L.NewTable()
			p.RawSetString("types", lua.LString(permission.Type(element.Types).String()))
			p.RawSetString("from", lua.LNumber(element.From))
			p.RawSetString("to", lua.LNumber(element.To))
			permissions.Append(p)
		case transactionrecord.EntityReference:
			o.RawSetString("entity", lua.LString(element.Entity.String()))
		case transactionrecord.ItemKey:
			keys.Append(lua.LString(element.Key))
		case transactionrecord.RawData:
			o.RawSetString("data", lua.LString(element.Data))
		}
	}
	o.RawSetString("assets", assets)
	o.RawSetString("permissions", permissions)
	o.RawSetString("keys", keys)
	return o
}

// an empty asset is the one issued by this transaction
func quantityTable(L *lua.LState, asset string, quantity int64) *lua.LTable {
	q := L.NewTable()
	q.RawSetString("asset", lua.LString(asset))
	q.RawSetString("quantity", lua.LNumber(quantity))
	return q
}
