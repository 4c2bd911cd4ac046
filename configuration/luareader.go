// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"fmt"

	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"

	"github.com/bitmark-inc/permchain/chain"
)

// protocol versions visible to the configuration file so that a
// policy can say: version = protocol.filters
var protocolNames = map[string]int{
	"cached_script":        chain.ProtocolCachedScript,
	"sighash_single_check": chain.ProtocolSighashSingleCheck,
	"per_asset_permission": chain.ProtocolPerAssetPermission,
	"filters":              chain.ProtocolFilters,
	"stream_filters":       chain.ProtocolStreamFilters,
	"variables":            chain.ProtocolVariables,
	"license_tokens":       chain.ProtocolLicenseTokens,
	"current":              chain.CurrentProtocol,
}

// ParseConfigurationFile - run a Lua configuration file and map the
// table it returns onto config
//
// globals provided:
//
//	arg[0]    the configuration file name
//	protocol  named protocol versions
func ParseConfigurationFile(fileName string, config interface{}) error {
	L := lua.NewState()
	defer L.Close()

	L.OpenLibs()

	arg := L.NewTable()
	arg.Insert(0, lua.LString(fileName))
	L.SetGlobal("arg", arg)

	protocol := L.NewTable()
	for name, version := range protocolNames {
		protocol.RawSetString(name, lua.LNumber(version))
	}
	L.SetGlobal("protocol", protocol)

	if err := L.DoFile(fileName); nil != err {
		return err
	}

	result, ok := L.Get(-1).(*lua.LTable)
	if !ok {
		return fmt.Errorf("configuration: %q did not return a table", fileName)
	}

	mapper := gluamapper.Mapper{
		Option: gluamapper.Option{
			NameFunc: func(s string) string { return s },
			TagName:  "gluamapper",
		},
	}
	return mapper.Map(result, config)
}
