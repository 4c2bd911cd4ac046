// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"strings"
)

// names of all chains
const (
	Main    = "main"
	Testing = "testing"
	Local   = "local"
)

// Valid - validate a chain name
func Valid(name string) bool {
	switch name {
	case Main, Testing, Local:
		return true
	default:
		return false
	}
}

// Canonical - lower case form of a chain name
func Canonical(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// IsTesting - true for chains that relax relay rules
func IsTesting(name string) bool {
	switch name {
	case Testing, Local:
		return true
	default:
		return false
	}
}

// Protocol versions at which historical rule changes activate
const (
	ProtocolCachedScript       = 10007
	ProtocolSighashSingleCheck = 10008
	ProtocolPerAssetPermission = 10010
	ProtocolFilters            = 20000
	ProtocolStreamFilters      = 20010
	ProtocolVariables          = 20013
	ProtocolLicenseTokens      = 20013

	CurrentProtocol = 20013
)
