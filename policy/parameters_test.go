// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/permchain/account"
	"github.com/bitmark-inc/permchain/chain"
	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/policy"
)

func TestDefaultsMain(t *testing.T) {
	p := policy.New(chain.Main)
	assert.Nil(t, p.Validate(), "validate")

	assert.True(t, p.RequireStandard(), "require standard")
	assert.False(t, p.AnyoneCanReceiveEmpty(), "receive empty")
	assert.Equal(t, int64(0), p.DustThreshold(), "no native currency")

	p.Fees.MinimumRelay = 1000
	assert.Equal(t, int64(546), p.DustThreshold(), "dust")
	assert.Equal(t, chain.CurrentProtocol, p.ProtocolVersion(), "protocol")
	assert.Equal(t, policy.DefaultNodeVersion, p.NodeVersion(), "node")

	_, ok := p.SeedNode()
	assert.False(t, ok, "no seed node")
}

func TestDefaultsTesting(t *testing.T) {
	for _, name := range []string{chain.Testing, chain.Local} {
		p := policy.New(name)
		assert.Nil(t, p.Validate(), "validate: %s", name)
		assert.False(t, p.RequireStandard(), "require standard: %s", name)
		assert.True(t, p.AnyoneCanReceiveEmpty(), "receive empty: %s", name)
	}
}

func TestFeaturesFollowProtocol(t *testing.T) {
	p := policy.New(chain.Main)

	p.Protocol.Version = chain.ProtocolCachedScript
	assert.Nil(t, p.Validate(), "validate")
	assert.True(t, p.CachedInputScript(), "cached script")
	assert.True(t, p.PushOnlySignatures(), "push only")
	assert.False(t, p.SighashSingleNeedsOutput(), "sighash single")
	assert.False(t, p.PerAssetPermissions(), "per asset")
	assert.False(t, p.Filters(), "filters")
	assert.False(t, p.LicenseTokens(), "license tokens")

	p.Protocol.Version = chain.CurrentProtocol
	assert.True(t, p.SighashSingleNeedsOutput(), "sighash single")
	assert.True(t, p.PerAssetPermissions(), "per asset")
	assert.True(t, p.Filters(), "filters")
	assert.True(t, p.StreamFilters(), "stream filters")
	assert.True(t, p.RejectUnknownEntityTypes(), "unknown entity types")
	assert.True(t, p.Variables(), "variables")
	assert.True(t, p.LicenseTokens(), "license tokens")
}

func TestValidateErrors(t *testing.T) {
	p := policy.New(chain.Main)
	p.Protocol.Version = chain.CurrentProtocol + 1
	assert.Equal(t, fault.ErrInvalidProtocolVersion, p.Validate(), "future protocol")

	p = policy.New(chain.Main)
	p.Protocol.MaxMetadataElements = 2
	assert.Equal(t, fault.ErrInvalidCount, p.Validate(), "elements")

	p = policy.New(chain.Main)
	p.Fees.MandatoryPerKB = -1
	assert.Equal(t, fault.ErrInvalidFee, p.Validate(), "fee")

	p = policy.New(chain.Main)
	p.Seed = "not-an-address"
	assert.Equal(t, fault.ErrInvalidAddress, p.Validate(), "seed")
}

func TestSeedNode(t *testing.T) {
	address := account.Address{0x10, 0x20, 0x30}

	p := policy.New(chain.Main)
	p.Seed = address.String()
	assert.Nil(t, p.Validate(), "validate")

	seed, ok := p.SeedNode()
	assert.True(t, ok, "seed node")
	assert.Equal(t, address, seed, "seed address")
}

func TestPermissionOptions(t *testing.T) {
	p := policy.New(chain.Main)
	p.AnyoneCan.Connect = true
	p.AnyoneCan.Admin = true
	p.Protocol.CustomPermissions = true

	options := p.PermissionOptions()
	assert.True(t, options.AnyoneCanConnect, "connect")
	assert.True(t, options.AnyoneCanAdmin, "admin")
	assert.False(t, options.AnyoneCanSend, "send")
	assert.True(t, options.CustomPermissions, "custom")
}
