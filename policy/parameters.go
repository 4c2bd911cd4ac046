// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package policy

import (
	"github.com/bitmark-inc/permchain/account"
	"github.com/bitmark-inc/permchain/chain"
	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/permission"
)

// size of a spendable pay-to-key-hash output plus the input that
// spends it, used to price dust
const dustSpendSize = 182

// default version reported by this node
const DefaultNodeVersion = 20100

// Protocol - protocol level settings
type Protocol struct {
	Version              int  `gluamapper:"version"`
	NodeVersion          int  `gluamapper:"node_version"`
	SupportMinerPrecheck bool `gluamapper:"support_miner_precheck"`
	CustomPermissions    bool `gluamapper:"custom_permissions"`
	MaxMetadataElements  int  `gluamapper:"max_metadata_elements"`
}

// AnyoneCan - global permissions held by every address
type AnyoneCan struct {
	Connect      bool `gluamapper:"connect"`
	Send         bool `gluamapper:"send"`
	Receive      bool `gluamapper:"receive"`
	ReceiveEmpty bool `gluamapper:"receive_empty"`
	Issue        bool `gluamapper:"issue"`
	Create       bool `gluamapper:"create"`
	Mine         bool `gluamapper:"mine"`
	Activate     bool `gluamapper:"activate"`
	Admin        bool `gluamapper:"admin"`
}

// Outputs - which destination kinds are accepted
type Outputs struct {
	AllowArbitrary  bool `gluamapper:"allow_arbitrary"`
	AllowMultisig   bool `gluamapper:"allow_multisig"`
	AllowP2SH       bool `gluamapper:"allow_p2sh"`
	RequireStandard bool `gluamapper:"require_standard"`
}

// Fees - relay and mandatory fees, both per 1000 bytes
type Fees struct {
	MinimumRelay   int64 `gluamapper:"minimum_relay"`
	MandatoryPerKB int64 `gluamapper:"mandatory_per_kb"`
}

// Parameters - the read-only rule set transactions are validated
// against
type Parameters struct {
	Protocol  Protocol  `gluamapper:"protocol"`
	AnyoneCan AnyoneCan `gluamapper:"anyone_can"`
	Outputs   Outputs   `gluamapper:"outputs"`
	Fees      Fees      `gluamapper:"fees"`
	Seed      string    `gluamapper:"seed_node"`

	seed    account.Address
	hasSeed bool
}

// New - defaults for a chain
func New(chainName string) *Parameters {
	p := &Parameters{
		Protocol: Protocol{
			Version:              chain.CurrentProtocol,
			NodeVersion:          DefaultNodeVersion,
			SupportMinerPrecheck: true,
			MaxMetadataElements:  32,
		},
		Outputs: Outputs{
			AllowMultisig:   true,
			AllowP2SH:       true,
			RequireStandard: true,
		},
	}

	if chain.IsTesting(chainName) {
		p.AnyoneCan.ReceiveEmpty = true
		p.Outputs.RequireStandard = false
	}
	return p
}

// Validate - check ranges and decode the seed node address
func (p *Parameters) Validate() error {
	if p.Protocol.Version <= 0 || p.Protocol.Version > chain.CurrentProtocol {
		return fault.ErrInvalidProtocolVersion
	}
	if p.Protocol.NodeVersion < p.Protocol.Version {
		p.Protocol.NodeVersion = p.Protocol.Version
	}
	if p.Protocol.MaxMetadataElements < 3 {
		return fault.ErrInvalidCount
	}
	if p.Fees.MinimumRelay < 0 || p.Fees.MandatoryPerKB < 0 {
		return fault.ErrInvalidFee
	}

	p.hasSeed = false
	if "" != p.Seed {
		address, _, err := account.FromBase58(p.Seed)
		if nil != err {
			return err
		}
		p.seed = address
		p.hasSeed = true
	}
	return nil
}

// PermissionOptions - the anyone-can settings for the permission store
func (p *Parameters) PermissionOptions() permission.Options {
	return permission.Options{
		AnyoneCanConnect:  p.AnyoneCan.Connect,
		AnyoneCanSend:     p.AnyoneCan.Send,
		AnyoneCanReceive:  p.AnyoneCan.Receive,
		AnyoneCanIssue:    p.AnyoneCan.Issue,
		AnyoneCanCreate:   p.AnyoneCan.Create,
		AnyoneCanMine:     p.AnyoneCan.Mine,
		AnyoneCanActivate: p.AnyoneCan.Activate,
		AnyoneCanAdmin:    p.AnyoneCan.Admin,
		CustomPermissions: p.Protocol.CustomPermissions,
	}
}

func (p *Parameters) active(version int) bool {
	return p.Protocol.Version >= version
}

// features switched on by protocol upgrades
func (p *Parameters) CachedInputScript() bool  { return p.active(chain.ProtocolCachedScript) }
func (p *Parameters) PushOnlySignatures() bool { return p.active(chain.ProtocolCachedScript) }
func (p *Parameters) SighashSingleNeedsOutput() bool {
	return p.active(chain.ProtocolSighashSingleCheck)
}
func (p *Parameters) PerAssetPermissions() bool {
	return p.active(chain.ProtocolPerAssetPermission)
}
func (p *Parameters) Filters() bool                  { return p.active(chain.ProtocolFilters) }
func (p *Parameters) RejectUnknownEntityTypes() bool { return p.active(chain.ProtocolFilters) }
func (p *Parameters) StreamFilters() bool            { return p.active(chain.ProtocolStreamFilters) }
func (p *Parameters) Variables() bool                { return p.active(chain.ProtocolVariables) }
func (p *Parameters) LicenseTokens() bool            { return p.active(chain.ProtocolLicenseTokens) }

// chain settings
func (p *Parameters) SupportMinerPrecheck() bool  { return p.Protocol.SupportMinerPrecheck }
func (p *Parameters) AnyoneCanReceive() bool      { return p.AnyoneCan.Receive }
func (p *Parameters) AnyoneCanReceiveEmpty() bool { return p.AnyoneCan.ReceiveEmpty }
func (p *Parameters) AllowArbitraryOutputs() bool { return p.Outputs.AllowArbitrary }
func (p *Parameters) AllowMultisigOutputs() bool  { return p.Outputs.AllowMultisig }
func (p *Parameters) AllowP2SHOutputs() bool      { return p.Outputs.AllowP2SH }
func (p *Parameters) RequireStandard() bool       { return p.Outputs.RequireStandard }
func (p *Parameters) MandatoryFeePerKB() int64    { return p.Fees.MandatoryPerKB }
func (p *Parameters) MaxMetadataElements() int    { return p.Protocol.MaxMetadataElements }
func (p *Parameters) ProtocolVersion() int        { return p.Protocol.Version }
func (p *Parameters) NodeVersion() int            { return p.Protocol.NodeVersion }

// DustThreshold - outputs worth less than the fee to spend them
func (p *Parameters) DustThreshold() int64 {
	return 3 * dustSpendSize * p.Fees.MinimumRelay / 1000
}

// SeedNode - the address of the node this one bootstrapped from
func (p *Parameters) SeedNode() (account.Address, bool) {
	return p.seed, p.hasSeed
}
