// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package acceptance

import (
	"bytes"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/bitmark-inc/permchain/account"
	"github.com/bitmark-inc/permchain/entity"
	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/merkle"
	"github.com/bitmark-inc/permchain/permission"
	"github.com/bitmark-inc/permchain/transactionrecord"
	"github.com/bitmark-inc/permchain/util"
)

// inputState - what is known about the signer of one input
type inputState struct {
	kind           transactionrecord.ScriptKind
	destination    account.Address
	hasDestination bool
	sigHash        transactionrecord.SigHash

	// packed script of the spent output, nil for coinbase
	script []byte

	// written by resolveInputs, upgraded by checkCachedScripts
	canGrantAdminMine bool
}

// outputFlags - per output classification bits
type outputFlags uint32

const (
	outputMetadata        outputFlags = 1 << iota // data carrier
	outputPermission                              // carries permission grants
	outputNeedsHigh                               // has create/issue/activate/filter grants
	outputNeedsAdminMine                          // has admin/mine grants
	outputPurePermission                          // nothing but entity references and grants
	outputGenesis                                 // asset genesis element
	outputFollowOn                                // asset follow-on element
	outputLicenseTransfer                         // only moves license tokens
)

// grantKey - an input eligible to sign one grant element
type grantKey struct {
	input   int
	output  int
	element int
}

// grant - one permission element of a value output
type grant struct {
	output  int
	element int

	// nil for chain wide permissions
	entity *entity.Record

	address   account.Address
	flags     permission.Flags
	types     permission.Type
	from      uint32
	to        uint32
	timestamp uint32
}

func (g *grant) entityId() merkle.Digest {
	if nil == g.entity {
		return permission.Global
	}
	return g.entity.TxId
}

// item - a metadata output addressed to an existing entity
type item struct {
	output   int
	entity   merkle.ShortId
	elements []transactionrecord.Element
	format   *transactionrecord.DataFormat
}

// newEntity - the single entity created by the transaction
type newEntity struct {
	output     int
	entityType transactionrecord.EntityType
	details    transactionrecord.Details
}

// entityUpdate - new details for an existing asset or variable
type entityUpdate struct {
	output  int
	entity  *entity.Record
	details transactionrecord.Details
}

// ledger - asset quantities by asset short id
type ledger map[merkle.ShortId]int64

func (l ledger) add(id merkle.ShortId, quantity int64) error {
	total, ok := util.AddInt64(l[id], quantity)
	if !ok {
		return fault.ErrValueOverflow
	}
	l[id] = total
	return nil
}

// keys in byte order so every node reports the same first mismatch
func (l ledger) keys() []merkle.ShortId {
	ids := make([]merkle.ShortId, 0, len(l))
	for id := range l {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

// Context - state shared by the stages validating one transaction
//
// the comment on each group names the stage that writes it; the
// stages run in a fixed order so a field is only read after its
// writer has run
type Context struct {
	tx     *transactionrecord.Transaction
	txId   merkle.Digest
	offset int

	// resolveInputs
	inputs         []inputState
	inputValue     int64
	inputAssets    ledger
	rejectMetadata bool

	// resolveInputs, checkConservation
	restricted mapset.Set[merkle.ShortId]

	// every stage that meets an entity; read by runFilters
	relevant mapset.Set[merkle.ShortId]

	// classifyOutputs
	outputs      []outputFlags
	outputValue  int64
	offChainSize int64
	grants       []*grant
	items        []*item
	newEntity    *newEntity
	cachedScript *transactionrecord.CachedScript

	// classifyOutputs, lazily on the first approval element; nil
	// until then, read by processItems
	adminsBefore []bool

	// computeGranters, read by the grant passes
	admins     mapset.Set[grantKey]
	activators mapset.Set[grantKey]

	// grant passes
	seedNodeInvolved bool

	// processItems
	update       *entityUpdate
	disapprovals []int
	bypass       Bypass

	// processIssuance, read by checkConservation and runFilters
	licenseIssue    bool
	licenseTransfer bool

	// checkMandatoryFee
	mandatoryFee int64

	// checkConservation
	outputAssets ledger

	// processEntityCreation; registered after commit
	newFilter *merkle.ShortId

	// any stage
	fullReplay      bool
	adminMinerGrant bool
}

func newContext(tx *transactionrecord.Transaction, offset int) *Context {
	return &Context{
		tx:           tx,
		txId:         tx.TxId(),
		offset:       offset,
		inputAssets:  make(ledger),
		outputAssets: make(ledger),
		restricted:   mapset.NewThreadUnsafeSet[merkle.ShortId](),
		relevant:     mapset.NewThreadUnsafeSet[merkle.ShortId](),
		admins:       mapset.NewThreadUnsafeSet[grantKey](),
		activators:   mapset.NewThreadUnsafeSet[grantKey](),
		outputs:      make([]outputFlags, len(tx.Outputs)),
	}
}

// an input signs output j if it signed everything or only output j
func (ctx *Context) signs(i int, j int) bool {
	switch ctx.inputs[i].sigHash {
	case transactionrecord.SigHashAll:
		return true
	case transactionrecord.SigHashSingle:
		return i == j
	default:
		return false
	}
}

// destinations of inputs signed with SIGHASH_ALL, in input order
// and without duplicates
func (ctx *Context) signers() []account.Address {
	seen := mapset.NewThreadUnsafeSet[account.Address]()
	result := []account.Address(nil)
	for _, in := range ctx.inputs {
		if transactionrecord.SigHashAll != in.sigHash || !in.hasDestination {
			continue
		}
		if seen.Add(in.destination) {
			result = append(result, in.destination)
		}
	}
	return result
}

// true if an input from the address spends a pay to script hash output
func (ctx *Context) isScriptHashSigner(address account.Address) bool {
	for _, in := range ctx.inputs {
		if in.hasDestination && address == in.destination && transactionrecord.ScriptHash == in.kind {
			return true
		}
	}
	return false
}

// the replay bits accumulated so far
func (ctx *Context) replay() Replay {
	r := Replay(0)
	if ctx.fullReplay {
		r |= ReplayRequired
	}
	if ctx.adminMinerGrant {
		r |= ReplayAdminMinerGrant
	}
	return r
}
