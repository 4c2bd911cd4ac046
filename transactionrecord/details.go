// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"strings"

	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/util"
)

// ParamCode - code byte of one details parameter
type ParamCode uint8

// parameter codes; values are part of the wire format
const (
	ParamName            = ParamCode(0x01)
	ParamFollowOns       = ParamCode(0x02)
	ParamIssuer          = ParamCode(0x03)
	ParamAnyoneCanWrite  = ParamCode(0x04)
	ParamJSONDetails     = ParamCode(0x05)
	ParamPermissions     = ParamCode(0x06)
	ParamRestrictions    = ParamCode(0x07)
	ParamJSONValue       = ParamCode(0x08)
	ParamMultiple        = ParamCode(0x41)
	ParamProtocolVersion = ParamCode(0x42)
	ParamStartBlock      = ParamCode(0x43)
	ParamChainParams     = ParamCode(0x44)
	ParamFilterLimits    = ParamCode(0x45)
	ParamFilterCode      = ParamCode(0x46)
	ParamFilterType      = ParamCode(0x47)

	ParamLicenseHash             = ParamCode(0x60)
	ParamLicenseIssueAddress     = ParamCode(0x61)
	ParamLicenseConfirmationTime = ParamCode(0x62)
	ParamLicenseConfirmationRef  = ParamCode(0x63)
	ParamLicensePublicKey        = ParamCode(0x69)
	ParamLicenseMinNode          = ParamCode(0x6a)
	ParamLicenseMinProtocol      = ParamCode(0x6b)
	ParamLicenseSignature        = ParamCode(0x6f)

	ParamTimestamp = ParamCode(0x81)
	ParamSalt      = ParamCode(0x89)
)

// limits
const (
	MaxNameLength    = 32
	MaxItemKeyLength = 256
	maxParamLength   = 65536
	maxParams        = 256
)

// stream restriction bits (ParamRestrictions)
const (
	RestrictOnChain    = 0x01
	RestrictOffChain   = 0x02
	RestrictNeedSalted = 0x04
)

// filter types (ParamFilterType)
const (
	TransactionFilter = 0x00
	StreamFilter      = 0x01
)

type paramLimit struct {
	known   bool
	repeat  bool
	minimum int
	maximum int
}

// the frozen code table, indexed by code byte
var paramTable [256]paramLimit

func init() {
	set := func(code ParamCode, minimum int, maximum int, repeat bool) {
		paramTable[code] = paramLimit{
			known:   true,
			repeat:  repeat,
			minimum: minimum,
			maximum: maximum,
		}
	}
	set(ParamName, 0, MaxNameLength, false)
	set(ParamFollowOns, 1, 1, false)
	set(ParamIssuer, 20, 20, true)
	set(ParamAnyoneCanWrite, 1, 1, false)
	set(ParamJSONDetails, 0, maxParamLength, false)
	set(ParamPermissions, 4, 4, false)
	set(ParamRestrictions, 1, 1, false)
	set(ParamJSONValue, 0, maxParamLength, false)
	set(ParamMultiple, 4, 4, false)
	set(ParamProtocolVersion, 4, 4, false)
	set(ParamStartBlock, 4, 4, false)
	set(ParamChainParams, 0, maxParamLength, false)
	set(ParamFilterLimits, 0, maxParamLength, false)
	set(ParamFilterCode, 1, maxParamLength, false)
	set(ParamFilterType, 1, 1, false)

	set(ParamLicenseHash, 32, 32, false)
	set(ParamLicenseIssueAddress, 20, 20, false)
	set(ParamLicenseConfirmationTime, 4, 4, false)
	set(ParamLicenseConfirmationRef, 32, 32, false)
	set(ParamLicensePublicKey, 32, 33, false)
	set(ParamLicenseMinNode, 4, 4, false)
	set(ParamLicenseMinProtocol, 4, 4, false)
	set(ParamLicenseSignature, 1, 128, false)

	set(ParamTimestamp, 4, 4, false)
	set(ParamSalt, 1, 32, false)
}

// Param - one details parameter
type Param struct {
	Code  ParamCode `json:"code"`
	Value []byte    `json:"value"`
}

// Details - the special parameter block of an entity
type Details []Param

// Validate - check every parameter against the code table
func (d Details) Validate() error {
	if len(d) > maxParams {
		return fault.ErrInvalidDetails
	}
	seen := [256]bool{}
	for _, p := range d {
		limit := paramTable[p.Code]
		if !limit.known {
			return fault.ErrInvalidDetails
		}
		if len(p.Value) < limit.minimum || len(p.Value) > limit.maximum {
			return fault.ErrInvalidDetails
		}
		if seen[p.Code] && !limit.repeat {
			return fault.ErrInvalidDetails
		}
		seen[p.Code] = true
	}
	return nil
}

// Get - value of the first parameter with the code
func (d Details) Get(code ParamCode) ([]byte, bool) {
	for _, p := range d {
		if code == p.Code {
			return p.Value, true
		}
	}
	return nil, false
}

// GetAll - values of every parameter with the code, in order
func (d Details) GetAll(code ParamCode) [][]byte {
	values := [][]byte(nil)
	for _, p := range d {
		if code == p.Code {
			values = append(values, p.Value)
		}
	}
	return values
}

// Has - true if the code is present
func (d Details) Has(code ParamCode) bool {
	_, ok := d.Get(code)
	return ok
}

// Flag - true if a one byte parameter is present and nonzero
func (d Details) Flag(code ParamCode) bool {
	v, ok := d.Get(code)
	return ok && len(v) > 0 && 0 != v[0]
}

// Uint32 - little-endian value of a parameter, zero if absent
func (d Details) Uint32(code ParamCode) (uint32, bool) {
	v, ok := d.Get(code)
	if !ok {
		return 0, false
	}
	return uint32(util.GetLE(v)), true
}

// Name - the entity name, empty if unnamed
func (d Details) Name() string {
	v, ok := d.Get(ParamName)
	if !ok {
		return ""
	}
	// a zero byte name is the same as no name
	if 1 == len(v) && 0 == v[0] {
		return ""
	}
	return string(v)
}

// CanonicalName - name used for case-insensitive uniqueness
func CanonicalName(name string) string {
	return strings.ToLower(name)
}

// With - copy of the details with the code set to value
func (d Details) With(code ParamCode, value []byte) Details {
	n := make(Details, 0, len(d)+1)
	replaced := false
	for _, p := range d {
		if code == p.Code && !replaced {
			n = append(n, Param{Code: code, Value: value})
			replaced = true
			continue
		}
		n = append(n, p)
	}
	if !replaced {
		n = append(n, Param{Code: code, Value: value})
	}
	return n
}

// Pack - the binary form of the details
func (d Details) Pack() Packed {
	buffer := util.ToVarint64(uint64(len(d)))
	for _, p := range d {
		buffer = append(buffer, byte(p.Code))
		buffer = appendBytes(buffer, p.Value)
	}
	return buffer
}

// UnpackDetails - decode a details block
func UnpackDetails(buffer []byte) (details Details, err error) {
	defer func() {
		if r := recover(); nil != r {
			err = fault.ErrNotDetailsPack
		}
	}()

	r := &reader{buffer: buffer}
	details = r.details()
	if !r.empty() {
		return nil, fault.ErrNotDetailsPack
	}
	return details, nil
}
