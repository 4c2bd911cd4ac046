// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package acceptance

import (
	"bytes"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/transactionrecord"
)

// a license timestamp may differ from the chain tip by this much
const licenseTimeWindow = 30 * 24 * 60 * 60

// every license token carries exactly these fields
var licenseFields = []transactionrecord.ParamCode{
	transactionrecord.ParamName,
	transactionrecord.ParamLicenseHash,
	transactionrecord.ParamLicenseIssueAddress,
	transactionrecord.ParamLicenseConfirmationTime,
	transactionrecord.ParamLicenseConfirmationRef,
	transactionrecord.ParamLicensePublicKey,
	transactionrecord.ParamLicenseMinNode,
	transactionrecord.ParamLicenseMinProtocol,
	transactionrecord.ParamLicenseSignature,
	transactionrecord.ParamTimestamp,
}

// the fields covered by the confirmation hash, in hash order
var licenseConfirmationFields = []transactionrecord.ParamCode{
	transactionrecord.ParamLicenseHash,
	transactionrecord.ParamLicenseIssueAddress,
	transactionrecord.ParamLicenseConfirmationTime,
	transactionrecord.ParamLicenseConfirmationRef,
	transactionrecord.ParamLicensePublicKey,
	transactionrecord.ParamLicenseMinNode,
	transactionrecord.ParamLicenseMinProtocol,
}

// LicenseName - the name a license token must carry
//
// "license-" and four groups of four hex digits from the start of the
// SHA3-256 hash of code ++ length ++ value for each confirmation field
func LicenseName(details transactionrecord.Details) string {
	buffer := []byte(nil)
	for _, code := range licenseConfirmationFields {
		value, _ := details.Get(code)
		buffer = append(buffer, byte(code), byte(len(value)))
		buffer = append(buffer, value...)
	}
	hash := sha3.Sum256(buffer)

	groups := make([]string, 4)
	for i := range groups {
		groups[i] = hex.EncodeToString(hash[2*i : 2*i+2])
	}
	return "license-" + strings.Join(groups, "-")
}

// a license token replaces the issue permission check with a strict
// check of its single output and its metadata
func (v *Validator) checkLicense(ctx *Context, details transactionrecord.Details, is *issuance) error {
	if 1 != len(is.genesisOutputs) {
		return fault.ErrLicenseOutputs
	}

	allowed := [256]bool{}
	for _, code := range licenseFields {
		allowed[code] = true
		if !details.Has(code) {
			return fault.ErrLicenseFields
		}
	}
	allowed[transactionrecord.ParamMultiple] = true
	for _, p := range details {
		if !allowed[p.Code] {
			return fault.ErrLicenseFields
		}
	}

	if multiple, ok := details.Uint32(transactionrecord.ParamMultiple); ok && 1 != multiple {
		return fault.ErrLicenseMultiple
	}
	if 1 != is.genesisTotal {
		return fault.ErrLicenseQuantity
	}
	if details.Name() != LicenseName(details) {
		return fault.ErrLicenseName
	}

	address, _ := details.Get(transactionrecord.ParamLicenseIssueAddress)
	destination, ok := ctx.tx.Outputs[is.genesisOutputs[0]].Script.Destination()
	if !ok || !bytes.Equal(address, destination[:]) {
		return fault.ErrLicenseAddress
	}

	minimumNode, _ := details.Uint32(transactionrecord.ParamLicenseMinNode)
	minimumProtocol, _ := details.Uint32(transactionrecord.ParamLicenseMinProtocol)
	if int64(minimumNode) > int64(v.features.NodeVersion()) || int64(minimumProtocol) > int64(v.features.ProtocolVersion()) {
		return fault.ErrLicenseVersion
	}

	signature, _ := details.Get(transactionrecord.ParamLicenseSignature)
	if 1 != len(signature) || 0 != signature[0] {
		return fault.ErrLicenseSignature
	}

	timestamp, _ := details.Uint32(transactionrecord.ParamTimestamp)
	delta := int64(timestamp) - int64(v.TipTime())
	if delta > licenseTimeWindow || delta < -licenseTimeWindow {
		return fault.ErrLicenseTimestamp
	}
	return nil
}
