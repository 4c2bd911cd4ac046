// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ConservationError GenericError
type ExistsError GenericError
type FilterError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type PermissionError GenericError
type ProcessError GenericError
type ScriptError GenericError

// record, codec and setup errors - keep in alphabetic order
var (
	ErrAlreadyInitialised     = InvalidError("already initialised")
	ErrChecksumMismatch       = InvalidError("checksum mismatch")
	ErrInvalidAddress         = InvalidError("invalid address")
	ErrInvalidChain           = InvalidError("invalid chain")
	ErrInvalidCount           = InvalidError("invalid count")
	ErrInvalidDigest          = InvalidError("invalid digest")
	ErrInvalidFee             = InvalidError("invalid fee")
	ErrInvalidLength          = InvalidError("invalid length")
	ErrInvalidPermissionName  = InvalidError("invalid permission name")
	ErrInvalidProtocolVersion = InvalidError("invalid protocol version")
	ErrInvalidShortId         = InvalidError("invalid short id")
	ErrNotDetailsPack         = InvalidError("not details pack")
	ErrNotEntityRecord        = InvalidError("not entity record")
	ErrNotFilterEntity        = InvalidError("entity is not a transaction filter")
	ErrNotPermissionRecord    = InvalidError("not permission record")
	ErrNotTransactionPack     = InvalidError("not transaction pack")
	ErrUnknownElement         = InvalidError("unknown script element")
	ErrUnknownScriptKind      = InvalidError("unknown script kind")
	ErrCheckpointInUse        = ProcessError("checkpoint already in use")
	ErrDatabaseNotInitialised = ProcessError("database is not initialised")
	ErrInvalidDatabaseVersion = ProcessError("database version is not supported")
	ErrEntityNotFound         = NotFoundError("entity not found")
	ErrFilterEntryPoint       = NotFoundError("filter does not define filtertransaction")
	ErrInputNotFound          = NotFoundError("previous output not found")
	ErrDuplicateEntity        = ExistsError("entity already exists")
	ErrNotAllowed             = PermissionError("not allowed")
)

// transaction rejection reasons
//
// the text of these is reported to the submitter so it is kept
// stable across releases
var (
	// structure of inputs
	ErrMetadataInputsNotAllowed   = ScriptError("Non-standard, P2PK or bare multisig inputs cannot be used in this tx")
	ErrSighashSingleWithoutOutput = ScriptError("SIGHASH_SINGLE input without matching output")
	ErrSigScriptNotPushOnly       = ScriptError("sigScript should be push-only")

	// structure of metadata outputs
	ErrCachedScriptError          = ScriptError("Metadata script rejected - error in cached script")
	ErrCachedScriptInvalidInput   = ScriptError("Metadata script rejected - invalid input in cached script")
	ErrCachedScriptMismatch       = ScriptError("Metadata script rejected - cached script mismatch")
	ErrDirtyMetadata              = ScriptError("Metadata script rejected - only metadata elements are allowed in data outputs")
	ErrEntityDetails              = ScriptError("Entity details script rejected - error in script")
	ErrEntityUpdateTypeMismatch   = ScriptError("Metadata script rejected - entity type mismatch in update script")
	ErrEntityUpdateWithoutRef     = ScriptError("Metadata script rejected - entity update script should be preceded by entityref")
	ErrItemKeyTooLong             = ScriptError("Metadata script rejected - item key is too long")
	ErrMetadataEntityNotFound     = ScriptError("Metadata script rejected - entity not found")
	ErrOffChainItemNotAllowed     = ScriptError("Metadata script rejected - off-chain items are not allowed in this stream")
	ErrOnChainItemNotAllowed      = ScriptError("Metadata script rejected - on-chain items are not allowed in this stream")
	ErrShouldBeApproval           = ScriptError("Metadata script rejected - wrong element, should be upgrade approval")
	ErrShouldBeEntityRef          = ScriptError("Metadata script rejected - wrong element, should be entityref")
	ErrShouldBeEntityUpdate       = ScriptError("Metadata script rejected - wrong element, should be entity update")
	ErrShouldBeItemKey            = ScriptError("Metadata script rejected - wrong element, should be item key")
	ErrTooManyApprovalElements    = ScriptError("Metadata script rejected - too many elements in upgrade approval script")
	ErrTooManyCachedScripts       = ScriptError("Metadata script rejected - too many cached scripts")
	ErrTooManyElements            = ScriptError("Metadata script rejected - too many elements")
	ErrTooManyEntityUpdates       = ScriptError("Metadata script rejected - too many new entities/entity updates")
	ErrTooManyNewEntities         = ScriptError("Metadata script rejected - too many new entities")
	ErrTooManyUpdateElements      = ScriptError("Metadata script rejected - too many elements in asset update script")
	ErrUnrecognisedMetadata       = ScriptError("Metadata script rejected - Unrecognized script, should be new entity or input script cache")
	ErrUnsaltedOffChainItem       = ScriptError("Metadata script rejected - off-chain item requires salt")
	ErrUnsupportedEntityType      = ScriptError("Metadata script rejected - unsupported new entity type")
	ErrUnsupportedItemEntityType  = ScriptError("Metadata script rejected - unsupported entity type")
	ErrVariableValueMissing       = ScriptError("Variable script rejected - value details are missing")
	ErrNewVariableWithValueOutput = ScriptError("Variable script rejected - not allowed in this transaction, conflicts with other entities")

	// structure of value outputs
	ErrDestinationRequired    = ScriptError("Script rejected - destination required")
	ErrDuplicateEntityScript  = ScriptError("Script rejected - duplicate entity script")
	ErrEntityWithoutGrant     = ScriptError("Script rejected - entity script should be followed by permission")
	ErrIncompleteEntityScript = ScriptError("Script rejected - incomplete entity script")
	ErrMultisigNotAllowed     = ScriptError("Script rejected - multisig is not allowed")
	ErrNegativeValue          = ScriptError("Script rejected - negative output value")
	ErrP2SHNotAllowed         = ScriptError("Script rejected - P2SH is not allowed")
	ErrPermissionDestination  = ScriptError("Permission script rejected - wrong destination type")
	ErrScriptEntityNotFound   = ScriptError("Script rejected - entity not found")
	ErrUnexpectedValueElement = ScriptError("Script rejected - unexpected element in value output")
	ErrDustOutput             = ScriptError("Transaction amount too small")

	// issuance
	ErrAssetDetails             = ScriptError("Asset details script rejected - error in script")
	ErrAssetIssueDestination    = ScriptError("Asset issue script rejected - wrong destination type")
	ErrAssetIssueWithTransfer   = ScriptError("Asset issue script rejected - asset transfer in script")
	ErrFollowOnAndIssue         = ScriptError("Asset follow-on script rejected - follow-on and issue in one transaction")
	ErrFollowOnAssetMismatch    = ScriptError("Asset follow-on script rejected - mismatch in follow-on quantity asset and details script")
	ErrFollowOnAssetNotFound    = ScriptError("Asset follow-on script rejected - asset not found")
	ErrFollowOnForSeveralAssets = ScriptError("Asset follow-on script rejected - follow-on for several assets")
	ErrFollowOnsNotAllowed      = ScriptError("Asset follow-on script rejected - follow-ons not allowed for this asset")
	ErrIssueConflictsWithEntity = ScriptError("Asset issue script rejected - not allowed in this transaction, conflicts with other entities")
	ErrLicenseAddress           = ScriptError("License token rejected - issue address does not match destination")
	ErrLicenseFields            = ScriptError("License token rejected - invalid set of metadata fields")
	ErrLicenseMultiple          = ScriptError("License token rejected - multiple should be 1")
	ErrLicenseName              = ScriptError("License token rejected - name does not match confirmation")
	ErrLicenseOutputs           = ScriptError("License token rejected - exactly one issuance output is required")
	ErrLicenseQuantity          = ScriptError("License token rejected - total quantity should be 1")
	ErrLicenseSignature         = ScriptError("License token rejected - invalid signature placeholder")
	ErrLicenseTimestamp         = ScriptError("License token rejected - timestamp is out of range")
	ErrLicenseVersion           = ScriptError("License token rejected - required version is higher than current")
	ErrNegativeIssueQuantity    = ScriptError("Asset issue script rejected - negative quantity")
	ErrAssetIssueOverflow       = ConservationError("Asset issue script rejected - overflow")
	ErrFollowOnExceedsMaximum   = ConservationError("Asset follow-on script rejected - exceeds maximal value for asset")
	ErrAssetExists              = ExistsError("Asset issue script rejected - entity with this name/asset-ref/txid already exists")
	ErrEntityExists             = ExistsError("New entity script rejected - entity with this name already exists")
	ErrCannotInsertAsset        = ProcessError("Asset issue script rejected - could not insert new asset to database")
	ErrCannotInsertEntity       = ProcessError("New entity script rejected - could not insert new entity to database")
	ErrCannotUpdateAssetGrants  = ProcessError("Cannot update permission database for issued asset")
	ErrCannotUpdateEntityGrants = ProcessError("Cannot update permission database for new entity")
	ErrEntityScriptError        = ScriptError("New entity script rejected - error in script")
	ErrInvalidDetails           = ScriptError("details script is invalid")

	// conservation
	ErrAssetQuantityMismatch   = ConservationError("Asset transfer script rejected - mismatch in input/output quantities")
	ErrInsufficientFee         = ConservationError("Insufficient mandatory fee")
	ErrIssueTxNotFound         = ConservationError("Asset transfer script rejected - issue tx not found")
	ErrTooManyRestrictedAssets = ConservationError("Asset transfer script rejected - more than one restricted asset")
	ErrTransferAssetNotFound   = ConservationError("Asset transfer script rejected - asset not found")
	ErrValueOverflow           = ConservationError("Transaction rejected - value overflow")

	// authority
	ErrAssetReceiveNotAllowed      = PermissionError("Asset transfer script rejected - destination does not have receive permission for restricted asset")
	ErrAssetSendNotAllowed         = PermissionError("Asset transfer script rejected - input does not have send permission for restricted asset")
	ErrInputsNotValidAdmin         = PermissionError("Inputs don't belong to valid admin")
	ErrInputsNotValidApprovalAdmin = PermissionError("Inputs don't belong to valid admin for approval script")
	ErrInputsNotValidCreator       = PermissionError("Metadata script rejected - Inputs don't belong to valid creator")
	ErrInputsNotValidIssuer        = PermissionError("Inputs don't belong to valid issuer")
	ErrInputsNotValidPublisher     = PermissionError("Metadata script rejected - Inputs don't belong to valid publisher")
	ErrInputsNotValidWriter        = PermissionError("Variable script rejected - Inputs don't belong to valid writer")
	ErrInputsRequireCachedScript   = PermissionError("Inputs require scriptPubKey cache to support miner precheck")
	ErrMetadataNotSigned           = PermissionError("Output with metadata should be properly signed")
	ErrOutputCannotReceive         = PermissionError("One of the outputs doesn't have receive permission")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ConservationError) Error() string { return string(e) }
func (e ExistsError) Error() string       { return string(e) }
func (e FilterError) Error() string       { return string(e) }
func (e InvalidError) Error() string      { return string(e) }
func (e NotFoundError) Error() string     { return string(e) }
func (e PermissionError) Error() string   { return string(e) }
func (e ProcessError) Error() string      { return string(e) }
func (e ScriptError) Error() string       { return string(e) }

// determine the class of an error
func IsErrConservation(e error) bool { _, ok := e.(ConservationError); return ok }
func IsErrExists(e error) bool       { _, ok := e.(ExistsError); return ok }
func IsErrFilter(e error) bool       { _, ok := e.(FilterError); return ok }
func IsErrInvalid(e error) bool      { _, ok := e.(InvalidError); return ok }
func IsErrNotFound(e error) bool     { _, ok := e.(NotFoundError); return ok }
func IsErrPermission(e error) bool   { _, ok := e.(PermissionError); return ok }
func IsErrProcess(e error) bool      { _, ok := e.(ProcessError); return ok }
func IsErrScript(e error) bool       { _, ok := e.(ScriptError); return ok }
