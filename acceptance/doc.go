// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package acceptance - the transaction validation core
//
// A transaction is accepted by running a fixed sequence of stages
// over a per-transaction Context:
//
//	resolve inputs
//	checkpoint the permission and entity stores
//	classify outputs, check cached scripts
//	permission grants in three passes (low, high, admin/mine)
//	entity items (stream items, updates, approvals)
//	asset and variable issuance
//	mandatory fee
//	asset conservation, dust and receive checks
//	entity creation (streams, upgrades, filters)
//	emergency filter bypass detection
//	user filters and the custom hook
//	commit or roll back
//
// Every stage returns the first error found; the error text is the
// rejection reason reported to the caller. Store mutations made by a
// rejected transaction, or by any check run with commit=false, are
// rolled back before AcceptTransaction returns.
package acceptance
