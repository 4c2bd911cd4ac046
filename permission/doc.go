// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package permission - address and entity scoped permission ledger
//
// Each record holds one permission bit for an (entity, address) pair
// with the block range in which it is active. The zero entity holds
// chain wide permissions. Upgrade and filter votes are kept per
// admin alongside the records.
package permission
