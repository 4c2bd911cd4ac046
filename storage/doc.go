// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk permission and entity stores
//
// Two LevelDB databases are used, each split into a series of pools.
// Each pool is defined by a prefix byte that is obtained from the
// prefix tag in the struct defining the available pools. Every
// database has its own Access so the two can checkpoint and roll
// back independently.
//
// Notes:
// 1. each separate pool has a single byte prefix (to spread the keys in LevelDB)
// 2. ++           = concatenation of byte data
// 3. entity       = 32 byte creation txId, all zero for global
// 4. address      = 20 byte destination
// 5. type         = single permission bit as big endian uint32 (4 bytes)
// 6. short id     = bytes 16..31 of the creation txId
//
// Permissions database:
//
//	P ++ entity ++ address ++ type  - permission record
//	                                  data: packed permission record
//	V ++ entity ++ address          - upgrade/filter vote
//	                                  data: packed approval record
//
// Entities database:
//
//	E ++ txId                       - entity record
//	                                  data: packed entity record
//	N ++ lower case name            - name index
//	                                  data: txId
//	S ++ short id                   - short id index
//	                                  data: txId
//	R ++ block ++ offset ++ prefix  - full reference index
//	                                  data: txId
//	Q ++ txId                       - asset running total
//	                                  data: total ++ chain index
//	F ++ txId ++ chain index        - follow-on issues and updates in order
//	                                  data: follow-on txId
package storage
