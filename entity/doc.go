// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package entity - registry of assets, streams, upgrades, filters,
// variables and license tokens
//
// Entities are found by creation txId, by short id, by case
// insensitive name or by "block-offset-prefix" reference once
// confirmed. Follow-on issues and variable updates are chained to the
// creating record and carry the running issued total.
package entity
