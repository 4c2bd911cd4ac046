// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
// without having to resort to partial string matches
//
// every transaction rejection reason is one of these values, its
// class tells the caller whether the rejection is structural, a
// missing permission, a conservation failure, a duplicate entity or
// an internal store problem
package fault
