// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package acceptance

import (
	"github.com/bitmark-inc/permchain/transactionrecord"
)

// OutputSet - an in-memory PreviousOutputs
type OutputSet map[transactionrecord.OutPoint]*transactionrecord.Output

// Add - make every output of a transaction spendable
func (s OutputSet) Add(tx *transactionrecord.Transaction) {
	txId := tx.TxId()
	for i := range tx.Outputs {
		s[transactionrecord.OutPoint{TxId: txId, Index: uint32(i)}] = &tx.Outputs[i]
	}
}

// Spend - remove the outputs a transaction consumes
func (s OutputSet) Spend(tx *transactionrecord.Transaction) {
	if tx.Coinbase {
		return
	}
	for _, input := range tx.Inputs {
		delete(s, input.Previous)
	}
}

// Output - look up one previous output
func (s OutputSet) Output(point transactionrecord.OutPoint) (*transactionrecord.Output, bool) {
	out, ok := s[point]
	return out, ok
}

// Copy - an independent set holding the same outputs
func (s OutputSet) Copy() OutputSet {
	c := make(OutputSet, len(s))
	for point, out := range s {
		c[point] = out
	}
	return c
}
