// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permchain/acceptance"
	"github.com/bitmark-inc/permchain/entity"
	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/filter"
	"github.com/bitmark-inc/permchain/permission"
	"github.com/bitmark-inc/permchain/transactionrecord"
)

// feeds transaction files through the validator
//
// spendable outputs are only those created during this run; mempool
// transactions spend from a copy that each block discards
type replayer struct {
	log         *logger.L
	validator   *acceptance.Validator
	permissions *permission.Store
	entities    *entity.Store
	filters     *filter.Gateway
	outputs     acceptance.OutputSet
	memOutputs  acceptance.OutputSet

	height    int
	inBlock   bool
	offset    int
	blockTime uint32

	checkOnly bool
	verbose   bool

	accepted int
	rejected int
}

func newReplayer(log *logger.L, validator *acceptance.Validator, permissions *permission.Store, entities *entity.Store, filters *filter.Gateway, height int) *replayer {
	return &replayer{
		log:         log,
		validator:   validator,
		permissions: permissions,
		entities:    entities,
		filters:     filters,
		outputs:     make(acceptance.OutputSet),
		height:      height,
	}
}

func (r *replayer) replayFile(fileName string) error {
	f, err := os.Open(fileName)
	if nil != err {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 65536), 16*1024*1024)

	n := 0
	for scanner.Scan() {
		n += 1
		line := strings.TrimSpace(scanner.Text())
		if "" == line || strings.HasPrefix(line, "#") {
			continue
		}
		if err := r.line(line); nil != err {
			return fmt.Errorf("line: %d  error: %s", n, err)
		}
	}
	return scanner.Err()
}

func (r *replayer) line(line string) error {
	words := strings.Fields(line)
	switch words[0] {
	case "block":
		if 2 != len(words) {
			return fault.ErrInvalidCount
		}
		timestamp, err := strconv.ParseUint(words[1], 10, 32)
		if nil != err {
			return err
		}
		r.finish()
		if err := r.clearMemPool(); nil != err {
			return err
		}
		r.inBlock = true
		r.offset = 0
		r.blockTime = uint32(timestamp)
		return nil

	case "mempool":
		r.finish()
		return nil
	}

	buffer, err := hex.DecodeString(line)
	if nil != err {
		return err
	}
	tx, n, err := transactionrecord.Packed(buffer).Unpack()
	if nil != err {
		return err
	}
	if n != len(buffer) {
		return fault.ErrInvalidLength
	}
	r.accept(tx)
	return nil
}

func (r *replayer) accept(tx *transactionrecord.Transaction) {
	offset := -1
	if r.inBlock {
		offset = r.offset
		r.offset += 1
	}

	outputs := r.outputs
	if !r.inBlock {
		if nil == r.memOutputs {
			r.memOutputs = r.outputs.Copy()
		}
		outputs = r.memOutputs
	}

	result := r.validator.AcceptTransaction(tx, outputs, offset, !r.checkOnly)
	txId := tx.TxId()
	if !result.Accepted {
		r.rejected += 1
		r.log.Warnf("rejected: tx: %v  offset: %d  reason: %s", txId, offset, result.Reason)
		fmt.Printf("%v rejected: %s\n", txId, result.Reason)
		return
	}

	r.accepted += 1
	if !r.checkOnly {
		outputs.Spend(tx)
		outputs.Add(tx)
	}
	if result.SeedNodeLostConnect {
		fmt.Printf("%v seed node lost connect permission\n", txId)
	}
	if r.verbose {
		fmt.Printf("%v accepted: replay: 0x%02x  fee: %d  filters: %d  bypass: %s\n",
			txId, uint32(result.Replay), result.MandatoryFee, result.FiltersApplied, result.Bypass)
	}
}

// a block replaces the mempool: undo its store changes and forget
// its outputs before the block's transactions are accepted
func (r *replayer) clearMemPool() error {
	r.memOutputs = nil
	return r.validator.ClearMemPool()
}

// close the open block: its records become active and its filters
// take effect
func (r *replayer) finish() {
	if !r.inBlock {
		return
	}
	r.inBlock = false
	r.height += 1
	r.permissions.SetHeight(r.height)
	r.entities.SetHeight(r.height)
	r.validator.SetTipTime(r.blockTime)
	if nil != r.filters {
		r.filters.Activate()
	}
	r.log.Infof("block: %d  transactions: %d  time: %d", r.height, r.offset, r.blockTime)
}
