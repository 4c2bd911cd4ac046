// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/permchain/acceptance"
	"github.com/bitmark-inc/permchain/account"
	"github.com/bitmark-inc/permchain/chain"
	"github.com/bitmark-inc/permchain/entity"
	"github.com/bitmark-inc/permchain/merkle"
	"github.com/bitmark-inc/permchain/permission"
	"github.com/bitmark-inc/permchain/policy"
	"github.com/bitmark-inc/permchain/storage"
	"github.com/bitmark-inc/permchain/transactionrecord"
)

const (
	testingDirName = "testing"
)

func TestMain(m *testing.M) {
	_ = os.RemoveAll(testingDirName)
	_ = os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	_ = logger.Initialise(logging)

	rc := m.Run()

	logger.Finalise()
	_ = os.RemoveAll(testingDirName)
	os.Exit(rc)
}

func packed(tx *transactionrecord.Transaction) string {
	return hex.EncodeToString(tx.Pack())
}

func TestReplayFile(t *testing.T) {
	db, err := storage.OpenMemory()
	if nil != err {
		t.Fatalf("storage open error: %s", err)
	}
	defer db.Close()

	parameters := policy.New(chain.Main)
	if err := parameters.Validate(); nil != err {
		t.Fatalf("parameters error: %s", err)
	}
	permissions := permission.New(db, parameters.PermissionOptions())
	entities := entity.New(db)
	permissions.SetHeight(-1)
	entities.SetHeight(-1)
	validator := acceptance.New(permissions, entities, parameters)

	admin := account.Address{0xad}
	pay := func(elements ...transactionrecord.Element) transactionrecord.Script {
		return transactionrecord.Script{
			Kind:         transactionrecord.PubKeyHash,
			Destinations: []account.Address{admin},
			Elements:     elements,
		}
	}

	genesis := &transactionrecord.Transaction{
		Coinbase: true,
		Outputs: []transactionrecord.Output{
			{Script: pay(transactionrecord.PermissionGrant{Types: uint32(permission.GlobalAll), To: math.MaxUint32})},
			{Value: 50, Script: pay()},
		},
	}

	signature := append([]byte{71}, make([]byte, 71)...)
	signature[71] = byte(transactionrecord.SigHashAll)
	signature = append(signature, 33)
	signature = append(signature, make([]byte, 33)...)

	spend := &transactionrecord.Transaction{
		Inputs: []transactionrecord.Input{
			{
				Previous:        transactionrecord.OutPoint{TxId: genesis.TxId(), Index: 1},
				SignatureScript: signature,
			},
		},
		Outputs: []transactionrecord.Output{
			{Value: 50, Script: pay(transactionrecord.AssetGenesis{Quantity: 1000})},
		},
	}

	missing := &transactionrecord.Transaction{
		Inputs: []transactionrecord.Input{
			{
				Previous:        transactionrecord.OutPoint{TxId: merkle.NewDigest([]byte("nowhere"))},
				SignatureScript: signature,
			},
		},
		Outputs: []transactionrecord.Output{
			{Value: 1, Script: pay()},
		},
	}

	lines := []string{
		"# genesis",
		"block 1600000000",
		packed(genesis),
		"mempool",
		"",
		packed(spend),
		packed(missing),
		"block 1600000600",
		packed(spend),
	}

	directory, err := ioutil.TempDir("", "replay")
	if nil != err {
		t.Fatalf("temp dir error: %s", err)
	}
	defer os.RemoveAll(directory)
	fileName := filepath.Join(directory, "transactions.txt")
	if err := ioutil.WriteFile(fileName, []byte(strings.Join(lines, "\n")), 0600); nil != err {
		t.Fatalf("write error: %s", err)
	}

	r := newReplayer(logger.New("main"), validator, permissions, entities, nil, -1)
	err = r.replayFile(fileName)
	assert.Nil(t, err, "replay")
	r.finish()

	assert.Equal(t, 1, r.height, "height")
	assert.Equal(t, 3, r.accepted, "accepted")
	assert.Equal(t, 1, r.rejected, "rejected")
	assert.Equal(t, uint32(1600000600), validator.TipTime(), "tip time")
	assert.Nil(t, r.memOutputs, "mempool outputs dropped")
	assert.True(t, permissions.CanAdmin(permission.Global, admin), "admin")

	_, ok := r.outputs.Output(transactionrecord.OutPoint{TxId: genesis.TxId(), Index: 1})
	assert.False(t, ok, "genesis output spent")
	_, ok = r.outputs.Output(transactionrecord.OutPoint{TxId: spend.TxId(), Index: 0})
	assert.True(t, ok, "new output")

	// the asset issued in the mempool was confirmed by the block
	asset, ok := entities.FindEntityByTxId(spend.TxId())
	assert.True(t, ok, "asset")
	assert.Equal(t, 1, asset.Block, "asset block")
	assert.Equal(t, 0, asset.Offset, "asset offset")
	total, _ := entities.GetTotalQuantity(spend.TxId())
	assert.Equal(t, int64(1000), total, "asset total")
}

func TestReplayMemPoolSpendsAreDiscarded(t *testing.T) {
	outputs := make(acceptance.OutputSet)
	coinbase := &transactionrecord.Transaction{
		Coinbase: true,
		Outputs:  []transactionrecord.Output{{Value: 1}},
	}
	outputs.Add(coinbase)

	r := &replayer{outputs: outputs}
	r.memOutputs = r.outputs.Copy()
	r.memOutputs.Spend(&transactionrecord.Transaction{
		Inputs: []transactionrecord.Input{{Previous: transactionrecord.OutPoint{TxId: coinbase.TxId()}}},
	})

	_, ok := r.outputs.Output(transactionrecord.OutPoint{TxId: coinbase.TxId()})
	assert.True(t, ok, "confirmed output kept")
	_, ok = r.memOutputs.Output(transactionrecord.OutPoint{TxId: coinbase.TxId()})
	assert.False(t, ok, "mempool output spent")
}

func TestReplayBadLine(t *testing.T) {
	r := &replayer{}
	assert.NotNil(t, r.line("block"), "missing time")
	assert.NotNil(t, r.line("zz"), "not hex")
}
