// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package filter_test

import (
	"os"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/permchain/account"
	"github.com/bitmark-inc/permchain/chain"
	"github.com/bitmark-inc/permchain/entity"
	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/filter"
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

type stores struct {
	t           *testing.T
	permissions *permission.Store
	entities    *entity.Store
	admin       account.Address
}

func setup(t *testing.T) *stores {
	db, err := storage.OpenMemory()
	if nil != err {
		t.Fatalf("storage open error: %s", err)
	}
	t.Cleanup(db.Close)

	s := &stores{
		t:           t,
		permissions: permission.New(db, policy.New(chain.Main).PermissionOptions()),
		entities:    entity.New(db),
		admin:       account.Address{0xad},
	}
	s.permissions.SetHeight(0)
	s.entities.SetHeight(0)
	return s
}

// insert a filter entity and give it the admin's approval
func (s *stores) filter(name string, code string, approved bool) merkle.ShortId {
	txId := merkle.NewDigest([]byte("filter " + name))
	d := transactionrecord.Details{
		{Code: transactionrecord.ParamName, Value: []byte(name)},
		{Code: transactionrecord.ParamFilterCode, Value: []byte(code)},
	}
	if err := s.entities.InsertEntity(txId, -1, transactionrecord.Filter, d); nil != err {
		s.t.Fatalf("insert filter: %s  error: %s", name, err)
	}
	if err := s.permissions.SetApproval(txId, approved, s.admin, 0, 0, 0, -1); nil != err {
		s.t.Fatalf("approve filter: %s  error: %s", name, err)
	}
	return txId.ShortId()
}

func payment(value int64) *transactionrecord.Transaction {
	return &transactionrecord.Transaction{
		Inputs: []transactionrecord.Input{
			{Previous: transactionrecord.OutPoint{TxId: merkle.NewDigest([]byte("previous")), Index: 1}},
		},
		Outputs: []transactionrecord.Output{
			{
				Value: value,
				Script: transactionrecord.Script{
					Kind:         transactionrecord.PubKeyHash,
					Destinations: []account.Address{{0x01}},
				},
			},
		},
	}
}

const limitValue = `
function filtertransaction(tx)
  for _, out in ipairs(tx.vout) do
    if out.value > 100 then
      return "value too large: " .. out.value
    end
  end
end
`

func TestRunTxFilters(t *testing.T) {
	s := setup(t)
	g := filter.New(s.entities, s.permissions, 0)

	id := s.filter("limit", limitValue, true)
	assert.Nil(t, g.Add(id, true), "add")

	reason, applied, count := g.RunTxFilters(payment(100), nil, false)
	assert.Equal(t, "", reason, "passed")
	assert.Equal(t, 1, count, "count")

	reason, applied, count = g.RunTxFilters(payment(101), nil, false)
	assert.Equal(t, "value too large: 101", reason, "rejected")
	assert.Equal(t, id, applied, "applied")
	assert.Equal(t, 1, count, "count")
}

func TestFilterOrder(t *testing.T) {
	s := setup(t)
	g := filter.New(s.entities, s.permissions, 0)

	first := s.filter("first", "function filtertransaction(tx) return 'first' end", true)
	second := s.filter("second", "function filtertransaction(tx) return 'second' end", true)
	assert.Nil(t, g.Add(first, true), "add")
	assert.Nil(t, g.Add(second, true), "add")
	assert.Nil(t, g.Add(first, true), "add twice")
	assert.Equal(t, []merkle.ShortId{first, second}, g.Active(), "active")

	reason, applied, count := g.RunTxFilters(payment(1), nil, false)
	assert.Equal(t, "first", reason, "reason")
	assert.Equal(t, first, applied, "applied")
	assert.Equal(t, 1, count, "count")
}

func TestDisapprovedFilterSkipped(t *testing.T) {
	s := setup(t)
	g := filter.New(s.entities, s.permissions, 0)

	id := s.filter("blocker", "function filtertransaction(tx) return 'blocked' end", false)
	assert.Nil(t, g.Add(id, true), "add")

	reason, _, count := g.RunTxFilters(payment(1), nil, false)
	assert.Equal(t, "", reason, "reason")
	assert.Equal(t, 0, count, "count")
}

func TestPendingUntilActivate(t *testing.T) {
	s := setup(t)
	g := filter.New(s.entities, s.permissions, 0)

	id := s.filter("blocker", "function filtertransaction(tx) return 'blocked' end", true)
	assert.Nil(t, g.Add(id, false), "add")
	assert.Equal(t, 0, len(g.Active()), "none active")

	reason, _, _ := g.RunTxFilters(payment(1), nil, false)
	assert.Equal(t, "", reason, "before activate")

	g.Activate()
	reason, _, _ = g.RunTxFilters(payment(2), nil, false)
	assert.Equal(t, "blocked", reason, "after activate")
}

func TestClearMemPool(t *testing.T) {
	s := setup(t)
	g := filter.New(s.entities, s.permissions, 0)

	confirmed := s.filter("confirmed", "function filtertransaction(tx) return '' end", true)
	unconfirmed := s.filter("unconfirmed", "function filtertransaction(tx) return 'blocked' end", true)
	assert.Nil(t, g.Add(confirmed, false), "add from block")
	g.Activate()
	assert.Nil(t, g.Add(unconfirmed, true), "add from mempool")
	assert.Equal(t, []merkle.ShortId{confirmed, unconfirmed}, g.Active(), "active")

	g.ClearMemPool()
	assert.Equal(t, []merkle.ShortId{confirmed}, g.Active(), "mempool filter dropped")

	reason, _, count := g.RunTxFilters(payment(3), nil, false)
	assert.Equal(t, "", reason, "reason")
	assert.Equal(t, 1, count, "count")

	// the block confirming it adds it again
	assert.Nil(t, g.Add(unconfirmed, false), "add from block")
	g.Activate()
	assert.Equal(t, []merkle.ShortId{confirmed, unconfirmed}, g.Active(), "confirmed")
	g.ClearMemPool()
	assert.Equal(t, []merkle.ShortId{confirmed, unconfirmed}, g.Active(), "kept")
}

func TestOnlyOnce(t *testing.T) {
	s := setup(t)
	g := filter.New(s.entities, s.permissions, 0)

	id := s.filter("limit", limitValue, true)
	assert.Nil(t, g.Add(id, true), "add")

	tx := payment(5)
	_, _, count := g.RunTxFilters(tx, nil, false)
	assert.Equal(t, 1, count, "mempool count")

	_, _, count = g.RunTxFilters(tx, nil, true)
	assert.Equal(t, 0, count, "block count")

	_, _, count = g.RunTxFilters(payment(6), nil, true)
	assert.Equal(t, 1, count, "unseen count")
}

func TestRelevantEntities(t *testing.T) {
	s := setup(t)
	g := filter.New(s.entities, s.permissions, 0)

	asset := merkle.ShortId{0x42}
	code := `
function filtertransaction(tx)
  for _, id in ipairs(tx.relevant) do
    if id == "` + asset.String() + `" then
      return "asset frozen"
    end
  end
end
`
	id := s.filter("freeze", code, true)
	assert.Nil(t, g.Add(id, true), "add")

	reason, _, _ := g.RunTxFilters(payment(1), []merkle.ShortId{{0x01}}, false)
	assert.Equal(t, "", reason, "other asset")

	reason, _, _ = g.RunTxFilters(payment(2), []merkle.ShortId{{0x01}, asset}, false)
	assert.Equal(t, "asset frozen", reason, "frozen asset")
}

func TestFilterFailures(t *testing.T) {
	s := setup(t)
	g := filter.New(s.entities, s.permissions, 50*time.Millisecond)

	loop := s.filter("loop", "function filtertransaction(tx) while true do end end", true)
	assert.Nil(t, g.Add(loop, true), "add")
	reason, applied, _ := g.RunTxFilters(payment(1), nil, false)
	assert.Equal(t, "filter timed out", reason, "timeout")
	assert.Equal(t, loop, applied, "applied")

	s2 := setup(t)
	g2 := filter.New(s2.entities, s2.permissions, 0)
	missing := s2.filter("missing", "local x = 1", true)
	assert.Nil(t, g2.Add(missing, true), "add")
	reason, _, _ = g2.RunTxFilters(payment(1), nil, false)
	assert.Equal(t, fault.ErrFilterEntryPoint.Error(), reason, "no entry point")

	s3 := setup(t)
	g3 := filter.New(s3.entities, s3.permissions, 0)
	sandboxed := s3.filter("sandboxed", "function filtertransaction(tx) dofile('/etc/passwd') end", true)
	assert.Nil(t, g3.Add(sandboxed, true), "add")
	reason, _, _ = g3.RunTxFilters(payment(1), nil, false)
	assert.NotEqual(t, "", reason, "dofile removed")
}

func TestAddNotFilter(t *testing.T) {
	s := setup(t)
	g := filter.New(s.entities, s.permissions, 0)

	assert.Equal(t, fault.ErrEntityNotFound, g.Add(merkle.ShortId{0x99}, true), "missing")

	txId := merkle.NewDigest([]byte("stream"))
	d := transactionrecord.Details{{Code: transactionrecord.ParamName, Value: []byte("news")}}
	if err := s.entities.InsertEntity(txId, -1, transactionrecord.Stream, d); nil != err {
		t.Fatalf("insert stream error: %s", err)
	}
	assert.Equal(t, fault.ErrNotFilterEntity, g.Add(txId.ShortId(), true), "stream")
}
