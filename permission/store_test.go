// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package permission_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/permission"
)

const forever = 0xffffffff

var (
	admin    = makeAddress(0x01)
	user     = makeAddress(0x02)
	stranger = makeAddress(0x03)
)

func TestAdminBeforeGenesis(t *testing.T) {
	s, db := newStore(t, permission.Options{})
	defer db.Close()

	assert.True(t, s.CanAdmin(permission.Global, stranger), "anyone is admin before genesis")

	err := s.SetPermission(permission.Global, admin, permission.GlobalAll, admin, 0, forever, 0, permission.FlagNone, 0)
	assert.Nil(t, err, "genesis grant")

	s.SetHeight(0)
	assert.True(t, s.CanAdmin(permission.Global, admin), "admin")
	assert.False(t, s.CanAdmin(permission.Global, stranger), "stranger")
	assert.True(t, s.CanMine(permission.Global, admin), "mine")
}

func TestImplicitPermissions(t *testing.T) {
	s, db := newStore(t, permission.Options{})
	defer db.Close()

	assert.Nil(t, s.SetPermission(permission.Global, admin, permission.Admin, admin, 0, forever, 0, permission.FlagNone, 0), "admin")
	s.SetHeight(0)

	assert.Nil(t, s.SetPermission(permission.Global, user, permission.Issue, admin, 0, forever, 0, permission.FlagNone, 0), "issue")

	assert.True(t, s.CanConnect(permission.Global, admin), "admin connects")
	assert.True(t, s.CanSend(permission.Global, admin), "admin sends")
	assert.True(t, s.CanReceive(permission.Global, admin), "admin receives")
	assert.True(t, s.CanActivate(permission.Global, admin), "admin activates")
	assert.False(t, s.CanWrite(permission.Global, admin), "write is never implicit")

	assert.True(t, s.CanSend(permission.Global, user), "issuer sends")
	assert.False(t, s.CanReceive(permission.Global, user), "issuer does not receive")
	assert.False(t, s.CanConnect(permission.Global, user), "issuer does not connect")
}

func TestAnyoneCan(t *testing.T) {
	s, db := newStore(t, permission.Options{
		AnyoneCanReceive: true,
		AnyoneCanConnect: true,
	})
	defer db.Close()
	s.SetHeight(10)

	entity := makeEntity("stream")
	assert.True(t, s.CanReceive(permission.Global, stranger), "global receive")
	assert.True(t, s.CanConnect(permission.Global, stranger), "global connect")
	assert.False(t, s.CanReceive(entity, stranger), "entity receive")
	assert.False(t, s.CanSend(permission.Global, stranger), "global send")
}

func TestBlockRange(t *testing.T) {
	s, db := newStore(t, permission.Options{})
	defer db.Close()

	assert.Nil(t, s.SetPermission(permission.Global, user, permission.Send, admin, 5, 10, 0, permission.FlagNone, 0), "grant")

	s.SetHeight(3)
	assert.False(t, s.CanSend(permission.Global, user), "before from")
	s.SetHeight(4)
	assert.True(t, s.CanSend(permission.Global, user), "next block is from")
	s.SetHeight(8)
	assert.True(t, s.CanSend(permission.Global, user), "next block before to")
	s.SetHeight(9)
	assert.False(t, s.CanSend(permission.Global, user), "next block is to")
}

func TestSetPermissionAuthority(t *testing.T) {
	s, db := newStore(t, permission.Options{})
	defer db.Close()

	entity := makeEntity("stream")
	assert.Nil(t, s.SetPermission(permission.Global, admin, permission.Admin, admin, 0, forever, 0, permission.FlagNone, 0), "global admin")
	s.SetHeight(0)

	err := s.SetPermission(permission.Global, user, permission.Send, stranger, 0, forever, 0, permission.FlagNone, 0)
	assert.Equal(t, fault.ErrNotAllowed, err, "stranger cannot grant")

	err = s.SetPermission(entity, stranger, permission.Connect, stranger, 0, forever, 0, permission.FlagEntityGenesis, 0)
	assert.Nil(t, err, "entity genesis is exempt")

	err = s.SetPermission(permission.Global, stranger, permission.Connect, stranger, 0, forever, 0, permission.FlagEntityGenesis, 0)
	assert.Equal(t, fault.ErrNotAllowed, err, "global genesis is not exempt")

	assert.Nil(t, s.SetPermission(entity, user, permission.Activate, admin, 0, forever, 0, permission.FlagEntityGenesis, 0), "activator")
	assert.Nil(t, s.SetPermission(entity, stranger, permission.Write, user, 0, forever, 0, permission.FlagNone, 0), "activate is enough for write")
	err = s.SetPermission(entity, stranger, permission.Admin, user, 0, forever, 0, permission.FlagNone, 0)
	assert.Equal(t, fault.ErrNotAllowed, err, "activate is not enough for admin")
}

func TestIsActivateEnough(t *testing.T) {
	s, db := newStore(t, permission.Options{CustomPermissions: true})
	defer db.Close()

	for _, pt := range []permission.Type{permission.Connect, permission.Send, permission.Receive, permission.Write, permission.Read, permission.Custom1} {
		assert.True(t, s.IsActivateEnough(pt), pt.String())
	}
	for _, pt := range []permission.Type{permission.Admin, permission.Issue, permission.Mine, permission.Activate, permission.Create, permission.Filter, permission.Custom4} {
		assert.False(t, s.IsActivateEnough(pt), pt.String())
	}

	assert.Equal(t, permission.CustomLow, s.CustomLowTypes(), "low")
	assert.Equal(t, permission.CustomHigh, s.CustomHighTypes(), "high")
}

func TestCheckPointRollBack(t *testing.T) {
	s, db := newStore(t, permission.Options{})
	defer db.Close()

	assert.Nil(t, s.SetPermission(permission.Global, admin, permission.Admin, admin, 0, forever, 0, permission.FlagNone, 0), "admin")
	s.SetHeight(0)

	assert.Nil(t, s.SetCheckPoint(), "checkpoint")
	assert.Equal(t, fault.ErrCheckpointInUse, s.SetCheckPoint(), "nested checkpoint")

	assert.Nil(t, s.SetPermission(permission.Global, user, permission.Send, admin, 0, forever, 0, permission.FlagNone, 0), "send")
	assert.True(t, s.CanSend(permission.Global, user), "visible before rollback")

	s.RollBackToCheckPoint()
	assert.False(t, s.CanSend(permission.Global, user), "gone after rollback")

	assert.Nil(t, s.SetCheckPoint(), "second checkpoint")
	assert.Nil(t, s.SetPermission(permission.Global, user, permission.Send, admin, 0, forever, 0, permission.FlagNone, 0), "send")
	assert.Nil(t, s.Commit(), "commit")
	assert.True(t, s.CanSend(permission.Global, user), "kept after commit")
}

func TestRecords(t *testing.T) {
	s, db := newStore(t, permission.Options{})
	defer db.Close()

	assert.Nil(t, s.SetPermission(permission.Global, user, permission.Send|permission.Receive, admin, 1, 100, 77, permission.FlagIsScriptHash, -1), "grant")

	records, err := s.Records(permission.Global, user)
	assert.Nil(t, err, "records")
	assert.Equal(t, 2, len(records), "one record per bit")
	assert.Equal(t, permission.Send, records[0].Type, "first bit")
	assert.Equal(t, permission.Receive, records[1].Type, "second bit")
	assert.Equal(t, admin, records[0].Admin, "admin")
	assert.Equal(t, uint32(77), records[0].Timestamp, "timestamp")
	assert.Equal(t, permission.FlagIsScriptHash, records[0].Flags, "flags")
	assert.Equal(t, -1, records[0].Offset, "unconfirmed offset")
}

func TestApproval(t *testing.T) {
	s, db := newStore(t, permission.Options{})
	defer db.Close()

	upgrade := makeEntity("upgrade")
	assert.False(t, s.IsApproved(upgrade), "no votes")

	assert.Nil(t, s.SetApproval(upgrade, true, admin, 100, 1, permission.FlagNone, 0), "approve")
	assert.True(t, s.IsApproved(upgrade), "approved")

	assert.Nil(t, s.SetApproval(upgrade, false, user, 100, 2, permission.FlagNone, 0), "disapprove")
	assert.False(t, s.IsApproved(upgrade), "tied")

	assert.Nil(t, s.SetApproval(upgrade, false, admin, 100, 3, permission.FlagNone, 0), "change vote")
	approve, disapprove := s.Approval(upgrade)
	assert.Equal(t, 0, approve, "approve count")
	assert.Equal(t, 2, disapprove, "disapprove count")
	assert.False(t, s.FilterApproved(upgrade), "filter approval follows votes")

	assert.Equal(t, fault.ErrNotAllowed, s.SetApproval(permission.Global, true, admin, 0, 0, permission.FlagNone, 0), "global vote")
}

func TestParseTypes(t *testing.T) {
	pt, err := permission.ParseTypes("connect, Send,receive")
	assert.Nil(t, err, "parse")
	assert.Equal(t, permission.Connect|permission.Send|permission.Receive, pt, "types")
	assert.Equal(t, "connect,receive,send", pt.String(), "string")

	pt, err = permission.ParseTypes("all")
	assert.Nil(t, err, "all")
	assert.Equal(t, permission.GlobalAll, pt, "global all")

	_, err = permission.ParseTypes("fly")
	assert.Equal(t, fault.ErrInvalidPermissionName, err, "unknown")

	_, err = permission.ParseTypes("")
	assert.Equal(t, fault.ErrInvalidPermissionName, err, "empty")
}

func TestClearMemPool(t *testing.T) {
	s, db := newStore(t, permission.Options{})
	defer db.Close()

	assert.Nil(t, s.SetPermission(permission.Global, admin, permission.Admin, admin, 0, forever, 0, permission.FlagNone, 0), "admin")
	assert.Nil(t, s.SetPermission(permission.Global, user, permission.Send, admin, 0, forever, 0, permission.FlagNone, 0), "confirmed send")
	s.SetHeight(0)

	upgrade := makeEntity("upgrade")

	assert.Nil(t, s.SetCheckPoint(), "checkpoint")
	assert.Nil(t, s.SetPermission(permission.Global, user, permission.Receive, admin, 0, forever, 0, permission.FlagNone, -1), "mempool receive")
	assert.Nil(t, s.SetPermission(permission.Global, user, permission.Send, admin, 0, 0, 0, permission.FlagNone, -1), "mempool revoke")
	assert.Nil(t, s.SetApproval(upgrade, true, admin, 0, 0, permission.FlagNone, -1), "mempool vote")
	assert.Nil(t, s.Commit(), "commit")

	assert.True(t, s.CanReceive(permission.Global, user), "mempool receive visible")
	assert.False(t, s.CanSend(permission.Global, user), "mempool revoke visible")
	assert.True(t, s.IsApproved(upgrade), "mempool vote visible")

	assert.Nil(t, s.ClearMemPool(), "clear")

	assert.False(t, s.CanReceive(permission.Global, user), "receive removed")
	assert.True(t, s.CanSend(permission.Global, user), "send restored")
	assert.False(t, s.IsApproved(upgrade), "vote removed")
	assert.True(t, s.CanAdmin(permission.Global, admin), "confirmed admin kept")
}
