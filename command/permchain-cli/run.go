// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/permchain/account"
	"github.com/bitmark-inc/permchain/configuration"
	"github.com/bitmark-inc/permchain/entity"
	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/merkle"
	"github.com/bitmark-inc/permchain/permission"
	"github.com/bitmark-inc/permchain/storage"
	"github.com/bitmark-inc/permchain/transactionrecord"
)

type decoded struct {
	TxId        merkle.Digest                  `json:"txId"`
	Transaction *transactionrecord.Transaction `json:"transaction"`
}

func runDecode(c *cli.Context) error {
	if 1 != c.NArg() {
		return fmt.Errorf("transaction hex is required")
	}
	buffer, err := hex.DecodeString(c.Args().First())
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
	return printJson(c.App.Writer, decoded{
		TxId:        tx.TxId(),
		Transaction: tx,
	})
}

type stores struct {
	db          *storage.Database
	permissions *permission.Store
	entities    *entity.Store
}

// open the stores named by the configuration file, read only
func openStores(c *cli.Context) (*stores, error) {
	fileName := c.GlobalString("config-file")
	if "" == fileName {
		return nil, fmt.Errorf("config-file is required")
	}
	options, err := configuration.GetConfiguration(fileName)
	if nil != err {
		return nil, err
	}
	db, err := storage.Open(options.Database.Name, storage.ReadOnly)
	if nil != err {
		return nil, err
	}
	return &stores{
		db:          db,
		permissions: permission.New(db, options.Policy.PermissionOptions()),
		entities:    entity.New(db),
	}, nil
}

type entityInfo struct {
	Entity    *entity.Record   `json:"entity"`
	Total     int64            `json:"total"`
	FollowOns []*entity.Record `json:"followOns,omitempty"`
}

func runEntity(c *cli.Context) error {
	if 1 != c.NArg() {
		return fmt.Errorf("entity identifier is required")
	}
	s, err := openStores(c)
	if nil != err {
		return err
	}
	defer s.db.Close()

	r, ok := s.entities.FindEntity(c.Args().First())
	if !ok {
		return fault.ErrEntityNotFound
	}
	info := entityInfo{
		Entity: r,
	}
	info.Total, _ = s.entities.GetTotalQuantity(r.TxId)
	if c.Bool("follow-ons") {
		info.FollowOns = s.entities.FollowOns(r.TxId)
	}
	return printJson(c.App.Writer, info)
}

func runPermissions(c *cli.Context) error {
	if 1 != c.NArg() {
		return fmt.Errorf("address is required")
	}
	address, _, err := account.FromBase58(c.Args().First())
	if nil != err {
		return err
	}
	s, err := openStores(c)
	if nil != err {
		return err
	}
	defer s.db.Close()

	target := permission.Global
	if identifier := c.String("entity"); "" != identifier {
		r, ok := s.entities.FindEntity(identifier)
		if !ok {
			return fault.ErrEntityNotFound
		}
		target = r.TxId
	}

	records, err := s.permissions.Records(target, address)
	if nil != err {
		return err
	}
	return printJson(c.App.Writer, records)
}

type voteInfo struct {
	Approve    int                `json:"approve"`
	Disapprove int                `json:"disapprove"`
	Votes      []*permission.Vote `json:"votes"`
}

func runVotes(c *cli.Context) error {
	if 1 != c.NArg() {
		return fmt.Errorf("entity identifier is required")
	}
	s, err := openStores(c)
	if nil != err {
		return err
	}
	defer s.db.Close()

	r, ok := s.entities.FindEntity(c.Args().First())
	if !ok {
		return fault.ErrEntityNotFound
	}
	votes, err := s.permissions.Votes(r.TxId)
	if nil != err {
		return err
	}
	info := voteInfo{
		Votes: votes,
	}
	info.Approve, info.Disapprove = s.permissions.Approval(r.TxId)
	return printJson(c.App.Writer, info)
}
