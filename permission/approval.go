// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package permission

import (
	"github.com/bitmark-inc/permchain/account"
	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/merkle"
	"github.com/bitmark-inc/permchain/util"
)

// Vote - the latest approval of one admin for an upgrade or filter
type Vote struct {
	Admin      account.Address `json:"admin"`
	Approve    bool            `json:"approve"`
	StartBlock uint32          `json:"startBlock"`
	Timestamp  uint32          `json:"timestamp"`
	Flags      Flags           `json:"flags"`
	Offset     int             `json:"offset"`
}

func (v *Vote) pack() []byte {
	buffer := []byte{0}
	if v.Approve {
		buffer[0] = 1
	}
	buffer = util.AppendVarint64(buffer, uint64(v.StartBlock))
	buffer = util.AppendVarint64(buffer, uint64(v.Timestamp))
	buffer = util.AppendVarint64(buffer, uint64(v.Flags))
	return util.AppendVarint64(buffer, uint64(v.Offset+1))
}

// key is entity ++ admin
func unpackVote(key []byte, value []byte) (*Vote, error) {
	if merkle.DigestLength+account.AddressLength != len(key) || len(value) < 1 {
		return nil, fault.ErrNotPermissionRecord
	}
	v := &Vote{
		Approve: 1 == value[0],
	}
	copy(v.Admin[:], key[merkle.DigestLength:])

	fields := make([]uint64, 4)
	n := 1
	for i := range fields {
		f, count := util.FromVarint64(value[n:])
		if 0 == count {
			return nil, fault.ErrNotPermissionRecord
		}
		fields[i] = f
		n += count
	}
	v.StartBlock = uint32(fields[0])
	v.Timestamp = uint32(fields[1])
	v.Flags = Flags(fields[2])
	v.Offset = int(fields[3]) - 1
	return v, nil
}

// SetApproval - record the vote of an admin, replacing any earlier one
func (s *Store) SetApproval(entity merkle.Digest, approve bool, admin account.Address, startBlock uint32, timestamp uint32, flags Flags, offset int) error {
	if Global == entity {
		return fault.ErrNotAllowed
	}
	v := &Vote{
		Admin:      admin,
		Approve:    approve,
		StartBlock: startBlock,
		Timestamp:  timestamp,
		Flags:      flags,
		Offset:     offset,
	}
	s.put(s.approvals, recordPrefix(entity, admin), v.pack(), offset)

	s.log.Debugf("vote: entity: %v  admin: %v  approve: %t  start: %d", entity, admin, approve, startBlock)
	return nil
}

// Votes - every vote recorded for an entity
func (s *Store) Votes(entity merkle.Digest) ([]*Vote, error) {
	votes := []*Vote(nil)
	err := s.approvals.NewFetchCursor().Prefix(entity[:]).Map(func(key []byte, value []byte) error {
		v, err := unpackVote(key, value)
		if nil != err {
			return err
		}
		votes = append(votes, v)
		return nil
	})
	return votes, err
}

// Approval - count of approving and disapproving admins
func (s *Store) Approval(entity merkle.Digest) (int, int) {
	votes, err := s.Votes(entity)
	if nil != err {
		s.log.Errorf("votes: entity: %v  error: %s", entity, err)
		return 0, 0
	}
	approve := 0
	disapprove := 0
	for _, v := range votes {
		if v.Approve {
			approve += 1
		} else {
			disapprove += 1
		}
	}
	return approve, disapprove
}

// IsApproved - more admins approve than disapprove
func (s *Store) IsApproved(entity merkle.Digest) bool {
	approve, disapprove := s.Approval(entity)
	return approve > disapprove
}

// FilterApproved - a filter runs only while approved
func (s *Store) FilterApproved(entity merkle.Digest) bool {
	return s.IsApproved(entity)
}
