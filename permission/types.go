// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package permission

import (
	"sort"
	"strings"

	"github.com/bitmark-inc/permchain/fault"
)

// Type - bitmask of permission types
type Type uint32

// permission bits; values are part of the wire format
const (
	None     = Type(0x00000000)
	Connect  = Type(0x00000001)
	Send     = Type(0x00000002)
	Receive  = Type(0x00000004)
	Write    = Type(0x00000008)
	Issue    = Type(0x00000010)
	Create   = Type(0x00000020)
	Read     = Type(0x00000080)
	Mine     = Type(0x00000100)
	Custom1  = Type(0x00000200)
	Custom2  = Type(0x00000400)
	Custom3  = Type(0x00000800)
	Admin    = Type(0x00001000)
	Activate = Type(0x00002000)
	Upgrade  = Type(0x00010000)
	Custom4  = Type(0x00020000)
	Custom5  = Type(0x00040000)
	Custom6  = Type(0x00080000)
	Filter   = Type(0x04000000)

	// every type that can be granted on the global entity
	GlobalAll = Connect | Send | Receive | Issue | Create | Mine | Admin | Activate

	CustomLow  = Custom1 | Custom2 | Custom3
	CustomHigh = Custom4 | Custom5 | Custom6
)

// Flags - attributes of a permission record
type Flags uint32

// record flags
const (
	FlagNone          = Flags(0x00)
	FlagIsScriptHash  = Flags(0x01)
	FlagEntityGenesis = Flags(0x02)
)

var names = map[string]Type{
	"connect":  Connect,
	"send":     Send,
	"receive":  Receive,
	"write":    Write,
	"issue":    Issue,
	"create":   Create,
	"read":     Read,
	"mine":     Mine,
	"low1":     Custom1,
	"low2":     Custom2,
	"low3":     Custom3,
	"admin":    Admin,
	"activate": Activate,
	"high1":    Custom4,
	"high2":    Custom5,
	"high3":    Custom6,
	"filter":   Filter,
}

// ParseTypes - convert a comma separated list of names into a bitmask
func ParseTypes(s string) (Type, error) {
	t := None
	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if "" == name {
			continue
		}
		if "all" == name {
			t |= GlobalAll
			continue
		}
		bit, ok := names[name]
		if !ok {
			return None, fault.ErrInvalidPermissionName
		}
		t |= bit
	}
	if None == t {
		return None, fault.ErrInvalidPermissionName
	}
	return t, nil
}

// Bits - the individual bits set in the mask, lowest first
func (t Type) Bits() []Type {
	bits := []Type(nil)
	for b := Type(1); 0 != b; b <<= 1 {
		if 0 != t&b {
			bits = append(bits, b)
		}
	}
	return bits
}

// String - comma separated names of the bits
func (t Type) String() string {
	s := []string(nil)
	for name, bit := range names {
		if 0 != t&bit {
			s = append(s, name)
		}
	}
	if 0 == len(s) {
		return "none"
	}
	sort.Strings(s)
	return strings.Join(s, ",")
}
