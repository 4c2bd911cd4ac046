// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/permchain/account"
	"github.com/bitmark-inc/permchain/fault"
)

var testAddress = account.Address{
	0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a,
	0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11, 0x12, 0x13, 0x14,
}

func TestBase58RoundTrip(t *testing.T) {
	for _, version := range []byte{account.KeyHashVersion, account.ScriptHashVersion} {
		s := testAddress.Encode(version)
		a, v, err := account.FromBase58(s)
		assert.Nil(t, err, "decode error for: %s", s)
		assert.Equal(t, version, v, "version")
		assert.Equal(t, testAddress, a, "address")
	}
}

func TestBase58Checksum(t *testing.T) {
	s := []byte(testAddress.String())

	// alter one character, keeping it inside the base58 alphabet
	if '2' == s[5] {
		s[5] = '3'
	} else {
		s[5] = '2'
	}
	_, _, err := account.FromBase58(string(s))
	assert.NotNil(t, err, "corrupted text must not decode")
}

func TestBase58Invalid(t *testing.T) {
	_, _, err := account.FromBase58("0OIl")
	assert.Equal(t, fault.ErrInvalidAddress, err, "not base58")

	_, _, err = account.FromBase58("abc")
	assert.Equal(t, fault.ErrInvalidAddress, err, "too short")
}

func TestFromBytes(t *testing.T) {
	var a account.Address
	assert.Nil(t, account.FromBytes(&a, testAddress[:]), "valid length")
	assert.Equal(t, testAddress, a, "value")
	assert.Equal(t, fault.ErrInvalidAddress, account.FromBytes(&a, testAddress[:10]), "short")
}

func TestFromPublicKey(t *testing.T) {
	a := account.FromPublicKey([]byte{0x02, 0x33, 0x44})
	b := account.FromPublicKey([]byte{0x02, 0x33, 0x44})
	c := account.FromPublicKey([]byte{0x03, 0x33, 0x44})
	assert.Equal(t, a, b, "deterministic")
	assert.NotEqual(t, a, c, "distinct keys")
	assert.False(t, a.IsZero(), "not zero")
	assert.True(t, account.Address{}.IsZero(), "zero")
}

func TestJSON(t *testing.T) {
	buffer, err := json.Marshal(testAddress)
	assert.Nil(t, err, "marshal")

	var a account.Address
	err = json.Unmarshal(buffer, &a)
	assert.Nil(t, err, "unmarshal")
	assert.Equal(t, testAddress, a, "round trip")
}
