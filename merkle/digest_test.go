// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/merkle"
)

// big endian text form
const stringDigest = "00000000440b921e1b77c6c0487ae5616de67f788f44ae2a5af6e2194d16b6f8"

// bytes as little endian format
var expectedDigest = merkle.Digest{
	0xf8, 0xb6, 0x16, 0x4d,
	0x19, 0xe2, 0xf6, 0x5a,
	0x2a, 0xae, 0x44, 0x8f,
	0x78, 0x7f, 0xe6, 0x6d,
	0x61, 0xe5, 0x7a, 0x48,
	0xc0, 0xc6, 0x77, 0x1b,
	0x1e, 0x92, 0x0b, 0x44,
	0x00, 0x00, 0x00, 0x00,
}

func TestScanFmt(t *testing.T) {
	var d merkle.Digest
	n, err := fmt.Sscan(stringDigest, &d)
	assert.Nil(t, err, "hex to digest error")
	assert.Equal(t, 1, n, "scanned item count")
	assert.Equal(t, expectedDigest, d, "little endian bytes")

	assert.Equal(t, stringDigest, fmt.Sprintf("%s", d), "string form")
	assert.Equal(t, "<SHA3-256:"+stringDigest+">", fmt.Sprintf("%#v", d), "go string form")
}

func TestScanShort(t *testing.T) {
	var d merkle.Digest
	_, err := fmt.Sscan("0011", &d)
	assert.Equal(t, fault.ErrInvalidDigest, err, "short digest")
}

func TestJSON(t *testing.T) {
	buffer, err := json.Marshal(expectedDigest)
	assert.Nil(t, err, "marshal error")

	var d merkle.Digest
	err = json.Unmarshal(buffer, &d)
	assert.Nil(t, err, "unmarshal error")
	assert.Equal(t, expectedDigest, d, "round trip")
}

func TestShortId(t *testing.T) {
	s := expectedDigest.ShortId()
	assert.Equal(t, expectedDigest[16:], s[:], "short id is the upper half")
	assert.Equal(t, stringDigest[:32], s.String(), "text is the leading big endian digits")

	var s2 merkle.ShortId
	err := merkle.ShortIdFromBytes(&s2, expectedDigest[16:])
	assert.Nil(t, err, "from bytes")
	assert.Equal(t, s, s2, "from bytes value")

	err = merkle.ShortIdFromBytes(&s2, expectedDigest[:])
	assert.Equal(t, fault.ErrInvalidShortId, err, "wrong length")
}

func TestZero(t *testing.T) {
	assert.True(t, merkle.Digest{}.IsZero(), "zero digest")
	assert.False(t, expectedDigest.IsZero(), "non-zero digest")
	assert.Equal(t, merkle.NewDigest([]byte("abc")), merkle.NewDigest([]byte("abc")), "deterministic")
}

func TestShortIdFromString(t *testing.T) {
	s, err := merkle.ShortIdFromString(stringDigest[:32])
	assert.Nil(t, err, "from string")
	assert.Equal(t, expectedDigest.ShortId(), s, "value")

	_, err = merkle.ShortIdFromString(stringDigest)
	assert.Equal(t, fault.ErrInvalidShortId, err, "too long")

	_, err = merkle.ShortIdFromString("xyz")
	assert.NotNil(t, err, "not hex")
}
