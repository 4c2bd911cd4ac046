// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

// Varint64MaximumBytes - the longest Varint64 encoding
const Varint64MaximumBytes = 9

// ToVarint64 - the Varint64 encoding of value
//
// seven bits per byte, low bits first, with the high bit set on every
// byte except the last; a ninth byte carries the top eight bits whole
func ToVarint64(value uint64) []byte {
	return AppendVarint64(make([]byte, 0, Varint64MaximumBytes), value)
}

// AppendVarint64 - append the Varint64 encoding of value to buffer
func AppendVarint64(buffer []byte, value uint64) []byte {
	for n := 1; n < Varint64MaximumBytes; n += 1 {
		if value < 0x80 {
			return append(buffer, byte(value))
		}
		buffer = append(buffer, byte(value)|0x80)
		value >>= 7
	}
	return append(buffer, byte(value))
}

// FromVarint64 - decode a Varint64 from the front of buffer
//
// returns the value and the number of bytes used, or 0, 0 when the
// buffer ends before the encoding does
func FromVarint64(buffer []byte) (uint64, int) {
	value := uint64(0)
	for i, b := range buffer {
		if Varint64MaximumBytes-1 == i {
			return value | uint64(b)<<56, i + 1
		}
		value |= uint64(b&0x7f) << (7 * uint(i))
		if 0 == b&0x80 {
			return value, i + 1
		}
	}
	return 0, 0
}

// ClippedVarint64 - decode a Varint64 that must lie in minimum..maximum
//
// returns 0, 0 for a truncated or out of range value
func ClippedVarint64(buffer []byte, minimum int, maximum int) (int, int) {
	if minimum < 0 || minimum >= maximum {
		return 0, 0
	}
	value, count := FromVarint64(buffer)
	if 0 == count || value < uint64(minimum) || value > uint64(maximum) {
		return 0, 0
	}
	return int(value), count
}
