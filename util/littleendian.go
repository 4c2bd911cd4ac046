// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

// GetLE - decode a 1..8 byte little endian unsigned value
//
// longer buffers only use the first 8 bytes
func GetLE(buffer []byte) uint64 {
	n := len(buffer)
	if n > 8 {
		n = 8
	}
	value := uint64(0)
	for i := n - 1; i >= 0; i -= 1 {
		value = value<<8 | uint64(buffer[i])
	}
	return value
}

// PutLE - encode value as size bytes in little endian order
func PutLE(value uint64, size int) []byte {
	buffer := make([]byte, size)
	for i := 0; i < size; i += 1 {
		buffer[i] = byte(value)
		value >>= 8
	}
	return buffer
}
