// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"github.com/bitmark-inc/permchain/util"
)

// current packed format version
const packVersion = 1

const coinbaseFlag = 0x01

// Pack - turn a transaction into its binary form
func (tx *Transaction) Pack() Packed {
	flags := uint64(0)
	if tx.Coinbase {
		flags |= coinbaseFlag
	}

	message := util.ToVarint64(packVersion)
	message = appendUint64(message, flags)

	message = appendUint64(message, uint64(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		message = append(message, in.Previous.TxId[:]...)
		message = appendUint64(message, uint64(in.Previous.Index))
		message = appendBytes(message, in.SignatureScript)
	}

	message = appendUint64(message, uint64(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		message = appendUint64(message, uint64(out.Value))
		message = appendBytes(message, out.Script.Pack())
	}
	return message
}

// Pack - the binary form of a script
//
// this is the byte sequence compared by cached script entries
func (s *Script) Pack() Packed {
	message := util.ToVarint64(uint64(s.Kind))
	message = appendUint64(message, uint64(s.Required))
	message = appendUint64(message, uint64(len(s.Destinations)))
	for _, d := range s.Destinations {
		message = append(message, d[:]...)
	}
	message = appendUint64(message, uint64(len(s.Elements)))
	for _, e := range s.Elements {
		message = appendUint64(message, uint64(e.Tag()))
		message = e.pack(message)
	}
	return message
}

func (e EntityReference) pack(buffer Packed) Packed {
	return append(buffer, e.Entity[:]...)
}

func (e PermissionGrant) pack(buffer Packed) Packed {
	buffer = appendUint64(buffer, uint64(e.Types))
	buffer = appendUint64(buffer, uint64(e.From))
	buffer = appendUint64(buffer, uint64(e.To))
	return appendUint64(buffer, uint64(e.Timestamp))
}

func (e AssetGenesis) pack(buffer Packed) Packed {
	return appendUint64(buffer, uint64(e.Quantity))
}

func (e AssetTransfer) pack(buffer Packed) Packed {
	return appendQuantities(buffer, e.Quantities)
}

func (e AssetFollowOn) pack(buffer Packed) Packed {
	return appendQuantities(buffer, e.Quantities)
}

func (e CachedScript) pack(buffer Packed) Packed {
	buffer = appendUint64(buffer, uint64(len(e.Entries)))
	for _, entry := range e.Entries {
		buffer = appendUint64(buffer, uint64(entry.Input))
		buffer = appendBytes(buffer, entry.Script)
	}
	return buffer
}

func (e NewEntity) pack(buffer Packed) Packed {
	buffer = appendUint64(buffer, uint64(e.Type))
	return append(buffer, e.Details.Pack()...)
}

func (e EntityUpdate) pack(buffer Packed) Packed {
	buffer = appendUint64(buffer, uint64(e.Type))
	return append(buffer, e.Details.Pack()...)
}

func (e ItemKey) pack(buffer Packed) Packed {
	return appendBytes(buffer, e.Key)
}

func (e Approval) pack(buffer Packed) Packed {
	approve := uint64(0)
	if e.Approve {
		approve = 1
	}
	buffer = appendUint64(buffer, approve)
	return appendUint64(buffer, uint64(e.Timestamp))
}

func (e RawData) pack(buffer Packed) Packed {
	return appendBytes(buffer, e.Data)
}

func (e DataFormat) pack(buffer Packed) Packed {
	flags := uint64(0)
	if e.OffChain {
		flags |= dataOffChain
	}
	if e.Salted {
		flags |= dataSalted
	}
	buffer = appendUint64(buffer, uint64(e.Format))
	buffer = appendUint64(buffer, flags)
	return appendUint64(buffer, e.Size)
}

const (
	dataOffChain = 0x01
	dataSalted   = 0x02
)

func appendQuantities(buffer Packed, quantities []AssetQuantity) Packed {
	buffer = appendUint64(buffer, uint64(len(quantities)))
	for _, q := range quantities {
		buffer = append(buffer, q.Asset[:]...)
		buffer = appendUint64(buffer, uint64(q.Quantity))
	}
	return buffer
}

// append a bytes field to a buffer
func appendBytes(buffer Packed, data []byte) Packed {
	buffer = util.AppendVarint64(buffer, uint64(len(data)))
	return append(buffer, data...)
}

// append a Varint64 to buffer
func appendUint64(buffer Packed, value uint64) Packed {
	return util.AppendVarint64(buffer, value)
}
