// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

import (
	"github.com/bitmark-inc/permchain/account"
	"github.com/bitmark-inc/permchain/fault"
	"github.com/bitmark-inc/permchain/merkle"
	"github.com/bitmark-inc/permchain/util"
)

// bounds applied while decoding
const (
	maxInputs      = 100000
	maxOutputs     = 100000
	maxElements    = 1024
	maxDestination = 20
	maxEntries     = 1024
	maxBytesLength = 4 * 1024 * 1024
)

// Unpack - turn a byte slice into a transaction
//
// any truncation or out of range count is reported as
// fault.ErrNotTransactionPack
func (record Packed) Unpack() (t *Transaction, n int, e error) {
	defer func() {
		if r := recover(); nil != r {
			e = fault.ErrNotTransactionPack
		}
	}()

	r := &reader{buffer: record}

	version := r.uint64()
	if packVersion != version {
		return nil, 0, fault.ErrNotTransactionPack
	}
	flags := r.uint64()
	if 0 != flags&^coinbaseFlag {
		return nil, 0, fault.ErrNotTransactionPack
	}

	tx := &Transaction{
		Coinbase: 0 != flags&coinbaseFlag,
	}

	inputCount := r.count(maxInputs)
	if inputCount > 0 {
		tx.Inputs = make([]Input, inputCount)
	}
	for i := range tx.Inputs {
		copy(tx.Inputs[i].Previous.TxId[:], r.fixed(merkle.DigestLength))
		tx.Inputs[i].Previous.Index = uint32(r.bounded(0xffffffff))
		tx.Inputs[i].SignatureScript = r.bytes()
	}

	outputCount := r.count(maxOutputs)
	if outputCount > 0 {
		tx.Outputs = make([]Output, outputCount)
	}
	for i := range tx.Outputs {
		tx.Outputs[i].Value = int64(r.uint64())
		script, err := UnpackScript(r.bytes())
		if nil != err {
			return nil, 0, err
		}
		tx.Outputs[i].Script = *script
	}

	return tx, r.position, nil
}

// UnpackScript - decode the binary form of a script
func UnpackScript(buffer []byte) (script *Script, err error) {
	defer func() {
		if r := recover(); nil != r {
			err = fault.ErrNotTransactionPack
		}
	}()

	r := &reader{buffer: buffer}
	s := &Script{}

	s.Kind = ScriptKind(r.uint64())
	if s.Kind >= invalidScriptKind {
		return nil, fault.ErrUnknownScriptKind
	}
	s.Required = int(r.bounded(maxDestination))

	n := r.count(maxDestination)
	if n > 0 {
		s.Destinations = make([]account.Address, n)
	}
	for i := range s.Destinations {
		copy(s.Destinations[i][:], r.fixed(account.AddressLength))
	}

	n = r.count(maxElements)
	for i := 0; i < n; i += 1 {
		e, err := r.element()
		if nil != err {
			return nil, err
		}
		s.Elements = append(s.Elements, e)
	}

	if !r.empty() {
		return nil, fault.ErrNotTransactionPack
	}
	return s, nil
}

// sequential decoder; every method panics on a short buffer and the
// exported entry points convert that into an error
type reader struct {
	buffer   []byte
	position int
}

func (r *reader) empty() bool {
	return r.position == len(r.buffer)
}

func (r *reader) uint64() uint64 {
	value, n := util.FromVarint64(r.buffer[r.position:])
	if 0 == n {
		panic("truncated varint")
	}
	r.position += n
	return value
}

// a value in the range 0..maximum
func (r *reader) bounded(maximum uint64) uint64 {
	value := r.uint64()
	if value > maximum {
		panic("value out of range")
	}
	return value
}

func (r *reader) count(maximum int) int {
	return int(r.bounded(uint64(maximum)))
}

func (r *reader) fixed(length int) []byte {
	if r.position+length > len(r.buffer) {
		panic("truncated field")
	}
	b := r.buffer[r.position : r.position+length]
	r.position += length
	return b
}

// a length prefixed field, copied out of the buffer
func (r *reader) bytes() []byte {
	length := r.count(maxBytesLength)
	if 0 == length {
		return nil
	}
	b := make([]byte, length)
	copy(b, r.fixed(length))
	return b
}

func (r *reader) shortId() merkle.ShortId {
	id := merkle.ShortId{}
	copy(id[:], r.fixed(merkle.ShortIdLength))
	return id
}

func (r *reader) quantities() []AssetQuantity {
	n := r.count(maxEntries)
	if 0 == n {
		return nil
	}
	q := make([]AssetQuantity, n)
	for i := range q {
		q[i].Asset = r.shortId()
		q[i].Quantity = int64(r.uint64())
	}
	return q
}

func (r *reader) details() Details {
	n := r.count(maxParams)
	if 0 == n {
		return nil
	}
	d := make(Details, n)
	for i := range d {
		d[i].Code = ParamCode(r.fixed(1)[0])
		d[i].Value = r.bytes()
	}
	return d
}

func (r *reader) element() (Element, error) {
	switch tag := TagType(r.uint64()); tag {

	case EntityReferenceTag:
		return EntityReference{Entity: r.shortId()}, nil

	case PermissionGrantTag:
		return PermissionGrant{
			Types:     uint32(r.bounded(0xffffffff)),
			From:      uint32(r.bounded(0xffffffff)),
			To:        uint32(r.bounded(0xffffffff)),
			Timestamp: uint32(r.bounded(0xffffffff)),
		}, nil

	case AssetGenesisTag:
		return AssetGenesis{Quantity: int64(r.uint64())}, nil

	case AssetTransferTag:
		return AssetTransfer{Quantities: r.quantities()}, nil

	case AssetFollowOnTag:
		return AssetFollowOn{Quantities: r.quantities()}, nil

	case CachedScriptTag:
		n := r.count(maxEntries)
		entries := make([]CachedScriptEntry, n)
		for i := range entries {
			entries[i].Input = uint32(r.bounded(0xffffffff))
			entries[i].Script = r.bytes()
		}
		return CachedScript{Entries: entries}, nil

	case NewEntityTag:
		t := EntityType(r.bounded(0xff))
		return NewEntity{Type: t, Details: r.details()}, nil

	case EntityUpdateTag:
		t := EntityType(r.bounded(0xff))
		return EntityUpdate{Type: t, Details: r.details()}, nil

	case ItemKeyTag:
		return ItemKey{Key: r.bytes()}, nil

	case ApprovalTag:
		approve := r.bounded(1)
		return Approval{
			Approve:   1 == approve,
			Timestamp: uint32(r.bounded(0xffffffff)),
		}, nil

	case RawDataTag:
		return RawData{Data: r.bytes()}, nil

	case DataFormatTag:
		format := uint8(r.bounded(0xff))
		flags := r.bounded(dataOffChain | dataSalted)
		return DataFormat{
			Format:   format,
			OffChain: 0 != flags&dataOffChain,
			Salted:   0 != flags&dataSalted,
			Size:     r.uint64(),
		}, nil

	default:
		return nil, fault.ErrUnknownElement
	}
}
