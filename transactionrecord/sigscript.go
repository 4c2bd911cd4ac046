// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactionrecord

// SigHash - signature hash type taken from a signing script
type SigHash uint8

// hash types; SigHashNone is also reported when no signature is found
const (
	SigHashAll    = SigHash(0x01)
	SigHashNone   = SigHash(0x02)
	SigHashSingle = SigHash(0x03)

	sigHashMask = 0x1f
)

// String - name of the hash type
func (h SigHash) String() string {
	switch h {
	case SigHashAll:
		return "all"
	case SigHashSingle:
		return "single"
	default:
		return "none"
	}
}

// push opcodes
const (
	opPushData1 = 0x4c
	opPushData2 = 0x4d
	opPushData4 = 0x4e
	op1Negate   = 0x4f
	opReserved  = 0x50
	op1         = 0x51
	op16        = 0x60
)

// Pushes - split a signing script into its data pushes
//
// the second result is false if the script contains any opcode that
// is not a push or if a push is truncated
func Pushes(script []byte) ([][]byte, bool) {
	pushes := [][]byte(nil)

	for i := 0; i < len(script); {
		op := script[i]
		i += 1

		length := 0
		switch {
		case op < opPushData1:
			length = int(op)
		case opPushData1 == op:
			if i+1 > len(script) {
				return pushes, false
			}
			length = int(script[i])
			i += 1
		case opPushData2 == op:
			if i+2 > len(script) {
				return pushes, false
			}
			length = int(script[i]) | int(script[i+1])<<8
			i += 2
		case opPushData4 == op:
			if i+4 > len(script) {
				return pushes, false
			}
			length = int(script[i]) | int(script[i+1])<<8 | int(script[i+2])<<16 | int(script[i+3])<<24
			i += 4
		case op1Negate == op:
			pushes = append(pushes, []byte{0x81})
			continue
		case opReserved == op:
			continue
		case op >= op1 && op <= op16:
			pushes = append(pushes, []byte{op - op1 + 1})
			continue
		default:
			return pushes, false
		}

		if length < 0 || i+length > len(script) {
			return pushes, false
		}
		pushes = append(pushes, script[i:i+length])
		i += length
	}
	return pushes, true
}

// IsPushOnly - true if the signing script only pushes data
func IsPushOnly(script []byte) bool {
	_, ok := Pushes(script)
	return ok
}

// SignatureHashType - hash type of the signature that unlocks an
// output of the given kind
//
// the signature is the first push except for bare public key and
// multisig outputs where it is the last; for script hash outputs a
// leading empty push is skipped
func SignatureHashType(script []byte, kind ScriptKind) SigHash {
	pushes, _ := Pushes(script)
	if 0 == len(pushes) {
		return SigHashNone
	}

	signature := pushes[0]
	switch kind {
	case PubKey, MultiSig:
		signature = pushes[len(pushes)-1]
	case ScriptHash:
		if 0 == len(signature) && len(pushes) > 1 {
			signature = pushes[1]
		}
	}

	// shortest DER signature plus the hash type byte
	if len(signature) < 9 {
		return SigHashNone
	}
	switch h := SigHash(signature[len(signature)-1] & sigHashMask); h {
	case SigHashAll, SigHashSingle:
		return h
	default:
		return SigHashNone
	}
}
