// Package encoding packs semantic orders into the exact byte layouts each
// marketplace verifier decodes: 32-byte words for struct hashing and full
// ABI tuple encodings for calldata. Field order is part of the contract.
package encoding

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Word returns the 32-byte big-endian representation of n. A nil n encodes
// as the zero word.
func Word(n *big.Int) []byte {
	if n == nil {
		return make([]byte, 32)
	}
	b := n.Bytes()
	if len(b) >= 32 {
		return b[:32]
	}
	padded := make([]byte, 32)
	copy(padded[32-len(b):], b)
	return padded
}

// Uint64Word returns the 32-byte representation of n.
func Uint64Word(n uint64) []byte {
	return Word(new(big.Int).SetUint64(n))
}

// AddressWord left-pads an address into a 32-byte word.
func AddressWord(a common.Address) []byte {
	return common.LeftPadBytes(a.Bytes(), 32)
}

// BoolWord encodes a bool as a 0/1 word.
func BoolWord(b bool) []byte {
	w := make([]byte, 32)
	if b {
		w[31] = 1
	}
	return w
}

// Concat concatenates byte slices into one buffer.
func Concat(slices ...[]byte) []byte {
	total := 0
	for _, s := range slices {
		total += len(s)
	}
	buf := make([]byte, 0, total)
	for _, s := range slices {
		buf = append(buf, s...)
	}
	return buf
}
