// Package domain defines the value objects shared across the order and
// credit-signature adapter: protocol identifiers, per-marketplace order
// shapes, signatures, and the error taxonomy. All objects are immutable
// once signed; a new signature requires a new object.
package domain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Protocol identifies one of the supported marketplace protocols.
type Protocol string

const (
	ProtocolSeaport   Protocol = "seaport"
	ProtocolLooksRare Protocol = "looksrare"
	ProtocolX2Y2      Protocol = "x2y2"
	ProtocolBlur      Protocol = "blur"
)

// Side indicates whether the maker is buying or selling.
type Side uint8

const (
	SideBuy  Side = 0
	SideSell Side = 1
)

// BpsDenominator is the basis-points ceiling shared by every fee field.
const BpsDenominator = 10_000

// Signature is a protocol-ready ECDSA signature tuple with v in {27,28}.
type Signature struct {
	V uint8
	R common.Hash
	S common.Hash
}

// SignatureFromBytes splits a 65-byte r||s||v signature into its tuple form.
func SignatureFromBytes(sig []byte) (Signature, error) {
	if len(sig) != 65 {
		return Signature{}, fmt.Errorf("domain: expected 65-byte signature, got %d", len(sig))
	}
	return Signature{
		V: sig[64],
		R: common.BytesToHash(sig[:32]),
		S: common.BytesToHash(sig[32:64]),
	}, nil
}

// Bytes returns the 65-byte r||s||v form.
func (s Signature) Bytes() []byte {
	out := make([]byte, 65)
	copy(out[:32], s.R.Bytes())
	copy(out[32:64], s.S.Bytes())
	out[64] = s.V
	return out
}

// SignedOrder is the uniform envelope the facade returns: one of the four
// protocol-shaped order objects plus its identity hash.
type SignedOrder interface {
	// Protocol identifies which marketplace shape the order has.
	Protocol() Protocol
	// OrderHash is the protocol-defined identity hash the signature covers.
	OrderHash() common.Hash
}

// PriceOf extracts the total price a signed order expresses, used as the
// upper bound for a credit voucher referencing it.
type PriceOf interface {
	Price() *big.Int
}
