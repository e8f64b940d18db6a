package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PolicyFee is a Blur-style fee split in basis points.
type PolicyFee struct {
	Rate      uint16
	Recipient common.Address
}

// PolicyOrder is the Blur-shaped order. The nonce is read live from the
// exchange immediately before signing because the exchange increments it per
// executed trade; it is never client-tracked.
type PolicyOrder struct {
	Trader         common.Address
	Side           Side
	MatchingPolicy common.Address
	Collection     common.Address
	TokenID        *big.Int
	Amount         *big.Int
	PaymentToken   common.Address
	Price          *big.Int
	ListingTime    *big.Int
	ExpirationTime *big.Int
	Fees           []PolicyFee
	Salt           *big.Int
	ExtraParams    []byte
	Nonce          *big.Int
}
