package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// StrategyOrder is the LooksRare-shaped maker order. Execution semantics
// live in the referenced strategy contract; Params is an opaque blob that
// contract decodes. The nonce is caller-supplied, unique per signer.
type StrategyOrder struct {
	IsAsk              bool
	Signer             common.Address
	Collection         common.Address
	Price              *big.Int
	TokenID            *big.Int
	Amount             *big.Int
	Strategy           common.Address
	Currency           common.Address
	Nonce              *big.Int
	StartTime          *big.Int
	EndTime            *big.Int
	MinPercentageToAsk *big.Int
	Params             []byte
}
