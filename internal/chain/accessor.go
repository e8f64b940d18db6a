// Package chain exposes the read-only accessor the builders use for live
// nonce and counter reads. The adapter core stays pure; this is its only
// external read.
package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Accessor is the narrow seam to chain state. Implementations never write.
//
// Builds for the same trader that require strictly increasing nonces must be
// serialized by the caller: two concurrent builds reading the same live value
// will produce colliding orders. The accessor does not lock or sequence.
type Accessor interface {
	// Counter returns the offerer's replay counter on the standard exchange.
	Counter(ctx context.Context, offerer common.Address) (*big.Int, error)
	// Nonce returns the trader's live nonce on the policy exchange. The
	// exchange increments it per executed trade, so it is read immediately
	// before signing and never cached.
	Nonce(ctx context.Context, trader common.Address) (*big.Int, error)
	// ChainID returns the chain id orders and domains are scoped to.
	ChainID(ctx context.Context) (*big.Int, error)
	// BlockTimestamp returns the latest block timestamp, used for default
	// listing and expiration windows.
	BlockTimestamp(ctx context.Context) (uint64, error)
}
