// Package x2y2 builds and signs settlement (X2Y2-shaped) orders and batches.
// This protocol signs raw keccak digests of packed bytes, not typed-data
// structures; the divergence is deliberate and preserved.
package x2y2

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/parallel-finance/marketadapter/internal/domain"
	"github.com/parallel-finance/marketadapter/internal/encoding"
)

// ItemHash computes the identity hash of the item at idx. The pre-image
// embeds the entire order header and the item count, so items cannot be
// hashed without their order and any header change reidentifies every item.
func ItemHash(o domain.SettlementOrder, idx int) (common.Hash, error) {
	if len(o.Items) == 0 {
		return common.Hash{}, fmt.Errorf("x2y2: order has no items: %w", domain.ErrEmptyItemSet)
	}
	packed, err := encoding.PackSettlementHeaderWithItem(o, idx)
	if err != nil {
		return common.Hash{}, err
	}
	return ethcrypto.Keccak256Hash(packed), nil
}

// OrderDigest computes the raw digest the order-level signature covers:
// keccak over the packed header, item count, and full item array.
func OrderDigest(o domain.SettlementOrder) (common.Hash, error) {
	if len(o.Items) == 0 {
		return common.Hash{}, fmt.Errorf("x2y2: order has no items: %w", domain.ErrEmptyItemSet)
	}
	packed, err := encoding.PackSettlementOrderDigest(o)
	if err != nil {
		return common.Hash{}, err
	}
	return ethcrypto.Keccak256Hash(packed), nil
}

// RunDigest computes the batch-level digest the co-signer signs: keccak over
// the packed shared struct, then the detail count, then the details.
func RunDigest(shared domain.SettlementShared, details []domain.SettlementDetail) (common.Hash, error) {
	if len(details) == 0 {
		return common.Hash{}, fmt.Errorf("x2y2: batch has no details: %w", domain.ErrEmptyItemSet)
	}
	packed, err := encoding.PackSettlementBatch(shared, details)
	if err != nil {
		return common.Hash{}, err
	}
	return ethcrypto.Keccak256Hash(packed), nil
}
