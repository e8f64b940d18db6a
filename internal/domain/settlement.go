package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Settlement intents.
const (
	IntentSell    = 1
	IntentAuction = 2
	IntentBuy     = 3
)

// Delegate types for settlement transfers.
const (
	DelegateERC721  = 1
	DelegateERC1155 = 2
)

// Settlement detail ops.
const (
	OpCompleteSellOffer uint8 = 1
	OpCompleteBuyOffer  uint8 = 2
	OpCancelOffer       uint8 = 3
	OpBid               uint8 = 4
	OpCompleteAuction   uint8 = 5
)

// SettlementItem is one sellable unit inside a settlement order: a price and
// an opaque data blob the execution delegate decodes.
type SettlementItem struct {
	Price *big.Int
	Data  []byte
}

// SettlementOrder is the X2Y2-shaped order. Per-item identity hashes depend
// on the entire order header plus that one item, so items are not hashable in
// isolation. V/R/S are filled by a dedicated raw-digest signing step.
type SettlementOrder struct {
	Salt         *big.Int
	User         common.Address
	Network      *big.Int
	Intent       *big.Int
	DelegateType *big.Int
	Deadline     *big.Int
	Currency     common.Address
	DataMask     []byte
	Items        []SettlementItem

	V uint8
	R common.Hash
	S common.Hash
}

// SettlementFee is a settlement-time fee split in percentage points of 1e6.
type SettlementFee struct {
	Percentage *big.Int
	To         common.Address
}

// SettlementDetail pairs one order item with its execution parameters.
type SettlementDetail struct {
	Op                 uint8
	OrderIdx           *big.Int
	ItemIdx            *big.Int
	Price              *big.Int
	ItemHash           common.Hash
	ExecutionDelegate  common.Address
	DataReplacement    []byte
	BidIncentivePct    *big.Int
	AucMinIncrementPct *big.Int
	AucIncDurationSecs *big.Int
	Fees               []SettlementFee
}

// SettlementShared carries the batch-level fields covered by the co-signer
// signature. CanFail must be false for adapter-originated batches: partial
// settlement cannot be reconciled with an externally tracked credit voucher.
type SettlementShared struct {
	Salt         *big.Int
	Deadline     *big.Int
	AmountToEth  *big.Int
	AmountToWeth *big.Int
	User         common.Address
	CanFail      bool
}

// SettlementBatch is a co-signed run of settlement orders and details.
type SettlementBatch struct {
	Orders    []SettlementOrder
	Details   []SettlementDetail
	Shared    SettlementShared
	Signature Signature
}
