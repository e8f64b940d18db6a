package encoding

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/parallel-finance/marketadapter/internal/domain"
)

// ABI type table. Component names below only drive the Go struct field
// mapping; the wire encoding is positional.
var (
	uint256T = mustType("uint256", nil)

	offerItemComponents = []abi.ArgumentMarshaling{
		{Name: "itemType", Type: "uint8"},
		{Name: "token", Type: "address"},
		{Name: "identifierOrCriteria", Type: "uint256"},
		{Name: "startAmount", Type: "uint256"},
		{Name: "endAmount", Type: "uint256"},
	}
	considerationItemComponents = append(append([]abi.ArgumentMarshaling{}, offerItemComponents...),
		abi.ArgumentMarshaling{Name: "recipient", Type: "address"},
	)

	standardOrderT = mustType("tuple", []abi.ArgumentMarshaling{
		{Name: "offerer", Type: "address"},
		{Name: "zone", Type: "address"},
		{Name: "offer", Type: "tuple[]", Components: offerItemComponents},
		{Name: "consideration", Type: "tuple[]", Components: considerationItemComponents},
		{Name: "orderType", Type: "uint8"},
		{Name: "startTime", Type: "uint256"},
		{Name: "endTime", Type: "uint256"},
		{Name: "zoneHash", Type: "bytes32"},
		{Name: "salt", Type: "uint256"},
		{Name: "conduitKey", Type: "bytes32"},
		{Name: "counter", Type: "uint256"},
	})

	strategyOrderT = mustType("tuple", []abi.ArgumentMarshaling{
		{Name: "isAsk", Type: "bool"},
		{Name: "signer", Type: "address"},
		{Name: "collection", Type: "address"},
		{Name: "price", Type: "uint256"},
		{Name: "tokenID", Type: "uint256"},
		{Name: "amount", Type: "uint256"},
		{Name: "strategy", Type: "address"},
		{Name: "currency", Type: "address"},
		{Name: "nonce", Type: "uint256"},
		{Name: "startTime", Type: "uint256"},
		{Name: "endTime", Type: "uint256"},
		{Name: "minPercentageToAsk", Type: "uint256"},
		{Name: "params", Type: "bytes"},
	})

	settlementItemComponents = []abi.ArgumentMarshaling{
		{Name: "price", Type: "uint256"},
		{Name: "data", Type: "bytes"},
	}
	settlementItemT  = mustType("tuple", settlementItemComponents)
	settlementItemsT = mustType("tuple[]", settlementItemComponents)

	settlementOrderT = mustType("tuple", []abi.ArgumentMarshaling{
		{Name: "salt", Type: "uint256"},
		{Name: "user", Type: "address"},
		{Name: "network", Type: "uint256"},
		{Name: "intent", Type: "uint256"},
		{Name: "delegateType", Type: "uint256"},
		{Name: "deadline", Type: "uint256"},
		{Name: "currency", Type: "address"},
		{Name: "dataMask", Type: "bytes"},
		{Name: "items", Type: "tuple[]", Components: settlementItemComponents},
		{Name: "r", Type: "bytes32"},
		{Name: "s", Type: "bytes32"},
		{Name: "v", Type: "uint8"},
	})

	settlementFeeComponents = []abi.ArgumentMarshaling{
		{Name: "percentage", Type: "uint256"},
		{Name: "to", Type: "address"},
	}
	settlementSharedT = mustType("tuple", []abi.ArgumentMarshaling{
		{Name: "salt", Type: "uint256"},
		{Name: "deadline", Type: "uint256"},
		{Name: "amountToEth", Type: "uint256"},
		{Name: "amountToWeth", Type: "uint256"},
		{Name: "user", Type: "address"},
		{Name: "canFail", Type: "bool"},
	})
	settlementDetailsT = mustType("tuple[]", []abi.ArgumentMarshaling{
		{Name: "op", Type: "uint8"},
		{Name: "orderIdx", Type: "uint256"},
		{Name: "itemIdx", Type: "uint256"},
		{Name: "price", Type: "uint256"},
		{Name: "itemHash", Type: "bytes32"},
		{Name: "executionDelegate", Type: "address"},
		{Name: "dataReplacement", Type: "bytes"},
		{Name: "bidIncentivePct", Type: "uint256"},
		{Name: "aucMinIncrementPct", Type: "uint256"},
		{Name: "aucIncDurationSecs", Type: "uint256"},
		{Name: "fees", Type: "tuple[]", Components: settlementFeeComponents},
	})

	policyOrderT = mustType("tuple", []abi.ArgumentMarshaling{
		{Name: "trader", Type: "address"},
		{Name: "side", Type: "uint8"},
		{Name: "matchingPolicy", Type: "address"},
		{Name: "collection", Type: "address"},
		{Name: "tokenID", Type: "uint256"},
		{Name: "amount", Type: "uint256"},
		{Name: "paymentToken", Type: "address"},
		{Name: "price", Type: "uint256"},
		{Name: "listingTime", Type: "uint256"},
		{Name: "expirationTime", Type: "uint256"},
		{Name: "fees", Type: "tuple[]", Components: []abi.ArgumentMarshaling{
			{Name: "rate", Type: "uint16"},
			{Name: "recipient", Type: "address"},
		}},
		{Name: "salt", Type: "uint256"},
		{Name: "extraParams", Type: "bytes"},
		{Name: "nonce", Type: "uint256"},
	})

	// Pre-built argument lists for the settlement sub-slices the hasher needs.
	settlementHeaderWithItemArgs = abi.Arguments{
		{Type: uint256T},                       // salt
		{Type: mustType("address", nil)},       // user
		{Type: uint256T},                       // network
		{Type: uint256T},                       // intent
		{Type: uint256T},                       // delegateType
		{Type: uint256T},                       // deadline
		{Type: mustType("address", nil)},       // currency
		{Type: mustType("bytes", nil)},         // dataMask
		{Type: uint256T},                       // items length
		{Type: settlementItemT},                // the one item
	}
	settlementOrderDigestArgs = abi.Arguments{
		{Type: uint256T},
		{Type: mustType("address", nil)},
		{Type: uint256T},
		{Type: uint256T},
		{Type: uint256T},
		{Type: uint256T},
		{Type: mustType("address", nil)},
		{Type: mustType("bytes", nil)},
		{Type: uint256T},
		{Type: settlementItemsT},
	}
	settlementBatchArgs = abi.Arguments{
		{Type: settlementSharedT},
		{Type: uint256T},
		{Type: settlementDetailsT},
	}

	standardOrderArgs = abi.Arguments{{Type: standardOrderT}}
	strategyOrderArgs = abi.Arguments{{Type: strategyOrderT}}
	settlementArgs    = abi.Arguments{{Type: settlementOrderT}}
	policyOrderArgs   = abi.Arguments{{Type: policyOrderT}}
)

func mustType(t string, components []abi.ArgumentMarshaling) abi.Type {
	ty, err := abi.NewType(t, "", components)
	if err != nil {
		panic("encoding: bad abi type " + t + ": " + err.Error())
	}
	return ty
}

func shapeErr(field string) error {
	return fmt.Errorf("encoding: %s: %w", field, domain.ErrEncodingShapeMismatch)
}

// PackStandardOrder produces the calldata-grade encoding of a Seaport-shaped
// order. Shape violations are reported before any hashing is attempted.
func PackStandardOrder(o domain.StandardOrder) ([]byte, error) {
	if err := ValidateStandardOrder(o); err != nil {
		return nil, err
	}
	out, err := standardOrderArgs.Pack(o)
	if err != nil {
		return nil, fmt.Errorf("encoding: standard order: %w", err)
	}
	return out, nil
}

// ValidateStandardOrder checks the fixed-shape schema of a standard order.
func ValidateStandardOrder(o domain.StandardOrder) error {
	for i, it := range o.Offer {
		if it.IdentifierOrCriteria == nil || it.StartAmount == nil || it.EndAmount == nil {
			return shapeErr(fmt.Sprintf("offer[%d] has nil field", i))
		}
	}
	for i, it := range o.Consideration {
		if it.IdentifierOrCriteria == nil || it.StartAmount == nil || it.EndAmount == nil {
			return shapeErr(fmt.Sprintf("consideration[%d] has nil field", i))
		}
	}
	if o.StartTime == nil || o.EndTime == nil || o.Salt == nil || o.Counter == nil {
		return shapeErr("standard order header has nil field")
	}
	return nil
}

// PackStrategyOrder produces the calldata-grade encoding of a LooksRare-shaped
// maker order.
func PackStrategyOrder(o domain.StrategyOrder) ([]byte, error) {
	if err := ValidateStrategyOrder(o); err != nil {
		return nil, err
	}
	out, err := strategyOrderArgs.Pack(o)
	if err != nil {
		return nil, fmt.Errorf("encoding: strategy order: %w", err)
	}
	return out, nil
}

// ValidateStrategyOrder checks the fixed-shape schema of a strategy order.
func ValidateStrategyOrder(o domain.StrategyOrder) error {
	if o.Price == nil || o.TokenID == nil || o.Amount == nil || o.Nonce == nil ||
		o.StartTime == nil || o.EndTime == nil || o.MinPercentageToAsk == nil {
		return shapeErr("strategy order has nil field")
	}
	return nil
}

// PackSettlementOrder produces the full calldata encoding of a settlement
// order including its r/s/v fields.
func PackSettlementOrder(o domain.SettlementOrder) ([]byte, error) {
	if err := ValidateSettlementOrder(o); err != nil {
		return nil, err
	}
	out, err := settlementArgs.Pack(o)
	if err != nil {
		return nil, fmt.Errorf("encoding: settlement order: %w", err)
	}
	return out, nil
}

// ValidateSettlementOrder checks the fixed-shape schema of a settlement order.
func ValidateSettlementOrder(o domain.SettlementOrder) error {
	if o.Salt == nil || o.Network == nil || o.Intent == nil || o.DelegateType == nil || o.Deadline == nil {
		return shapeErr("settlement order header has nil field")
	}
	for i, it := range o.Items {
		if it.Price == nil {
			return shapeErr(fmt.Sprintf("items[%d].price is nil", i))
		}
	}
	return nil
}

// PackSettlementHeaderWithItem encodes the entire order header, the item
// count, and the single item at idx. This is the pre-image of a per-item
// identity hash: changing any header field changes every item's encoding.
func PackSettlementHeaderWithItem(o domain.SettlementOrder, idx int) ([]byte, error) {
	if err := ValidateSettlementOrder(o); err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(o.Items) {
		return nil, shapeErr(fmt.Sprintf("item index %d out of range [0,%d)", idx, len(o.Items)))
	}
	out, err := settlementHeaderWithItemArgs.Pack(
		o.Salt, o.User, o.Network, o.Intent, o.DelegateType, o.Deadline,
		o.Currency, o.DataMask, uint256(len(o.Items)), o.Items[idx],
	)
	if err != nil {
		return nil, fmt.Errorf("encoding: settlement header+item: %w", err)
	}
	return out, nil
}

// PackSettlementOrderDigest encodes the order header, the item count, and the
// full item array. The order-level signature covers the hash of this slice.
func PackSettlementOrderDigest(o domain.SettlementOrder) ([]byte, error) {
	if err := ValidateSettlementOrder(o); err != nil {
		return nil, err
	}
	out, err := settlementOrderDigestArgs.Pack(
		o.Salt, o.User, o.Network, o.Intent, o.DelegateType, o.Deadline,
		o.Currency, o.DataMask, uint256(len(o.Items)), o.Items,
	)
	if err != nil {
		return nil, fmt.Errorf("encoding: settlement order digest: %w", err)
	}
	return out, nil
}

// PackSettlementBatch encodes shared struct first, then the detail count,
// then the details array. Concatenation order matches the on-chain verifier.
func PackSettlementBatch(shared domain.SettlementShared, details []domain.SettlementDetail) ([]byte, error) {
	if shared.Salt == nil || shared.Deadline == nil || shared.AmountToEth == nil || shared.AmountToWeth == nil {
		return nil, shapeErr("settlement shared has nil field")
	}
	for i, d := range details {
		if d.OrderIdx == nil || d.ItemIdx == nil || d.Price == nil ||
			d.BidIncentivePct == nil || d.AucMinIncrementPct == nil || d.AucIncDurationSecs == nil {
			return nil, shapeErr(fmt.Sprintf("details[%d] has nil field", i))
		}
		for j, f := range d.Fees {
			if f.Percentage == nil {
				return nil, shapeErr(fmt.Sprintf("details[%d].fees[%d].percentage is nil", i, j))
			}
		}
	}
	out, err := settlementBatchArgs.Pack(shared, uint256(len(details)), details)
	if err != nil {
		return nil, fmt.Errorf("encoding: settlement batch: %w", err)
	}
	return out, nil
}

// PackPolicyOrder produces the calldata-grade encoding of a Blur-shaped
// order including its trailing nonce.
func PackPolicyOrder(o domain.PolicyOrder) ([]byte, error) {
	if err := ValidatePolicyOrder(o); err != nil {
		return nil, err
	}
	out, err := policyOrderArgs.Pack(o)
	if err != nil {
		return nil, fmt.Errorf("encoding: policy order: %w", err)
	}
	return out, nil
}

// ValidatePolicyOrder checks the fixed-shape schema of a policy order.
func ValidatePolicyOrder(o domain.PolicyOrder) error {
	if o.TokenID == nil || o.Amount == nil || o.Price == nil || o.Salt == nil ||
		o.ListingTime == nil || o.ExpirationTime == nil || o.Nonce == nil {
		return shapeErr("policy order has nil field")
	}
	return nil
}

func uint256(n int) *big.Int {
	return big.NewInt(int64(n))
}
