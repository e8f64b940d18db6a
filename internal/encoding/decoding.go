package encoding

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/parallel-finance/marketadapter/internal/domain"
)

// Wire mirrors for tuples whose domain structs carry named enum fields:
// unpacking produces plain scalar kinds, so those land in uint8 first and
// are converted when mapping back to the domain type.

type offerItemWire struct {
	ItemType             uint8
	Token                common.Address
	IdentifierOrCriteria *big.Int
	StartAmount          *big.Int
	EndAmount            *big.Int
}

type considerationItemWire struct {
	ItemType             uint8
	Token                common.Address
	IdentifierOrCriteria *big.Int
	StartAmount          *big.Int
	EndAmount            *big.Int
	Recipient            common.Address
}

type standardOrderWire struct {
	Offerer       common.Address
	Zone          common.Address
	Offer         []offerItemWire
	Consideration []considerationItemWire
	OrderType     uint8
	StartTime     *big.Int
	EndTime       *big.Int
	ZoneHash      common.Hash
	Salt          *big.Int
	ConduitKey    common.Hash
	Counter       *big.Int
}

// settlementOrderWire lists its fields in tuple order (r/s/v trailing),
// which differs from the domain struct's declaration order.
type settlementOrderWire struct {
	Salt         *big.Int
	User         common.Address
	Network      *big.Int
	Intent       *big.Int
	DelegateType *big.Int
	Deadline     *big.Int
	Currency     common.Address
	DataMask     []byte
	Items        []domain.SettlementItem
	R            common.Hash
	S            common.Hash
	V            uint8
}

type policyOrderWire struct {
	Trader         common.Address
	Side           uint8
	MatchingPolicy common.Address
	Collection     common.Address
	TokenID        *big.Int
	Amount         *big.Int
	PaymentToken   common.Address
	Price          *big.Int
	ListingTime    *big.Int
	ExpirationTime *big.Int
	Fees           []domain.PolicyFee
	Salt           *big.Int
	ExtraParams    []byte
	Nonce          *big.Int
}

// UnpackStandardOrder decodes the bytes PackStandardOrder produced back into
// the order. Encoding is lossless: rehashing the decoded order reproduces
// the original identity hash.
func UnpackStandardOrder(data []byte) (domain.StandardOrder, error) {
	out, err := standardOrderArgs.Unpack(data)
	if err != nil {
		return domain.StandardOrder{}, fmt.Errorf("encoding: decoding standard order: %w", err)
	}
	w := *abi.ConvertType(out[0], new(standardOrderWire)).(*standardOrderWire)

	o := domain.StandardOrder{
		Offerer:    w.Offerer,
		Zone:       w.Zone,
		OrderType:  domain.StandardOrderType(w.OrderType),
		StartTime:  w.StartTime,
		EndTime:    w.EndTime,
		ZoneHash:   w.ZoneHash,
		Salt:       w.Salt,
		ConduitKey: w.ConduitKey,
		Counter:    w.Counter,
	}
	o.Offer = make([]domain.OfferItem, len(w.Offer))
	for i, it := range w.Offer {
		o.Offer[i] = domain.OfferItem{
			ItemType:             domain.ItemType(it.ItemType),
			Token:                it.Token,
			IdentifierOrCriteria: it.IdentifierOrCriteria,
			StartAmount:          it.StartAmount,
			EndAmount:            it.EndAmount,
		}
	}
	o.Consideration = make([]domain.ConsiderationItem, len(w.Consideration))
	for i, it := range w.Consideration {
		o.Consideration[i] = domain.ConsiderationItem{
			ItemType:             domain.ItemType(it.ItemType),
			Token:                it.Token,
			IdentifierOrCriteria: it.IdentifierOrCriteria,
			StartAmount:          it.StartAmount,
			EndAmount:            it.EndAmount,
			Recipient:            it.Recipient,
		}
	}
	return o, nil
}

// UnpackStrategyOrder decodes the bytes PackStrategyOrder produced.
func UnpackStrategyOrder(data []byte) (domain.StrategyOrder, error) {
	out, err := strategyOrderArgs.Unpack(data)
	if err != nil {
		return domain.StrategyOrder{}, fmt.Errorf("encoding: decoding strategy order: %w", err)
	}
	return *abi.ConvertType(out[0], new(domain.StrategyOrder)).(*domain.StrategyOrder), nil
}

// UnpackSettlementOrder decodes the bytes PackSettlementOrder produced,
// including the r/s/v fields.
func UnpackSettlementOrder(data []byte) (domain.SettlementOrder, error) {
	out, err := settlementArgs.Unpack(data)
	if err != nil {
		return domain.SettlementOrder{}, fmt.Errorf("encoding: decoding settlement order: %w", err)
	}
	w := *abi.ConvertType(out[0], new(settlementOrderWire)).(*settlementOrderWire)
	return domain.SettlementOrder{
		Salt:         w.Salt,
		User:         w.User,
		Network:      w.Network,
		Intent:       w.Intent,
		DelegateType: w.DelegateType,
		Deadline:     w.Deadline,
		Currency:     w.Currency,
		DataMask:     w.DataMask,
		Items:        w.Items,
		V:            w.V,
		R:            w.R,
		S:            w.S,
	}, nil
}

// UnpackPolicyOrder decodes the bytes PackPolicyOrder produced.
func UnpackPolicyOrder(data []byte) (domain.PolicyOrder, error) {
	out, err := policyOrderArgs.Unpack(data)
	if err != nil {
		return domain.PolicyOrder{}, fmt.Errorf("encoding: decoding policy order: %w", err)
	}
	w := *abi.ConvertType(out[0], new(policyOrderWire)).(*policyOrderWire)
	return domain.PolicyOrder{
		Trader:         w.Trader,
		Side:           domain.Side(w.Side),
		MatchingPolicy: w.MatchingPolicy,
		Collection:     w.Collection,
		TokenID:        w.TokenID,
		Amount:         w.Amount,
		PaymentToken:   w.PaymentToken,
		Price:          w.Price,
		ListingTime:    w.ListingTime,
		ExpirationTime: w.ExpirationTime,
		Fees:           w.Fees,
		Salt:           w.Salt,
		ExtraParams:    w.ExtraParams,
		Nonce:          w.Nonce,
	}, nil
}
