// Package looksrare builds and signs strategy (LooksRare-shaped) maker
// orders against an approved fixed-price strategy contract.
package looksrare

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/parallel-finance/marketadapter/internal/chain"
	"github.com/parallel-finance/marketadapter/internal/crypto"
	"github.com/parallel-finance/marketadapter/internal/domain"
	"github.com/parallel-finance/marketadapter/internal/eip712"
	"github.com/parallel-finance/marketadapter/internal/encoding"
)

// MakerOrder(bool isOrderAsk,address signer,address collection,uint256 price,uint256 tokenId,uint256 amount,address strategy,address currency,uint256 nonce,uint256 startTime,uint256 endTime,uint256 minPercentageToAsk,bytes params)
const makerOrderType = "MakerOrder(bool isOrderAsk,address signer,address collection,uint256 price,uint256 tokenId,uint256 amount,address strategy,address currency,uint256 nonce,uint256 startTime,uint256 endTime,uint256 minPercentageToAsk,bytes params)"

var makerOrderTypeHash = ethcrypto.Keccak256Hash([]byte(makerOrderType))

// HashOrder computes the maker-order identity hash. The dynamic params blob
// is hashed in place of its bytes per the typed-data rules.
func HashOrder(o domain.StrategyOrder) (common.Hash, error) {
	if err := encoding.ValidateStrategyOrder(o); err != nil {
		return common.Hash{}, err
	}
	return ethcrypto.Keccak256Hash(encoding.Concat(
		makerOrderTypeHash.Bytes(),
		encoding.BoolWord(o.IsAsk),
		encoding.AddressWord(o.Signer),
		encoding.AddressWord(o.Collection),
		encoding.Word(o.Price),
		encoding.Word(o.TokenID),
		encoding.Word(o.Amount),
		encoding.AddressWord(o.Strategy),
		encoding.AddressWord(o.Currency),
		encoding.Word(o.Nonce),
		encoding.Word(o.StartTime),
		encoding.Word(o.EndTime),
		encoding.Word(o.MinPercentageToAsk),
		ethcrypto.Keccak256(o.Params),
	)), nil
}

// Input carries the semantic fields of a strategy order build. The nonce is
// caller-supplied and must be unique per signer; the builder refuses a nonce
// already behind the live value.
type Input struct {
	IsAsk              bool
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
	Taker              common.Address
}

// SignedOrder is a fully signed strategy order plus its identity hash.
type SignedOrder struct {
	Order     domain.StrategyOrder
	Hash      common.Hash
	Signature domain.Signature
}

// Protocol implements domain.SignedOrder.
func (s *SignedOrder) Protocol() domain.Protocol { return domain.ProtocolLooksRare }

// OrderHash implements domain.SignedOrder.
func (s *SignedOrder) OrderHash() common.Hash { return s.Hash }

// Price implements domain.PriceOf.
func (s *SignedOrder) Price() *big.Int { return new(big.Int).Set(s.Order.Price) }

// Builder wires the strategy-order build path.
type Builder struct {
	signer             *crypto.Signer
	registry           *eip712.Registry
	accessor           chain.Accessor
	approvedStrategies map[common.Address]struct{}
	logger             *slog.Logger
}

// NewBuilder wires a strategy-order builder. approvedStrategies is the
// configured set of fixed-price strategy contracts orders may reference.
func NewBuilder(signer *crypto.Signer, registry *eip712.Registry, accessor chain.Accessor, approvedStrategies []common.Address, logger *slog.Logger) *Builder {
	approved := make(map[common.Address]struct{}, len(approvedStrategies))
	for _, a := range approvedStrategies {
		approved[a] = struct{}{}
	}
	return &Builder{
		signer:             signer,
		registry:           registry,
		accessor:           accessor,
		approvedStrategies: approved,
		logger:             logger.With(slog.String("component", "looksrare")),
	}
}

// Build validates the inputs and produces a signed strategy order. All
// failures surface before signing.
func (b *Builder) Build(ctx context.Context, in Input) (*SignedOrder, error) {
	maker := b.signer.Address()
	if in.Taker != (common.Address{}) && in.Taker == maker {
		return nil, fmt.Errorf("looksrare: maker %s equals designated taker: %w", maker.Hex(), domain.ErrSelfTradeRejected)
	}
	if in.Amount == nil || in.Amount.Sign() == 0 || in.Price == nil || in.Price.Sign() == 0 {
		return nil, fmt.Errorf("looksrare: zero amount or price: %w", domain.ErrEncodingShapeMismatch)
	}
	if in.MinPercentageToAsk == nil || in.MinPercentageToAsk.Cmp(big.NewInt(domain.BpsDenominator)) > 0 {
		return nil, fmt.Errorf("looksrare: minPercentageToAsk above %d: %w", domain.BpsDenominator, domain.ErrInvalidFeeBasisPoints)
	}
	if len(b.approvedStrategies) > 0 {
		if _, ok := b.approvedStrategies[in.Strategy]; !ok {
			return nil, fmt.Errorf("looksrare: strategy %s is not an approved fixed-price strategy: %w", in.Strategy.Hex(), domain.ErrEncodingShapeMismatch)
		}
	}
	if in.Nonce == nil {
		return nil, fmt.Errorf("looksrare: nonce is required: %w", domain.ErrEncodingShapeMismatch)
	}

	// A caller-supplied nonce behind the live value can never validate; the
	// exchange has already consumed it.
	live, err := b.accessor.Nonce(ctx, maker)
	if err != nil {
		return nil, fmt.Errorf("looksrare: reading live nonce for %s: %w", maker.Hex(), err)
	}
	if in.Nonce.Cmp(live) < 0 {
		return nil, fmt.Errorf("looksrare: nonce %s behind live value %s: %w", in.Nonce, live, domain.ErrStaleNonce)
	}

	order := domain.StrategyOrder{
		IsAsk:              in.IsAsk,
		Signer:             maker,
		Collection:         in.Collection,
		Price:              in.Price,
		TokenID:            in.TokenID,
		Amount:             in.Amount,
		Strategy:           in.Strategy,
		Currency:           in.Currency,
		Nonce:              in.Nonce,
		StartTime:          in.StartTime,
		EndTime:            in.EndTime,
		MinPercentageToAsk: in.MinPercentageToAsk,
		Params:             in.Params,
	}

	hash, err := HashOrder(order)
	if err != nil {
		return nil, err
	}
	dom, err := b.registry.DomainFor(domain.ProtocolLooksRare)
	if err != nil {
		return nil, err
	}
	sig, err := b.signer.SignTypedData(dom.Separator(), hash)
	if err != nil {
		return nil, fmt.Errorf("looksrare: signing order: %w", err)
	}

	b.logger.Debug("strategy order signed",
		slog.String("maker", maker.Hex()),
		slog.String("order_hash", hash.Hex()),
	)
	return &SignedOrder{Order: order, Hash: hash, Signature: sig}, nil
}
