// Package blur builds and signs policy (Blur-shaped) orders. The trader's
// nonce lives on the exchange and moves with every executed trade, so it is
// re-read immediately before signing rather than tracked client-side.
package blur

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

// Canonical type strings; the Fee type is appended to the Order type string
// per the typed-data rules.
const (
	feeType   = "Fee(uint16 rate,address recipient)"
	orderType = "Order(address trader,uint8 side,address matchingPolicy,address collection,uint256 tokenId,uint256 amount,address paymentToken,uint256 price,uint256 listingTime,uint256 expirationTime,Fee[] fees,uint256 salt,bytes extraParams,uint256 nonce)" + feeType
)

var (
	feeTypeHash   = ethcrypto.Keccak256Hash([]byte(feeType))
	orderTypeHash = ethcrypto.Keccak256Hash([]byte(orderType))
)

func hashFee(f domain.PolicyFee) common.Hash {
	return ethcrypto.Keccak256Hash(encoding.Concat(
		feeTypeHash.Bytes(),
		encoding.Uint64Word(uint64(f.Rate)),
		encoding.AddressWord(f.Recipient),
	))
}

// HashOrder computes the policy-order identity hash, fee run and extra
// params hashed in place, nonce trailing.
func HashOrder(o domain.PolicyOrder) (common.Hash, error) {
	if err := encoding.ValidatePolicyOrder(o); err != nil {
		return common.Hash{}, err
	}
	feeRun := make([]byte, 0, len(o.Fees)*32)
	for _, f := range o.Fees {
		feeRun = append(feeRun, hashFee(f).Bytes()...)
	}
	return ethcrypto.Keccak256Hash(encoding.Concat(
		orderTypeHash.Bytes(),
		encoding.AddressWord(o.Trader),
		encoding.Uint64Word(uint64(o.Side)),
		encoding.AddressWord(o.MatchingPolicy),
		encoding.AddressWord(o.Collection),
		encoding.Word(o.TokenID),
		encoding.Word(o.Amount),
		encoding.AddressWord(o.PaymentToken),
		encoding.Word(o.Price),
		encoding.Word(o.ListingTime),
		encoding.Word(o.ExpirationTime),
		ethcrypto.Keccak256(feeRun),
		encoding.Word(o.Salt),
		ethcrypto.Keccak256(o.ExtraParams),
		encoding.Word(o.Nonce),
	)), nil
}

// Input carries the semantic fields of a policy order build.
type Input struct {
	Side           domain.Side
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
	Taker          common.Address
}

// SignedOrder is a fully signed policy order plus its identity hash.
type SignedOrder struct {
	Order     domain.PolicyOrder
	Hash      common.Hash
	Signature domain.Signature
}

// Protocol implements domain.SignedOrder.
func (s *SignedOrder) Protocol() domain.Protocol { return domain.ProtocolBlur }

// OrderHash implements domain.SignedOrder.
func (s *SignedOrder) OrderHash() common.Hash { return s.Hash }

// Price implements domain.PriceOf.
func (s *SignedOrder) Price() *big.Int { return new(big.Int).Set(s.Order.Price) }

// Builder wires the policy-order build path.
type Builder struct {
	signer           *crypto.Signer
	registry         *eip712.Registry
	accessor         chain.Accessor
	approvedPolicies map[common.Address]struct{}
	logger           *slog.Logger
}

// NewBuilder wires a policy-order builder over the configured set of
// approved matching policies.
func NewBuilder(signer *crypto.Signer, registry *eip712.Registry, accessor chain.Accessor, approvedPolicies []common.Address, logger *slog.Logger) *Builder {
	approved := make(map[common.Address]struct{}, len(approvedPolicies))
	for _, a := range approvedPolicies {
		approved[a] = struct{}{}
	}
	return &Builder{
		signer:           signer,
		registry:         registry,
		accessor:         accessor,
		approvedPolicies: approved,
		logger:           logger.With(slog.String("component", "blur")),
	}
}

// Build validates the inputs, re-reads the trader's live nonce, hashes, and
// signs. Sequential builds for the same trader without an intervening trade
// read the same nonce; callers that need distinct values must serialize
// around settlement externally.
func (b *Builder) Build(ctx context.Context, in Input) (*SignedOrder, error) {
	trader := b.signer.Address()
	if in.Taker != (common.Address{}) && in.Taker == trader {
		return nil, fmt.Errorf("blur: maker %s equals designated taker: %w", trader.Hex(), domain.ErrSelfTradeRejected)
	}
	if in.Amount == nil || in.Amount.Sign() == 0 || in.Price == nil || in.Price.Sign() == 0 {
		return nil, fmt.Errorf("blur: zero amount or price: %w", domain.ErrEncodingShapeMismatch)
	}
	totalBps := 0
	for _, f := range in.Fees {
		totalBps += int(f.Rate)
	}
	if totalBps > domain.BpsDenominator {
		return nil, fmt.Errorf("blur: fees total %d bps: %w", totalBps, domain.ErrInvalidFeeBasisPoints)
	}
	if len(b.approvedPolicies) > 0 {
		if _, ok := b.approvedPolicies[in.MatchingPolicy]; !ok {
			return nil, fmt.Errorf("blur: matching policy %s is not approved: %w", in.MatchingPolicy.Hex(), domain.ErrEncodingShapeMismatch)
		}
	}

	salt := in.Salt
	if salt == nil {
		salt = domain.NewSalt()
	}
	listing, expiration, err := b.window(ctx, in.ListingTime, in.ExpirationTime)
	if err != nil {
		return nil, err
	}

	// Nonce read sits last before hashing to narrow the stale window when
	// multiple orders for the same trader are built in sequence.
	nonce, err := b.accessor.Nonce(ctx, trader)
	if err != nil {
		return nil, fmt.Errorf("blur: reading live nonce for %s: %w", trader.Hex(), err)
	}

	order := domain.PolicyOrder{
		Trader:         trader,
		Side:           in.Side,
		MatchingPolicy: in.MatchingPolicy,
		Collection:     in.Collection,
		TokenID:        in.TokenID,
		Amount:         in.Amount,
		PaymentToken:   in.PaymentToken,
		Price:          in.Price,
		ListingTime:    listing,
		ExpirationTime: expiration,
		Fees:           in.Fees,
		Salt:           salt,
		ExtraParams:    in.ExtraParams,
		Nonce:          nonce,
	}

	hash, err := HashOrder(order)
	if err != nil {
		return nil, err
	}
	dom, err := b.registry.DomainFor(domain.ProtocolBlur)
	if err != nil {
		return nil, err
	}
	sig, err := b.signer.SignTypedData(dom.Separator(), hash)
	if err != nil {
		return nil, fmt.Errorf("blur: signing order: %w", err)
	}

	b.logger.Debug("policy order signed",
		slog.String("trader", trader.Hex()),
		slog.String("order_hash", hash.Hex()),
		slog.String("nonce", nonce.String()),
	)
	return &SignedOrder{Order: order, Hash: hash, Signature: sig}, nil
}

const defaultListingWindow = 30 * 24 * 60 * 60 // seconds

func (b *Builder) window(ctx context.Context, listing, expiration *big.Int) (*big.Int, *big.Int, error) {
	if listing != nil && expiration != nil {
		return listing, expiration, nil
	}
	now, err := b.accessor.BlockTimestamp(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("blur: reading block timestamp: %w", err)
	}
	if listing == nil {
		listing = new(big.Int).SetUint64(now)
	}
	if expiration == nil {
		expiration = new(big.Int).SetUint64(now + defaultListingWindow)
	}
	return listing, expiration, nil
}
