package seaport

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/parallel-finance/marketadapter/internal/chain"
	"github.com/parallel-finance/marketadapter/internal/crypto"
	"github.com/parallel-finance/marketadapter/internal/domain"
	"github.com/parallel-finance/marketadapter/internal/eip712"
)

// defaultListingWindow is applied when the caller leaves start/end times unset.
const defaultListingWindow = 7 * 24 * 60 * 60 // seconds

// FeeSplit routes a basis-point share of the order price to a recipient as an
// extra consideration item.
type FeeSplit struct {
	RateBps   uint16
	Recipient common.Address
}

// Input carries the semantic fields of a standard order build. The offerer
// is always the signing identity; Taker, when set, designates the intended
// counterparty for the self-trade check.
type Input struct {
	Zone          common.Address
	ZoneHash      common.Hash
	ConduitKey    common.Hash
	OrderType     domain.StandardOrderType
	Offer         []domain.OfferItem
	Consideration []domain.ConsiderationItem
	Fees          []FeeSplit
	Taker         common.Address
	StartTime     *big.Int
	EndTime       *big.Int
	Salt          *big.Int
}

// SignedOrder is a fully signed standard order plus its identity hash.
type SignedOrder struct {
	Order     domain.StandardOrder
	Hash      common.Hash
	Signature domain.Signature
}

// Protocol implements domain.SignedOrder.
func (s *SignedOrder) Protocol() domain.Protocol { return domain.ProtocolSeaport }

// OrderHash implements domain.SignedOrder.
func (s *SignedOrder) OrderHash() common.Hash { return s.Hash }

// Price returns the total consideration start amount, the bound a credit
// voucher referencing this order must respect.
func (s *SignedOrder) Price() *big.Int {
	total := new(big.Int)
	for _, it := range s.Order.Consideration {
		total.Add(total, it.StartAmount)
	}
	return total
}

// Builder composes the encoder, domain builder, hasher, and signer adapter
// into the standard-order build path.
type Builder struct {
	signer   *crypto.Signer
	registry *eip712.Registry
	accessor chain.Accessor
	logger   *slog.Logger
}

// NewBuilder wires a standard-order builder.
func NewBuilder(signer *crypto.Signer, registry *eip712.Registry, accessor chain.Accessor, logger *slog.Logger) *Builder {
	return &Builder{
		signer:   signer,
		registry: registry,
		accessor: accessor,
		logger:   logger.With(slog.String("component", "seaport")),
	}
}

// Build validates the inputs, reads the offerer's live counter, applies fee
// splits, hashes, and signs. Every failure is reported before a signature is
// produced.
func (b *Builder) Build(ctx context.Context, in Input) (*SignedOrder, error) {
	offerer := b.signer.Address()
	if len(in.Offer) == 0 || len(in.Consideration) == 0 {
		return nil, fmt.Errorf("seaport: offer and consideration must be non-empty: %w", domain.ErrEmptyItemSet)
	}
	if in.Taker != (common.Address{}) && in.Taker == offerer {
		return nil, fmt.Errorf("seaport: maker %s equals designated taker: %w", offerer.Hex(), domain.ErrSelfTradeRejected)
	}
	for i, it := range in.Offer {
		if it.IdentifierOrCriteria == nil {
			return nil, fmt.Errorf("seaport: offer[%d] has nil identifier: %w", i, domain.ErrEncodingShapeMismatch)
		}
		if isZeroAmount(it.StartAmount, it.EndAmount) {
			return nil, fmt.Errorf("seaport: offer[%d] has zero amount: %w", i, domain.ErrEncodingShapeMismatch)
		}
	}
	for i, it := range in.Consideration {
		if it.IdentifierOrCriteria == nil {
			return nil, fmt.Errorf("seaport: consideration[%d] has nil identifier: %w", i, domain.ErrEncodingShapeMismatch)
		}
		if isZeroAmount(it.StartAmount, it.EndAmount) {
			return nil, fmt.Errorf("seaport: consideration[%d] has zero amount: %w", i, domain.ErrEncodingShapeMismatch)
		}
	}

	consideration, err := applyFeeSplits(in.Consideration, in.Fees)
	if err != nil {
		return nil, err
	}

	start, end, err := b.listingWindow(ctx, in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}

	// The counter is a live read, never cached: stale counters produce
	// orders the exchange silently treats as cancelled.
	counter, err := b.accessor.Counter(ctx, offerer)
	if err != nil {
		return nil, fmt.Errorf("seaport: reading counter for %s: %w", offerer.Hex(), err)
	}

	salt := in.Salt
	if salt == nil {
		salt = domain.NewSalt()
	}

	order := domain.StandardOrder{
		Offerer:       offerer,
		Zone:          in.Zone,
		Offer:         in.Offer,
		Consideration: consideration,
		OrderType:     in.OrderType,
		StartTime:     start,
		EndTime:       end,
		ZoneHash:      in.ZoneHash,
		Salt:          salt,
		ConduitKey:    in.ConduitKey,
		Counter:       counter,
	}

	hash, err := HashOrder(order)
	if err != nil {
		return nil, err
	}
	dom, err := b.registry.DomainFor(domain.ProtocolSeaport)
	if err != nil {
		return nil, err
	}
	sig, err := b.signer.SignTypedData(dom.Separator(), hash)
	if err != nil {
		return nil, fmt.Errorf("seaport: signing order: %w", err)
	}

	b.logger.Debug("standard order signed",
		slog.String("offerer", offerer.Hex()),
		slog.String("order_hash", hash.Hex()),
		slog.Int("consideration_items", len(consideration)),
	)
	return &SignedOrder{Order: order, Hash: hash, Signature: sig}, nil
}

// applyFeeSplits deducts each fee from the primary consideration item and
// appends one consideration item per split, preserving token and item type.
func applyFeeSplits(base []domain.ConsiderationItem, fees []FeeSplit) ([]domain.ConsiderationItem, error) {
	if len(fees) == 0 {
		return base, nil
	}
	totalBps := 0
	for _, f := range fees {
		totalBps += int(f.RateBps)
	}
	if totalBps > domain.BpsDenominator {
		return nil, fmt.Errorf("seaport: fee splits total %d bps: %w", totalBps, domain.ErrInvalidFeeBasisPoints)
	}

	out := make([]domain.ConsiderationItem, len(base), len(base)+len(fees))
	copy(out, base)
	primary := &out[0]
	price := new(big.Int).Set(primary.StartAmount)

	primary.StartAmount = new(big.Int).Set(primary.StartAmount)
	primary.EndAmount = new(big.Int).Set(primary.EndAmount)
	for _, f := range fees {
		cut := new(big.Int).Mul(price, big.NewInt(int64(f.RateBps)))
		cut.Div(cut, big.NewInt(domain.BpsDenominator))
		primary.StartAmount.Sub(primary.StartAmount, cut)
		primary.EndAmount.Sub(primary.EndAmount, cut)
		out = append(out, domain.ConsiderationItem{
			ItemType:             primary.ItemType,
			Token:                primary.Token,
			IdentifierOrCriteria: new(big.Int).Set(primary.IdentifierOrCriteria),
			StartAmount:          cut,
			EndAmount:            new(big.Int).Set(cut),
			Recipient:            f.Recipient,
		})
	}
	if primary.StartAmount.Sign() <= 0 {
		return nil, fmt.Errorf("seaport: fee splits consume the entire price: %w", domain.ErrInvalidFeeBasisPoints)
	}
	return out, nil
}

func (b *Builder) listingWindow(ctx context.Context, start, end *big.Int) (*big.Int, *big.Int, error) {
	if start != nil && end != nil {
		return start, end, nil
	}
	now, err := b.accessor.BlockTimestamp(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("seaport: reading block timestamp: %w", err)
	}
	if start == nil {
		start = new(big.Int).SetUint64(now)
	}
	if end == nil {
		end = new(big.Int).SetUint64(now + defaultListingWindow)
	}
	return start, end, nil
}

func isZeroAmount(start, end *big.Int) bool {
	return start == nil || end == nil || start.Sign() == 0 || end.Sign() == 0
}
