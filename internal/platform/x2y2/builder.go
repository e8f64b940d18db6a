package x2y2

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/parallel-finance/marketadapter/internal/chain"
	"github.com/parallel-finance/marketadapter/internal/crypto"
	"github.com/parallel-finance/marketadapter/internal/domain"
)

// defaultDeadlineWindow is applied when the caller leaves the deadline unset.
const defaultDeadlineWindow = 24 * 60 * 60 // seconds

// Input carries the semantic fields of a settlement order build. Network
// defaults to the live chain id and Deadline to one day past the latest
// block when left unset.
type Input struct {
	Intent       int64
	DelegateType int64
	Deadline     *big.Int
	Currency     common.Address
	DataMask     []byte
	Items        []domain.SettlementItem
	Salt         *big.Int
	Network      *big.Int
	Taker        common.Address
}

// SignedOrder is a settlement order with its order-level r/s/v filled in,
// plus the per-item identity hashes consumed by settlement details.
type SignedOrder struct {
	Order      domain.SettlementOrder
	Digest     common.Hash
	ItemHashes []common.Hash
}

// Protocol implements domain.SignedOrder.
func (s *SignedOrder) Protocol() domain.Protocol { return domain.ProtocolX2Y2 }

// OrderHash implements domain.SignedOrder.
func (s *SignedOrder) OrderHash() common.Hash { return s.Digest }

// Price implements domain.PriceOf as the sum of item prices.
func (s *SignedOrder) Price() *big.Int {
	total := new(big.Int)
	for _, it := range s.Order.Items {
		total.Add(total, it.Price)
	}
	return total
}

// Builder wires the settlement order and batch build paths.
type Builder struct {
	signer   *crypto.Signer
	accessor chain.Accessor
	logger   *slog.Logger
}

// NewBuilder wires a settlement builder. Batch signing additionally needs a
// co-signer key on the supplied signer.
func NewBuilder(signer *crypto.Signer, accessor chain.Accessor, logger *slog.Logger) *Builder {
	return &Builder{
		signer:   signer,
		accessor: accessor,
		logger:   logger.With(slog.String("component", "x2y2")),
	}
}

// Build assembles a settlement order, signs its raw digest with the maker
// key, and normalizes the recovery byte into {27,28} immediately: this
// protocol's native signing path returns {0,1}-style values in practice.
func (b *Builder) Build(ctx context.Context, in Input) (*SignedOrder, error) {
	user := b.signer.Address()
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("x2y2: order has no items: %w", domain.ErrEmptyItemSet)
	}
	if in.Taker != (common.Address{}) && in.Taker == user {
		return nil, fmt.Errorf("x2y2: maker %s equals designated taker: %w", user.Hex(), domain.ErrSelfTradeRejected)
	}
	for i, it := range in.Items {
		if it.Price == nil || it.Price.Sign() == 0 {
			return nil, fmt.Errorf("x2y2: items[%d] has zero price: %w", i, domain.ErrEncodingShapeMismatch)
		}
	}

	network := in.Network
	if network == nil {
		id, err := b.accessor.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("x2y2: reading chain id: %w", err)
		}
		network = id
	}
	deadline := in.Deadline
	if deadline == nil {
		now, err := b.accessor.BlockTimestamp(ctx)
		if err != nil {
			return nil, fmt.Errorf("x2y2: reading block timestamp: %w", err)
		}
		deadline = new(big.Int).SetUint64(now + defaultDeadlineWindow)
	}
	salt := in.Salt
	if salt == nil {
		salt = domain.NewSalt()
	}

	order := domain.SettlementOrder{
		Salt:         salt,
		User:         user,
		Network:      network,
		Intent:       big.NewInt(in.Intent),
		DelegateType: big.NewInt(in.DelegateType),
		Deadline:     deadline,
		Currency:     in.Currency,
		DataMask:     in.DataMask,
		Items:        in.Items,
	}

	digest, err := OrderDigest(order)
	if err != nil {
		return nil, err
	}
	sig, err := b.signer.SignDigest(digest)
	if err != nil {
		return nil, fmt.Errorf("x2y2: signing order digest: %w", err)
	}
	order.V, order.R, order.S = sig.V, sig.R, sig.S

	itemHashes := make([]common.Hash, len(order.Items))
	for i := range order.Items {
		h, err := ItemHash(order, i)
		if err != nil {
			return nil, err
		}
		itemHashes[i] = h
	}

	b.logger.Debug("settlement order signed",
		slog.String("user", user.Hex()),
		slog.String("digest", digest.Hex()),
		slog.Int("items", len(order.Items)),
	)
	return &SignedOrder{Order: order, Digest: digest, ItemHashes: itemHashes}, nil
}

// BuildBatch co-signs a run of settlement orders. Batches with
// shared.CanFail set are rejected before any signing call: a may-fail run
// cannot be reconciled with an externally tracked credit voucher that
// assumes the referenced order settles fully or not at all.
func (b *Builder) BuildBatch(ctx context.Context, orders []domain.SettlementOrder, details []domain.SettlementDetail, shared domain.SettlementShared) (*domain.SettlementBatch, error) {
	if shared.CanFail {
		return nil, fmt.Errorf("x2y2: canFail batches cannot back credit settlement: %w", domain.ErrCreditExceedsOrderValue)
	}
	if len(orders) == 0 || len(details) == 0 {
		return nil, fmt.Errorf("x2y2: batch has no orders or details: %w", domain.ErrEmptyItemSet)
	}
	for i, d := range details {
		if d.OrderIdx == nil || d.ItemIdx == nil {
			return nil, fmt.Errorf("x2y2: details[%d] missing indices: %w", i, domain.ErrEncodingShapeMismatch)
		}
		oi := int(d.OrderIdx.Int64())
		if oi < 0 || oi >= len(orders) {
			return nil, fmt.Errorf("x2y2: details[%d] order index %d out of range: %w", i, oi, domain.ErrEncodingShapeMismatch)
		}
		if ii := int(d.ItemIdx.Int64()); ii < 0 || ii >= len(orders[oi].Items) {
			return nil, fmt.Errorf("x2y2: details[%d] item index %d out of range: %w", i, ii, domain.ErrEncodingShapeMismatch)
		}
	}

	digest, err := RunDigest(shared, details)
	if err != nil {
		return nil, err
	}
	sig, err := b.signer.CoSignDigest(digest)
	if err != nil {
		return nil, fmt.Errorf("x2y2: co-signing run digest: %w", err)
	}

	b.logger.Debug("settlement batch co-signed",
		slog.String("run_digest", digest.Hex()),
		slog.Int("orders", len(orders)),
		slog.Int("details", len(details)),
	)
	return &domain.SettlementBatch{
		Orders:    orders,
		Details:   details,
		Shared:    shared,
		Signature: sig,
	}, nil
}
