// Package adapter is the single entry point external callers use: it selects
// the protocol order builder by identifier and exposes uniform build-and-sign
// operations for orders, settlement batches, and credit vouchers.
package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/parallel-finance/marketadapter/internal/chain"
	"github.com/parallel-finance/marketadapter/internal/credit"
	"github.com/parallel-finance/marketadapter/internal/crypto"
	"github.com/parallel-finance/marketadapter/internal/domain"
	"github.com/parallel-finance/marketadapter/internal/eip712"
	"github.com/parallel-finance/marketadapter/internal/platform/blur"
	"github.com/parallel-finance/marketadapter/internal/platform/looksrare"
	"github.com/parallel-finance/marketadapter/internal/platform/seaport"
	"github.com/parallel-finance/marketadapter/internal/platform/x2y2"
)

// BuildRequest selects a protocol and carries that protocol's semantic
// inputs. Exactly the field matching Protocol must be set.
type BuildRequest struct {
	Protocol  domain.Protocol
	Seaport   *seaport.Input
	LooksRare *looksrare.Input
	X2Y2      *x2y2.Input
	Blur      *blur.Input
}

// Options carries the configuration the facade needs beyond its
// collaborators: approved strategy/policy addresses and the settlement
// contract verifying credit signatures.
type Options struct {
	ApprovedStrategies []common.Address
	ApprovedPolicies   []common.Address
	CreditSettlement   common.Address
}

type buildFunc func(ctx context.Context, req BuildRequest) (domain.SignedOrder, error)

// Facade dispatches build-and-sign calls to the per-protocol builders via a
// lookup table keyed by protocol id.
type Facade struct {
	dispatch map[domain.Protocol]buildFunc
	x2y2     *x2y2.Builder
	credit   *credit.Builder
	logger   *slog.Logger
}

// New wires the facade from the signer adapter, typed-data registry, and
// chain accessor.
func New(signer *crypto.Signer, registry *eip712.Registry, accessor chain.Accessor, opts Options, logger *slog.Logger) *Facade {
	log := logger.With(slog.String("component", "adapter"))
	seaportB := seaport.NewBuilder(signer, registry, accessor, logger)
	looksrareB := looksrare.NewBuilder(signer, registry, accessor, opts.ApprovedStrategies, logger)
	x2y2B := x2y2.NewBuilder(signer, accessor, logger)
	blurB := blur.NewBuilder(signer, registry, accessor, opts.ApprovedPolicies, logger)

	f := &Facade{
		x2y2:   x2y2B,
		credit: credit.NewBuilder(signer, registry.ChainID(), opts.CreditSettlement, logger),
		logger: log,
	}
	f.dispatch = map[domain.Protocol]buildFunc{
		domain.ProtocolSeaport: func(ctx context.Context, req BuildRequest) (domain.SignedOrder, error) {
			if req.Seaport == nil {
				return nil, missingInputs(domain.ProtocolSeaport)
			}
			return seaportB.Build(ctx, *req.Seaport)
		},
		domain.ProtocolLooksRare: func(ctx context.Context, req BuildRequest) (domain.SignedOrder, error) {
			if req.LooksRare == nil {
				return nil, missingInputs(domain.ProtocolLooksRare)
			}
			return looksrareB.Build(ctx, *req.LooksRare)
		},
		domain.ProtocolX2Y2: func(ctx context.Context, req BuildRequest) (domain.SignedOrder, error) {
			if req.X2Y2 == nil {
				return nil, missingInputs(domain.ProtocolX2Y2)
			}
			return x2y2B.Build(ctx, *req.X2Y2)
		},
		domain.ProtocolBlur: func(ctx context.Context, req BuildRequest) (domain.SignedOrder, error) {
			if req.Blur == nil {
				return nil, missingInputs(domain.ProtocolBlur)
			}
			return blurB.Build(ctx, *req.Blur)
		},
	}
	return f
}

func missingInputs(p domain.Protocol) error {
	return fmt.Errorf("adapter: no %s inputs supplied: %w", p, domain.ErrEncodingShapeMismatch)
}

// BuildAndSign dispatches to the builder registered for req.Protocol.
// Unregistered ids fail fast with no partial side effects.
func (f *Facade) BuildAndSign(ctx context.Context, req BuildRequest) (domain.SignedOrder, error) {
	build, ok := f.dispatch[req.Protocol]
	if !ok {
		return nil, fmt.Errorf("adapter: protocol %q: %w", req.Protocol, domain.ErrUnknownProtocol)
	}
	order, err := build(ctx, req)
	if err != nil {
		return nil, err
	}
	f.logger.Info("order built",
		slog.String("protocol", string(req.Protocol)),
		slog.String("order_hash", order.OrderHash().Hex()),
	)
	return order, nil
}

// BuildSettlementBatch co-signs a settlement run. Only the settlement
// protocol has batch semantics.
func (f *Facade) BuildSettlementBatch(ctx context.Context, orders []domain.SettlementOrder, details []domain.SettlementDetail, shared domain.SettlementShared) (*domain.SettlementBatch, error) {
	return f.x2y2.BuildBatch(ctx, orders, details, shared)
}

// BuildCreditVoucher signs a voucher bound to order's identity hash. The
// voucher amount may not exceed the price the order expresses.
func (f *Facade) BuildCreditVoucher(ctx context.Context, order domain.SignedOrder, token common.Address, amount *big.Int) (*domain.CreditVoucher, error) {
	priced, ok := order.(domain.PriceOf)
	if !ok {
		return nil, fmt.Errorf("adapter: order does not expose a price: %w", domain.ErrEncodingShapeMismatch)
	}
	return f.credit.Build(ctx, order.OrderHash(), priced.Price(), amount, token)
}

// BuildCreditVoucherForRef signs a voucher against raw reference bytes and
// an explicitly supplied order price, for orders built elsewhere.
func (f *Facade) BuildCreditVoucherForRef(ctx context.Context, orderRef common.Hash, orderPrice, amount *big.Int, token common.Address) (*domain.CreditVoucher, error) {
	return f.credit.Build(ctx, orderRef, orderPrice, amount, token)
}

// BuildAll builds independent requests concurrently. Orders for the same
// maker that need strictly increasing nonces must not be batched here; the
// adapter does not sequence same-trader nonce reads.
func (f *Facade) BuildAll(ctx context.Context, reqs []BuildRequest) ([]domain.SignedOrder, error) {
	out := make([]domain.SignedOrder, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			order, err := f.BuildAndSign(gctx, req)
			if err != nil {
				return err
			}
			out[i] = order
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
