package seaport

import (
	"context"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallel-finance/marketadapter/internal/crypto"
	"github.com/parallel-finance/marketadapter/internal/domain"
	"github.com/parallel-finance/marketadapter/internal/eip712"
)

const testKeyHex = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"

var (
	nftToken  = common.HexToAddress("0x6666666666666666666666666666666666666666")
	payToken  = common.HexToAddress("0x7777777777777777777777777777777777777777")
	platformA = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	platformB = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

type stubAccessor struct {
	counter *big.Int
	nonce   *big.Int
	ts      uint64
}

func (s *stubAccessor) Counter(context.Context, common.Address) (*big.Int, error) {
	return new(big.Int).Set(s.counter), nil
}

func (s *stubAccessor) Nonce(context.Context, common.Address) (*big.Int, error) {
	return new(big.Int).Set(s.nonce), nil
}

func (s *stubAccessor) ChainID(context.Context) (*big.Int, error) { return big.NewInt(1), nil }

func (s *stubAccessor) BlockTimestamp(context.Context) (uint64, error) { return s.ts, nil }

func newTestBuilder(t *testing.T) (*Builder, *crypto.Signer) {
	t.Helper()
	backend, err := crypto.NewLocalBackend(testKeyHex)
	require.NoError(t, err)
	signer := crypto.NewSigner(backend)
	registry := eip712.NewRegistry(big.NewInt(1), map[domain.Protocol]common.Address{
		domain.ProtocolSeaport: common.HexToAddress("0x00000000006c3852cbEf3e08E8dF289169EdE581"),
	})
	accessor := &stubAccessor{counter: big.NewInt(7), nonce: big.NewInt(0), ts: 1_700_000_000}
	return NewBuilder(signer, registry, accessor, slog.Default()), signer
}

func nftOffer() []domain.OfferItem {
	return []domain.OfferItem{{
		ItemType:             domain.ItemERC721,
		Token:                nftToken,
		IdentifierOrCriteria: big.NewInt(42),
		StartAmount:          big.NewInt(1),
		EndAmount:            big.NewInt(1),
	}}
}

func makerConsideration(maker common.Address, price int64) []domain.ConsiderationItem {
	return []domain.ConsiderationItem{{
		ItemType:             domain.ItemERC20,
		Token:                payToken,
		IdentifierOrCriteria: big.NewInt(0),
		StartAmount:          big.NewInt(price),
		EndAmount:            big.NewInt(price),
		Recipient:            maker,
	}}
}

func TestBuildWithTwoFeeSplits(t *testing.T) {
	b, signer := newTestBuilder(t)
	maker := signer.Address()

	in := Input{
		Offer:         nftOffer(),
		Consideration: makerConsideration(maker, 10_000),
		Fees: []FeeSplit{
			{RateBps: 100, Recipient: platformA},
			{RateBps: 100, Recipient: platformB},
		},
		StartTime: big.NewInt(0),
		EndTime:   big.NewInt(2_000_000_000),
		Salt:      big.NewInt(1),
	}
	signed, err := b.Build(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, signed.Order.Consideration, 3, "two fee splits add two consideration items")
	assert.Equal(t, big.NewInt(9800), signed.Order.Consideration[0].StartAmount)
	assert.Equal(t, big.NewInt(100), signed.Order.Consideration[1].StartAmount)
	assert.Equal(t, platformA, signed.Order.Consideration[1].Recipient)
	assert.Equal(t, big.NewInt(100), signed.Order.Consideration[2].StartAmount)
	assert.Equal(t, platformB, signed.Order.Consideration[2].Recipient)

	// Total consideration is preserved by the splits.
	assert.Equal(t, big.NewInt(10_000), signed.Price())

	// Same order without splits must identify differently.
	in.Fees = nil
	plain, err := b.Build(context.Background(), in)
	require.NoError(t, err)
	assert.NotEqual(t, plain.OrderHash(), signed.OrderHash())
}

func TestBuildSelfTradeRejected(t *testing.T) {
	b, signer := newTestBuilder(t)
	in := Input{
		Offer:         nftOffer(),
		Consideration: makerConsideration(signer.Address(), 1000),
		Taker:         signer.Address(),
		StartTime:     big.NewInt(0),
		EndTime:       big.NewInt(1),
	}
	_, err := b.Build(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrSelfTradeRejected)
}

func TestBuildEmptySetsRejected(t *testing.T) {
	b, signer := newTestBuilder(t)
	_, err := b.Build(context.Background(), Input{Consideration: makerConsideration(signer.Address(), 1)})
	assert.ErrorIs(t, err, domain.ErrEmptyItemSet)
	_, err = b.Build(context.Background(), Input{Offer: nftOffer()})
	assert.ErrorIs(t, err, domain.ErrEmptyItemSet)
}

func TestBuildZeroAmountRejected(t *testing.T) {
	b, signer := newTestBuilder(t)
	offer := nftOffer()
	offer[0].StartAmount = big.NewInt(0)
	_, err := b.Build(context.Background(), Input{
		Offer:         offer,
		Consideration: makerConsideration(signer.Address(), 1000),
	})
	assert.ErrorIs(t, err, domain.ErrEncodingShapeMismatch)
}

func TestBuildExcessiveFeesRejected(t *testing.T) {
	b, signer := newTestBuilder(t)
	_, err := b.Build(context.Background(), Input{
		Offer:         nftOffer(),
		Consideration: makerConsideration(signer.Address(), 1000),
		Fees:          []FeeSplit{{RateBps: 9000, Recipient: platformA}, {RateBps: 2000, Recipient: platformB}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidFeeBasisPoints)
}

func TestBuildReadsLiveCounter(t *testing.T) {
	b, signer := newTestBuilder(t)
	signed, err := b.Build(context.Background(), Input{
		Offer:         nftOffer(),
		Consideration: makerConsideration(signer.Address(), 1000),
		StartTime:     big.NewInt(0),
		EndTime:       big.NewInt(1),
	})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), signed.Order.Counter, "counter comes from the live accessor read")
	assert.Equal(t, signer.Address(), signed.Order.Offerer)
}

func TestSignatureRecoversToOfferer(t *testing.T) {
	b, signer := newTestBuilder(t)
	signed, err := b.Build(context.Background(), Input{
		Offer:         nftOffer(),
		Consideration: makerConsideration(signer.Address(), 1000),
		StartTime:     big.NewInt(0),
		EndTime:       big.NewInt(1),
	})
	require.NoError(t, err)
	assert.Contains(t, []uint8{27, 28}, signed.Signature.V)

	registry := eip712.NewRegistry(big.NewInt(1), map[domain.Protocol]common.Address{
		domain.ProtocolSeaport: common.HexToAddress("0x00000000006c3852cbEf3e08E8dF289169EdE581"),
	})
	dom, err := registry.DomainFor(domain.ProtocolSeaport)
	require.NoError(t, err)
	digest := eip712.Digest(dom.Separator(), signed.OrderHash())
	recovered, err := crypto.RecoverSigner(digest, signed.Signature.Bytes())
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), recovered)
}

func TestHashRoundTripStable(t *testing.T) {
	b, signer := newTestBuilder(t)
	in := Input{
		Offer:         nftOffer(),
		Consideration: makerConsideration(signer.Address(), 1000),
		StartTime:     big.NewInt(0),
		EndTime:       big.NewInt(1),
		Salt:          big.NewInt(99),
	}
	a, err := b.Build(context.Background(), in)
	require.NoError(t, err)

	// Hashing the already-built order reproduces the identity hash.
	h, err := HashOrder(a.Order)
	require.NoError(t, err)
	assert.Equal(t, a.OrderHash(), h)
}

func TestBuildNilIdentifierRejected(t *testing.T) {
	b, signer := newTestBuilder(t)
	maker := signer.Address()

	in := Input{
		Offer:         nftOffer(),
		Consideration: makerConsideration(maker, 10_000),
		Fees:          []FeeSplit{{RateBps: 100, Recipient: platformA}},
		StartTime:     big.NewInt(0),
		EndTime:       big.NewInt(2_000_000_000),
		Salt:          big.NewInt(1),
	}
	in.Consideration[0].IdentifierOrCriteria = nil
	_, err := b.Build(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrEncodingShapeMismatch)

	in = Input{
		Offer:         nftOffer(),
		Consideration: makerConsideration(maker, 10_000),
		StartTime:     big.NewInt(0),
		EndTime:       big.NewInt(2_000_000_000),
		Salt:          big.NewInt(1),
	}
	in.Offer[0].IdentifierOrCriteria = nil
	_, err = b.Build(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrEncodingShapeMismatch)
}
