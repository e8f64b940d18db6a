package adapter

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
	"github.com/parallel-finance/marketadapter/internal/platform/blur"
	"github.com/parallel-finance/marketadapter/internal/platform/looksrare"
	"github.com/parallel-finance/marketadapter/internal/platform/seaport"
	"github.com/parallel-finance/marketadapter/internal/platform/x2y2"
)

const (
	testKeyHex     = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	cosignerKeyHex = "8b3a350cf5c34c9194ca85829a2df0ec3153be0318b5e2d3348e872092edffba"
)

var (
	strategy   = common.HexToAddress("0x56244Bb70CbD3EA9Dc8007399F61dFC065190031")
	policy     = common.HexToAddress("0x0000000000daB4A563819e8fd93dbA3b25BC3495")
	settlement = common.HexToAddress("0xAAAA00000000000000000000000000000000AAAA")
	collection = common.HexToAddress("0x6666666666666666666666666666666666666666")
	weth       = common.HexToAddress("0x7777777777777777777777777777777777777777")
)

type stubAccessor struct{}

func (stubAccessor) Counter(context.Context, common.Address) (*big.Int, error) {
	return big.NewInt(4), nil
}

func (stubAccessor) Nonce(context.Context, common.Address) (*big.Int, error) {
	return big.NewInt(2), nil
}

func (stubAccessor) ChainID(context.Context) (*big.Int, error) { return big.NewInt(1), nil }

func (stubAccessor) BlockTimestamp(context.Context) (uint64, error) { return 1_700_000_000, nil }

func newTestFacade(t *testing.T) *Facade {
	t.Helper()
	maker, err := crypto.NewLocalBackend(testKeyHex)
	require.NoError(t, err)
	co, err := crypto.NewLocalBackend(cosignerKeyHex)
	require.NoError(t, err)
	signer := crypto.NewSigner(maker).WithCoSigner(co)
	registry := eip712.NewRegistry(big.NewInt(1), map[domain.Protocol]common.Address{
		domain.ProtocolSeaport:   common.HexToAddress("0x00000000006c3852cbEf3e08E8dF289169EdE581"),
		domain.ProtocolLooksRare: common.HexToAddress("0x59728544B08AB483533076417FbBB2fD0B17CE3a"),
		domain.ProtocolX2Y2:      common.HexToAddress("0x74312363e45DCaBA76c59ec49a7Aa8A65a67EeD3"),
		domain.ProtocolBlur:      common.HexToAddress("0x000000000000Ad05Ccc4F10045630fb830B95127"),
	})
	opts := Options{
		ApprovedStrategies: []common.Address{strategy},
		ApprovedPolicies:   []common.Address{policy},
		CreditSettlement:   settlement,
	}
	return New(signer, registry, stubAccessor{}, opts, slog.Default())
}

func seaportReq() BuildRequest {
	return BuildRequest{
		Protocol: domain.ProtocolSeaport,
		Seaport: &seaport.Input{
			Offer: []domain.OfferItem{{
				ItemType:             domain.ItemERC721,
				Token:                collection,
				IdentifierOrCriteria: big.NewInt(42),
				StartAmount:          big.NewInt(1),
				EndAmount:            big.NewInt(1),
			}},
			Consideration: []domain.ConsiderationItem{{
				ItemType:             domain.ItemERC20,
				Token:                weth,
				IdentifierOrCriteria: big.NewInt(0),
				StartAmount:          big.NewInt(10_000),
				EndAmount:            big.NewInt(10_000),
				Recipient:            common.HexToAddress("0x1111111111111111111111111111111111111111"),
			}},
			Salt: big.NewInt(1),
		},
	}
}

func looksrareReq() BuildRequest {
	return BuildRequest{
		Protocol: domain.ProtocolLooksRare,
		LooksRare: &looksrare.Input{
			IsAsk:              true,
			Collection:         collection,
			Price:              big.NewInt(5_000),
			TokenID:            big.NewInt(7),
			Amount:             big.NewInt(1),
			Strategy:           strategy,
			Currency:           weth,
			Nonce:              big.NewInt(2),
			StartTime:          big.NewInt(0),
			EndTime:            big.NewInt(2_000_000_000),
			MinPercentageToAsk: big.NewInt(8500),
		},
	}
}

func x2y2Req() BuildRequest {
	return BuildRequest{
		Protocol: domain.ProtocolX2Y2,
		X2Y2: &x2y2.Input{
			Intent:       domain.IntentSell,
			DelegateType: domain.DelegateERC721,
			Salt:         big.NewInt(3),
			Items:        []domain.SettlementItem{{Price: big.NewInt(2_000), Data: []byte{0x01}}},
		},
	}
}

func blurReq() BuildRequest {
	return BuildRequest{
		Protocol: domain.ProtocolBlur,
		Blur: &blur.Input{
			Side:           domain.SideSell,
			MatchingPolicy: policy,
			Collection:     collection,
			TokenID:        big.NewInt(9),
			Amount:         big.NewInt(1),
			Price:          big.NewInt(3_000),
			Salt:           big.NewInt(4),
		},
	}
}

func TestBuildAndSignDispatch(t *testing.T) {
	f := newTestFacade(t)
	for _, req := range []BuildRequest{seaportReq(), looksrareReq(), x2y2Req(), blurReq()} {
		order, err := f.BuildAndSign(context.Background(), req)
		require.NoError(t, err, "protocol %s", req.Protocol)
		assert.Equal(t, req.Protocol, order.Protocol())
		assert.NotEqual(t, common.Hash{}, order.OrderHash())
	}
}

func TestBuildAndSignUnknownProtocol(t *testing.T) {
	f := newTestFacade(t)
	_, err := f.BuildAndSign(context.Background(), BuildRequest{Protocol: domain.Protocol("rarible")})
	assert.ErrorIs(t, err, domain.ErrUnknownProtocol)
}

func TestBuildAndSignMissingInputs(t *testing.T) {
	f := newTestFacade(t)
	_, err := f.BuildAndSign(context.Background(), BuildRequest{Protocol: domain.ProtocolSeaport})
	assert.ErrorIs(t, err, domain.ErrEncodingShapeMismatch)
}

func TestBuildCreditVoucherFromOrder(t *testing.T) {
	f := newTestFacade(t)
	order, err := f.BuildAndSign(context.Background(), seaportReq())
	require.NoError(t, err)

	v, err := f.BuildCreditVoucher(context.Background(), order, weth, big.NewInt(10_000))
	require.NoError(t, err)
	assert.Equal(t, order.OrderHash(), v.OrderRef)

	_, err = f.BuildCreditVoucher(context.Background(), order, weth, big.NewInt(10_001))
	assert.ErrorIs(t, err, domain.ErrCreditExceedsOrderValue)
}

func TestBuildCreditVoucherForRef(t *testing.T) {
	f := newTestFacade(t)
	ref := common.HexToHash("0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef")
	v, err := f.BuildCreditVoucherForRef(context.Background(), ref, big.NewInt(100), big.NewInt(100), weth)
	require.NoError(t, err)
	assert.Equal(t, ref, v.OrderRef)
}

func TestBuildSettlementBatch(t *testing.T) {
	f := newTestFacade(t)
	order, err := f.BuildAndSign(context.Background(), x2y2Req())
	require.NoError(t, err)
	signed := order.(*x2y2.SignedOrder)

	details := []domain.SettlementDetail{{
		Op:                 domain.OpCompleteSellOffer,
		OrderIdx:           big.NewInt(0),
		ItemIdx:            big.NewInt(0),
		Price:              big.NewInt(2_000),
		ItemHash:           signed.ItemHashes[0],
		BidIncentivePct:    big.NewInt(0),
		AucMinIncrementPct: big.NewInt(0),
		AucIncDurationSecs: big.NewInt(0),
	}}
	shared := domain.SettlementShared{
		Salt:         big.NewInt(5),
		Deadline:     big.NewInt(1_900_000_000),
		AmountToEth:  big.NewInt(0),
		AmountToWeth: big.NewInt(0),
		User:         common.HexToAddress("0x1234000000000000000000000000000000000000"),
	}
	batch, err := f.BuildSettlementBatch(context.Background(), []domain.SettlementOrder{signed.Order}, details, shared)
	require.NoError(t, err)
	assert.Len(t, batch.Orders, 1)

	shared.CanFail = true
	_, err = f.BuildSettlementBatch(context.Background(), []domain.SettlementOrder{signed.Order}, details, shared)
	assert.ErrorIs(t, err, domain.ErrCreditExceedsOrderValue)
}

func TestBuildAllConcurrent(t *testing.T) {
	f := newTestFacade(t)
	reqs := []BuildRequest{seaportReq(), looksrareReq(), x2y2Req(), blurReq()}
	orders, err := f.BuildAll(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, orders, len(reqs))
	for i, order := range orders {
		assert.Equal(t, reqs[i].Protocol, order.Protocol())
	}
}

func TestBuildAllPropagatesFailure(t *testing.T) {
	f := newTestFacade(t)
	bad := looksrareReq()
	bad.LooksRare.Nonce = big.NewInt(1) // behind the live value 2
	_, err := f.BuildAll(context.Background(), []BuildRequest{seaportReq(), bad})
	assert.ErrorIs(t, err, domain.ErrStaleNonce)
}
