package looksrare

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
	exchange   = common.HexToAddress("0x59728544B08AB483533076417FbBB2fD0B17CE3a")
	strategy   = common.HexToAddress("0x56244Bb70CbD3EA9Dc8007399F61dFC065190031")
	collection = common.HexToAddress("0x6666666666666666666666666666666666666666")
	weth       = common.HexToAddress("0x7777777777777777777777777777777777777777")
)

type stubAccessor struct {
	nonce *big.Int
}

func (s *stubAccessor) Counter(context.Context, common.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (s *stubAccessor) Nonce(context.Context, common.Address) (*big.Int, error) {
	return new(big.Int).Set(s.nonce), nil
}

func (s *stubAccessor) ChainID(context.Context) (*big.Int, error) { return big.NewInt(1), nil }

func (s *stubAccessor) BlockTimestamp(context.Context) (uint64, error) { return 1_700_000_000, nil }

func newTestBuilder(t *testing.T, liveNonce int64) (*Builder, *crypto.Signer) {
	t.Helper()
	backend, err := crypto.NewLocalBackend(testKeyHex)
	require.NoError(t, err)
	signer := crypto.NewSigner(backend)
	registry := eip712.NewRegistry(big.NewInt(1), map[domain.Protocol]common.Address{
		domain.ProtocolLooksRare: exchange,
	})
	accessor := &stubAccessor{nonce: big.NewInt(liveNonce)}
	return NewBuilder(signer, registry, accessor, []common.Address{strategy}, slog.Default()), signer
}

func validInput() Input {
	return Input{
		IsAsk:              true,
		Collection:         collection,
		Price:              big.NewInt(10_000),
		TokenID:            big.NewInt(42),
		Amount:             big.NewInt(1),
		Strategy:           strategy,
		Currency:           weth,
		Nonce:              big.NewInt(5),
		StartTime:          big.NewInt(0),
		EndTime:            big.NewInt(2_000_000_000),
		MinPercentageToAsk: big.NewInt(8500),
	}
}

func TestBuildSigned(t *testing.T) {
	b, signer := newTestBuilder(t, 5)
	signed, err := b.Build(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, signer.Address(), signed.Order.Signer)
	assert.Contains(t, []uint8{27, 28}, signed.Signature.V)

	registry := eip712.NewRegistry(big.NewInt(1), map[domain.Protocol]common.Address{
		domain.ProtocolLooksRare: exchange,
	})
	dom, err := registry.DomainFor(domain.ProtocolLooksRare)
	require.NoError(t, err)
	recovered, err := crypto.RecoverSigner(eip712.Digest(dom.Separator(), signed.OrderHash()), signed.Signature.Bytes())
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), recovered)
}

func TestBuildBpsCeiling(t *testing.T) {
	b, _ := newTestBuilder(t, 5)
	in := validInput()
	in.MinPercentageToAsk = big.NewInt(10_001)
	_, err := b.Build(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrInvalidFeeBasisPoints)

	in.MinPercentageToAsk = big.NewInt(10_000)
	_, err = b.Build(context.Background(), in)
	assert.NoError(t, err, "exactly 10000 bps is the inclusive ceiling")
}

func TestBuildStaleNonce(t *testing.T) {
	b, _ := newTestBuilder(t, 6)
	in := validInput()
	in.Nonce = big.NewInt(5)
	_, err := b.Build(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrStaleNonce)

	in.Nonce = big.NewInt(6)
	_, err = b.Build(context.Background(), in)
	assert.NoError(t, err, "a nonce equal to the live value is usable")
}

func TestBuildSelfTradeRejected(t *testing.T) {
	b, signer := newTestBuilder(t, 5)
	in := validInput()
	in.Taker = signer.Address()
	_, err := b.Build(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrSelfTradeRejected)
}

func TestBuildUnapprovedStrategy(t *testing.T) {
	b, _ := newTestBuilder(t, 5)
	in := validInput()
	in.Strategy = common.HexToAddress("0x9999999999999999999999999999999999999999")
	_, err := b.Build(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrEncodingShapeMismatch)
}

func TestBuildZeroAmount(t *testing.T) {
	b, _ := newTestBuilder(t, 5)
	in := validInput()
	in.Amount = big.NewInt(0)
	_, err := b.Build(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrEncodingShapeMismatch)
}

func TestHashDistinguishesNonce(t *testing.T) {
	b, _ := newTestBuilder(t, 5)
	a, err := b.Build(context.Background(), validInput())
	require.NoError(t, err)

	in := validInput()
	in.Nonce = big.NewInt(6)
	c, err := b.Build(context.Background(), in)
	require.NoError(t, err)
	assert.NotEqual(t, a.OrderHash(), c.OrderHash())
}
