package looksrare

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallel-finance/marketadapter/internal/encoding"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b, _ := newTestBuilder(t, 5)
	in := validInput()
	in.Params = []byte{0xde, 0xad}
	signed, err := b.Build(context.Background(), in)
	require.NoError(t, err)

	packed, err := encoding.PackStrategyOrder(signed.Order)
	require.NoError(t, err)
	decoded, err := encoding.UnpackStrategyOrder(packed)
	require.NoError(t, err)

	rehashed, err := HashOrder(decoded)
	require.NoError(t, err)
	assert.Equal(t, signed.OrderHash(), rehashed, "encoding is lossless under rehashing")
	assert.Equal(t, signed.Order.Signer, decoded.Signer)
	assert.Equal(t, signed.Order.Params, decoded.Params)
}
