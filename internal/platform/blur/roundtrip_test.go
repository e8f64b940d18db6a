package blur

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallel-finance/marketadapter/internal/encoding"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b, _, _ := newTestBuilder(t, 3)
	in := sellInput()
	in.ExtraParams = []byte{0x01}
	signed, err := b.Build(context.Background(), in)
	require.NoError(t, err)

	packed, err := encoding.PackPolicyOrder(signed.Order)
	require.NoError(t, err)
	decoded, err := encoding.UnpackPolicyOrder(packed)
	require.NoError(t, err)

	rehashed, err := HashOrder(decoded)
	require.NoError(t, err)
	assert.Equal(t, signed.OrderHash(), rehashed, "encoding is lossless under rehashing")
	assert.Equal(t, signed.Order.Fees, decoded.Fees)
	assert.Equal(t, signed.Order.Nonce, decoded.Nonce)
}
