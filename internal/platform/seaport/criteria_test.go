package seaport

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallel-finance/marketadapter/internal/domain"
	"github.com/parallel-finance/marketadapter/internal/merkle"
)

func TestCriteriaOfferItemCarriesRoot(t *testing.T) {
	set, err := merkle.NewCriteriaSet([]*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)})
	require.NoError(t, err)

	item := CriteriaOfferItem(domain.ItemERC721WithCriteria, nftToken, set, big.NewInt(1))
	assert.Equal(t, set.Root().Bytes(), item.IdentifierOrCriteria.FillBytes(make([]byte, 32)))

	// Proofs stay consumable at fulfillment time, independent of the order.
	proof, err := set.Proof(big.NewInt(2))
	require.NoError(t, err)
	assert.True(t, merkle.Verify(set.Root(), big.NewInt(2), proof))
}

func TestBuildCriteriaOrder(t *testing.T) {
	b, _ := newTestBuilder(t)
	set, err := merkle.NewCriteriaSet([]*big.Int{big.NewInt(10), big.NewInt(11)})
	require.NoError(t, err)

	in := Input{
		Offer: []domain.OfferItem{{
			ItemType:             domain.ItemERC20,
			Token:                payToken,
			IdentifierOrCriteria: big.NewInt(0),
			StartAmount:          big.NewInt(5_000),
			EndAmount:            big.NewInt(5_000),
		}},
		Consideration: []domain.ConsiderationItem{
			CriteriaConsiderationItem(domain.ItemERC721WithCriteria, nftToken, set, big.NewInt(1), platformA),
		},
		Salt: big.NewInt(1),
	}
	signed, err := b.Build(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, set.Root().Bytes(), signed.Order.Consideration[0].IdentifierOrCriteria.FillBytes(make([]byte, 32)))
}
