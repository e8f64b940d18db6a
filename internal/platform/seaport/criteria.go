package seaport

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/parallel-finance/marketadapter/internal/domain"
	"github.com/parallel-finance/marketadapter/internal/merkle"
)

// CriteriaOfferItem builds an offer item accepting any token id in set. The
// set's root rides in identifierOrCriteria; the fulfiller supplies the
// concrete id and its sibling path at settlement time.
func CriteriaOfferItem(itemType domain.ItemType, token common.Address, set *merkle.CriteriaSet, amount *big.Int) domain.OfferItem {
	return domain.OfferItem{
		ItemType:             itemType,
		Token:                token,
		IdentifierOrCriteria: new(big.Int).SetBytes(set.Root().Bytes()),
		StartAmount:          new(big.Int).Set(amount),
		EndAmount:            new(big.Int).Set(amount),
	}
}

// CriteriaConsiderationItem builds a consideration item accepting any token
// id in set, routed to recipient.
func CriteriaConsiderationItem(itemType domain.ItemType, token common.Address, set *merkle.CriteriaSet, amount *big.Int, recipient common.Address) domain.ConsiderationItem {
	return domain.ConsiderationItem{
		ItemType:             itemType,
		Token:                token,
		IdentifierOrCriteria: new(big.Int).SetBytes(set.Root().Bytes()),
		StartAmount:          new(big.Int).Set(amount),
		EndAmount:            new(big.Int).Set(amount),
		Recipient:            recipient,
	}
}
