// Package seaport builds and signs standard (Seaport-shaped) orders: offer
// and consideration item runs, fee splits as extra consideration items, and
// a live replay counter read from the exchange.
package seaport

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/parallel-finance/marketadapter/internal/domain"
	"github.com/parallel-finance/marketadapter/internal/encoding"
)

// Canonical type strings. These are part of the exchange's external contract
// and must match its verifier byte for byte; referenced types are appended
// in alphabetical order per the typed-data standard.
const (
	offerItemType         = "OfferItem(uint8 itemType,address token,uint256 identifierOrCriteria,uint256 startAmount,uint256 endAmount)"
	considerationItemType = "ConsiderationItem(uint8 itemType,address token,uint256 identifierOrCriteria,uint256 startAmount,uint256 endAmount,address recipient)"
	orderComponentsType   = "OrderComponents(address offerer,address zone,OfferItem[] offer,ConsiderationItem[] consideration,uint8 orderType,uint256 startTime,uint256 endTime,bytes32 zoneHash,uint256 salt,bytes32 conduitKey,uint256 counter)" +
		considerationItemType + offerItemType
)

var (
	offerItemTypeHash         = ethcrypto.Keccak256Hash([]byte(offerItemType))
	considerationItemTypeHash = ethcrypto.Keccak256Hash([]byte(considerationItemType))
	orderComponentsTypeHash   = ethcrypto.Keccak256Hash([]byte(orderComponentsType))
)

func hashOfferItem(it domain.OfferItem) common.Hash {
	return ethcrypto.Keccak256Hash(encoding.Concat(
		offerItemTypeHash.Bytes(),
		encoding.Uint64Word(uint64(it.ItemType)),
		encoding.AddressWord(it.Token),
		encoding.Word(it.IdentifierOrCriteria),
		encoding.Word(it.StartAmount),
		encoding.Word(it.EndAmount),
	))
}

func hashConsiderationItem(it domain.ConsiderationItem) common.Hash {
	return ethcrypto.Keccak256Hash(encoding.Concat(
		considerationItemTypeHash.Bytes(),
		encoding.Uint64Word(uint64(it.ItemType)),
		encoding.AddressWord(it.Token),
		encoding.Word(it.IdentifierOrCriteria),
		encoding.Word(it.StartAmount),
		encoding.Word(it.EndAmount),
		encoding.AddressWord(it.Recipient),
	))
}

// HashOrder computes the order-components identity hash: the inner item runs
// are hashed first, then the header words around them.
func HashOrder(o domain.StandardOrder) (common.Hash, error) {
	if len(o.Offer) == 0 && len(o.Consideration) == 0 {
		return common.Hash{}, fmt.Errorf("seaport: order has no items: %w", domain.ErrEmptyItemSet)
	}
	if err := encoding.ValidateStandardOrder(o); err != nil {
		return common.Hash{}, err
	}

	offerRun := make([]byte, 0, len(o.Offer)*32)
	for _, it := range o.Offer {
		offerRun = append(offerRun, hashOfferItem(it).Bytes()...)
	}
	considerationRun := make([]byte, 0, len(o.Consideration)*32)
	for _, it := range o.Consideration {
		considerationRun = append(considerationRun, hashConsiderationItem(it).Bytes()...)
	}

	return ethcrypto.Keccak256Hash(encoding.Concat(
		orderComponentsTypeHash.Bytes(),
		encoding.AddressWord(o.Offerer),
		encoding.AddressWord(o.Zone),
		ethcrypto.Keccak256(offerRun),
		ethcrypto.Keccak256(considerationRun),
		encoding.Uint64Word(uint64(o.OrderType)),
		encoding.Word(o.StartTime),
		encoding.Word(o.EndTime),
		o.ZoneHash.Bytes(),
		encoding.Word(o.Salt),
		o.ConduitKey.Bytes(),
		encoding.Word(o.Counter),
	)), nil
}
