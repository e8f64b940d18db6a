package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ItemType classifies an offer or consideration item.
type ItemType uint8

const (
	ItemNative              ItemType = 0
	ItemERC20               ItemType = 1
	ItemERC721              ItemType = 2
	ItemERC1155             ItemType = 3
	ItemERC721WithCriteria  ItemType = 4
	ItemERC1155WithCriteria ItemType = 5
)

// StandardOrderType encodes the fill policy and whether a zone is required.
type StandardOrderType uint8

const (
	FullOpen          StandardOrderType = 0
	PartialOpen       StandardOrderType = 1
	FullRestricted    StandardOrderType = 2
	PartialRestricted StandardOrderType = 3
)

// OfferItem is one asset the offerer commits.
type OfferItem struct {
	ItemType             ItemType
	Token                common.Address
	IdentifierOrCriteria *big.Int
	StartAmount          *big.Int
	EndAmount            *big.Int
}

// ConsiderationItem is one asset the offerer expects in return, routed to
// Recipient. Fee splits are expressed as extra consideration items.
type ConsiderationItem struct {
	ItemType             ItemType
	Token                common.Address
	IdentifierOrCriteria *big.Int
	StartAmount          *big.Int
	EndAmount            *big.Int
	Recipient            common.Address
}

// StandardOrder is the Seaport-shaped order. Counter is a per-trader replay
// nonce read live from the exchange at build time, never cached.
type StandardOrder struct {
	Offerer       common.Address
	Zone          common.Address
	Offer         []OfferItem
	Consideration []ConsiderationItem
	OrderType     StandardOrderType
	StartTime     *big.Int
	EndTime       *big.Int
	ZoneHash      common.Hash
	Salt          *big.Int
	ConduitKey    common.Hash
	Counter       *big.Int
}
