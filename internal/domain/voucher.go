package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// CreditVoucher is a signed, amount-bounded authorization letting a buyer
// settle part of an order's price with borrowed credit. OrderRef binds the
// voucher to exactly one order instance; the settlement contract enforces
// single consumption.
type CreditVoucher struct {
	Token     common.Address
	Amount    *big.Int
	OrderRef  common.Hash
	Signature Signature
}
