// Package credit builds signed credit vouchers: amount-bounded
// authorizations binding a payer to one order instance, under a single fixed
// typed-data domain independent of which marketplace protocol originated the
// referenced order.
package credit

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/parallel-finance/marketadapter/internal/crypto"
	"github.com/parallel-finance/marketadapter/internal/domain"
	"github.com/parallel-finance/marketadapter/internal/eip712"
	"github.com/parallel-finance/marketadapter/internal/encoding"
)

// CreditVoucher(address token,uint256 amount,bytes32 orderRef)
const voucherType = "CreditVoucher(address token,uint256 amount,bytes32 orderRef)"

var voucherTypeHash = ethcrypto.Keccak256Hash([]byte(voucherType))

// StructHash computes the voucher struct hash the settlement contract
// recomputes during verification.
func StructHash(token common.Address, amount *big.Int, orderRef common.Hash) common.Hash {
	return ethcrypto.Keccak256Hash(encoding.Concat(
		voucherTypeHash.Bytes(),
		encoding.AddressWord(token),
		encoding.Word(amount),
		orderRef.Bytes(),
	))
}

// Builder signs vouchers with the payer's key under the fixed voucher domain.
type Builder struct {
	signer *crypto.Signer
	domain eip712.Domain
	logger *slog.Logger
}

// NewBuilder wires a voucher builder bound to the settlement contract that
// will verify credit signatures on chainID.
func NewBuilder(signer *crypto.Signer, chainID *big.Int, settlement common.Address, logger *slog.Logger) *Builder {
	return &Builder{
		signer: signer,
		domain: eip712.CreditDomain(chainID, settlement),
		logger: logger.With(slog.String("component", "credit")),
	}
}

// Build produces a voucher for amount of token against the order identified
// by orderRef. The amount must not exceed the price the referenced order
// expresses; the bound is enforced here, before signing, not downstream.
func (b *Builder) Build(ctx context.Context, orderRef common.Hash, orderPrice, amount *big.Int, token common.Address) (*domain.CreditVoucher, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("credit: voucher amount must be positive: %w", domain.ErrEncodingShapeMismatch)
	}
	if orderPrice == nil {
		return nil, fmt.Errorf("credit: order price is required: %w", domain.ErrEncodingShapeMismatch)
	}
	if amount.Cmp(orderPrice) > 0 {
		return nil, fmt.Errorf("credit: amount %s exceeds order price %s: %w", amount, orderPrice, domain.ErrCreditExceedsOrderValue)
	}

	structHash := StructHash(token, amount, orderRef)
	sig, err := b.signer.SignTypedData(b.domain.Separator(), structHash)
	if err != nil {
		return nil, fmt.Errorf("credit: signing voucher: %w", err)
	}

	b.logger.Debug("credit voucher signed",
		slog.String("order_ref", orderRef.Hex()),
		slog.String("token", token.Hex()),
		slog.String("amount", amount.String()),
	)
	return &domain.CreditVoucher{
		Token:     token,
		Amount:    new(big.Int).Set(amount),
		OrderRef:  orderRef,
		Signature: sig,
	}, nil
}

// Domain exposes the fixed voucher domain, used by callers verifying
// third-party vouchers.
func (b *Builder) Domain() eip712.Domain {
	return b.domain
}
