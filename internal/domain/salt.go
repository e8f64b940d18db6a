package domain

import (
	"math/big"

	"github.com/google/uuid"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// NewSalt derives a random 128-bit order salt from a fresh UUID. Salts only
// need uniqueness, not secrecy.
func NewSalt() *big.Int {
	id := uuid.New()
	return new(big.Int).SetBytes(ethcrypto.Keccak256(id[:])[:16])
}
