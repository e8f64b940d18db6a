// Package crypto provides the signing adapter for the order and credit
// builders: raw-digest and typed-data signing, recovery-id and compact-form
// normalization, and key resolution for the maker and co-signer identities.
package crypto

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/parallel-finance/marketadapter/internal/domain"
	"github.com/parallel-finance/marketadapter/internal/eip712"
)

// Backend is the narrow seam to a signing backend. A backend signs a 32-byte
// digest and returns the 65-byte r||s||v signature; the recovery byte may be
// in {0,1} or {27,28} depending on the backend, the adapter normalizes it.
// Remote and hardware backends may block; callers impose their own timeout.
type Backend interface {
	Address() common.Address
	SignDigest(digest []byte) ([]byte, error)
}

// LocalBackend signs with an in-process secp256k1 private key.
type LocalBackend struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

// NewLocalBackend creates a backend from a hex-encoded private key, with or
// without the 0x prefix.
func NewLocalBackend(privateKeyHex string) (*LocalBackend, error) {
	keyHex := strings.TrimPrefix(privateKeyHex, "0x")
	pk, err := ethcrypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("crypto: invalid private key: %w", err)
	}
	return &LocalBackend{key: pk, addr: ethcrypto.PubkeyToAddress(pk.PublicKey)}, nil
}

// Address returns the address derived from the backend's private key.
func (b *LocalBackend) Address() common.Address {
	return b.addr
}

// SignDigest signs a 32-byte digest, returning r||s||v with v in {0,1}.
func (b *LocalBackend) SignDigest(digest []byte) ([]byte, error) {
	sig, err := ethcrypto.Sign(digest, b.key)
	if err != nil {
		return nil, fmt.Errorf("crypto: signing digest: %w", err)
	}
	return sig, nil
}

// Signer adapts a maker backend (and an optional authorized co-signer
// backend) into the protocol-ready signature shapes the builders need.
type Signer struct {
	backend  Backend
	cosigner Backend
}

// NewSigner wraps the maker's signing backend.
func NewSigner(backend Backend) *Signer {
	return &Signer{backend: backend}
}

// WithCoSigner returns a copy of s carrying the separately authorized
// co-signer backend used for batch-level signatures.
func (s *Signer) WithCoSigner(cosigner Backend) *Signer {
	return &Signer{backend: s.backend, cosigner: cosigner}
}

// Address returns the maker identity.
func (s *Signer) Address() common.Address {
	return s.backend.Address()
}

// SignDigest signs a raw 32-byte digest and returns the normalized tuple.
// Protocols that hash packed bytes directly (the settlement protocol) use
// this path; typed-data protocols use SignTypedData. The two are deliberately
// separate operations.
func (s *Signer) SignDigest(digest common.Hash) (domain.Signature, error) {
	return signWith(s.backend, digest)
}

// SignTypedData signs the typed-data digest derived from a domain separator
// and a struct hash.
func (s *Signer) SignTypedData(separator, structHash common.Hash) (domain.Signature, error) {
	return signWith(s.backend, eip712.Digest(separator, structHash))
}

// CoSignDigest produces the batch-level signature over a run hash using the
// authorized co-signer identity. The adapter keeps no authorization registry;
// absence of a supplied co-signer key is the failure it can detect.
func (s *Signer) CoSignDigest(digest common.Hash) (domain.Signature, error) {
	if s.cosigner == nil {
		return domain.Signature{}, fmt.Errorf("crypto: no co-signer key supplied: %w", domain.ErrUnauthorizedSigner)
	}
	return signWith(s.cosigner, digest)
}

// CoSignerAddress returns the authorized co-signer identity.
func (s *Signer) CoSignerAddress() (common.Address, error) {
	if s.cosigner == nil {
		return common.Address{}, fmt.Errorf("crypto: no co-signer key supplied: %w", domain.ErrUnauthorizedSigner)
	}
	return s.cosigner.Address(), nil
}

func signWith(b Backend, digest common.Hash) (domain.Signature, error) {
	raw, err := b.SignDigest(digest.Bytes())
	if err != nil {
		return domain.Signature{}, err
	}
	return domain.SignatureFromBytes(NormalizeV(raw))
}

// ---------------------------------------------------------------------------
// Signature normalization
// ---------------------------------------------------------------------------

// NormalizeV returns a copy of a 65-byte signature with the recovery byte
// lifted into {27,28}. Backends returning v in {0,1} and backends already
// returning {27,28} come out identical; applying it twice is a no-op.
func NormalizeV(sig []byte) []byte {
	out := append([]byte(nil), sig...)
	if len(out) == 65 && out[64] < 27 {
		out[64] += 27
	}
	return out
}

// ToCompact converts a 65-byte r||s||v signature into its compact 64-byte
// r||vs form, folding the recovery bit into the high bit of s when v is 28.
// A 64-byte input is already compact and passes through unchanged.
func ToCompact(sig []byte) ([]byte, error) {
	switch len(sig) {
	case 64:
		out := append([]byte(nil), sig...)
		return out, nil
	case 65:
		norm := NormalizeV(sig)
		out := append([]byte(nil), norm[:64]...)
		if norm[64] == 28 {
			out[32] |= 0x80
		}
		return out, nil
	default:
		return nil, fmt.Errorf("crypto: cannot compact %d-byte signature", len(sig))
	}
}

// FromCompact expands a compact 64-byte signature back to r||s||v.
func FromCompact(sig []byte) ([]byte, error) {
	if len(sig) == 65 {
		return NormalizeV(sig), nil
	}
	if len(sig) != 64 {
		return nil, fmt.Errorf("crypto: cannot expand %d-byte signature", len(sig))
	}
	out := make([]byte, 65)
	copy(out, sig)
	out[64] = 27
	if out[32]&0x80 != 0 {
		out[32] &^= 0x80
		out[64] = 28
	}
	return out, nil
}

// RecoverSigner recovers the address that produced sig over digest. Both
// {0,1} and {27,28} recovery bytes are accepted.
func RecoverSigner(digest common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != 65 {
		return common.Address{}, fmt.Errorf("crypto: expected 65-byte signature, got %d", len(sig))
	}
	raw := append([]byte(nil), sig...)
	if raw[64] >= 27 {
		raw[64] -= 27
	}
	pub, err := ethcrypto.SigToPub(digest.Bytes(), raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("crypto: recovering signer: %w", err)
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}
