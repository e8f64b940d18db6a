package eip712

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/parallel-finance/marketadapter/internal/domain"
)

// Fixed (name, version) pairs per protocol. These are part of each
// marketplace's external contract and must match its verifier byte for byte.
const (
	seaportName      = "Seaport"
	seaportVersion   = "1.1"
	looksrareName    = "LooksRareExchange"
	looksrareVersion = "1"
	x2y2Name         = "X2Y2"
	x2y2Version      = "1.0"
	blurName         = "Blur Exchange"
	blurVersion      = "1.0"

	// The credit voucher domain is protocol-independent: one fixed domain
	// regardless of which marketplace originated the referenced order.
	CreditName    = "CreditMarketplace"
	CreditVersion = "1"
)

// Registry maps protocol ids to their verifying-contract addresses for one
// chain. Addresses are consumed as opaque configuration.
type Registry struct {
	chainID   *big.Int
	contracts map[domain.Protocol]common.Address
}

// NewRegistry builds a registry for chainID over the supplied per-protocol
// verifying contracts.
func NewRegistry(chainID *big.Int, contracts map[domain.Protocol]common.Address) *Registry {
	m := make(map[domain.Protocol]common.Address, len(contracts))
	for p, a := range contracts {
		m[p] = a
	}
	return &Registry{chainID: chainID, contracts: m}
}

// ChainID returns the chain the registry was built for.
func (r *Registry) ChainID() *big.Int {
	return r.chainID
}

// Contract returns the verifying-contract address registered for p.
func (r *Registry) Contract(p domain.Protocol) (common.Address, error) {
	addr, ok := r.contracts[p]
	if !ok {
		return common.Address{}, fmt.Errorf("eip712: protocol %q: %w", p, domain.ErrUnknownProtocol)
	}
	return addr, nil
}

// DomainFor returns the typed-data domain for p, or ErrUnknownProtocol for
// an unregistered id. Pure data construction, no side effects.
func (r *Registry) DomainFor(p domain.Protocol) (Domain, error) {
	addr, err := r.Contract(p)
	if err != nil {
		return Domain{}, err
	}
	switch p {
	case domain.ProtocolSeaport:
		return Domain{Name: seaportName, Version: seaportVersion, ChainID: r.chainID, VerifyingContract: addr}, nil
	case domain.ProtocolLooksRare:
		return Domain{Name: looksrareName, Version: looksrareVersion, ChainID: r.chainID, VerifyingContract: addr}, nil
	case domain.ProtocolX2Y2:
		return Domain{Name: x2y2Name, Version: x2y2Version, ChainID: r.chainID, VerifyingContract: addr}, nil
	case domain.ProtocolBlur:
		return Domain{Name: blurName, Version: blurVersion, ChainID: r.chainID, VerifyingContract: addr}, nil
	default:
		return Domain{}, fmt.Errorf("eip712: protocol %q: %w", p, domain.ErrUnknownProtocol)
	}
}

// CreditDomain returns the fixed voucher domain bound to the settlement
// contract that verifies credit signatures.
func CreditDomain(chainID *big.Int, settlement common.Address) Domain {
	return Domain{Name: CreditName, Version: CreditVersion, ChainID: chainID, VerifyingContract: settlement}
}
