// Package eip712 builds typed structured-data domains and digests. Each
// marketplace protocol has its own fixed (name, version) pair and field-type
// tree; the trees are reproduced verbatim as data, never inferred.
package eip712

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)
var domainTypeHash = ethcrypto.Keccak256Hash(
	[]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"),
)

// Domain is the (name, version, chain id, verifying contract) tuple that
// scopes every typed-data signature to one contract on one chain.
type Domain struct {
	Name              string
	Version           string
	ChainID           *big.Int
	VerifyingContract common.Address
}

// Separator returns keccak256(abi.encode(typeHash, nameHash, versionHash, chainId, verifyingContract)).
func (d Domain) Separator() common.Hash {
	return ethcrypto.Keccak256Hash(concat(
		domainTypeHash.Bytes(),
		ethcrypto.Keccak256([]byte(d.Name)),
		ethcrypto.Keccak256([]byte(d.Version)),
		word(d.ChainID),
		common.LeftPadBytes(d.VerifyingContract.Bytes(), 32),
	))
}

// Digest computes the final typed-data digest:
//
//	keccak256("\x19\x01" || domainSeparator || structHash)
func Digest(separator, structHash common.Hash) common.Hash {
	return ethcrypto.Keccak256Hash(concat(
		[]byte{0x19, 0x01},
		separator.Bytes(),
		structHash.Bytes(),
	))
}

func word(n *big.Int) []byte {
	if n == nil {
		return make([]byte, 32)
	}
	return common.LeftPadBytes(n.Bytes(), 32)
}

func concat(slices ...[]byte) []byte {
	total := 0
	for _, s := range slices {
		total += len(s)
	}
	buf := make([]byte, 0, total)
	for _, s := range slices {
		buf = append(buf, s...)
	}
	return buf
}
