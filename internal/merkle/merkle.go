// Package merkle implements criteria-set trees: a collection- or trait-level
// bid declares a merkle root over eligible token ids, and the fulfiller
// supplies a sibling-path proof for the concrete id at settlement time.
package merkle

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/parallel-finance/marketadapter/internal/domain"
	"github.com/parallel-finance/marketadapter/internal/encoding"
)

// CriteriaSet is an ordered set of token ids with a stable merkle root.
// Leaves are keccak256 of the 32-byte token id, sorted ascending; interior
// nodes hash their children in byte order, so proof verification needs no
// left/right flags.
type CriteriaSet struct {
	ids    []*big.Int
	leaves [][]byte
	root   common.Hash
}

// NewCriteriaSet builds the tree over ids. Duplicates are collapsed; an empty
// id set is rejected since it can never be fulfilled.
func NewCriteriaSet(ids []*big.Int) (*CriteriaSet, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("merkle: criteria set: %w", domain.ErrEmptyItemSet)
	}
	leaves := make([][]byte, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	kept := make([]*big.Int, 0, len(ids))
	for _, id := range ids {
		if id == nil {
			return nil, fmt.Errorf("merkle: nil token id: %w", domain.ErrEncodingShapeMismatch)
		}
		key := id.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, new(big.Int).Set(id))
		leaves = append(leaves, ethcrypto.Keccak256(encoding.Word(id)))
	}
	sort.Slice(leaves, func(i, j int) bool { return bytes.Compare(leaves[i], leaves[j]) < 0 })

	cs := &CriteriaSet{ids: kept, leaves: leaves}
	cs.root = common.BytesToHash(computeRoot(leaves))
	return cs, nil
}

// Root returns the merkle root embedded in the order's consideration item.
func (c *CriteriaSet) Root() common.Hash {
	return c.root
}

// Proof returns the sibling path for tokenID, supplied at fulfillment time.
func (c *CriteriaSet) Proof(tokenID *big.Int) ([]common.Hash, error) {
	leaf := ethcrypto.Keccak256(encoding.Word(tokenID))
	idx := -1
	for i, l := range c.leaves {
		if bytes.Equal(l, leaf) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("merkle: token id %s not in criteria set", tokenID)
	}

	proof := make([]common.Hash, 0)
	level := c.leaves
	for len(level) > 1 {
		// An odd tail node promotes unchanged and contributes no sibling.
		if idx%2 == 1 {
			proof = append(proof, common.BytesToHash(level[idx-1]))
		} else if idx+1 < len(level) {
			proof = append(proof, common.BytesToHash(level[idx+1]))
		}
		level = nextLevel(level)
		idx /= 2
	}
	return proof, nil
}

// Verify recombines tokenID's leaf with proof and compares against root.
func Verify(root common.Hash, tokenID *big.Int, proof []common.Hash) bool {
	node := ethcrypto.Keccak256(encoding.Word(tokenID))
	for _, sib := range proof {
		node = hashPair(node, sib.Bytes())
	}
	return bytes.Equal(node, root.Bytes())
}

func computeRoot(leaves [][]byte) []byte {
	level := leaves
	for len(level) > 1 {
		level = nextLevel(level)
	}
	return level[0]
}

func nextLevel(level [][]byte) [][]byte {
	next := make([][]byte, 0, (len(level)+1)/2)
	for i := 0; i < len(level); i += 2 {
		if i+1 < len(level) {
			next = append(next, hashPair(level[i], level[i+1]))
		} else {
			next = append(next, level[i])
		}
	}
	return next
}

// hashPair hashes the two nodes smaller-first so verification is
// position-independent.
func hashPair(a, b []byte) []byte {
	if bytes.Compare(a, b) > 0 {
		a, b = b, a
	}
	return ethcrypto.Keccak256(append(append(make([]byte, 0, 64), a...), b...))
}
