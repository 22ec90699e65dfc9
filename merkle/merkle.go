// Package merkle commits to an ordered sequence of leaf hashes, the way
// internal/blockchain/chain.go's BuildMerkleTree does in the teacher, but
// built incrementally (spec.md §4.4, C4).
//
// Node rule: internal nodes are H(left || right). Odd-leaf policy: if a
// level has an odd number of nodes, the last node is duplicated and paired
// with itself (Bitcoin-style) — this is fixed and load-bearing, tests depend
// on it. Empty rule: the root of an empty tree is the all-zero digest.
// Singleton rule: a single leaf's root is that leaf's hash.
package merkle

import "github.com/ledgerchain/ledgerchain/codec"

// Tree incrementally accumulates leaf hashes and can produce the Merkle
// root of the sequence seen so far at any point.
type Tree struct {
	leaves []codec.Hash
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{}
}

// FromLeaves builds a Tree from a complete, ordered leaf sequence. The
// result is required to produce the same root as pushing the same leaves
// one at a time (spec.md §4.4's reconstruction invariant).
func FromLeaves(leaves []codec.Hash) *Tree {
	t := &Tree{leaves: make([]codec.Hash, len(leaves))}
	copy(t.leaves, leaves)
	return t
}

// Push appends a leaf hash to the sequence.
func (t *Tree) Push(h codec.Hash) {
	t.leaves = append(t.leaves, h)
}

// Len returns the number of leaves pushed so far.
func (t *Tree) Len() int {
	return len(t.leaves)
}

// Leaves returns the leaf hashes in insertion order. The returned slice must
// not be mutated by the caller.
func (t *Tree) Leaves() []codec.Hash {
	return t.leaves
}

// Root computes the Merkle root of the current leaf sequence. It is safe to
// call at any point and does not mutate t.
func (t *Tree) Root() codec.Hash {
	return Root(t.leaves)
}

// Root computes the Merkle root of an ordered leaf sequence directly,
// without constructing a Tree. An empty sequence's root is the all-zero
// digest (spec.md's empty rule); a single leaf's root is that leaf
// (singleton rule).
func Root(leaves []codec.Hash) codec.Hash {
	if len(leaves) == 0 {
		return codec.Hash{}
	}

	level := make([]codec.Hash, len(leaves))
	copy(level, leaves)

	for len(level) > 1 {
		next := make([]codec.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, codec.HashPair(level[i], level[i+1]))
			} else {
				// Odd node at this level: duplicate-and-pair (Bitcoin-style).
				next = append(next, codec.HashPair(level[i], level[i]))
			}
		}
		level = next
	}

	return level[0]
}
