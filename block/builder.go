// Package block provides the builder that stages a batch of signed records
// (UnchainedInstance, C5) and the committed-block types that a chain store
// produces and re-materializes (ChainedInstance + Block[R], C6).
package block

import (
	"github.com/ledgerchain/ledgerchain/record"
)

// UnchainedInstance is a mutable, ordered batch of signed records destined
// for the next block. It grows only by Push: records are never re-ordered or
// deduplicated. A zero-value UnchainedInstance is usable after NewUnchained.
type UnchainedInstance[R any] struct {
	metadata record.Metadata
	nonce    uint64
	records  []record.SignedRecord[R]
}

// NewUnchained starts a new builder with the given block-level metadata and
// target nonce.
func NewUnchained[R any](metadata record.Metadata, nonce uint64) *UnchainedInstance[R] {
	return &UnchainedInstance[R]{metadata: metadata, nonce: nonce}
}

// Push appends a signed record. Pushes are O(1) amortized and never reject a
// record — signature validity is the caller's responsibility at
// record-construction time (spec.md §4.5).
func (b *UnchainedInstance[R]) Push(r record.SignedRecord[R]) {
	b.records = append(b.records, r)
}

// Records returns the staged records in insertion order. The returned slice
// must not be mutated by the caller.
func (b *UnchainedInstance[R]) Records() []record.SignedRecord[R] {
	return b.records
}

// Len returns the number of staged records.
func (b *UnchainedInstance[R]) Len() int {
	return len(b.records)
}

// Metadata returns the block-level metadata the builder will carry.
func (b *UnchainedInstance[R]) Metadata() record.Metadata {
	return b.metadata
}

// Nonce returns the caller-supplied nonce the builder will carry.
func (b *UnchainedInstance[R]) Nonce() uint64 {
	return b.nonce
}
