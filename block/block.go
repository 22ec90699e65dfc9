package block

import (
	"errors"
	"fmt"

	"github.com/ledgerchain/ledgerchain/codec"
	"github.com/ledgerchain/ledgerchain/merkle"
	"github.com/ledgerchain/ledgerchain/record"
)

// ErrValidation is returned by Block.Validate when the materialized block
// does not match its expected builder or chained header.
var ErrValidation = errors.New("block: validation failed")

// RecordRange identifies the half-open range of global record offsets a
// block owns within a chain store, mirroring
// original_source/src/trans/blocks.rs's records_range field.
type RecordRange struct {
	Start uint64 `cbor:"start"`
	End   uint64 `cbor:"end"`
}

// Len returns End-Start, the number of records the range covers.
func (r RecordRange) Len() uint64 {
	return r.End - r.Start
}

// ChainedInstance is the fixed-size header a chain store persists for each
// committed block: everything needed to verify chain linkage without
// touching the record bodies (spec.md §4.6, C6).
type ChainedInstance struct {
	Nonce        uint64      `cbor:"nonce"`
	Position     uint64      `cbor:"position"`
	Timestamp    int64       `cbor:"timestamp"`
	Hash         codec.Hash  `cbor:"hash"`
	PrevHash     codec.Hash  `cbor:"prev_hash"`
	MerkleRoot   codec.Hash  `cbor:"merkle_root"`
	RecordsRange RecordRange `cbor:"records_range"`
}

// headerPayload is the subset of ChainedInstance fields the block hash
// commits to — everything except Hash itself, which is derived from it.
type headerPayload struct {
	Nonce        uint64
	Position     uint64
	Timestamp    int64
	PrevHash     codec.Hash
	MerkleRoot   codec.Hash
	RecordsRange RecordRange
}

// Seal computes the header's Hash field from its other fields and prevHash,
// returning a fully-populated ChainedInstance. This is the chain-linking
// step: Hash binds position, nonce, timestamp, the record batch's Merkle
// root, and the previous block's hash, so altering any earlier block breaks
// every Hash after it.
func Seal(nonce, position uint64, timestamp int64, prevHash, merkleRoot codec.Hash, recordsRange RecordRange) (ChainedInstance, error) {
	h, err := codec.HashValue(headerPayload{
		Nonce:        nonce,
		Position:     position,
		Timestamp:    timestamp,
		PrevHash:     prevHash,
		MerkleRoot:   merkleRoot,
		RecordsRange: recordsRange,
	})
	if err != nil {
		return ChainedInstance{}, fmt.Errorf("block: seal header: %w", err)
	}
	return ChainedInstance{
		Nonce:        nonce,
		Position:     position,
		Timestamp:    timestamp,
		Hash:         h,
		PrevHash:     prevHash,
		MerkleRoot:   merkleRoot,
		RecordsRange: recordsRange,
	}, nil
}

// Block is the materialized view of a committed (or about-to-be-committed)
// batch of signed records: the records themselves plus the Merkle tree built
// over their hashes (spec.md §4.6's "Block<R>{records, merkle, merkle_root}"
// shape, grounded on internal/blockchain/chain.go's Block struct).
type Block[R any] struct {
	records []record.SignedRecord[R]
	tree    *merkle.Tree
}

// NewBlock builds a Block from a complete, ordered set of signed records,
// computing the Merkle tree over their hashes.
func NewBlock[R any](records []record.SignedRecord[R]) (*Block[R], error) {
	tree := merkle.New()
	for _, r := range records {
		tree.Push(r.Hash())
	}
	cp := make([]record.SignedRecord[R], len(records))
	copy(cp, records)
	return &Block[R]{records: cp, tree: tree}, nil
}

// FromUnchained materializes a Block directly from a builder's staged
// records.
func FromUnchained[R any](b *UnchainedInstance[R]) (*Block[R], error) {
	return NewBlock(b.Records())
}

// Records returns the block's records in insertion order. The returned slice
// must not be mutated by the caller.
func (blk *Block[R]) Records() []record.SignedRecord[R] {
	return blk.records
}

// Len returns the number of records in the block.
func (blk *Block[R]) Len() int {
	return len(blk.records)
}

// MerkleRoot returns the Merkle root committed over the block's records.
func (blk *Block[R]) MerkleRoot() codec.Hash {
	return blk.tree.Root()
}

// Validate re-verifies every record's signature and checks that the
// rebuilt Merkle root matches what's expected. expected is either the
// *UnchainedInstance[R] the block was built from, or the *ChainedInstance
// (or ChainedInstance) header a chain store persisted for it — spec.md
// §4.6's "Block<R>::validate(expected: &UnchainedInstance<R> | &ChainedInstance)",
// expressed in Go as a type switch rather than a sum type.
func (blk *Block[R]) Validate(expected any) error {
	for i, r := range blk.records {
		if err := r.Verify(); err != nil {
			return fmt.Errorf("%w: record %d: %v", ErrValidation, i, err)
		}
	}

	root := blk.MerkleRoot()

	switch e := expected.(type) {
	case *UnchainedInstance[R]:
		return validateAgainstRecords(root, e.Records())
	case UnchainedInstance[R]:
		return validateAgainstRecords(root, e.Records())
	case *ChainedInstance:
		return validateAgainstHeader(root, *e)
	case ChainedInstance:
		return validateAgainstHeader(root, e)
	default:
		return fmt.Errorf("%w: unsupported expectation type %T", ErrValidation, expected)
	}
}

func validateAgainstRecords[R any](root codec.Hash, records []record.SignedRecord[R]) error {
	leaves := make([]codec.Hash, len(records))
	for i, r := range records {
		leaves[i] = r.Hash()
	}
	want := merkle.Root(leaves)
	if root != want {
		return fmt.Errorf("%w: merkle root %s does not match builder root %s", ErrValidation, root, want)
	}
	return nil
}

func validateAgainstHeader(root codec.Hash, header ChainedInstance) error {
	if root != header.MerkleRoot {
		return fmt.Errorf("%w: merkle root %s does not match header root %s", ErrValidation, root, header.MerkleRoot)
	}
	return nil
}
