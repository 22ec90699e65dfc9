package merkle

import (
	"testing"

	"github.com/ledgerchain/ledgerchain/codec"
)

func leafHashes(words ...string) []codec.Hash {
	hashes := make([]codec.Hash, len(words))
	for i, w := range words {
		hashes[i] = codec.HashBytes([]byte(w))
	}
	return hashes
}

func TestEmptyRootIsZero(t *testing.T) {
	if got := Root(nil); !got.IsZero() {
		t.Errorf("empty root should be the zero digest, got %s", got)
	}

	tr := New()
	if got := tr.Root(); !got.IsZero() {
		t.Errorf("empty incremental tree root should be the zero digest, got %s", got)
	}
}

func TestSingletonRootIsLeafHash(t *testing.T) {
	leaves := leafHashes("abcd")
	if got := Root(leaves); got != leaves[0] {
		t.Errorf("singleton root should equal the leaf hash, got %s want %s", got, leaves[0])
	}
}

func TestIncrementalMatchesBulk(t *testing.T) {
	words := []string{"abcd", "efgh", "ijkl", "mnop", "qrst"}
	leaves := leafHashes(words...)

	bulkRoot := Root(leaves)

	tr := New()
	for _, h := range leaves {
		tr.Push(h)
	}

	if tr.Root() != bulkRoot {
		t.Errorf("incremental root %s does not match bulk root %s", tr.Root(), bulkRoot)
	}

	if FromLeaves(leaves).Root() != bulkRoot {
		t.Error("FromLeaves root should match bulk root")
	}
}

func TestOddLeafDuplicatesLast(t *testing.T) {
	leaves := leafHashes("a", "b", "c")

	// Manually compute the expected root using the documented odd-leaf
	// policy: duplicate the last node of each odd level.
	level1 := []codec.Hash{
		codec.HashPair(leaves[0], leaves[1]),
		codec.HashPair(leaves[2], leaves[2]),
	}
	want := codec.HashPair(level1[0], level1[1])

	if got := Root(leaves); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestRootDependsOnOrder(t *testing.T) {
	a := leafHashes("abcd", "efgh")
	b := leafHashes("efgh", "abcd")

	if Root(a) == Root(b) {
		t.Error("root should depend on leaf order")
	}
}
