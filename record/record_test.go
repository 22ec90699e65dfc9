package record

import (
	"testing"

	"github.com/ledgerchain/ledgerchain/signing"
)

func TestSignedRecordRoundTrip(t *testing.T) {
	kp, err := signing.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}

	sr, err := New("abcd", kp, EmptyMetadata())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := sr.Verify(); err != nil {
		t.Errorf("Verify: %v", err)
	}

	wantHash, err := Hash("abcd")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if sr.Hash() != wantHash {
		t.Errorf("hash mismatch: got %s want %s", sr.Hash(), wantHash)
	}
}

func TestSignedRecordVerifyFailsForSwappedSigner(t *testing.T) {
	kp1, err := signing.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	kp2, err := signing.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}

	sr, err := New("abcd", kp1, EmptyMetadata())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sr.Signer = kp2.Public()

	if err := sr.Verify(); err == nil {
		t.Error("expected verification to fail with a swapped signer")
	}
}

func TestMetadataMutationDoesNotInvalidateVerification(t *testing.T) {
	kp, err := signing.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}

	md := EmptyMetadata()
	md.Push(NewTextDetail("original"))

	sr, err := New("abcd", kp, md)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sr.Metadata.Push(NewTextDetail("appended after signing"))

	if err := sr.Verify(); err != nil {
		t.Errorf("metadata mutation should not invalidate verification, got: %v", err)
	}
}

func TestHashDeterministic(t *testing.T) {
	h1, err := Hash(int64(42))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	h2, err := Hash(int64(42))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h1 != h2 {
		t.Error("Hash must be deterministic")
	}
}
