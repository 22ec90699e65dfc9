package codec

import "testing"

type voteRecord struct {
	Data string
}

func TestHashValueDeterministic(t *testing.T) {
	v := voteRecord{Data: "abcd"}

	h1, err := HashValue(v)
	if err != nil {
		t.Fatalf("HashValue: %v", err)
	}
	h2, err := HashValue(v)
	if err != nil {
		t.Fatalf("HashValue: %v", err)
	}

	if h1 != h2 {
		t.Errorf("expected identical digests, got %s and %s", h1, h2)
	}
}

func TestHashValueDistinguishesContent(t *testing.T) {
	h1, err := HashValue(voteRecord{Data: "abcd"})
	if err != nil {
		t.Fatalf("HashValue: %v", err)
	}
	h2, err := HashValue(voteRecord{Data: "efgh"})
	if err != nil {
		t.Fatalf("HashValue: %v", err)
	}

	if h1 == h2 {
		t.Error("expected different digests for different content")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := voteRecord{Data: "roundtrip"}

	b, err := Encode(want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var got voteRecord
	if err := Decode(b, &got); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestZeroHashIsZero(t *testing.T) {
	var h Hash
	if !h.IsZero() {
		t.Error("zero-value Hash should report IsZero() == true")
	}

	nonZero, err := HashValue(voteRecord{Data: "x"})
	if err != nil {
		t.Fatalf("HashValue: %v", err)
	}
	if nonZero.IsZero() {
		t.Error("non-zero digest should not report IsZero() == true")
	}
}

func TestHashPairDeterministic(t *testing.T) {
	a := HashBytes([]byte("left"))
	b := HashBytes([]byte("right"))

	p1 := HashPair(a, b)
	p2 := HashPair(a, b)
	if p1 != p2 {
		t.Error("HashPair must be deterministic")
	}

	// Order matters.
	if HashPair(a, b) == HashPair(b, a) {
		t.Error("HashPair(a,b) should differ from HashPair(b,a)")
	}
}
