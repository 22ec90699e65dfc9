// Package codec provides the canonical byte encoding and fixed-width digest
// that every other package in ledgerchain builds on.
//
// The encoding is deterministic (the same logical value always produces
// identical bytes, on any machine, on any run) and fixed for the lifetime of
// the library: changing it is a breaking on-disk format change and must bump
// the store's schema version.
package codec

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Size is the width, in bytes, of every Hash in the system.
const Size = sha256.Size

// Hash is a fixed-width opaque cryptographic digest. The zero Hash is the
// defined sentinel used as the Merkle root of an empty batch and as the
// prev-hash of the first block in a chain.
type Hash [Size]byte

// IsZero reports whether h is the all-zero sentinel digest.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// String returns the lowercase hex encoding of h.
func (h Hash) String() string {
	return fmt.Sprintf("%x", h[:])
}

// ErrEncode is returned when a value cannot be canonically encoded.
var ErrEncode = errors.New("codec: encode failed")

// ErrDecode is returned when bytes cannot be canonically decoded into v.
var ErrDecode = errors.New("codec: decode failed")

var encMode = mustCanonicalEncMode()

func mustCanonicalEncMode() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	mode, err := opts.EncMode()
	if err != nil {
		// EncMode() only fails on a malformed EncOptions literal; ours is
		// fixed at compile time, so this can never happen at runtime.
		panic(fmt.Sprintf("codec: invalid canonical encode options: %v", err))
	}
	return mode
}

// Encode canonically serializes v. The result is deterministic: two calls
// with an equal v always produce byte-identical output.
func Encode(v any) ([]byte, error) {
	b, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return b, nil
}

// Decode deserializes b into v, which must be a pointer.
func Decode(b []byte, v any) error {
	if err := cbor.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// HashBytes returns the fixed-width digest of raw bytes.
func HashBytes(b []byte) Hash {
	return sha256.Sum256(b)
}

// HashPair returns H(a || b), the Merkle internal-node combination rule.
func HashPair(a, b Hash) Hash {
	var buf [2 * Size]byte
	copy(buf[:Size], a[:])
	copy(buf[Size:], b[:])
	return sha256.Sum256(buf[:])
}

// HashValue canonically serializes v and returns the digest of the result.
// Hashing itself is infallible given a successful encoding (spec.md §4.1);
// it only fails if v cannot be encoded.
func HashValue(v any) (Hash, error) {
	b, err := Encode(v)
	if err != nil {
		return Hash{}, err
	}
	return HashBytes(b), nil
}
