// Package record binds an arbitrary user value to its canonical digest,
// signature, signer, and metadata (spec.md §4.3, C3).
//
// Any value that can be canonically encoded (codec.Encode) satisfies the
// record contract — Go generics give every such type sign/verify/hash for
// free, the way original_source/src/trans/record.rs's `impl_record_for!`
// macro gave it to a fixed set of primitive types.
package record

import (
	"errors"
	"fmt"

	"github.com/ledgerchain/ledgerchain/codec"
	"github.com/ledgerchain/ledgerchain/signing"
)

// ErrVerification is returned when a record's signature does not verify.
var ErrVerification = signing.ErrVerification

// ErrSigning is returned when signing a record fails.
var ErrSigning = signing.ErrSign

// ErrMalformed is returned by SignedRecord.Verify when the stored record
// cannot even be re-encoded to check against its signature.
var ErrMalformed = errors.New("record: malformed record")

// Hash canonically serializes v and returns its digest. Per spec.md §4.1,
// this must not fail given a value that successfully encodes.
func Hash[R any](v R) (codec.Hash, error) {
	return codec.HashValue(v)
}

// Sign signs v's canonical encoding with keypair.
func Sign[R any](v R, keypair signing.KeyPair) (signing.Signature, error) {
	msg, err := codec.Encode(v)
	if err != nil {
		return signing.Signature{}, fmt.Errorf("%w: %v", ErrSigning, err)
	}
	sig, err := keypair.Sign(msg)
	if err != nil {
		return signing.Signature{}, err
	}
	return sig, nil
}

// Verify checks that sig is a valid signature over v's canonical encoding by
// signer.
func Verify[R any](v R, sig signing.Signature, signer signing.PublicKey) error {
	msg, err := codec.Encode(v)
	if err != nil {
		return fmt.Errorf("%w: %w: %v", ErrVerification, ErrMalformed, err)
	}
	return signer.Verify(msg, sig)
}

// New is the only sanctioned path to a SignedRecord: it signs v's canonical
// encoding, hashes it, captures the signer's public key, and bundles the
// given metadata.
func New[R any](v R, keypair signing.KeyPair, metadata Metadata) (SignedRecord[R], error) {
	sig, err := Sign(v, keypair)
	if err != nil {
		return SignedRecord[R]{}, err
	}
	h, err := Hash(v)
	if err != nil {
		return SignedRecord[R]{}, fmt.Errorf("%w: %v", ErrSigning, err)
	}
	return SignedRecord[R]{
		Value:     v,
		Signature: sig,
		Signer:    keypair.Public(),
		RecHash:   h,
		Metadata:  metadata,
	}, nil
}

// SignedRecord is an immutable tuple of a user value, its signature, the
// signer's public key, the value's hash, and annotational metadata.
//
// Invariant: RecHash == Hash(Value), and Verify() succeeds against Value,
// Signature and Signer (spec.md §3). Metadata is intentionally not covered
// by Signature — see spec.md §9 and DESIGN.md's Open Questions.
type SignedRecord[R any] struct {
	Value     R                  `cbor:"value"`
	Signature signing.Signature  `cbor:"signature"`
	Signer    signing.PublicKey  `cbor:"signer"`
	RecHash   codec.Hash         `cbor:"hash"`
	Metadata  Metadata           `cbor:"metadata"`
}

// Record returns the underlying user value.
func (s SignedRecord[R]) Record() R { return s.Value }

// Hash returns the digest of the record value.
func (s SignedRecord[R]) Hash() codec.Hash { return s.RecHash }

// Verify re-runs signature verification against the stored record value and
// signer. It does not mutate s and never validates Metadata.
func (s SignedRecord[R]) Verify() error {
	return Verify(s.Value, s.Signature, s.Signer)
}
