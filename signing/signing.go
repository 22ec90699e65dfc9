// Package signing provides the keypair, public key, and digital signature
// primitives the record and ledger packages build on.
//
// The initial algorithm set is {Ed25519}. Every key and signature carries its
// Algorithm tag so the on-disk format can grow new algorithms later without
// a schema change (spec.md §4.2).
package signing

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
)

// Algorithm identifies the signature scheme used by a KeyPair/PublicKey.
type Algorithm string

// Ed25519 is the only supported algorithm today.
const Ed25519 Algorithm = "ed25519"

// ErrSign is returned when signing fails (an unusable key or a primitive
// failure).
var ErrSign = errors.New("signing: sign failed")

// ErrVerification is returned when a signature does not verify.
var ErrVerification = errors.New("signing: verification failed")

// ErrUnsupportedAlgorithm is returned by Generate for an unknown Algorithm.
var ErrUnsupportedAlgorithm = errors.New("signing: unsupported algorithm")

// Signature is an opaque, algorithm-tagged digital signature.
type Signature struct {
	Algorithm Algorithm
	Bytes     []byte
}

// PublicKey is the verifier half of a KeyPair.
type PublicKey struct {
	Algorithm Algorithm
	Bytes     []byte
}

// Verify checks that sig is a valid signature over msg by this key. It is
// constant-time in the sense of the underlying primitive (ed25519.Verify).
func (p PublicKey) Verify(msg []byte, sig Signature) error {
	if p.Algorithm != sig.Algorithm {
		return fmt.Errorf("%w: key algorithm %q does not match signature algorithm %q", ErrVerification, p.Algorithm, sig.Algorithm)
	}
	switch p.Algorithm {
	case Ed25519:
		if len(p.Bytes) != ed25519.PublicKeySize {
			return fmt.Errorf("%w: malformed ed25519 public key", ErrVerification)
		}
		if !ed25519.Verify(ed25519.PublicKey(p.Bytes), msg, sig.Bytes) {
			return fmt.Errorf("%w: signature mismatch", ErrVerification)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, p.Algorithm)
	}
}

// Equal reports whether two public keys carry the same algorithm and bytes.
func (p PublicKey) Equal(other PublicKey) bool {
	if p.Algorithm != other.Algorithm || len(p.Bytes) != len(other.Bytes) {
		return false
	}
	for i := range p.Bytes {
		if p.Bytes[i] != other.Bytes[i] {
			return false
		}
	}
	return true
}

// KeyPair is an asymmetric private+public keypair tagged with an algorithm.
type KeyPair struct {
	algorithm  Algorithm
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
}

// Generate creates a fresh KeyPair for alg using a CSPRNG.
func Generate(alg Algorithm) (KeyPair, error) {
	switch alg {
	case Ed25519:
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return KeyPair{}, fmt.Errorf("%w: %v", ErrSign, err)
		}
		return KeyPair{algorithm: Ed25519, privateKey: priv, publicKey: pub}, nil
	default:
		return KeyPair{}, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
}

// GenerateEd25519 is a convenience wrapper over Generate(Ed25519), mirroring
// the ergonomics of the original `generate_ed25519_key_pair` helper.
func GenerateEd25519() (KeyPair, error) {
	return Generate(Ed25519)
}

// Algorithm returns the algorithm tag carried by k.
func (k KeyPair) Algorithm() Algorithm {
	return k.algorithm
}

// Public derives the PublicKey half of k.
func (k KeyPair) Public() PublicKey {
	return PublicKey{Algorithm: k.algorithm, Bytes: append([]byte(nil), k.publicKey...)}
}

// Sign signs msg with the private half of k.
func (k KeyPair) Sign(msg []byte) (Signature, error) {
	if k.privateKey == nil {
		return Signature{}, fmt.Errorf("%w: nil private key", ErrSign)
	}
	switch k.algorithm {
	case Ed25519:
		sig := ed25519.Sign(k.privateKey, msg)
		return Signature{Algorithm: Ed25519, Bytes: sig}, nil
	default:
		return Signature{}, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, k.algorithm)
	}
}
