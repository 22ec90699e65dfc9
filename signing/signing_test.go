package signing

import "testing"

func TestSignVerifyRoundTrip(t *testing.T) {
	kp, err := GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}

	msg := []byte("abcd")
	sig, err := kp.Sign(msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if err := kp.Public().Verify(msg, sig); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestVerifyFailsForWrongKey(t *testing.T) {
	kp1, err := GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	kp2, err := GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}

	msg := []byte("abcd")
	sig, err := kp1.Sign(msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if err := kp2.Public().Verify(msg, sig); err == nil {
		t.Error("expected verification to fail against the wrong public key")
	}
}

func TestVerifyFailsForTamperedMessage(t *testing.T) {
	kp, err := GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}

	sig, err := kp.Sign([]byte("abcd"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if err := kp.Public().Verify([]byte("abcz"), sig); err == nil {
		t.Error("expected verification to fail for a tampered message")
	}
}

func TestGenerateUnsupportedAlgorithm(t *testing.T) {
	_, err := Generate(Algorithm("rot13"))
	if err == nil {
		t.Error("expected an error for an unsupported algorithm")
	}
}
