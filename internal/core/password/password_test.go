package password

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "s3cret" {
		t.Fatalf("expected password to be hashed")
	}

	if !h.Verify(hash, "s3cret") {
		t.Fatalf("expected matching password to verify")
	}
	if h.Verify(hash, "wrong") {
		t.Fatalf("expected non-matching password to fail")
	}
}

func TestHasher_HashesDiffer(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("same")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	second, err := h.Hash("same")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct salts to produce distinct hashes")
	}
	if !h.Verify(first, "same") || !h.Verify(second, "same") {
		t.Fatalf("expected both hashes to verify")
	}
}

func TestHasher_CorruptHashFailsClosed(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	if h.Verify("not-a-bcrypt-hash", "anything") {
		t.Fatalf("expected corrupt hash to fail verification")
	}
	if h.Verify("", "anything") {
		t.Fatalf("expected empty hash to fail verification")
	}
}

func TestNewHasher_InvalidCostFallsBack(t *testing.T) {
	h := NewHasher(99)

	hash, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if !h.Verify(hash, "pw") {
		t.Fatalf("expected hash at fallback cost to verify")
	}
}
