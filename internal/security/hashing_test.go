package security

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash([]byte("Str0ng!Password"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "Str0ng!Password" {
		t.Fatal("hash must not equal plaintext")
	}
	if err := h.Compare(hash, []byte("Str0ng!Password")); err != nil {
		t.Errorf("Compare with correct password: %v", err)
	}
	if err := h.Compare(hash, []byte("wrong-password")); !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		t.Errorf("Compare with wrong password: expected mismatch, got %v", err)
	}
}

func TestHashIsSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash([]byte("same-password"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	second, err := h.Hash([]byte("same-password"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password should differ")
	}
}

func TestNewHasherClampsCost(t *testing.T) {
	if got := NewHasher(0).Cost; got != 14 {
		t.Errorf("zero cost: got %d, want default 14", got)
	}
	if got := NewHasher(2).Cost; got != bcrypt.MinCost {
		t.Errorf("below min: got %d, want %d", got, bcrypt.MinCost)
	}
	if got := NewHasher(99).Cost; got != bcrypt.MaxCost {
		t.Errorf("above max: got %d, want %d", got, bcrypt.MaxCost)
	}
}

func TestCompareInvalidHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	if err := h.Compare("not-a-bcrypt-hash", []byte("anything")); err == nil {
		t.Error("expected error for invalid hash")
	}
}
