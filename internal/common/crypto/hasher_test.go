package crypto_test

import (
	"strings"
	"testing"

	"github.com/avoronkov/webauth/internal/common/crypto"
)

func TestBcryptHasher_HashNeverEqualsPlaintext(t *testing.T) {
	hasher := &crypto.BcryptHasher{}

	hash, err := hasher.Hash("password123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if hash == "password123" {
		t.Error("hash must not equal the plaintext")
	}

	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected a bcrypt hash, got %q", hash)
	}
}

func TestBcryptHasher_CompareMatches(t *testing.T) {
	hasher := &crypto.BcryptHasher{}

	hash, err := hasher.Hash("password123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := hasher.Compare(hash, "password123"); err != nil {
		t.Errorf("expected matching password to verify, got %v", err)
	}
}

func TestBcryptHasher_CompareRejectsWrongPassword(t *testing.T) {
	hasher := &crypto.BcryptHasher{}

	hash, err := hasher.Hash("password123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := hasher.Compare(hash, "password124"); err == nil {
		t.Error("expected wrong password to fail verification")
	}
}

func TestBcryptHasher_HashesAreSalted(t *testing.T) {
	hasher := &crypto.BcryptHasher{}

	first, err := hasher.Hash("password123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	second, err := hasher.Hash("password123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if first == second {
		t.Error("two hashes of the same password must differ")
	}
}
