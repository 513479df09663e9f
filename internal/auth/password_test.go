package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("pw123456")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "pw123456" {
		t.Fatal("hash must not equal plaintext")
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil || cost != BcryptCost {
		t.Fatalf("expected bcrypt cost %d, got %d (%v)", BcryptCost, cost, err)
	}

	if !VerifyPassword("pw123456", hash) {
		t.Fatal("expected password to verify")
	}
	if VerifyPassword("wrong", hash) {
		t.Fatal("expected wrong password to fail")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := HashPassword("same")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	second, err := HashPassword("same")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct salts")
	}
}

func TestHashPasswordEmpty(t *testing.T) {
	if _, err := HashPassword(""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected empty password error, got %v", err)
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	if VerifyPassword("pw", "") {
		t.Fatal("empty hash must not verify")
	}
	if VerifyPassword("pw", "not-a-bcrypt-hash") {
		t.Fatal("malformed hash must not verify")
	}
}
