package cryptox

import (
	"bytes"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if bytes.Contains(hash, []byte("secret")) {
		t.Fatalf("hash must not contain the plaintext")
	}
	if err := CheckPassword(hash, []byte("secret")); err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	b, err := HashPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatalf("two hashes of the same password must differ")
	}
}

func TestHashPassword_WipesInput(t *testing.T) {
	pw := []byte("secret")
	if _, err := HashPassword(pw, bcrypt.MinCost); err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !bytes.Equal(pw, make([]byte, len(pw))) {
		t.Fatalf("password buffer not wiped: %q", pw)
	}
}

func TestHashPassword_InvalidCostFallsBack(t *testing.T) {
	hash, err := HashPassword([]byte("x"), 99)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	cost, err := bcrypt.Cost(hash)
	if err != nil {
		t.Fatalf("bcrypt.Cost error: %v", err)
	}
	if cost != DefaultCost {
		t.Fatalf("cost = %d, want %d", cost, DefaultCost)
	}
}

func TestCheckPassword_Mismatch(t *testing.T) {
	hash, err := HashPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if err := CheckPassword(hash, []byte("wrong")); !errors.Is(err, ErrMismatch) {
		t.Fatalf("want ErrMismatch, got %v", err)
	}
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	err := CheckPassword([]byte("not-a-hash"), []byte("secret"))
	if err == nil || errors.Is(err, ErrMismatch) {
		t.Fatalf("want a non-mismatch error, got %v", err)
	}
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(bytes.Repeat([]byte("a"), 73), bcrypt.MinCost)
	if !errors.Is(err, ErrTooLong) {
		t.Fatalf("want ErrTooLong, got %v", err)
	}
}
