package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPassword_HashAndVerify(t *testing.T) {
	hash, err := HashPassword("hunter22", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash must not equal the plain password")
	}
	if !VerifyPassword(hash, "hunter22") {
		t.Fatal("correct password must verify")
	}
	if VerifyPassword(hash, "hunter23") {
		t.Fatal("wrong password must not verify")
	}
}

func TestPassword_HashesDiffer(t *testing.T) {
	a, err := HashPassword("same", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	b, err := HashPassword("same", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if a == b {
		t.Fatal("bcrypt salting must produce distinct hashes")
	}
}
