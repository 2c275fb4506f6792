package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPassword("secret1", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "secret1") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
	if VerifyPassword("", "secret1") {
		t.Error("empty hash accepted")
	}
}

// Rows imported from the previous PHP-based system carry the $2y$ bcrypt
// prefix variant; they must verify without a rewrite.
func TestVerifyLegacyPrefix(t *testing.T) {
	hash, err := HashPassword("legacy-pass", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	legacy := "$2y" + hash[3:]
	if !VerifyPassword(legacy, "legacy-pass") {
		t.Error("$2y$ hash rejected")
	}
	if VerifyPassword(legacy, "wrong") {
		t.Error("$2y$ hash accepted wrong password")
	}
}
