package auth

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct-horse-battery" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected a bcrypt hash, got %q", hash)
	}

	// Hashing is salted, so the same password yields a different hash.
	again, err := HashPassword("correct-horse-battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if again == hash {
		t.Error("expected distinct hashes for repeated hashing")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if !CheckPassword(hash, "correct-horse-battery") {
		t.Error("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong-password") {
		t.Error("expected wrong password to fail")
	}
	if CheckPassword("not-a-hash", "correct-horse-battery") {
		t.Error("expected malformed hash to fail")
	}
}

func TestNewSecret(t *testing.T) {
	plaintext, digest, err := NewSecret()
	if err != nil {
		t.Fatalf("NewSecret: %v", err)
	}
	if plaintext == "" || digest == "" {
		t.Fatal("expected non-empty secret and digest")
	}
	if plaintext == digest {
		t.Fatal("digest must differ from the plaintext")
	}
	if got := Digest(plaintext); got != digest {
		t.Errorf("Digest(plaintext) = %q, want %q", got, digest)
	}
	// Hex SHA-256 is 64 characters.
	if len(digest) != 64 {
		t.Errorf("expected 64-char digest, got %d", len(digest))
	}
}

func TestNewSecretUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		plaintext, _, err := NewSecret()
		if err != nil {
			t.Fatalf("NewSecret: %v", err)
		}
		if seen[plaintext] {
			t.Fatal("duplicate secret generated")
		}
		seen[plaintext] = true
	}
}

func TestDigestIsDeterministic(t *testing.T) {
	if Digest("abc") != Digest("abc") {
		t.Error("expected identical digests for identical input")
	}
	if Digest("abc") == Digest("abd") {
		t.Error("expected different digests for different input")
	}
}
