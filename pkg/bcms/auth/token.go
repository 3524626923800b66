package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const secretBytes = 32

// NewSecret generates an opaque bearer-token secret. It returns the
// plaintext handed to the caller exactly once and the SHA-256 digest that
// gets persisted in its place.
func NewSecret() (plaintext, digest string, err error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generating token secret: %w", err)
	}
	plaintext = base64.RawURLEncoding.EncodeToString(buf)
	return plaintext, Digest(plaintext), nil
}

// Digest returns the hex SHA-256 digest of a plaintext secret. Lookups
// hash the presented token and match on the digest, so a leaked token
// table cannot be replayed.
func Digest(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
