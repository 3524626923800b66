// Package auth provides the credential primitives for the API: bcrypt
// password hashing and opaque bearer-token secrets. It is storage-agnostic;
// token persistence and lookup live with the service's repository.
package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when a login email is unknown, so the
// failure path costs the same as a real comparison.
var dummyHash = mustHash("bcms-login-timing-pad")

func mustHash(password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}

// HashPassword returns the bcrypt hash of a password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CheckDummy burns a bcrypt comparison against a throwaway hash. Called on
// login with an unknown email so response timing does not reveal whether
// the email exists.
func CheckDummy(password string) {
	bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}
