package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 16
	keySize    = 32
	iterations = 100000
)

// ErrMalformedHash is returned when a stored hash is not salt followed by key.
var ErrMalformedHash = errors.New("malformed password hash")

// HashPassword derives a PBKDF2-HMAC-SHA256 key under a fresh random salt and
// returns salt followed by key.
func HashPassword(password string) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, iterations, keySize, sha256.New)
	return append(salt, key...), nil
}

// CheckPassword re-derives the key from the stored salt and compares it in
// constant time.
func CheckPassword(stored []byte, password string) (bool, error) {
	if len(stored) != saltSize+keySize {
		return false, ErrMalformedHash
	}
	salt, want := stored[:saltSize], stored[saltSize:]
	got := pbkdf2.Key([]byte(password), salt, iterations, keySize, sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
