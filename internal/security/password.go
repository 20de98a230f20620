package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost of 10 balances hashing cost against login latency.
const bcryptCost = 10

// HashCredential generates a bcrypt hash of the password. Only the hash is
// ever stored; the decrypted wire password is discarded after hashing.
func HashCredential(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash credential: %w", err)
	}
	return string(hash), nil
}

// CompareCredential compares a stored bcrypt hash with a plaintext candidate.
func CompareCredential(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
