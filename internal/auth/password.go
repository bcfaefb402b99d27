package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const passwordCost = 12

// ErrInvalidCredentials indicates a login failure.
var ErrInvalidCredentials = errors.New("invalid username or password")

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// dummyPasswordHash is generated at passwordCost so a decoy comparison costs
// the same as a real one.
func dummyPasswordHash() []byte {
	dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("recordstore-decoy"), passwordCost)
		if err != nil {
			panic(fmt.Sprintf("generate decoy password hash: %v", err))
		}
		dummyHash = hash
	})
	return dummyHash
}

// HashPassword hashes a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a stored hash.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// BurnPasswordCheck spends the same time as a real comparison so unknown
// usernames are not distinguishable by latency.
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyPasswordHash(), []byte(password))
}
