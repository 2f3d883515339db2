// Package auth issues and verifies credentials: bcrypt password hashes and signed session tokens.
package auth

import (
	"errors"
	"fmt"

	"inkpost/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 12

// Hasher hashes passwords with a fixed bcrypt cost.
type Hasher struct {
	Cost int
}

// NewHasher returns a Hasher using cost, or DefaultCost when cost is out of bcrypt's range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{Cost: cost}
}

// Hash returns a salted bcrypt hash of plaintext. Two calls on the same input return different hashes.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("password is empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword reports whether plaintext matches hash. A malformed or empty hash is a mismatch.
func VerifyPassword(plaintext, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// PasswordTransform hashes Account.NewPassword into PasswordHash and clears it.
// With no new password set it leaves the stored hash untouched.
func (h *Hasher) PasswordTransform() models.Transform[models.Account] {
	return func(a *models.Account) error {
		if a.NewPassword == "" {
			return nil
		}
		hashed, err := h.Hash(a.NewPassword)
		if err != nil {
			return err
		}
		a.PasswordHash = hashed
		a.NewPassword = ""
		return nil
	}
}
