// Package crypto implements server-side password hashing and verification.
package crypto

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

// maxPasswordLen is the bcrypt input limit; longer inputs are truncated.
const maxPasswordLen = 72

// BcryptHasher produces and checks salted bcrypt hashes with a fixed cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost}, nil
}

// Cost reports the configured work factor.
func (h *BcryptHasher) Cost() int { return h.cost }

// Hash returns the bcrypt hash of password. Every call uses a fresh random salt.
func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(clamp(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether password matches hash. Malformed hashes never match.
func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), clamp(password)) == nil
}

// clamp keeps the first 72 bytes, the part of the input bcrypt actually uses.
func clamp(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordLen {
		b = b[:maxPasswordLen]
	}
	return b
}
