package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/ec-storefront/internal/apperr"
)

const (
	bcryptCost        = 12
	minPasswordLength = 8
	// bcrypt only reads the first 72 bytes.
	maxPasswordBytes = 72
)

var (
	ErrPasswordTooShort = apperr.New(apperr.CodeValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	ErrPasswordTooLong  = apperr.New(apperr.CodeValidation, fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
)

// Passwords hashes and verifies user passwords with bcrypt at a fixed cost.
type Passwords struct {
	cost int
}

// NewPasswords returns a hasher using cost, or bcrypt's default when cost
// is out of range.
func NewPasswords(cost int) Passwords {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Passwords{cost: cost}
}

var defaultPasswords = NewPasswords(bcryptCost)

// Hash validates the password length and returns its bcrypt hash.
func (p Passwords) Hash(password string) (string, error) {
	if len([]rune(password)) < minPasswordLength {
		return "", ErrPasswordTooShort
	}
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Check reports whether password matches hash.
func (p Passwords) Check(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashPassword hashes a password at the production cost.
func HashPassword(password string) (string, error) {
	return defaultPasswords.Hash(password)
}

// CheckPassword compares a password with its hash
func CheckPassword(password, hash string) bool {
	return defaultPasswords.Check(password, hash)
}
