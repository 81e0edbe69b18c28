package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "hrportal/internal/errors"
)

const bcryptCost = 10

// PasswordPolicy is the configurable complexity rule applied when users are
// provisioned. The zero value accepts any password.
type PasswordPolicy struct {
	MinLength int
}

// Validate checks password against the policy.
func (p PasswordPolicy) Validate(password string) error {
	if p.MinLength > 0 && len(password) < p.MinLength {
		return fmt.Errorf("%w: at least %d characters required", apperrors.ErrWeakPassword, p.MinLength)
	}
	return nil
}

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword verifies plaintext password against a bcrypt hash.
func VerifyPassword(passwordHash, candidate string) bool {
	if strings.TrimSpace(passwordHash) == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(candidate)) == nil
}
