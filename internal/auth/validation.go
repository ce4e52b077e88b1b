package auth

import (
	"errors"
	"strings"
)

const MinPasswordLen = 6

var ErrPasswordTooShort = errors.New("password must be at least 6 characters")

// NormalizeEmail trims and lowercases an email address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword checks the minimum length for new passwords.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	return nil
}
