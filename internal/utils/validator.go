package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MinPasswordLength is the minimum number of characters in a credentials password
	MinPasswordLength = 6

	// MaxPasswordBytes is the longest password bcrypt can hash
	MaxPasswordBytes = 72
)

// No whitespace, an @, and a dot somewhere after it
var emailRegex = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// ValidateEmail validates an email address
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidatePassword reports whether the password has at least MinPasswordLength characters
func ValidatePassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength
}

// PasswordTooLong reports whether the password exceeds MaxPasswordBytes once UTF-8 encoded
func PasswordTooLong(password string) bool {
	return len(password) > MaxPasswordBytes
}

// SanitizeEmail sanitizes an email address
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MaskSecret hides most of a configuration value.
// Values up to 8 characters are fully masked, longer ones keep 4 characters at each end.
func MaskSecret(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "****" + value[len(value)-4:]
}
