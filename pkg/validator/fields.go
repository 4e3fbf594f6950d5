package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrInvalidEmail indicates the email address is malformed
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidPincode indicates the pincode is not a valid 6-digit code
	ErrInvalidPincode = errors.New("pincode must be exactly 6 digits")
)

// emailRegex is intentionally loose: user@domain.tld with no spaces. The
// real check is whether the OTP email arrives.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// pincodeRegex matches Indian postal codes, which never start with 0
var pincodeRegex = regexp.MustCompile(`^[1-9]\d{5}$`)

// ValidateEmail normalizes and validates an email address. Returns the
// lowercased, trimmed address.
func ValidateEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(normalized) {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// ValidatePincode validates an Indian postal code
func ValidatePincode(pincode string) (string, error) {
	trimmed := strings.TrimSpace(pincode)
	if !pincodeRegex.MatchString(trimmed) {
		return "", ErrInvalidPincode
	}
	return trimmed, nil
}
