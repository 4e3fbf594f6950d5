package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ApplicatorType identifies which product family an installer works on
type ApplicatorType string

const (
	ApplicatorSeatCover ApplicatorType = "seat_cover"
	ApplicatorPPFSPF    ApplicatorType = "ppf_spf"
	ApplicatorEV        ApplicatorType = "ev"
)

// ParseApplicatorType validates an applicator type from a request body
func ParseApplicatorType(s string) (ApplicatorType, error) {
	switch ApplicatorType(s) {
	case ApplicatorSeatCover, ApplicatorPPFSPF, ApplicatorEV:
		return ApplicatorType(s), nil
	default:
		return "", fmt.Errorf("invalid applicator type: %q", s)
	}
}

// Manpower represents an installer/applicator attached to a vendor
type Manpower struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	VendorID       uuid.UUID      `json:"vendor_id" db:"vendor_id"`
	Name           string         `json:"name" db:"name"`
	PhoneNumber    string         `json:"phone_number" db:"phone_number"`
	ManpowerID     string         `json:"manpower_id" db:"manpower_id"`
	ApplicatorType ApplicatorType `json:"applicator_type" db:"applicator_type"`
	IsActive       bool           `json:"is_active" db:"is_active"`
	RemovedAt      NullTime       `json:"removed_at,omitempty" db:"removed_at"`
	RemovedReason  NullString     `json:"removed_reason,omitempty" db:"removed_reason"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`

	// Derived from associated warranty statuses, never stored
	Points         int `json:"points" db:"points"`
	PendingPoints  int `json:"pending_points" db:"pending_points"`
	RejectedPoints int `json:"rejected_points" db:"rejected_points"`
}

// DeriveManpowerID builds the human-readable installer code: the first
// three letters of the name (uppercased) followed by the last four digits
// of the phone number. Not guaranteed unique.
func DeriveManpowerID(name, phone string) string {
	letters := make([]rune, 0, 3)
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' {
			letters = append(letters, r)
			if len(letters) == 3 {
				break
			}
		}
	}

	digits := make([]rune, 0, len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}

	return string(letters) + string(digits)
}
