package models

import (
	"time"

	"github.com/google/uuid"
)

// OTPCode represents a one-time login code issued to a profile.
// Multiple rows may exist per user; only the newest unused, unexpired,
// matching code is valid.
type OTPCode struct {
	ID        int64      `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	OTPCode   string     `json:"-" db:"otp_code"` // Never expose in JSON
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	IsUsed    bool       `json:"is_used" db:"is_used"`
	UsedAt    NullTime   `json:"used_at,omitempty" db:"used_at"`
	IPAddress NullString `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent NullString `json:"user_agent,omitempty" db:"user_agent"`
}
