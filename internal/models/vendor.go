package models

import (
	"time"

	"github.com/google/uuid"
)

// Verification state buckets derived from VendorVerification fields:
// pending   = !IsVerified && VerifiedAt is null
// approved  = IsVerified
// disapproved = !IsVerified && VerifiedAt set (rejection recorded)
const (
	VerificationPending     = "pending"
	VerificationApproved    = "approved"
	VerificationDisapproved = "disapproved"
)

// VendorVerification tracks the admin approval state of a vendor account
type VendorVerification struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	UserID            uuid.UUID  `json:"user_id" db:"user_id"`
	IsVerified        bool       `json:"is_verified" db:"is_verified"`
	VerificationToken uuid.UUID  `json:"-" db:"verification_token"` // Never expose in JSON
	VerifiedAt        NullTime   `json:"verified_at,omitempty" db:"verified_at"`
	RejectionReason   NullString `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// Status maps the stored fields onto the pending/approved/disapproved buckets
func (v *VendorVerification) Status() string {
	if v.IsVerified {
		return VerificationApproved
	}
	if v.VerifiedAt.Valid {
		return VerificationDisapproved
	}
	return VerificationPending
}

// VendorDetails holds the store-level information captured at registration
type VendorDetails struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	StoreName string    `json:"store_name" db:"store_name"`
	Address   string    `json:"address" db:"address"`
	State     string    `json:"state" db:"state"`
	City      string    `json:"city" db:"city"`
	Pincode   string    `json:"pincode" db:"pincode"`
}

// VendorRecord is the admin dashboard view of a vendor: profile joined with
// verification state and store details.
type VendorRecord struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	Email           string     `json:"email" db:"email"`
	PhoneNumber     string     `json:"phone_number" db:"phone_number"`
	StoreName       string     `json:"store_name" db:"store_name"`
	Address         string     `json:"address" db:"address"`
	State           string     `json:"state" db:"state"`
	City            string     `json:"city" db:"city"`
	Pincode         string     `json:"pincode" db:"pincode"`
	IsVerified      bool       `json:"is_verified" db:"is_verified"`
	VerifiedAt      NullTime   `json:"verified_at,omitempty" db:"verified_at"`
	RejectionReason NullString `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// VerificationStatus buckets a vendor record the same way VendorVerification does
func (r *VendorRecord) VerificationStatus() string {
	if r.IsVerified {
		return VerificationApproved
	}
	if r.VerifiedAt.Valid {
		return VerificationDisapproved
	}
	return VerificationPending
}
