package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies what kind of account a profile is. Every profile has
// exactly one role, assigned at registration and never changed.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a role string coming from a request body
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleVendor, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("invalid role: %q", s)
	}
}

// Valid reports whether the role is one of the known values
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleVendor, RoleAdmin:
		return true
	default:
		return false
	}
}

// CustomerRecord is the admin dashboard view of a customer: profile plus
// the number of warranties they have submitted.
type CustomerRecord struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Email         string    `json:"email" db:"email"`
	PhoneNumber   string    `json:"phone_number" db:"phone_number"`
	WarrantyCount int       `json:"warranty_count" db:"warranty_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Profile represents an identity record in the portal
type Profile struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	Role        Role      `json:"role" db:"role"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
