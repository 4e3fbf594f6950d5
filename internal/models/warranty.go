package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProductType identifies the warranted product family
type ProductType string

const (
	ProductSeatCover       ProductType = "seat-cover"
	ProductEVProducts      ProductType = "ev-products"
	ProductPaintProtection ProductType = "paint-protection"
	ProductSunProtection   ProductType = "sun-protection"
)

// ParseProductType validates a product type from a request body
func ParseProductType(s string) (ProductType, error) {
	switch ProductType(s) {
	case ProductSeatCover, ProductEVProducts, ProductPaintProtection, ProductSunProtection:
		return ProductType(s), nil
	default:
		return "", fmt.Errorf("invalid product type: %q", s)
	}
}

// WarrantyStatus is the review state of a submitted warranty
type WarrantyStatus string

const (
	WarrantyPending   WarrantyStatus = "pending"
	WarrantyValidated WarrantyStatus = "validated"
	WarrantyRejected  WarrantyStatus = "rejected"
)

// ParseWarrantyStatus validates a status value from a request body
func ParseWarrantyStatus(s string) (WarrantyStatus, error) {
	switch WarrantyStatus(s) {
	case WarrantyPending, WarrantyValidated, WarrantyRejected:
		return WarrantyStatus(s), nil
	default:
		return "", fmt.Errorf("invalid warranty status: %q", s)
	}
}

// CanTransitionTo reports whether an admin action may move a warranty from
// the current status to the target one. Legal transitions:
// pending -> validated, pending -> rejected, validated -> rejected.
// Rejected warranties can only return to pending via an owner resubmit.
func (s WarrantyStatus) CanTransitionTo(target WarrantyStatus) bool {
	switch s {
	case WarrantyPending:
		return target == WarrantyValidated || target == WarrantyRejected
	case WarrantyValidated:
		return target == WarrantyRejected
	case WarrantyRejected:
		return false
	default:
		return false
	}
}

// Warranty represents a product-warranty registration
type Warranty struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	UID                NullString      `json:"uid,omitempty" db:"uid"` // seat-cover product identifier
	ProductType        ProductType     `json:"product_type" db:"product_type"`
	CustomerName       string          `json:"customer_name" db:"customer_name"`
	CustomerEmail      string          `json:"customer_email" db:"customer_email"`
	CustomerPhone      string          `json:"customer_phone" db:"customer_phone"`
	CustomerAddress    NullString      `json:"customer_address,omitempty" db:"customer_address"`
	CarMake            string          `json:"car_make" db:"car_make"`
	CarModel           string          `json:"car_model" db:"car_model"`
	CarYear            NullString      `json:"car_year,omitempty" db:"car_year"`
	RegistrationNumber string          `json:"registration_number" db:"registration_number"`
	PurchaseDate       time.Time       `json:"purchase_date" db:"purchase_date"`
	WarrantyType       string          `json:"warranty_type" db:"warranty_type"`
	InstallerName      NullString      `json:"installer_name,omitempty" db:"installer_name"`
	InstallerContact   NullString      `json:"installer_contact,omitempty" db:"installer_contact"`
	ManpowerID         uuid.NullUUID   `json:"manpower_id,omitempty" db:"manpower_id"`
	ProductDetails     json.RawMessage `json:"product_details,omitempty" db:"product_details"` // photos, lot/roll numbers, install area
	Status             WarrantyStatus  `json:"status" db:"status"`
	RejectionReason    NullString      `json:"rejection_reason,omitempty" db:"rejection_reason"`
	SubmittedByName    string          `json:"submitted_by_name" db:"submitted_by_name"`
	SubmittedByEmail   string          `json:"submitted_by_email" db:"submitted_by_email"`
	SubmittedByRole    Role            `json:"submitted_by_role" db:"submitted_by_role"`
	UserID             uuid.UUID       `json:"user_id" db:"user_id"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// DefaultWarrantyType is applied when a submission omits the field
const DefaultWarrantyType = "1 Year"
