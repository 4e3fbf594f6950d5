package models

import (
	"time"

	"github.com/google/uuid"
)

// Action types recorded in the admin activity log
const (
	ActionVendorApproved   = "vendor_approved"
	ActionVendorRejected   = "vendor_rejected"
	ActionVendorDeleted    = "vendor_deleted"
	ActionCustomerDeleted  = "customer_deleted"
	ActionWarrantyValidate = "warranty_validated"
	ActionWarrantyReject   = "warranty_rejected"
	ActionAdminInvited     = "admin_invited"
)

// ActivityLog is an append-only audit record of an admin mutation
type ActivityLog struct {
	ID         int64      `json:"id" db:"id"`
	AdminID    uuid.UUID  `json:"admin_id" db:"admin_id"`
	AdminName  string     `json:"admin_name" db:"admin_name"`
	AdminEmail string     `json:"admin_email" db:"admin_email"`
	ActionType string     `json:"action_type" db:"action_type"`
	TargetType string     `json:"target_type" db:"target_type"`
	TargetID   string     `json:"target_id" db:"target_id"`
	TargetName NullString `json:"target_name,omitempty" db:"target_name"`
	Details    NullString `json:"details,omitempty" db:"details"` // JSONB payload
	IPAddress  NullString `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  NullString `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
