package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shieldtech/warranty-portal-backend/internal/models"
)

// VendorRepository handles vendor verification and details operations
type VendorRepository struct {
	db DB
}

// NewVendorRepository creates a new vendor repository
func NewVendorRepository(db DB) *VendorRepository {
	return &VendorRepository{
		db: db,
	}
}

// CreateVerification inserts the initial pending verification row for a
// vendor, generating a fresh verification token.
func (r *VendorRepository) CreateVerification(userID uuid.UUID) (*models.VendorVerification, error) {
	verification := &models.VendorVerification{
		ID:                uuid.New(),
		UserID:            userID,
		IsVerified:        false,
		VerificationToken: uuid.New(),
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	query := `
		INSERT INTO vendor_verifications (id, user_id, is_verified, verification_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(
		query,
		verification.ID,
		verification.UserID,
		verification.IsVerified,
		verification.VerificationToken,
		verification.CreatedAt,
		verification.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vendor verification: %w", err)
	}

	return verification, nil
}

// CreateDetails inserts the store details captured at vendor registration
func (r *VendorRepository) CreateDetails(userID uuid.UUID, storeName, address, state, city, pincode string) (*models.VendorDetails, error) {
	details := &models.VendorDetails{
		ID:        uuid.New(),
		UserID:    userID,
		StoreName: storeName,
		Address:   address,
		State:     state,
		City:      city,
		Pincode:   pincode,
	}

	query := `
		INSERT INTO vendor_details (id, user_id, store_name, address, state, city, pincode)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(
		query,
		details.ID,
		details.UserID,
		details.StoreName,
		details.Address,
		details.State,
		details.City,
		details.Pincode,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vendor details: %w", err)
	}

	return details, nil
}

// GetVerificationByUserID retrieves a vendor's verification row
func (r *VendorRepository) GetVerificationByUserID(userID uuid.UUID) (*models.VendorVerification, error) {
	var verification models.VendorVerification

	query := `
		SELECT id, user_id, is_verified, verification_token, verified_at, rejection_reason, created_at, updated_at
		FROM vendor_verifications
		WHERE user_id = $1
	`

	err := r.db.Get(&verification, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vendor verification: %w", err)
	}

	return &verification, nil
}

// GetVerificationByToken retrieves a verification row by its emailed token
func (r *VendorRepository) GetVerificationByToken(token uuid.UUID) (*models.VendorVerification, error) {
	var verification models.VendorVerification

	query := `
		SELECT id, user_id, is_verified, verification_token, verified_at, rejection_reason, created_at, updated_at
		FROM vendor_verifications
		WHERE verification_token = $1
	`

	err := r.db.Get(&verification, query, token)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vendor verification by token: %w", err)
	}

	return &verification, nil
}

// Approve marks a vendor as verified, clearing any previous rejection.
// Re-approving a previously rejected vendor is allowed.
func (r *VendorRepository) Approve(userID uuid.UUID) error {
	query := `
		UPDATE vendor_verifications
		SET is_verified = true,
		    verified_at = $1,
		    rejection_reason = NULL,
		    updated_at = $1
		WHERE user_id = $2
	`

	result, err := r.db.Exec(query, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to approve vendor: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("vendor verification not found")
	}

	return nil
}

// Reject records a vendor disapproval with the given reason
func (r *VendorRepository) Reject(userID uuid.UUID, reason string) error {
	query := `
		UPDATE vendor_verifications
		SET is_verified = false,
		    verified_at = $1,
		    rejection_reason = $2,
		    updated_at = $1
		WHERE user_id = $3
	`

	result, err := r.db.Exec(query, time.Now(), reason, userID)
	if err != nil {
		return fmt.Errorf("failed to reject vendor: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("vendor verification not found")
	}

	return nil
}

// GetDetailsByUserID retrieves a vendor's store details
func (r *VendorRepository) GetDetailsByUserID(userID uuid.UUID) (*models.VendorDetails, error) {
	var details models.VendorDetails

	query := `
		SELECT id, user_id, store_name, address, state, city, pincode
		FROM vendor_details
		WHERE user_id = $1
	`

	err := r.db.Get(&details, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vendor details: %w", err)
	}

	return &details, nil
}

// ListVendors returns every vendor joined with verification state and
// store details, for the admin dashboard.
func (r *VendorRepository) ListVendors() ([]models.VendorRecord, error) {
	vendors := []models.VendorRecord{}

	query := `
		SELECT p.id, p.name, p.email, p.phone_number,
		       d.store_name, d.address, d.state, d.city, d.pincode,
		       v.is_verified, v.verified_at, v.rejection_reason,
		       p.created_at
		FROM profiles p
		JOIN vendor_verifications v ON v.user_id = p.id
		JOIN vendor_details d ON d.user_id = p.id
		WHERE p.role = 'vendor'
		ORDER BY p.created_at DESC
	`

	if err := r.db.Select(&vendors, query); err != nil {
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}

	return vendors, nil
}

// GetVendorByID returns a single vendor record for the admin detail view
func (r *VendorRepository) GetVendorByID(userID uuid.UUID) (*models.VendorRecord, error) {
	var vendor models.VendorRecord

	query := `
		SELECT p.id, p.name, p.email, p.phone_number,
		       d.store_name, d.address, d.state, d.city, d.pincode,
		       v.is_verified, v.verified_at, v.rejection_reason,
		       p.created_at
		FROM profiles p
		JOIN vendor_verifications v ON v.user_id = p.id
		JOIN vendor_details d ON d.user_id = p.id
		WHERE p.role = 'vendor' AND p.id = $1
	`

	err := r.db.Get(&vendor, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vendor by ID: %w", err)
	}

	return &vendor, nil
}

// CountByVerificationStatus returns how many vendors fall into each of the
// approved/disapproved/pending buckets. The buckets partition the vendor
// set: every vendor lands in exactly one.
func (r *VendorRepository) CountByVerificationStatus() (map[string]int, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE is_verified) AS approved,
			COUNT(*) FILTER (WHERE NOT is_verified AND verified_at IS NOT NULL) AS disapproved,
			COUNT(*) FILTER (WHERE NOT is_verified AND verified_at IS NULL) AS pending
		FROM vendor_verifications
	`

	var approved, disapproved, pending int
	if err := r.db.QueryRow(query).Scan(&approved, &disapproved, &pending); err != nil {
		return nil, fmt.Errorf("failed to count vendors by status: %w", err)
	}

	return map[string]int{
		models.VerificationApproved:    approved,
		models.VerificationDisapproved: disapproved,
		models.VerificationPending:     pending,
	}, nil
}
