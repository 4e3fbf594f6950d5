package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shieldtech/warranty-portal-backend/internal/models"
)

// ManpowerRepository handles installer/applicator database operations
type ManpowerRepository struct {
	db DB
}

// NewManpowerRepository creates a new manpower repository
func NewManpowerRepository(db DB) *ManpowerRepository {
	return &ManpowerRepository{
		db: db,
	}
}

// Create inserts a new manpower row for a vendor. The manpower_id code is
// derived from the name and phone number.
func (r *ManpowerRepository) Create(vendorID uuid.UUID, name, phone string, applicatorType models.ApplicatorType) (*models.Manpower, error) {
	mp := &models.Manpower{
		ID:             uuid.New(),
		VendorID:       vendorID,
		Name:           name,
		PhoneNumber:    phone,
		ManpowerID:     models.DeriveManpowerID(name, phone),
		ApplicatorType: applicatorType,
		IsActive:       true,
		CreatedAt:      time.Now(),
	}

	query := `
		INSERT INTO manpower (id, vendor_id, name, phone_number, manpower_id, applicator_type, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(
		query,
		mp.ID,
		mp.VendorID,
		mp.Name,
		mp.PhoneNumber,
		mp.ManpowerID,
		mp.ApplicatorType,
		mp.IsActive,
		mp.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create manpower: %w", err)
	}

	return mp, nil
}

// GetByID retrieves a manpower row by ID
func (r *ManpowerRepository) GetByID(id uuid.UUID) (*models.Manpower, error) {
	var mp models.Manpower

	query := `
		SELECT id, vendor_id, name, phone_number, manpower_id, applicator_type,
		       is_active, removed_at, removed_reason, created_at,
		       0 AS points, 0 AS pending_points, 0 AS rejected_points
		FROM manpower
		WHERE id = $1
	`

	err := r.db.Get(&mp, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get manpower: %w", err)
	}

	return &mp, nil
}

// ListByVendor returns a vendor's manpower with point counters derived
// from the statuses of the warranties each installer is attached to.
func (r *ManpowerRepository) ListByVendor(vendorID uuid.UUID) ([]models.Manpower, error) {
	manpower := []models.Manpower{}

	query := `
		SELECT m.id, m.vendor_id, m.name, m.phone_number, m.manpower_id,
		       m.applicator_type, m.is_active, m.removed_at, m.removed_reason,
		       m.created_at,
		       COUNT(w.id) FILTER (WHERE w.status = 'validated') AS points,
		       COUNT(w.id) FILTER (WHERE w.status = 'pending') AS pending_points,
		       COUNT(w.id) FILTER (WHERE w.status = 'rejected') AS rejected_points
		FROM manpower m
		LEFT JOIN warranties w ON w.manpower_id = m.id
		WHERE m.vendor_id = $1
		GROUP BY m.id
		ORDER BY m.created_at DESC
	`

	if err := r.db.Select(&manpower, query, vendorID); err != nil {
		return nil, fmt.Errorf("failed to list manpower: %w", err)
	}

	return manpower, nil
}

// Update edits an installer's name, phone and applicator type, re-deriving
// the manpower_id code.
func (r *ManpowerRepository) Update(id, vendorID uuid.UUID, name, phone string, applicatorType models.ApplicatorType) error {
	query := `
		UPDATE manpower
		SET name = $1,
		    phone_number = $2,
		    manpower_id = $3,
		    applicator_type = $4
		WHERE id = $5 AND vendor_id = $6
	`

	result, err := r.db.Exec(query, name, phone, models.DeriveManpowerID(name, phone), applicatorType, id, vendorID)
	if err != nil {
		return fmt.Errorf("failed to update manpower: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("manpower not found")
	}

	return nil
}

// SoftDelete deactivates an installer instead of removing the row, so
// historic warranties keep their manpower reference.
func (r *ManpowerRepository) SoftDelete(id, vendorID uuid.UUID, reason string) error {
	query := `
		UPDATE manpower
		SET is_active = false,
		    removed_at = $1,
		    removed_reason = $2
		WHERE id = $3 AND vendor_id = $4 AND is_active = true
	`

	result, err := r.db.Exec(query, time.Now(), reason, id, vendorID)
	if err != nil {
		return fmt.Errorf("failed to remove manpower: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("manpower not found")
	}

	return nil
}

// Count returns the total number of active manpower rows
func (r *ManpowerRepository) Count() (int, error) {
	var count int

	query := `SELECT COUNT(*) FROM manpower WHERE is_active = true`

	if err := r.db.QueryRow(query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count manpower: %w", err)
	}

	return count, nil
}
