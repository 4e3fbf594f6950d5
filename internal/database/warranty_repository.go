package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shieldtech/warranty-portal-backend/internal/models"
)

// WarrantyRepository handles warranty database operations
type WarrantyRepository struct {
	db DB
}

// NewWarrantyRepository creates a new warranty repository
func NewWarrantyRepository(db DB) *WarrantyRepository {
	return &WarrantyRepository{
		db: db,
	}
}

const warrantyColumns = `
	id, uid, product_type, customer_name, customer_email, customer_phone,
	customer_address, car_make, car_model, car_year, registration_number,
	purchase_date, warranty_type, installer_name, installer_contact,
	manpower_id, product_details, status, rejection_reason,
	submitted_by_name, submitted_by_email, submitted_by_role, user_id,
	created_at, updated_at`

// Create inserts a new warranty submission. Status always starts pending.
func (r *WarrantyRepository) Create(w *models.Warranty) error {
	w.ID = uuid.New()
	w.Status = models.WarrantyPending
	w.CreatedAt = time.Now()
	w.UpdatedAt = w.CreatedAt
	if w.WarrantyType == "" {
		w.WarrantyType = models.DefaultWarrantyType
	}

	query := `
		INSERT INTO warranties (
			id, uid, product_type, customer_name, customer_email, customer_phone,
			customer_address, car_make, car_model, car_year, registration_number,
			purchase_date, warranty_type, installer_name, installer_contact,
			manpower_id, product_details, status,
			submitted_by_name, submitted_by_email, submitted_by_role, user_id,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24
		)
	`

	_, err := r.db.Exec(
		query,
		w.ID,
		w.UID,
		w.ProductType,
		w.CustomerName,
		w.CustomerEmail,
		w.CustomerPhone,
		w.CustomerAddress,
		w.CarMake,
		w.CarModel,
		w.CarYear,
		w.RegistrationNumber,
		w.PurchaseDate,
		w.WarrantyType,
		w.InstallerName,
		w.InstallerContact,
		w.ManpowerID,
		[]byte(w.ProductDetails),
		w.Status,
		w.SubmittedByName,
		w.SubmittedByEmail,
		w.SubmittedByRole,
		w.UserID,
		w.CreatedAt,
		w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create warranty: %w", err)
	}

	return nil
}

// GetByID retrieves a warranty by ID
func (r *WarrantyRepository) GetByID(id uuid.UUID) (*models.Warranty, error) {
	var w models.Warranty

	query := `SELECT ` + warrantyColumns + ` FROM warranties WHERE id = $1`

	err := r.db.Get(&w, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get warranty: %w", err)
	}

	return &w, nil
}

// ListByUser returns a submitter's own warranties, newest first
func (r *WarrantyRepository) ListByUser(userID uuid.UUID) ([]models.Warranty, error) {
	warranties := []models.Warranty{}

	query := `SELECT ` + warrantyColumns + ` FROM warranties WHERE user_id = $1 ORDER BY created_at DESC`

	if err := r.db.Select(&warranties, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list warranties by user: %w", err)
	}

	return warranties, nil
}

// ListAll returns every warranty, newest first. Admin list filtering,
// sorting and pagination are applied on top of this set.
func (r *WarrantyRepository) ListAll() ([]models.Warranty, error) {
	warranties := []models.Warranty{}

	query := `SELECT ` + warrantyColumns + ` FROM warranties ORDER BY created_at DESC`

	if err := r.db.Select(&warranties, query); err != nil {
		return nil, fmt.Errorf("failed to list warranties: %w", err)
	}

	return warranties, nil
}

// UpdateStatus applies an admin status transition. The WHERE clause guards
// the legal source states so concurrent admin actions cannot produce an
// illegal transition; zero rows affected means the transition was not
// allowed (or the warranty does not exist).
func (r *WarrantyRepository) UpdateStatus(id uuid.UUID, status models.WarrantyStatus, reason string) (bool, error) {
	var query string
	var args []interface{}

	switch status {
	case models.WarrantyValidated:
		query = `
			UPDATE warranties
			SET status = $1, rejection_reason = NULL, updated_at = $2
			WHERE id = $3 AND status = 'pending'
		`
		args = []interface{}{status, time.Now(), id}
	case models.WarrantyRejected:
		query = `
			UPDATE warranties
			SET status = $1, rejection_reason = $2, updated_at = $3
			WHERE id = $4 AND status IN ('pending', 'validated')
		`
		args = []interface{}{status, reason, time.Now(), id}
	default:
		return false, fmt.Errorf("unsupported status transition target: %s", status)
	}

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update warranty status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// UpdateByOwner applies an owner resubmit: the existing row is updated in
// place and the status resets to pending with any rejection reason cleared.
func (r *WarrantyRepository) UpdateByOwner(w *models.Warranty) (bool, error) {
	query := `
		UPDATE warranties
		SET uid = $1,
		    product_type = $2,
		    customer_name = $3,
		    customer_email = $4,
		    customer_phone = $5,
		    customer_address = $6,
		    car_make = $7,
		    car_model = $8,
		    car_year = $9,
		    registration_number = $10,
		    purchase_date = $11,
		    warranty_type = $12,
		    installer_name = $13,
		    installer_contact = $14,
		    manpower_id = $15,
		    product_details = $16,
		    status = 'pending',
		    rejection_reason = NULL,
		    updated_at = $17
		WHERE id = $18 AND user_id = $19
	`

	result, err := r.db.Exec(
		query,
		w.UID,
		w.ProductType,
		w.CustomerName,
		w.CustomerEmail,
		w.CustomerPhone,
		w.CustomerAddress,
		w.CarMake,
		w.CarModel,
		w.CarYear,
		w.RegistrationNumber,
		w.PurchaseDate,
		w.WarrantyType,
		w.InstallerName,
		w.InstallerContact,
		w.ManpowerID,
		[]byte(w.ProductDetails),
		time.Now(),
		w.ID,
		w.UserID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update warranty: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// CountByStatus returns warranty totals per review status
func (r *WarrantyRepository) CountByStatus() (map[models.WarrantyStatus]int, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'validated') AS validated,
			COUNT(*) FILTER (WHERE status = 'rejected') AS rejected
		FROM warranties
	`

	var pending, validated, rejected int
	if err := r.db.QueryRow(query).Scan(&pending, &validated, &rejected); err != nil {
		return nil, fmt.Errorf("failed to count warranties by status: %w", err)
	}

	return map[models.WarrantyStatus]int{
		models.WarrantyPending:   pending,
		models.WarrantyValidated: validated,
		models.WarrantyRejected:  rejected,
	}, nil
}
