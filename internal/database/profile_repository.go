package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shieldtech/warranty-portal-backend/internal/models"
)

// ErrDuplicateEmail indicates a registration attempt with an email that is
// already taken.
var ErrDuplicateEmail = fmt.Errorf("email already registered")

// ProfileRepository handles profile database operations
type ProfileRepository struct {
	db DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db DB) *ProfileRepository {
	return &ProfileRepository{
		db: db,
	}
}

// Create inserts a new profile. Returns ErrDuplicateEmail when the email is
// already registered.
func (r *ProfileRepository) Create(name, email, phone string, role models.Role) (*models.Profile, error) {
	profile := &models.Profile{
		ID:          uuid.New(),
		Name:        name,
		Email:       email,
		PhoneNumber: phone,
		Role:        role,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	query := `
		INSERT INTO profiles (id, name, email, phone_number, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(
		query,
		profile.ID,
		profile.Name,
		profile.Email,
		profile.PhoneNumber,
		profile.Role,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return profile, nil
}

// GetByEmail retrieves a profile by email
func (r *ProfileRepository) GetByEmail(email string) (*models.Profile, error) {
	var profile models.Profile

	query := `
		SELECT id, name, email, phone_number, role, created_at, updated_at
		FROM profiles
		WHERE email = $1
	`

	err := r.db.Get(&profile, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Profile not found, return nil without error
		}
		return nil, fmt.Errorf("failed to get profile by email: %w", err)
	}

	return &profile, nil
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile

	query := `
		SELECT id, name, email, phone_number, role, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	err := r.db.Get(&profile, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile by ID: %w", err)
	}

	return &profile, nil
}

// ListAdmins returns all profiles with the admin role
func (r *ProfileRepository) ListAdmins() ([]models.Profile, error) {
	admins := []models.Profile{}

	query := `
		SELECT id, name, email, phone_number, role, created_at, updated_at
		FROM profiles
		WHERE role = $1
		ORDER BY created_at DESC
	`

	if err := r.db.Select(&admins, query, models.RoleAdmin); err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}

	return admins, nil
}

// ListCustomers returns all customer profiles with their warranty counts
func (r *ProfileRepository) ListCustomers() ([]models.CustomerRecord, error) {
	customers := []models.CustomerRecord{}

	query := `
		SELECT p.id, p.name, p.email, p.phone_number, p.created_at,
		       COUNT(w.id) AS warranty_count
		FROM profiles p
		LEFT JOIN warranties w ON w.user_id = p.id
		WHERE p.role = $1
		GROUP BY p.id, p.name, p.email, p.phone_number, p.created_at
		ORDER BY p.created_at DESC
	`

	if err := r.db.Select(&customers, query, models.RoleCustomer); err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	return customers, nil
}

// GetCustomerByEmail returns a single customer record with warranty count
func (r *ProfileRepository) GetCustomerByEmail(email string) (*models.CustomerRecord, error) {
	var customer models.CustomerRecord

	query := `
		SELECT p.id, p.name, p.email, p.phone_number, p.created_at,
		       COUNT(w.id) AS warranty_count
		FROM profiles p
		LEFT JOIN warranties w ON w.user_id = p.id
		WHERE p.role = $1 AND p.email = $2
		GROUP BY p.id, p.name, p.email, p.phone_number, p.created_at
	`

	err := r.db.Get(&customer, query, models.RoleCustomer, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer by email: %w", err)
	}

	return &customer, nil
}

// CountByRole returns the number of profiles holding the given role
func (r *ProfileRepository) CountByRole(role models.Role) (int, error) {
	var count int

	query := `SELECT COUNT(*) FROM profiles WHERE role = $1`

	if err := r.db.QueryRow(query, role).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count profiles by role: %w", err)
	}

	return count, nil
}

// DeleteCascade removes a profile together with everything that hangs off
// it: OTP codes, vendor verification and details, manpower, and warranties.
// The whole cascade runs in a single transaction so a partial failure rolls
// everything back.
func (r *ProfileRepository) DeleteCascade(id uuid.UUID) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	statements := []string{
		`DELETE FROM otp_codes WHERE user_id = $1`,
		`DELETE FROM warranties WHERE user_id = $1`,
		`DELETE FROM manpower WHERE vendor_id = $1`,
		`DELETE FROM vendor_details WHERE user_id = $1`,
		`DELETE FROM vendor_verifications WHERE user_id = $1`,
	}

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt, id); err != nil {
			return fmt.Errorf("failed to cascade delete profile: %w", err)
		}
	}

	result, err := tx.Exec(`DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("profile not found")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cascade delete: %w", err)
	}

	return nil
}
