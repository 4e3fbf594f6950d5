package database

import (
	"fmt"
	"time"

	"github.com/shieldtech/warranty-portal-backend/internal/models"
)

// ActivityLogRepository handles the append-only admin activity log
type ActivityLogRepository struct {
	db DB
}

// NewActivityLogRepository creates a new activity log repository
func NewActivityLogRepository(db DB) *ActivityLogRepository {
	return &ActivityLogRepository{
		db: db,
	}
}

// Create appends an activity log entry. Entries are never updated or
// deleted afterwards.
func (r *ActivityLogRepository) Create(entry *models.ActivityLog) error {
	entry.CreatedAt = time.Now()

	query := `
		INSERT INTO activity_logs (
			admin_id, admin_name, admin_email, action_type,
			target_type, target_id, target_name, details,
			ip_address, user_agent, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := r.db.QueryRow(
		query,
		entry.AdminID,
		entry.AdminName,
		entry.AdminEmail,
		entry.ActionType,
		entry.TargetType,
		entry.TargetID,
		entry.TargetName,
		entry.Details,
		entry.IPAddress,
		entry.UserAgent,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}

	return nil
}

// List returns activity log entries newest first, with the total count for
// pagination.
func (r *ActivityLogRepository) List(limit, offset int) ([]models.ActivityLog, int, error) {
	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM activity_logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count activity logs: %w", err)
	}

	entries := []models.ActivityLog{}

	query := `
		SELECT id, admin_id, admin_name, admin_email, action_type,
		       target_type, target_id, target_name, details,
		       ip_address, user_agent, created_at
		FROM activity_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	if err := r.db.Select(&entries, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list activity logs: %w", err)
	}

	return entries, total, nil
}
