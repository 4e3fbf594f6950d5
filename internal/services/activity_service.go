package services

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shieldtech/warranty-portal-backend/internal/database"
	"github.com/shieldtech/warranty-portal-backend/internal/models"
	"github.com/shieldtech/warranty-portal-backend/internal/utils"
)

// Actor identifies the admin performing a logged action, together with
// the request metadata captured for the entry.
type Actor struct {
	ID        uuid.UUID
	Name      string
	Email     string
	IPAddress string
	UserAgent string
}

// ActivityService records admin mutations in the activity log. Logging is
// best-effort: a failed insert never fails the action it describes, so
// callers log the error and move on.
type ActivityService struct {
	logs *database.ActivityLogRepository
}

// NewActivityService creates a new activity service
func NewActivityService(logs *database.ActivityLogRepository) *ActivityService {
	return &ActivityService{
		logs: logs,
	}
}

// LogVendorApproved records a vendor approval
func (s *ActivityService) LogVendorApproved(actor Actor, vendorID uuid.UUID, vendorName string) error {
	return s.logEvent(actor, models.ActionVendorApproved, "vendor", vendorID.String(), vendorName, nil)
}

// LogVendorRejected records a vendor disapproval with the reason
func (s *ActivityService) LogVendorRejected(actor Actor, vendorID uuid.UUID, vendorName, reason string) error {
	return s.logEvent(actor, models.ActionVendorRejected, "vendor", vendorID.String(), vendorName, map[string]interface{}{
		"reason": reason,
	})
}

// LogVendorDeleted records a vendor account deletion
func (s *ActivityService) LogVendorDeleted(actor Actor, vendorID uuid.UUID, vendorName string) error {
	return s.logEvent(actor, models.ActionVendorDeleted, "vendor", vendorID.String(), vendorName, nil)
}

// LogCustomerDeleted records a customer account deletion
func (s *ActivityService) LogCustomerDeleted(actor Actor, customerID uuid.UUID, customerName string) error {
	return s.logEvent(actor, models.ActionCustomerDeleted, "customer", customerID.String(), customerName, nil)
}

// LogWarrantyValidated records a warranty validation
func (s *ActivityService) LogWarrantyValidated(actor Actor, warrantyID uuid.UUID, customerName string) error {
	return s.logEvent(actor, models.ActionWarrantyValidate, "warranty", warrantyID.String(), customerName, nil)
}

// LogWarrantyRejected records a warranty rejection with the reason
func (s *ActivityService) LogWarrantyRejected(actor Actor, warrantyID uuid.UUID, customerName, reason string) error {
	return s.logEvent(actor, models.ActionWarrantyReject, "warranty", warrantyID.String(), customerName, map[string]interface{}{
		"reason": reason,
	})
}

// LogAdminInvited records an admin invitation
func (s *ActivityService) LogAdminInvited(actor Actor, invitedEmail string) error {
	return s.logEvent(actor, models.ActionAdminInvited, "admin", invitedEmail, invitedEmail, nil)
}

// List returns activity log entries newest first with the total count
func (s *ActivityService) List(limit, offset int) ([]models.ActivityLog, int, error) {
	return s.logs.List(limit, offset)
}

// logEvent builds and appends an activity log entry
func (s *ActivityService) logEvent(actor Actor, actionType, targetType, targetID, targetName string, details map[string]interface{}) error {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["device_info"] = utils.ParseUserAgent(actor.UserAgent)

	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode activity details: %w", err)
	}

	entry := &models.ActivityLog{
		AdminID:    actor.ID,
		AdminName:  actor.Name,
		AdminEmail: actor.Email,
		ActionType: actionType,
		TargetType: targetType,
		TargetID:   targetID,
		TargetName: models.NewNullString(targetName),
		Details:    models.NewNullString(string(payload)),
		IPAddress:  models.NewNullString(actor.IPAddress),
		UserAgent:  models.NewNullString(actor.UserAgent),
	}

	if err := s.logs.Create(entry); err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	return nil
}
