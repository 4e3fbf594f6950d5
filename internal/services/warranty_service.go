package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shieldtech/warranty-portal-backend/internal/database"
	"github.com/shieldtech/warranty-portal-backend/internal/models"
	"github.com/sirupsen/logrus"
)

var (
	// ErrWarrantyNotFound indicates the warranty does not exist
	ErrWarrantyNotFound = fmt.Errorf("warranty not found")

	// ErrInvalidTransition indicates a disallowed status change
	ErrInvalidTransition = fmt.Errorf("invalid warranty status transition")

	// ErrManpowerInvalid indicates the referenced installer does not belong
	// to the submitting vendor or has been removed
	ErrManpowerInvalid = fmt.Errorf("installer does not belong to this vendor")

	// ErrVendorNotVerified indicates an unapproved vendor tried to submit
	ErrVendorNotVerified = fmt.Errorf("vendor account is not verified yet")
)

// WarrantyService owns warranty submission and review
type WarrantyService struct {
	warranties *database.WarrantyRepository
	manpower   *database.ManpowerRepository
	vendors    *database.VendorRepository
	activity   *ActivityService
	logger     *logrus.Logger
}

// NewWarrantyService creates a new warranty service
func NewWarrantyService(
	warranties *database.WarrantyRepository,
	manpower *database.ManpowerRepository,
	vendors *database.VendorRepository,
	activity *ActivityService,
	logger *logrus.Logger,
) *WarrantyService {
	return &WarrantyService{
		warranties: warranties,
		manpower:   manpower,
		vendors:    vendors,
		activity:   activity,
		logger:     logger,
	}
}

// Submit stores a new warranty. Vendors must be verified before they can
// submit, and any installer reference must point at one of their own
// active installers. Every submission starts in pending.
func (s *WarrantyService) Submit(w *models.Warranty) error {
	if w.SubmittedByRole == models.RoleVendor {
		if err := s.checkVendorVerified(w.UserID); err != nil {
			return err
		}
	}

	if err := s.checkManpower(w); err != nil {
		return err
	}

	return s.warranties.Create(w)
}

// Resubmit lets the owner edit a warranty. The edited warranty goes back
// to pending review regardless of its previous status, and any rejection
// reason is cleared.
func (s *WarrantyService) Resubmit(userID uuid.UUID, w *models.Warranty) error {
	existing, err := s.warranties.GetByID(w.ID)
	if err != nil {
		return err
	}
	if existing == nil || existing.UserID != userID {
		return ErrWarrantyNotFound
	}

	w.UserID = userID
	if err := s.checkManpower(w); err != nil {
		return err
	}

	updated, err := s.warranties.UpdateByOwner(w)
	if err != nil {
		return err
	}
	if !updated {
		return ErrWarrantyNotFound
	}

	return nil
}

// UpdateStatus applies an admin review decision. Rejections require a
// reason; validated warranties may still be rejected later, but rejected
// ones only leave that state through an owner resubmit.
func (s *WarrantyService) UpdateStatus(actor Actor, id uuid.UUID, status models.WarrantyStatus, reason string) (*models.Warranty, error) {
	if status == models.WarrantyRejected && reason == "" {
		return nil, ErrReasonRequired
	}

	existing, err := s.warranties.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrWarrantyNotFound
	}

	if !existing.Status.CanTransitionTo(status) {
		return nil, ErrInvalidTransition
	}

	applied, err := s.warranties.UpdateStatus(id, status, reason)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost a race with another admin action
		return nil, ErrInvalidTransition
	}

	var logErr error
	switch status {
	case models.WarrantyValidated:
		logErr = s.activity.LogWarrantyValidated(actor, id, existing.CustomerName)
	case models.WarrantyRejected:
		logErr = s.activity.LogWarrantyRejected(actor, id, existing.CustomerName, reason)
	}
	if logErr != nil {
		s.logger.WithError(logErr).WithField("warranty_id", id).Warn("failed to write activity log")
	}

	return s.warranties.GetByID(id)
}

// GetByID returns a warranty or ErrWarrantyNotFound
func (s *WarrantyService) GetByID(id uuid.UUID) (*models.Warranty, error) {
	w, err := s.warranties.GetByID(id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrWarrantyNotFound
	}
	return w, nil
}

// ListByUser returns the caller's own warranties, newest first
func (s *WarrantyService) ListByUser(userID uuid.UUID) ([]models.Warranty, error) {
	return s.warranties.ListByUser(userID)
}

// ListAll returns every warranty for the admin views
func (s *WarrantyService) ListAll() ([]models.Warranty, error) {
	return s.warranties.ListAll()
}

// CountByStatus returns warranty totals per review status
func (s *WarrantyService) CountByStatus() (map[models.WarrantyStatus]int, error) {
	return s.warranties.CountByStatus()
}

func (s *WarrantyService) checkVendorVerified(userID uuid.UUID) error {
	verification, err := s.vendors.GetVerificationByUserID(userID)
	if err != nil {
		return err
	}
	if verification == nil || !verification.IsVerified {
		return ErrVendorNotVerified
	}
	return nil
}

func (s *WarrantyService) checkManpower(w *models.Warranty) error {
	if !w.ManpowerID.Valid {
		return nil
	}

	mp, err := s.manpower.GetByID(w.ManpowerID.UUID)
	if err != nil {
		return err
	}
	if mp == nil || mp.VendorID != w.UserID || !mp.IsActive {
		return ErrManpowerInvalid
	}

	return nil
}
