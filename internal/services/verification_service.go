package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shieldtech/warranty-portal-backend/internal/database"
	"github.com/shieldtech/warranty-portal-backend/internal/models"
	"github.com/shieldtech/warranty-portal-backend/pkg/email"
	"github.com/sirupsen/logrus"
)

var (
	// ErrVendorNotFound indicates no verification record exists for the vendor
	ErrVendorNotFound = fmt.Errorf("vendor not found")

	// ErrAlreadyVerified indicates the vendor is already approved
	ErrAlreadyVerified = fmt.Errorf("vendor is already verified")

	// ErrReasonRequired indicates a disapproval was attempted without a reason
	ErrReasonRequired = fmt.Errorf("a rejection reason is required")
)

// VerificationService owns the vendor approval pipeline. Both entry points
// converge here: the admin dashboard update and the one-click token link in
// the approval-request email. Outcome emails and activity logging are
// best-effort and never fail the state change itself.
type VerificationService struct {
	vendors  *database.VendorRepository
	profiles *database.ProfileRepository
	activity *ActivityService
	mailer   email.Mailer
	logger   *logrus.Logger

	adminEmail string
	baseURL    string
	portalURL  string
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	vendors *database.VendorRepository,
	profiles *database.ProfileRepository,
	activity *ActivityService,
	mailer email.Mailer,
	logger *logrus.Logger,
	adminEmail, baseURL, portalURL string,
) *VerificationService {
	return &VerificationService{
		vendors:    vendors,
		profiles:   profiles,
		activity:   activity,
		mailer:     mailer,
		logger:     logger,
		adminEmail: adminEmail,
		baseURL:    baseURL,
		portalURL:  portalURL,
	}
}

// Enroll creates the verification and store-detail records for a freshly
// registered vendor and emails the admin inbox an approval request with the
// one-click verify link.
func (s *VerificationService) Enroll(profile *models.Profile, storeName, address, state, city, pincode string) error {
	verification, err := s.vendors.CreateVerification(profile.ID)
	if err != nil {
		return err
	}

	if _, err := s.vendors.CreateDetails(profile.ID, storeName, address, state, city, pincode); err != nil {
		return err
	}

	verifyURL := fmt.Sprintf("%s/vendor/verify?token=%s", s.baseURL, verification.VerificationToken)
	if err := s.mailer.SendVendorApprovalRequest(s.adminEmail, profile.Name, storeName, profile.Email, verifyURL); err != nil {
		s.logger.WithError(err).WithField("vendor_id", profile.ID).Warn("failed to send vendor approval request email")
	}

	return nil
}

// Approve marks a vendor as verified. Re-approving a previously rejected
// vendor is allowed; approving an already approved one is not.
func (s *VerificationService) Approve(actor Actor, vendorUserID uuid.UUID) error {
	verification, err := s.vendors.GetVerificationByUserID(vendorUserID)
	if err != nil {
		return err
	}
	if verification == nil {
		return ErrVendorNotFound
	}
	if verification.IsVerified {
		return ErrAlreadyVerified
	}

	if err := s.vendors.Approve(vendorUserID); err != nil {
		return err
	}

	s.notifyOutcome(actor, vendorUserID, true, "")
	return nil
}

// Reject marks a vendor as disapproved. The reason is mandatory and is
// included in the email sent to the vendor.
func (s *VerificationService) Reject(actor Actor, vendorUserID uuid.UUID, reason string) error {
	if reason == "" {
		return ErrReasonRequired
	}

	verification, err := s.vendors.GetVerificationByUserID(vendorUserID)
	if err != nil {
		return err
	}
	if verification == nil {
		return ErrVendorNotFound
	}

	if err := s.vendors.Reject(vendorUserID, reason); err != nil {
		return err
	}

	s.notifyOutcome(actor, vendorUserID, false, reason)
	return nil
}

// ApproveByToken resolves the emailed one-click link. It returns the vendor
// profile so the confirmation page can greet them by name.
func (s *VerificationService) ApproveByToken(token uuid.UUID) (*models.Profile, error) {
	verification, err := s.vendors.GetVerificationByToken(token)
	if err != nil {
		return nil, err
	}
	if verification == nil {
		return nil, ErrVendorNotFound
	}

	profile, err := s.profiles.GetByID(verification.UserID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrVendorNotFound
	}

	if verification.IsVerified {
		return profile, ErrAlreadyVerified
	}

	if err := s.vendors.Approve(verification.UserID); err != nil {
		return nil, err
	}

	// The link carries no session, so the actor is the configured admin
	// inbox when a matching admin profile exists.
	actor := s.tokenActor()
	s.notifyOutcome(actor, verification.UserID, true, "")

	return profile, nil
}

// notifyOutcome emails the vendor and writes the activity log entry for an
// approval or rejection.
func (s *VerificationService) notifyOutcome(actor Actor, vendorUserID uuid.UUID, approved bool, reason string) {
	profile, err := s.profiles.GetByID(vendorUserID)
	if err != nil || profile == nil {
		s.logger.WithError(err).WithField("vendor_id", vendorUserID).Warn("failed to load vendor profile for notification")
		return
	}

	if approved {
		if err := s.mailer.SendVendorApproved(profile.Email, profile.Name, s.portalURL); err != nil {
			s.logger.WithError(err).WithField("vendor_id", vendorUserID).Warn("failed to send vendor approved email")
		}
	} else {
		if err := s.mailer.SendVendorRejected(profile.Email, profile.Name, reason); err != nil {
			s.logger.WithError(err).WithField("vendor_id", vendorUserID).Warn("failed to send vendor rejected email")
		}
	}

	if actor.ID == uuid.Nil {
		return
	}

	var logErr error
	if approved {
		logErr = s.activity.LogVendorApproved(actor, vendorUserID, profile.Name)
	} else {
		logErr = s.activity.LogVendorRejected(actor, vendorUserID, profile.Name, reason)
	}
	if logErr != nil {
		s.logger.WithError(logErr).WithField("vendor_id", vendorUserID).Warn("failed to write activity log")
	}
}

// tokenActor resolves the activity-log identity for token approvals
func (s *VerificationService) tokenActor() Actor {
	profile, err := s.profiles.GetByEmail(s.adminEmail)
	if err != nil || profile == nil {
		return Actor{}
	}
	return Actor{
		ID:    profile.ID,
		Name:  profile.Name,
		Email: profile.Email,
	}
}
