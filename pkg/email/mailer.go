package email

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Mailer sends the transactional emails the portal produces. Implementations
// must be safe for concurrent use.
type Mailer interface {
	// SendOTP delivers a login code to a user
	SendOTP(to, name, code string, expiryMinutes int) error

	// SendVendorApprovalRequest notifies the admin inbox that a new vendor
	// needs review. The verify URL carries the one-click approval token.
	SendVendorApprovalRequest(to, vendorName, storeName, vendorEmail, verifyURL string) error

	// SendVendorApproved tells a vendor their account has been approved
	SendVendorApproved(to, name, portalURL string) error

	// SendVendorRejected tells a vendor their account was not approved
	SendVendorRejected(to, name, reason string) error

	// SendAdminInvite delivers an admin invitation
	SendAdminInvite(to, invitedBy, portalURL string) error
}

// LogMailer is the development-mode mailer: it writes every message to the
// log instead of sending it, so the flow can be exercised without an SMTP
// server.
type LogMailer struct {
	logger *logrus.Logger
}

// NewLogMailer creates a log-only mailer
func NewLogMailer(logger *logrus.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendOTP(to, name, code string, expiryMinutes int) error {
	m.logger.WithFields(logrus.Fields{
		"to":             to,
		"otp":            code,
		"expiry_minutes": expiryMinutes,
	}).Info("dev mailer: OTP email")
	return nil
}

func (m *LogMailer) SendVendorApprovalRequest(to, vendorName, storeName, vendorEmail, verifyURL string) error {
	m.logger.WithFields(logrus.Fields{
		"to":           to,
		"vendor_name":  vendorName,
		"store_name":   storeName,
		"vendor_email": vendorEmail,
		"verify_url":   verifyURL,
	}).Info("dev mailer: vendor approval request email")
	return nil
}

func (m *LogMailer) SendVendorApproved(to, name, portalURL string) error {
	m.logger.WithFields(logrus.Fields{
		"to":         to,
		"portal_url": portalURL,
	}).Info("dev mailer: vendor approved email")
	return nil
}

func (m *LogMailer) SendVendorRejected(to, name, reason string) error {
	m.logger.WithFields(logrus.Fields{
		"to":     to,
		"reason": reason,
	}).Info("dev mailer: vendor rejected email")
	return nil
}

func (m *LogMailer) SendAdminInvite(to, invitedBy, portalURL string) error {
	m.logger.WithFields(logrus.Fields{
		"to":         to,
		"invited_by": invitedBy,
		"portal_url": portalURL,
	}).Info("dev mailer: admin invite email")
	return nil
}

var _ Mailer = (*LogMailer)(nil)
var _ Mailer = (*SMTPMailer)(nil)

func subjectLine(s string) string {
	return fmt.Sprintf("ShieldTech Warranty Portal: %s", s)
}
