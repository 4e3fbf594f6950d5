package services

import (
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shieldtech/warranty-portal-backend/internal/database"
	"github.com/shieldtech/warranty-portal-backend/internal/models"
)

// recordingMailer captures outgoing mail so tests can assert on it
type recordingMailer struct {
	approvalRequests []string // verify URLs
	approved         []string // recipient addresses
	rejected         []string // recipient addresses
	lastReason       string
}

func (m *recordingMailer) SendOTP(to, name, code string, expiryMinutes int) error {
	return nil
}

func (m *recordingMailer) SendVendorApprovalRequest(to, vendorName, storeName, vendorEmail, verifyURL string) error {
	m.approvalRequests = append(m.approvalRequests, verifyURL)
	return nil
}

func (m *recordingMailer) SendVendorApproved(to, name, portalURL string) error {
	m.approved = append(m.approved, to)
	return nil
}

func (m *recordingMailer) SendVendorRejected(to, name, reason string) error {
	m.rejected = append(m.rejected, to)
	m.lastReason = reason
	return nil
}

func (m *recordingMailer) SendAdminInvite(to, invitedBy, portalURL string) error {
	return nil
}

func newVerificationService(t *testing.T) (*VerificationService, sqlmock.Sqlmock, *recordingMailer) {
	t.Helper()

	mockDB, mock := newMockDatabase(t)
	mailer := &recordingMailer{}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	service := NewVerificationService(
		database.NewVendorRepository(mockDB),
		database.NewProfileRepository(mockDB),
		NewActivityService(database.NewActivityLogRepository(mockDB)),
		mailer,
		logger,
		"admin@example.com",
		"https://api.example.com",
		"https://portal.example.com",
	)

	return service, mock, mailer
}

var profileColumns = []string{"id", "name", "email", "phone_number", "role", "created_at", "updated_at"}

func TestEnrollVendor(t *testing.T) {
	service, mock, mailer := newVerificationService(t)

	t.Run("Success", func(t *testing.T) {
		profile := &models.Profile{
			ID:    uuid.New(),
			Name:  "Bharat Traders",
			Email: "bharat@example.com",
		}

		mock.ExpectExec(`INSERT INTO vendor_verifications`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO vendor_details`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := service.Enroll(profile, "Bharat Auto Decor", "14 MG Road", "Maharashtra", "Pune", "411001")
		require.NoError(t, err)

		require.Len(t, mailer.approvalRequests, 1)
		assert.True(t, strings.HasPrefix(mailer.approvalRequests[0], "https://api.example.com/vendor/verify?token="))

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApproveVendorAccount(t *testing.T) {
	actor := Actor{
		ID:        uuid.New(),
		Name:      "Admin User",
		Email:     "admin@example.com",
		IPAddress: "203.0.113.7",
		UserAgent: "Mozilla/5.0",
	}

	t.Run("Success", func(t *testing.T) {
		service, mock, mailer := newVerificationService(t)
		vendorID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM vendor_verifications`).
			WithArgs(vendorID).
			WillReturnRows(sqlmock.NewRows(verificationColumns).
				AddRow(uuid.New().String(), vendorID.String(), false, uuid.New().String(),
					nil, nil, now, now))
		mock.ExpectExec(`UPDATE vendor_verifications`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT (.+) FROM profiles WHERE id`).
			WithArgs(vendorID).
			WillReturnRows(sqlmock.NewRows(profileColumns).
				AddRow(vendorID.String(), "Bharat Traders", "bharat@example.com", "9823456789", "vendor", now, now))
		mock.ExpectQuery(`INSERT INTO activity_logs`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

		err := service.Approve(actor, vendorID)
		require.NoError(t, err)
		assert.Equal(t, []string{"bharat@example.com"}, mailer.approved)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Verified", func(t *testing.T) {
		service, mock, mailer := newVerificationService(t)
		vendorID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM vendor_verifications`).
			WithArgs(vendorID).
			WillReturnRows(sqlmock.NewRows(verificationColumns).
				AddRow(uuid.New().String(), vendorID.String(), true, uuid.New().String(),
					now, nil, now, now))

		err := service.Approve(actor, vendorID)
		assert.ErrorIs(t, err, ErrAlreadyVerified)
		assert.Empty(t, mailer.approved)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Vendor Not Found", func(t *testing.T) {
		service, mock, _ := newVerificationService(t)
		vendorID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM vendor_verifications`).
			WithArgs(vendorID).
			WillReturnError(sql.ErrNoRows)

		err := service.Approve(actor, vendorID)
		assert.ErrorIs(t, err, ErrVendorNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRejectVendorAccount(t *testing.T) {
	actor := Actor{
		ID:    uuid.New(),
		Name:  "Admin User",
		Email: "admin@example.com",
	}

	t.Run("Reason Required", func(t *testing.T) {
		service, mock, _ := newVerificationService(t)

		err := service.Reject(actor, uuid.New(), "")
		assert.ErrorIs(t, err, ErrReasonRequired)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success", func(t *testing.T) {
		service, mock, mailer := newVerificationService(t)
		vendorID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM vendor_verifications`).
			WithArgs(vendorID).
			WillReturnRows(sqlmock.NewRows(verificationColumns).
				AddRow(uuid.New().String(), vendorID.String(), false, uuid.New().String(),
					nil, nil, now, now))
		mock.ExpectExec(`UPDATE vendor_verifications`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT (.+) FROM profiles WHERE id`).
			WithArgs(vendorID).
			WillReturnRows(sqlmock.NewRows(profileColumns).
				AddRow(vendorID.String(), "Bharat Traders", "bharat@example.com", "9823456789", "vendor", now, now))
		mock.ExpectQuery(`INSERT INTO activity_logs`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))

		err := service.Reject(actor, vendorID, "incomplete store details")
		require.NoError(t, err)
		assert.Equal(t, []string{"bharat@example.com"}, mailer.rejected)
		assert.Equal(t, "incomplete store details", mailer.lastReason)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApproveVendorByToken(t *testing.T) {
	t.Run("Unknown Token", func(t *testing.T) {
		service, mock, _ := newVerificationService(t)
		token := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM vendor_verifications WHERE verification_token`).
			WithArgs(token).
			WillReturnError(sql.ErrNoRows)

		profile, err := service.ApproveByToken(token)
		assert.ErrorIs(t, err, ErrVendorNotFound)
		assert.Nil(t, profile)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Verified Returns Profile", func(t *testing.T) {
		service, mock, mailer := newVerificationService(t)
		token := uuid.New()
		vendorID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM vendor_verifications WHERE verification_token`).
			WithArgs(token).
			WillReturnRows(sqlmock.NewRows(verificationColumns).
				AddRow(uuid.New().String(), vendorID.String(), true, token.String(),
					now, nil, now, now))
		mock.ExpectQuery(`SELECT (.+) FROM profiles WHERE id`).
			WithArgs(vendorID).
			WillReturnRows(sqlmock.NewRows(profileColumns).
				AddRow(vendorID.String(), "Bharat Traders", "bharat@example.com", "9823456789", "vendor", now, now))

		profile, err := service.ApproveByToken(token)
		assert.ErrorIs(t, err, ErrAlreadyVerified)
		require.NotNil(t, profile)
		assert.Equal(t, "Bharat Traders", profile.Name)
		assert.Empty(t, mailer.approved)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success", func(t *testing.T) {
		service, mock, mailer := newVerificationService(t)
		token := uuid.New()
		vendorID := uuid.New()
		adminID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM vendor_verifications WHERE verification_token`).
			WithArgs(token).
			WillReturnRows(sqlmock.NewRows(verificationColumns).
				AddRow(uuid.New().String(), vendorID.String(), false, token.String(),
					nil, nil, now, now))
		mock.ExpectQuery(`SELECT (.+) FROM profiles WHERE id`).
			WithArgs(vendorID).
			WillReturnRows(sqlmock.NewRows(profileColumns).
				AddRow(vendorID.String(), "Bharat Traders", "bharat@example.com", "9823456789", "vendor", now, now))
		mock.ExpectExec(`UPDATE vendor_verifications`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT (.+) FROM profiles WHERE email`).
			WithArgs("admin@example.com").
			WillReturnRows(sqlmock.NewRows(profileColumns).
				AddRow(adminID.String(), "Admin User", "admin@example.com", "9811111111", "admin", now, now))
		mock.ExpectQuery(`SELECT (.+) FROM profiles WHERE id`).
			WithArgs(vendorID).
			WillReturnRows(sqlmock.NewRows(profileColumns).
				AddRow(vendorID.String(), "Bharat Traders", "bharat@example.com", "9823456789", "vendor", now, now))
		mock.ExpectQuery(`INSERT INTO activity_logs`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

		profile, err := service.ApproveByToken(token)
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Equal(t, []string{"bharat@example.com"}, mailer.approved)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
