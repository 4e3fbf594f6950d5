package handlers

import (
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/shieldtech/warranty-portal-backend/internal/config"
	"github.com/shieldtech/warranty-portal-backend/internal/database"
	"github.com/shieldtech/warranty-portal-backend/internal/services"
	"github.com/shieldtech/warranty-portal-backend/pkg/jwt"
	"github.com/shieldtech/warranty-portal-backend/pkg/validator"
)

// stubMailer counts deliveries and can be told to fail them
type stubMailer struct {
	sendOTPErr   error
	sendOTPCalls int
}

func (m *stubMailer) SendOTP(to, name, code string, expiryMinutes int) error {
	m.sendOTPCalls++
	return m.sendOTPErr
}

func (m *stubMailer) SendVendorApprovalRequest(to, vendorName, storeName, vendorEmail, verifyURL string) error {
	return nil
}

func (m *stubMailer) SendVendorApproved(to, name, portalURL string) error { return nil }

func (m *stubMailer) SendVendorRejected(to, name, reason string) error { return nil }

func (m *stubMailer) SendAdminInvite(to, invitedBy, portalURL string) error { return nil }

var authOTPColumns = []string{
	"id", "user_id", "otp_code", "created_at", "expires_at",
	"is_used", "used_at", "ip_address", "user_agent",
}

func setupAuthRouter(t *testing.T, mailer *stubMailer) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockDB, mock := newMockDatabase(t)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	profileRepo := database.NewProfileRepository(mockDB)
	vendorRepo := database.NewVendorRepository(mockDB)
	manpowerRepo := database.NewManpowerRepository(mockDB)
	activityService := services.NewActivityService(database.NewActivityLogRepository(mockDB))
	verificationService := services.NewVerificationService(
		vendorRepo,
		profileRepo,
		activityService,
		mailer,
		logger,
		"admin@shieldtech.in",
		"http://localhost:8080",
		"http://localhost:3000",
	)

	handler := NewAuthHandler(
		jwt.NewService("test-secret", time.Hour),
		services.NewOTPService(mockDB, services.DefaultOTPConfig()),
		services.NewRateLimitService(mockDB, services.DefaultRateLimitConfig()),
		verificationService,
		validator.NewPhoneValidator(),
		profileRepo,
		vendorRepo,
		manpowerRepo,
		mailer,
		&config.Config{Admin: config.AdminConfig{Email: "admin@shieldtech.in"}},
	)

	router := gin.New()
	router.POST("/auth/register", handler.Register)
	router.POST("/auth/verify-otp", handler.VerifyOTP)

	return router, mock
}

// expectOTPIssue queues the rate limit checks, the code insert and the
// rate limit bookkeeping that follow a successful registration or login.
func expectOTPIssue(mock sqlmock.Sqlmock) {
	countColumns := []string{"count", "last_request"}

	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(MAX\(created_at\), NOW\(\)\)`).
		WithArgs(sqlmock.AnyArg(), "user", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(countColumns).AddRow(0, time.Now()))
	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(MAX\(created_at\), NOW\(\)\)`).
		WithArgs(sqlmock.AnyArg(), "ip", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(countColumns).AddRow(0, time.Now()))

	mock.ExpectExec(`UPDATE otp_codes`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO otp_codes`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectExec(`INSERT INTO otp_rate_limits`).
		WithArgs(sqlmock.AnyArg(), "user").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO otp_rate_limits`).
		WithArgs(sqlmock.AnyArg(), "ip").
		WillReturnResult(sqlmock.NewResult(1, 1))
}

func TestRegisterHandler(t *testing.T) {
	registerBody := map[string]interface{}{
		"name":         "Asha Varma",
		"email":        "asha@example.com",
		"phone_number": "9812345678",
		"role":         "customer",
	}

	t.Run("Customer Success", func(t *testing.T) {
		mailer := &stubMailer{}
		router, mock := setupAuthRouter(t, mailer)

		mock.ExpectExec(`INSERT INTO profiles`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		expectOTPIssue(mock)

		w := postJSON(router, "POST", "/auth/register", registerBody)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"requires_otp":true`)
		assert.Equal(t, 1, mailer.sendOTPCalls)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Email Failure Does Not Fail Registration", func(t *testing.T) {
		mailer := &stubMailer{sendOTPErr: fmt.Errorf("smtp connect refused")}
		router, mock := setupAuthRouter(t, mailer)

		mock.ExpectExec(`INSERT INTO profiles`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		expectOTPIssue(mock)

		w := postJSON(router, "POST", "/auth/register", registerBody)

		// The profile and code rows are committed at this point, so the
		// caller still gets the auth-start response and can use resend-otp.
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"requires_otp":true`)
		assert.Contains(t, w.Body.String(), `"user_id"`)
		assert.Equal(t, 1, mailer.sendOTPCalls)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestVerifyOTPHandler(t *testing.T) {
	t.Run("Wrong Code", func(t *testing.T) {
		router, mock := setupAuthRouter(t, &stubMailer{})
		userID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT (.+) FROM otp_codes`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(authOTPColumns).
				AddRow(int64(1), userID.String(), "123456", now, now.Add(5*time.Minute),
					false, nil, nil, nil))

		w := postJSON(router, "POST", "/auth/verify-otp", map[string]interface{}{
			"user_id": userID.String(),
			"otp":     "000000",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_OTP")

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error Is Not Unauthorized", func(t *testing.T) {
		router, mock := setupAuthRouter(t, &stubMailer{})
		userID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM otp_codes`).
			WithArgs(userID).
			WillReturnError(fmt.Errorf("connection reset"))

		w := postJSON(router, "POST", "/auth/verify-otp", map[string]interface{}{
			"user_id": userID.String(),
			"otp":     "123456",
		})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "verification_failed")
		assert.NotContains(t, w.Body.String(), "INVALID_OTP")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
