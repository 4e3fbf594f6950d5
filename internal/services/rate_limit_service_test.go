package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckOTPRateLimit(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	service := NewRateLimitService(mockDB, DefaultRateLimitConfig())

	countQuery := `SELECT COUNT\(\*\), COALESCE\(MAX\(created_at\), NOW\(\)\)`

	t.Run("Under Both Limits", func(t *testing.T) {
		mock.ExpectQuery(countQuery).
			WithArgs("asha@example.com", "user", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(2, time.Now()))
		mock.ExpectQuery(countQuery).
			WithArgs("203.0.113.7", "ip", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(4, time.Now()))

		err := service.CheckOTPRateLimit("asha@example.com", "203.0.113.7")
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Account Limit Reached", func(t *testing.T) {
		lastRequest := time.Now().Add(-time.Minute)

		mock.ExpectQuery(countQuery).
			WithArgs("asha@example.com", "user", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(5, lastRequest))

		err := service.CheckOTPRateLimit("asha@example.com", "203.0.113.7")
		require.Error(t, err)

		var rateLimitErr *RateLimitError
		require.True(t, errors.As(err, &rateLimitErr))
		assert.Equal(t, "user", rateLimitErr.Type)
		assert.WithinDuration(t, lastRequest.Add(10*time.Minute), rateLimitErr.RetryAfter, time.Second)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("IP Limit Reached", func(t *testing.T) {
		lastRequest := time.Now().Add(-time.Minute)

		mock.ExpectQuery(countQuery).
			WithArgs("asha@example.com", "user", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(1, time.Now()))
		mock.ExpectQuery(countQuery).
			WithArgs("203.0.113.7", "ip", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(20, lastRequest))

		err := service.CheckOTPRateLimit("asha@example.com", "203.0.113.7")
		require.Error(t, err)

		var rateLimitErr *RateLimitError
		require.True(t, errors.As(err, &rateLimitErr))
		assert.Equal(t, "ip", rateLimitErr.Type)
		assert.WithinDuration(t, lastRequest.Add(time.Hour), rateLimitErr.RetryAfter, time.Second)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty Identifiers Skip Checks", func(t *testing.T) {
		err := service.CheckOTPRateLimit("", "")
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(countQuery).
			WithArgs("asha@example.com", "user", sqlmock.AnyArg()).
			WillReturnError(fmt.Errorf("database error"))

		err := service.CheckOTPRateLimit("asha@example.com", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to check account rate limit")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRecordOTPRequest(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	service := NewRateLimitService(mockDB, DefaultRateLimitConfig())

	t.Run("Records Both Identifiers", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO otp_rate_limits`).
			WithArgs("asha@example.com", "user").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO otp_rate_limits`).
			WithArgs("203.0.113.7", "ip").
			WillReturnResult(sqlmock.NewResult(2, 1))

		err := service.RecordOTPRequest("asha@example.com", "203.0.113.7")
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("IP Only", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO otp_rate_limits`).
			WithArgs("203.0.113.7", "ip").
			WillReturnResult(sqlmock.NewResult(3, 1))

		err := service.RecordOTPRequest("", "203.0.113.7")
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIsRateLimited(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	service := NewRateLimitService(mockDB, DefaultRateLimitConfig())

	countQuery := `SELECT COUNT\(\*\), COALESCE\(MAX\(created_at\), NOW\(\)\)`

	t.Run("Not Limited", func(t *testing.T) {
		mock.ExpectQuery(countQuery).
			WithArgs("asha@example.com", "user", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(3, time.Now()))

		limited, _, err := service.IsRateLimited("asha@example.com", "user")
		require.NoError(t, err)
		assert.False(t, limited)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Limited By IP Window", func(t *testing.T) {
		lastRequest := time.Now().Add(-30 * time.Minute)

		mock.ExpectQuery(countQuery).
			WithArgs("203.0.113.7", "ip", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(20, lastRequest))

		limited, retryAfter, err := service.IsRateLimited("203.0.113.7", "ip")
		require.NoError(t, err)
		assert.True(t, limited)
		assert.WithinDuration(t, lastRequest.Add(time.Hour), retryAfter, time.Second)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCleanupExpiredRateLimits(t *testing.T) {
	mockDB, mock := newMockDatabase(t)
	service := NewRateLimitService(mockDB, DefaultRateLimitConfig())

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM otp_rate_limits`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 14))

		deleted, err := service.CleanupExpiredRateLimits()
		require.NoError(t, err)
		assert.Equal(t, int64(14), deleted)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
