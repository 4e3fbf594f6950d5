package services

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shieldtech/warranty-portal-backend/internal/database"
	"github.com/shieldtech/warranty-portal-backend/internal/models"
)

const (
	// DefaultOTPLength is the default length of the OTP code
	DefaultOTPLength = 6

	// DefaultOTPExpiry is the default OTP validity window
	DefaultOTPExpiry = 10 * time.Minute
)

var (
	// ErrOTPExpired indicates the OTP has expired
	ErrOTPExpired = fmt.Errorf("OTP has expired")

	// ErrOTPInvalid indicates the OTP is incorrect
	ErrOTPInvalid = fmt.Errorf("invalid OTP code")

	// ErrNoOTPFound indicates no active OTP exists for the user
	ErrNoOTPFound = fmt.Errorf("no OTP found for this account")
)

// OTPConfig holds OTP issuance configuration
type OTPConfig struct {
	Length int           // Number of digits in a code
	Expiry time.Duration // How long a code stays valid
}

// DefaultOTPConfig returns the default OTP configuration
func DefaultOTPConfig() OTPConfig {
	return OTPConfig{
		Length: DefaultOTPLength,
		Expiry: DefaultOTPExpiry,
	}
}

// OTPService handles OTP generation and validation. Codes are keyed by
// user ID; issuing a new code supersedes any earlier unused ones.
type OTPService struct {
	db     database.DB
	config OTPConfig
}

// NewOTPService creates a new OTP service
func NewOTPService(db database.DB, config OTPConfig) *OTPService {
	if config.Length <= 0 {
		config.Length = DefaultOTPLength
	}
	if config.Expiry <= 0 {
		config.Expiry = DefaultOTPExpiry
	}

	return &OTPService{
		db:     db,
		config: config,
	}
}

// Expiry returns the configured OTP validity window
func (s *OTPService) Expiry() time.Duration {
	return s.config.Expiry
}

// GenerateOTP issues a new OTP for the given user. Earlier unused codes
// are invalidated first so only the newest code can succeed. The caller's
// IP and User-Agent are stored for security tracking.
func (s *OTPService) GenerateOTP(userID uuid.UUID, ipAddress, userAgent string) (string, error) {
	if err := s.InvalidateOTP(userID); err != nil {
		return "", fmt.Errorf("failed to invalidate existing OTP: %w", err)
	}

	otp, err := generateRandomOTP(s.config.Length)
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}

	expiresAt := time.Now().Add(s.config.Expiry)

	query := `
		INSERT INTO otp_codes (user_id, otp_code, expires_at, is_used, ip_address, user_agent)
		VALUES ($1, $2, $3, false, $4, $5)
	`

	_, err = s.db.Exec(query, userID, otp, expiresAt, ipAddress, userAgent)
	if err != nil {
		return "", fmt.Errorf("failed to store OTP: %w", err)
	}

	return otp, nil
}

// ValidateOTP checks an OTP against the user's newest unused code and
// consumes it on success. A code can only ever succeed once.
func (s *OTPService) ValidateOTP(userID uuid.UUID, otp string) (bool, error) {
	record, err := s.getOTPRecord(userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, ErrNoOTPFound
		}
		return false, fmt.Errorf("failed to get OTP record: %w", err)
	}

	if time.Now().After(record.ExpiresAt) {
		return false, ErrOTPExpired
	}

	if record.OTPCode != otp {
		return false, ErrOTPInvalid
	}

	if err := s.markAsUsed(record.ID); err != nil {
		return false, fmt.Errorf("failed to mark OTP as used: %w", err)
	}

	return true, nil
}

// InvalidateOTP marks any outstanding unused codes for the user as used
func (s *OTPService) InvalidateOTP(userID uuid.UUID) error {
	query := `
		UPDATE otp_codes
		SET is_used = true, used_at = $1
		WHERE user_id = $2 AND is_used = false
	`

	_, err := s.db.Exec(query, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to invalidate OTP: %w", err)
	}

	return nil
}

// GetOTPExpiry returns the expiry time of the user's active OTP
func (s *OTPService) GetOTPExpiry(userID uuid.UUID) (time.Time, error) {
	record, err := s.getOTPRecord(userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, ErrNoOTPFound
		}
		return time.Time{}, fmt.Errorf("failed to get OTP record: %w", err)
	}

	return record.ExpiresAt, nil
}

// CleanupExpiredOTPs removes all expired OTP records from the database
func (s *OTPService) CleanupExpiredOTPs() (int64, error) {
	query := `
		DELETE FROM otp_codes
		WHERE expires_at < $1
	`

	result, err := s.db.Exec(query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired OTPs: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// CleanupOldOTPs removes OTP records older than the specified duration
func (s *OTPService) CleanupOldOTPs(olderThan time.Duration) (int64, error) {
	cutoffTime := time.Now().Add(-olderThan)

	query := `
		DELETE FROM otp_codes
		WHERE created_at < $1
	`

	result, err := s.db.Exec(query, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old OTPs: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// getOTPRecord retrieves the newest unused OTP record for the user
func (s *OTPService) getOTPRecord(userID uuid.UUID) (*models.OTPCode, error) {
	query := `
		SELECT id, user_id, otp_code, created_at, expires_at, is_used, used_at, ip_address, user_agent
		FROM otp_codes
		WHERE user_id = $1 AND is_used = false
		ORDER BY created_at DESC
		LIMIT 1
	`

	var otp models.OTPCode
	err := s.db.QueryRow(query, userID).Scan(
		&otp.ID,
		&otp.UserID,
		&otp.OTPCode,
		&otp.CreatedAt,
		&otp.ExpiresAt,
		&otp.IsUsed,
		&otp.UsedAt,
		&otp.IPAddress,
		&otp.UserAgent,
	)

	if err != nil {
		return nil, err
	}

	return &otp, nil
}

// markAsUsed consumes a specific OTP row
func (s *OTPService) markAsUsed(id int64) error {
	query := `
		UPDATE otp_codes
		SET is_used = true, used_at = $1
		WHERE id = $2 AND is_used = false
	`

	_, err := s.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark OTP as used: %w", err)
	}

	return nil
}

// generateRandomOTP generates a cryptographically secure random numeric OTP
func generateRandomOTP(length int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	// Pad with leading zeros to the configured length
	return fmt.Sprintf("%0*d", length, n.Int64()), nil
}
