package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shieldtech/warranty-portal-backend/internal/database"
)

// RateLimitService handles OTP request rate limiting
type RateLimitService struct {
	db     database.DB
	config RateLimitConfig
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	MaxUserRequests int           // Max OTP requests per account
	UserWindow      time.Duration // Time window for account rate limit
	MaxIPRequests   int           // Max OTP requests per IP
	IPWindow        time.Duration // Time window for IP rate limit
}

// DefaultRateLimitConfig returns the default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxUserRequests: 5,                // 5 requests
		UserWindow:      10 * time.Minute, // per 10 minutes
		MaxIPRequests:   20,               // 20 requests
		IPWindow:        1 * time.Hour,    // per hour
	}
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(db database.DB, config RateLimitConfig) *RateLimitService {
	return &RateLimitService{
		db:     db,
		config: config,
	}
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Type       string // "user" or "ip"
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// CheckOTPRateLimit checks if an account or IP has exceeded rate limits
func (s *RateLimitService) CheckOTPRateLimit(email, ip string) error {
	if email != "" {
		count, lastRequest, err := s.getRequestCount(email, "user", s.config.UserWindow)
		if err != nil {
			return fmt.Errorf("failed to check account rate limit: %w", err)
		}

		if count >= s.config.MaxUserRequests {
			retryAfter := lastRequest.Add(s.config.UserWindow)
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many OTP requests for this account. Please try again after %s", retryAfter.Format("15:04:05")),
				RetryAfter: retryAfter,
				Type:       "user",
			}
		}
	}

	if ip != "" {
		count, lastRequest, err := s.getRequestCount(ip, "ip", s.config.IPWindow)
		if err != nil {
			return fmt.Errorf("failed to check IP rate limit: %w", err)
		}

		if count >= s.config.MaxIPRequests {
			retryAfter := lastRequest.Add(s.config.IPWindow)
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many OTP requests from this IP address. Please try again after %s", retryAfter.Format("15:04:05")),
				RetryAfter: retryAfter,
				Type:       "ip",
			}
		}
	}

	return nil
}

// getRequestCount gets the number of requests within the time window
func (s *RateLimitService) getRequestCount(identifier, identifierType string, window time.Duration) (int, time.Time, error) {
	windowStart := time.Now().Add(-window)

	query := `
		SELECT COUNT(*), COALESCE(MAX(created_at), NOW())
		FROM otp_rate_limits
		WHERE identifier = $1
		  AND identifier_type = $2
		  AND created_at > $3
	`

	var count int
	var lastRequest time.Time

	err := s.db.QueryRow(query, identifier, identifierType, windowStart).Scan(&count, &lastRequest)
	if err != nil && err != sql.ErrNoRows {
		return 0, time.Time{}, err
	}

	return count, lastRequest, nil
}

// RecordOTPRequest records an OTP request for rate limiting
func (s *RateLimitService) RecordOTPRequest(email, ip string) error {
	if email != "" {
		if err := s.recordRequest(email, "user"); err != nil {
			return fmt.Errorf("failed to record account request: %w", err)
		}
	}

	if ip != "" {
		if err := s.recordRequest(ip, "ip"); err != nil {
			return fmt.Errorf("failed to record IP request: %w", err)
		}
	}

	return nil
}

// recordRequest inserts a rate limit record
func (s *RateLimitService) recordRequest(identifier, identifierType string) error {
	query := `
		INSERT INTO otp_rate_limits (identifier, identifier_type, created_at)
		VALUES ($1, $2, NOW())
	`

	_, err := s.db.Exec(query, identifier, identifierType)
	return err
}

// CleanupExpiredRateLimits removes rate limit records older than the
// longest window
func (s *RateLimitService) CleanupExpiredRateLimits() (int64, error) {
	maxWindow := s.config.IPWindow
	if s.config.UserWindow > maxWindow {
		maxWindow = s.config.UserWindow
	}

	cutoffTime := time.Now().Add(-maxWindow)

	query := `
		DELETE FROM otp_rate_limits
		WHERE created_at < $1
	`

	result, err := s.db.Exec(query, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup rate limits: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// IsRateLimited checks if an identifier is currently rate limited
func (s *RateLimitService) IsRateLimited(identifier, identifierType string) (bool, time.Time, error) {
	window := s.config.UserWindow
	maxRequests := s.config.MaxUserRequests
	if identifierType == "ip" {
		window = s.config.IPWindow
		maxRequests = s.config.MaxIPRequests
	}

	count, lastRequest, err := s.getRequestCount(identifier, identifierType, window)
	if err != nil {
		return false, time.Time{}, err
	}

	if count >= maxRequests {
		retryAfter := lastRequest.Add(window)
		return true, retryAfter, nil
	}

	return false, time.Time{}, nil
}
