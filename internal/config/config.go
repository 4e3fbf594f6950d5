package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// SMTP / email configuration
	SMTP SMTPConfig

	// OTP configuration
	OTP OTPConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// CORS configuration
	CORS CORSConfig

	// Admin portal configuration
	Admin AdminConfig

	// File upload configuration
	Upload UploadConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
	// BaseURL is the externally reachable URL of this server, used to
	// build verification links embedded in emails.
	BaseURL string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret      string
	TokenExpiry time.Duration
}

// SMTPConfig holds email gateway configuration
type SMTPConfig struct {
	Mode     string // "dev" logs messages instead of sending, "production" sends via SMTP
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

// OTPConfig holds OTP-related configuration
type OTPConfig struct {
	Length        int
	ExpiryMinutes int
}

// RateLimitConfig holds OTP issuance rate limiting configuration
type RateLimitConfig struct {
	MaxUserRequests   int
	UserWindowMinutes int
	MaxIPRequests     int
	IPWindowMinutes   int
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// AdminConfig holds admin portal configuration
type AdminConfig struct {
	// Email is the whitelisted administrator inbox. Vendor approval
	// requests are delivered here, and admin logins are checked
	// against it (plus any profiles invited later).
	Email string
	// PortalURL is the customer/vendor facing frontend, used in
	// approval confirmation emails.
	PortalURL string
}

// UploadConfig holds uploaded-file storage configuration
type UploadConfig struct {
	Dir        string
	MaxSizeMB  int
	PublicPath string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			BaseURL:     getEnv("SERVER_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", ""),
			TokenExpiry: time.Duration(getEnvAsInt("JWT_TOKEN_EXPIRY", 86400)) * time.Second,
		},
		SMTP: SMTPConfig{
			Mode:     getEnv("SMTP_MODE", "dev"), // "dev" or "production"
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@warranty-portal.local"),
			UseTLS:   getEnvAsBool("SMTP_USE_TLS", true),
		},
		OTP: OTPConfig{
			Length:        getEnvAsInt("OTP_LENGTH", 6),
			ExpiryMinutes: getEnvAsInt("OTP_EXPIRY_MINUTES", 10),
		},
		RateLimit: RateLimitConfig{
			MaxUserRequests:   getEnvAsInt("OTP_RATE_LIMIT_USER", 5),
			UserWindowMinutes: getEnvAsInt("OTP_RATE_WINDOW_USER_MINUTES", 10),
			MaxIPRequests:     getEnvAsInt("OTP_RATE_LIMIT_IP", 20),
			IPWindowMinutes:   getEnvAsInt("OTP_RATE_WINDOW_IP_MINUTES", 60),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Admin: AdminConfig{
			Email:     getEnv("ADMIN_EMAIL", ""),
			PortalURL: getEnv("PORTAL_URL", "http://localhost:3000"),
		},
		Upload: UploadConfig{
			Dir:        getEnv("UPLOAD_DIR", "./uploads"),
			MaxSizeMB:  getEnvAsInt("UPLOAD_MAX_SIZE_MB", 10),
			PublicPath: getEnv("UPLOAD_PUBLIC_PATH", "/uploads"),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Admin.Email == "" {
		return fmt.Errorf("ADMIN_EMAIL is required")
	}

	// Validate SMTP configuration only in production mode
	if c.SMTP.Mode == "production" {
		if c.SMTP.Host == "" {
			return fmt.Errorf("SMTP_HOST is required in production mode")
		}
		if c.SMTP.Username == "" {
			return fmt.Errorf("SMTP_USERNAME is required in production mode")
		}
		if c.SMTP.Password == "" {
			return fmt.Errorf("SMTP_PASSWORD is required in production mode")
		}
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
