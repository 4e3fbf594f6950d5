package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shieldtech/warranty-portal-backend/internal/config"
	"github.com/shieldtech/warranty-portal-backend/internal/database"
	"github.com/shieldtech/warranty-portal-backend/internal/services"
)

// Cleans up expired OTP codes and stale rate limit rows. Meant to run
// from cron; safe to run at any frequency.
func main() {
	var dbURLFlag string
	var retentionDays int
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.IntVar(&retentionDays, "retention-days", 30, "delete used OTP rows older than this many days")
	flag.Parse()

	// Try loading .env from current working directory (optional)
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	// Build minimal database config without loading full app config
	dbCfg := config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     2,
		MaxIdleConnections: 1,
	}

	db, err := database.NewConnection(dbCfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	otpService := services.NewOTPService(db, services.DefaultOTPConfig())
	rateLimitService := services.NewRateLimitService(db, services.DefaultRateLimitConfig())

	expired, err := otpService.CleanupExpiredOTPs()
	if err != nil {
		log.Fatalf("failed to clean up expired OTPs: %v", err)
	}
	fmt.Printf("Deleted %d expired OTP codes\n", expired)

	old, err := otpService.CleanupOldOTPs(time.Duration(retentionDays) * 24 * time.Hour)
	if err != nil {
		log.Fatalf("failed to clean up old OTPs: %v", err)
	}
	fmt.Printf("Deleted %d used OTP codes older than %d days\n", old, retentionDays)

	limits, err := rateLimitService.CleanupExpiredRateLimits()
	if err != nil {
		log.Fatalf("failed to clean up rate limit rows: %v", err)
	}
	fmt.Printf("Deleted %d stale rate limit rows\n", limits)
}
