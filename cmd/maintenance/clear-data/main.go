package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shieldtech/warranty-portal-backend/internal/config"
	"github.com/shieldtech/warranty-portal-backend/internal/database"
)

// Wipes all portal data. For development and staging databases only.
func main() {
	var dbURLFlag string
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.Parse()

	// Try loading .env from current working directory (optional)
	// This avoids having to pass secrets on the command line.
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
		MaxConnections:     5,
		MaxIdleConnections: 2,
	}

	db, err := database.NewConnection(dbCfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("Connected to database. Truncating tables...")

	truncateSQL := `
TRUNCATE TABLE
    activity_logs,
    warranties,
    manpower,
    vendor_details,
    vendor_verifications,
    otp_codes,
    otp_rate_limits,
    profiles
RESTART IDENTITY CASCADE;`

	if _, err := db.Exec(truncateSQL); err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	fmt.Println("All data cleared successfully (tables truncated, identities reset).")

	// Verify by printing row counts for each table
	tables := []string{
		"activity_logs",
		"warranties",
		"manpower",
		"vendor_details",
		"vendor_verifications",
		"otp_codes",
		"otp_rate_limits",
		"profiles",
	}

	fmt.Println("Post-clear row counts:")
	for _, table := range tables {
		var count int
		row := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
		if err := row.Scan(&count); err != nil {
			log.Printf("failed to count %s: %v", table, err)
			continue
		}
		fmt.Printf("  %-22s %d\n", table, count)
	}
}
