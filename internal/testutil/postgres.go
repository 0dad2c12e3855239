package testutil

import (
	"os"
	"testing"

	"marketplace-payments/database"

	"gorm.io/gorm"
)

// Postgres opens TEST_DATABASE_URL, migrates it and truncates the tables the
// payment flow writes. Tests are skipped when the variable is unset.
func Postgres(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.Open(dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	if err := db.Exec("TRUNCATE subscriptions, payments, webhook_events, app_settings, plans RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("truncate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
