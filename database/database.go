package database

import (
	"fmt"
	"log"

	"marketplace-payments/internal/domain/billing"
	"marketplace-payments/internal/domain/plans"
	"marketplace-payments/internal/domain/settings"
	"marketplace-payments/internal/domain/subscriptions"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table this service owns.
func Migrate(db *gorm.DB) error {
	// ✅ REQUIRED for UUID generation
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(
		&plans.Plan{},
		&settings.Setting{},
		&billing.Payment{},
		&billing.WebhookEvent{},
		&subscriptions.Subscription{},
	); err != nil {
		return fmt.Errorf("AutoMigrate error: %w", err)
	}

	log.Println("✅ Database migrated successfully")
	return nil
}
