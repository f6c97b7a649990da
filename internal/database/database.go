package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wolfnote/30-day-trading-tracker/internal/config"
	"github.com/wolfnote/30-day-trading-tracker/internal/models"
)

// New opens the ledger database and migrates the schema. The returned
// handle owns the underlying connection pool and is created once at
// startup, then passed into the store.
func New(cfg *config.Database) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.TradeRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate ledger schema: %w", err)
	}

	return db, nil
}
