package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/utils"
)

// Migrate membuat atau menyesuaikan semua tabel aplikasi.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.MenuItem{},
		&models.Order{},
		&models.OrderLineItem{},
		&models.PaymentAttempt{},
		&models.UserProfile{},
		&models.Store{},
		&models.Table{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	utils.InfoLogger.Println("Database migration completed")
	return nil
}
