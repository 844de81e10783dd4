package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/flavr/backend/internal/models"
)

// RunMigrations brings the schema up to date with the gorm models
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.StateEntry{},
		&models.RemoteSnapshot{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
