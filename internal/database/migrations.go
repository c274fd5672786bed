package database

import (
	"gorm.io/gorm"

	"github.com/nkyriakou/themis/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
//
// The user table is also written to by the CRM core; AutoMigrate only adds
// missing columns and indexes, so sharing the table between services is safe.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Notification{},
		&models.DeliveryAttempt{},
	)
}
