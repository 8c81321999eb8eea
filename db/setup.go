package db

import (
	"errors"

	"github.com/monocle-dev/visawatch/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func ConnectDatabase(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

func MigrateDatabase(db *gorm.DB) error {
	models := []interface{}{
		&models.User{},
		&models.MonitoringSettings{},
		&models.AppointmentCheck{},
		&models.ActivityLog{},
		&models.SystemStats{},
	}

	migrator := db.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := db.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return SeedSystemStats(db)
}

// SeedSystemStats makes sure the singleton stats row exists.
func SeedSystemStats(db *gorm.DB) error {
	var stats models.SystemStats

	err := db.First(&stats, models.SystemStatsID).Error
	if err == nil {
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return db.Create(&models.SystemStats{ID: models.SystemStatsID}).Error
}
