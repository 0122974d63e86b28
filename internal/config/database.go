package config

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/resume-roast/internal/models"
)

// InitDatabase connects to Postgres and migrates the generation tables.
// It returns a nil *gorm.DB when persistence is disabled.
func InitDatabase(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	if !cfg.Database.Enabled {
		log.Info("💤 Database disabled, generations will not be persisted")
		return nil, nil
	}

	dsn := cfg.GetDatabaseDSN()

	logLevel := logger.Silent
	if cfg.Server.Env == "development" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("✅ Database connected successfully")

	if err := db.AutoMigrate(
		&models.Document{},
		&models.Generation{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("✅ Database migration completed")

	return db, nil
}
