package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"babycare-backend/config"
	"babycare-backend/internal/model"
)

// Open connects to the configured database without migrating it.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	return db, nil
}

// Init opens the database and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate creates or updates the schema and seeds default rows.
func Migrate(db *gorm.DB) error {
	log.Println("Running database migrations...")
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return seed(db)
}

// seed inserts the default settings and diaper sizes when they are missing.
func seed(db *gorm.DB) error {
	settings := []model.Setting{
		{Key: model.SettingLactationInterval, Value: model.DefaultLactationInterval, Description: "Horas entre tomas de lactancia"},
		{Key: model.SettingDiaperThreshold, Value: model.DefaultDiaperThreshold, Description: "Stock mínimo de pañales antes de alertar"},
	}
	for _, s := range settings {
		if err := db.Where(model.Setting{Key: s.Key}).FirstOrCreate(&s).Error; err != nil {
			return fmt.Errorf("failed to seed setting %s: %w", s.Key, err)
		}
	}

	var sizes int64
	if err := db.Model(&model.DiaperSize{}).Count(&sizes).Error; err != nil {
		return fmt.Errorf("failed to count diaper sizes: %w", err)
	}
	if sizes > 0 {
		return nil
	}
	defaults := []model.DiaperSize{
		{Label: "RN", Active: true, Order: 0},
		{Label: "P", Active: true, Order: 1},
		{Label: "M", Active: true, Order: 2},
		{Label: "G", Active: true, Order: 3},
	}
	if err := db.Create(&defaults).Error; err != nil {
		return fmt.Errorf("failed to seed diaper sizes: %w", err)
	}
	return nil
}
