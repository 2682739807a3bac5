package config

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	dbConnectAttempts = 5
	dbConnectDelay    = 5 * time.Second
)

// NewDB opens the Postgres connection described by the Database config
// section, retrying on startup so the server survives the database
// container coming up after it.
func NewDB() (*gorm.DB, error) {
	cfg := Get()

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	logMode := logger.Error
	if cfg.Server.Env == "development" {
		logMode = logger.Info
	}
	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logMode)}

	var db *gorm.DB
	var err error
	for attempt := 0; attempt < dbConnectAttempts; attempt++ {
		if db, err = gorm.Open(postgres.Open(dsn), gormConfig); err == nil {
			break
		}
		time.Sleep(dbConnectDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to database after %d attempts: %w", dbConnectAttempts, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	return db, nil
}
