package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"matchwell/backend/internal/logging"
	"matchwell/backend/internal/models"
)

// Models lists every table owned by the service, in migration order.
func Models() []any {
	return []any{
		&models.Account{},
		&models.Profile{},
		&models.Interest{},
		&models.DeclinedMarker{},
		&models.MatchScore{},
		&models.InterestStats{},
		&models.PointsEntry{},
	}
}

// zerologWriter adapts the global zerolog logger to gorm's logger.Writer.
type zerologWriter struct{}

func (zerologWriter) Printf(format string, args ...interface{}) {
	logging.Logger.Warn().Str("component", "gorm").Msgf(format, args...)
}

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*gorm.DB, error) {
	// Configure GORM logger
	customLogger := logger.New(
		zerologWriter{},
		logger.Config{
			SlowThreshold:             200 * time.Millisecond, // Slow SQL threshold
			LogLevel:                  logger.Warn,            // Log level
			IgnoreRecordNotFoundError: true,                   // Ignore ErrRecordNotFound error for logger
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: customLogger,
		// Unique violations surface as gorm.ErrDuplicatedKey.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logging.Logger.Info().Msg("Database connection established.")

	// Run migrations
	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logging.Logger.Info().Msg("Database migrated successfully.")

	return db, nil
}
