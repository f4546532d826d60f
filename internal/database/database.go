package database

import (
	"fmt"

	"github.com/movinigamage/FeedBack-Lense-sub000/internal/config"
	logging "github.com/movinigamage/FeedBack-Lense-sub000/internal/logging"
	"github.com/movinigamage/FeedBack-Lense-sub000/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Init connects to the response store and runs migrations. The analytics
// engine only reads surveys, responses and answers; the tables are still
// migrated here so a standalone deployment works out of the box.
func Init(log *zap.Logger) (*gorm.DB, error) {
	dbConf := config.Conf.Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logging.NewGormZapLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("Database connection established successfully.")

	if err := runMigrations(db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func runMigrations(db *gorm.DB, log *zap.Logger) error {
	// GORM's AutoMigrate will create tables, columns, and foreign keys.
	// It will NOT create composite indexes, so we handle that separately.
	err := db.AutoMigrate(
		&models.Survey{},
		&models.Response{},
		&models.Answer{},
	)
	if err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	log.Info("Database migrations completed successfully.")

	// The trend and poll-updates queries always filter by survey and scan
	// by submission time.
	trendIndex := `CREATE INDEX IF NOT EXISTS idx_responses_survey_submitted ON responses (survey_id, submitted_at DESC);`
	if err := db.Exec(trendIndex).Error; err != nil {
		return fmt.Errorf("failed to create trend index on responses: %w", err)
	}
	log.Info("Custom indexes ensured successfully.")
	return nil
}
