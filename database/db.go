package database

import (
	"fmt"
	"os"

	"parcel-delivery/logger"
	bookingModel "parcel-delivery/models/booking"
	logModel "parcel-delivery/models/log"
	userModel "parcel-delivery/models/user"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var DB *gorm.DB

// InitDB connects to PostgreSQL using env configuration and migrates the
// schema.
func InitDB() (*gorm.DB, error) {
	if err := godotenv.Load(); err != nil {
		logger.Warning("No .env file found, relying on environment")
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	database := os.Getenv("DB_DATABASE")
	user := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, database, sslmode)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return nil, err
	}
	logger.Success("Successfully connected to the database")

	if err := Migrate(DB); err != nil {
		logger.Error("Failed to migrate database schema", err)
		return nil, err
	}
	logger.Success("All migrations completed successfully")

	if err := createIndexes(DB); err != nil {
		logger.Error("Failed to create indexes", err)
		return nil, err
	}
	logger.Success("All indexes created successfully")

	return DB, nil
}

// Migrate runs auto migration for all models in dependency order.
func Migrate(db *gorm.DB) error {
	// Stage 1: core foundation models
	stage1Models := []interface{}{
		&userModel.User{},
	}

	for _, model := range stage1Models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 2: models with dependencies on stage 1
	stage2Models := []interface{}{
		&bookingModel.Booking{},
		&bookingModel.TrackingEvent{},
	}

	for _, model := range stage2Models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 3: remaining models
	remainingModels := []interface{}{
		&logModel.Log{},
	}

	for _, model := range remainingModels {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	return nil
}

// createIndexes creates additional indexes for better performance
func createIndexes(db *gorm.DB) error {
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)").Error; err != nil {
		return fmt.Errorf("failed to create user email index: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_bookings_tracking_id ON bookings(tracking_id)").Error; err != nil {
		return fmt.Errorf("failed to create booking tracking_id index: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_bookings_created_at ON bookings(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create booking created_at index: %w", err)
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_tracking_events_status ON tracking_events(status)").Error; err != nil {
		return fmt.Errorf("failed to create tracking event status index: %w", err)
	}

	return nil
}

// LockForUpdate adds a row lock on dialects that support it. sqlite (used in
// tests) has no SELECT ... FOR UPDATE; its single-writer model already
// serializes the transaction.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
