package seeders

import (
	"errors"
	"os"

	"parcel-delivery/logger"
	userModel "parcel-delivery/models/user"
	"parcel-delivery/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SeedSuperAdmin makes sure the bootstrap SuperAdmin account exists. It is
// idempotent: if an account already uses the configured email, nothing
// happens.
func SeedSuperAdmin(db *gorm.DB) error {
	email := os.Getenv("SUPER_ADMIN_EMAIL")
	password := os.Getenv("SUPER_ADMIN_PASSWORD")
	if email == "" || password == "" {
		logger.Warning("SUPER_ADMIN_EMAIL/SUPER_ADMIN_PASSWORD not set, skipping seeder")
		return nil
	}

	var existing userModel.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		logger.Info("SuperAdmin already exists, skipping seeder")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	admin := userModel.User{
		Uuid:      uuid.NewString(),
		FirstName: "Super",
		LastName:  "Admin",
		Role:      userModel.RoleSuperAdmin,
		IsActive:  userModel.StatusActive,
		Email:     email,
		Password:  hashed,
		Address:   "Head Office",
		Bookings:  userModel.UintSlice{},
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Success("SuperAdmin account seeded: " + email)
	return nil
}
