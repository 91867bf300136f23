package database

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mathsoc-club/backend/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.UpcomingAlert{},
		&models.CacheEntry{},
	)
}

// SeedConfig describes the bootstrap admin account created on first start.
type SeedConfig struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// SeedData ensures the bootstrap admin account exists. An already-present
// account is left untouched so operator password changes survive restarts.
func SeedData(db *gorm.DB, cfg SeedConfig) error {
	username := strings.TrimSpace(cfg.AdminUsername)
	if username == "" {
		return nil
	}
	if strings.TrimSpace(cfg.AdminPassword) == "" {
		return errors.New("seed: admin password must be set when admin username is configured")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:     username,
		Email:        strings.TrimSpace(cfg.AdminEmail),
		PasswordHash: string(hash),
		IsAdmin:      true,
	}

	return db.Where(models.User{Username: username}).
		Attrs(admin).
		FirstOrCreate(&models.User{}).Error
}
