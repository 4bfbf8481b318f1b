package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/campusplacements/portal/internal/models"
	"github.com/campusplacements/portal/pkg/crypto"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Placement{},
		&models.Alumni{},
	)
}

// SeedConfig describes the bootstrap admin account ensured at start-up so
// the review surface is reachable on a fresh database.
type SeedConfig struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// SeedData idempotently provisions the bootstrap admin. A blank admin email
// disables seeding entirely.
func SeedData(db *gorm.DB, cfg SeedConfig) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" {
		return nil
	}
	if strings.TrimSpace(cfg.AdminPassword) == "" {
		return fmt.Errorf("seed: admin %s requires a password", email)
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("seed: lookup admin: %w", err)
	}

	hash, err := crypto.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed: hash admin password: %w", err)
	}

	username := strings.TrimSpace(cfg.AdminUsername)
	if username == "" {
		username = "admin"
	}

	admin := models.User{
		Username:          username,
		Email:             email,
		Password:          hash,
		Role:              models.RoleAdmin,
		VerificationState: models.VerificationVerified,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed: create admin: %w", err)
	}

	return nil
}
