package initialize

import (
	"strings"

	"servicelink/config"

	. "servicelink/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func InitializeTables(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Initializing essential production data")

	if err := initializeAdminUser(db, config, log); err != nil {
		return log.Err("failed to initialize admin user", err)
	}

	log.Info("Table initialization complete")
	return nil
}

// initializeAdminUser bootstraps the first admin account so a fresh install
// has a way to log in. Skipped when the bootstrap credentials are not set.
func initializeAdminUser(db *gorm.DB, config config.Config, log logger.Logger) error {
	if config.InitAdminEmail == "" || config.InitAdminPassword == "" {
		log.Info("No bootstrap admin credentials configured, skipping")
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(config.InitAdminEmail))

	var existing User
	if err := db.First(&existing, "email = ?", email).Error; err == nil {
		log.Debug("Bootstrap admin already exists", "email", email)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword(
		[]byte(config.InitAdminPassword),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return log.Err("failed to hash bootstrap admin password", err)
	}

	admin := User{
		Name:         "Administrator",
		Email:        email,
		Role:         RoleAdmin,
		PasswordHash: string(hash),
		IsActive:     true,
	}

	log.Info("Creating bootstrap admin user", "email", email)
	if err := db.Create(&admin).Error; err != nil {
		return log.Err("failed to create bootstrap admin user", err, "email", email)
	}

	return nil
}
