package db

import (
	"log"

	"go-onboard/internal/chat"
	"go-onboard/internal/config"
	"go-onboard/internal/profile"
	"go-onboard/internal/user"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) error {
	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		return err
	}

	// Auto-migrate user model
	if err := db.AutoMigrate(&user.User{}); err != nil {
		return err
	}

	// Auto-migrate conversation transcript models
	if err := db.AutoMigrate(&chat.Conversation{}, &chat.Message{}); err != nil {
		return err
	}

	// Auto-migrate stored onboarding profiles
	if err := db.AutoMigrate(&profile.StoredProfile{}); err != nil {
		return err
	}

	DB = db
	log.Printf("Database connected and migrated")
	return nil
}
