package services

import (
	"fmt"
	"testing"

	"github.com/hivecrest/community-backend/internal/database"
	"github.com/hivecrest/community-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the global database.DB at a fresh in-memory sqlite
// database. The handlers and services use the global handle, same as the
// production wiring, so tests override it the same way.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}

	// A single connection keeps the shared in-memory database alive
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Profile{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.Message{},
		&models.Notification{},
		&models.Space{},
		&models.SpaceMembership{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test DB: %v", err)
	}

	database.DB = db
	return db
}

func seedProfile(t *testing.T, id string, tier models.Tier) models.Profile {
	t.Helper()
	profile := models.Profile{
		ID:       id,
		Username: id,
		Email:    id + "@example.com",
		Tier:     tier,
		Role:     models.RoleMember,
	}
	if err := database.DB.Create(&profile).Error; err != nil {
		t.Fatalf("Failed to seed profile %s: %v", id, err)
	}
	return profile
}
