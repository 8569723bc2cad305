package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hivecrest/community-backend/internal/database"
	"github.com/hivecrest/community-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}

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
		&models.Post{},
		&models.PostReply{},
		&models.PostLike{},
		&models.Event{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test DB: %v", err)
	}

	database.DB = db
	return db
}

func seedProfile(t *testing.T, id string, tier models.Tier, role models.Role) models.Profile {
	t.Helper()
	profile := models.Profile{
		ID:       id,
		Username: id,
		Email:    id + "@example.com",
		Tier:     tier,
		Role:     role,
	}
	if err := database.DB.Create(&profile).Error; err != nil {
		t.Fatalf("Failed to seed profile %s: %v", id, err)
	}
	return profile
}

// testContext builds a gin context with an authenticated caller and an
// optional JSON body, mirroring what the auth middleware would inject.
func testContext(t *testing.T, userID, method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set("userId", userID)
	return c, w
}

func paramID(value string) gin.Param {
	return gin.Param{Key: "id", Value: value}
}
