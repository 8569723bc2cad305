package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hivecrest/community-backend/internal/config"
	"github.com/hivecrest/community-backend/internal/database"
	"github.com/hivecrest/community-backend/internal/models"
	"github.com/hivecrest/community-backend/internal/routes"
	"github.com/hivecrest/community-backend/pkg/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.AppConfig = &config.Config{
		JWTSecret: "test_secret_key_12345",
	}

	dsn := fmt.Sprintf("file:integration_%s?mode=memory&cache=shared", t.Name())
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

	// Handlers resolve the store through the package global
	database.DB = db

	return db
}

func setupRouter() *gin.Engine {
	r := gin.New()
	api := r.Group("/api")
	routes.RegisterChatRoutes(api)
	routes.RegisterNotificationRoutes(api)
	routes.RegisterSpaceRoutes(api)
	return r
}

// createTestProfile seeds a profile and returns a signed bearer token for it.
func createTestProfile(t *testing.T, id string, tier models.Tier, role models.Role) string {
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

	token, err := utils.GenerateToken(id, string(tier), string(role))
	if err != nil {
		t.Fatalf("Failed to sign token for %s: %v", id, err)
	}
	return token
}

func performRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
