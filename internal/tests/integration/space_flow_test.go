package integration

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/hivecrest/community-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSpaceReminderFlow_e2e(t *testing.T) {
	setupTestDB(t)
	r := setupRouter()

	adminToken := createTestProfile(t, "space_admin", models.TierDiamond, models.RoleAdmin)
	diamondToken := createTestProfile(t, "diamond_member", models.TierDiamond, models.RoleMember)
	silverToken := createTestProfile(t, "silver_member", models.TierSilver, models.RoleMember)

	// 1. Admin creates a diamond-gated space; slug derives from the name
	w := performRequest(r, "POST", "/api/spaces", map[string]interface{}{
		"name":         "Diamond Lounge",
		"tierRequired": "DIAMOND",
	}, adminToken)
	assert.Equal(t, http.StatusCreated, w.Code)

	var spaceResp struct {
		Space models.Space `json:"space"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &spaceResp))
	assert.Equal(t, "diamond-lounge", spaceResp.Space.Slug)
	spaceID := spaceResp.Space.ID

	// 2. Tier gate on join: diamond passes, silver does not
	w = performRequest(r, "POST", "/api/spaces/"+spaceID+"/join", nil, diamondToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, "POST", "/api/spaces/"+spaceID+"/join", nil, silverToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 3. Admin schedules an event in the space
	w = performRequest(r, "POST", "/api/spaces/"+spaceID+"/events", map[string]interface{}{
		"title":    "Quarterly mixer",
		"startsAt": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}, adminToken)
	assert.Equal(t, http.StatusCreated, w.Code)

	var eventResp struct {
		Event models.Event `json:"event"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &eventResp))

	// 4. The reminder reaches the one eligible member
	w = performRequest(r, "POST", "/api/events/"+eventResp.Event.ID+"/remind", nil, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)

	var remindResp struct {
		Notified int `json:"notified"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &remindResp))
	assert.Equal(t, 1, remindResp.Notified)

	// 5. The member sees the reminder in their notification feed
	w = performRequest(r, "GET", "/api/notifications", nil, diamondToken)
	assert.Equal(t, http.StatusOK, w.Code)

	var feedResp struct {
		Notifications []models.Notification `json:"notifications"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &feedResp))
	if assert.Len(t, feedResp.Notifications, 1) {
		assert.Equal(t, models.NotificationTypeEventReminder, feedResp.Notifications[0].Type)
	}

	// 6. Nothing leaked to the silver member
	w = performRequest(r, "GET", "/api/notifications", nil, silverToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &feedResp))
	assert.Empty(t, feedResp.Notifications)
}
