package services

import (
	"testing"
	"time"

	"github.com/hivecrest/community-backend/internal/database"
	"github.com/hivecrest/community-backend/internal/models"
	apperrors "github.com/hivecrest/community-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func seedNotification(t *testing.T, profileID string, createdAt time.Time) models.Notification {
	t.Helper()
	n := models.Notification{
		ProfileID: profileID,
		Type:      models.NotificationTypeSystem,
		Title:     "test",
		CreatedAt: createdAt,
	}
	if err := database.DB.Create(&n).Error; err != nil {
		t.Fatalf("Failed to seed notification: %v", err)
	}
	return n
}

func TestMarkNotificationsReadBatchIdempotent(t *testing.T) {
	setupTestDB(t)
	seedProfile(t, "alice", models.TierGold)

	now := time.Now()
	n1 := seedNotification(t, "alice", now.Add(-3*time.Minute))
	n2 := seedNotification(t, "alice", now.Add(-2*time.Minute))
	n3 := seedNotification(t, "alice", now.Add(-1*time.Minute))

	affected, err := MarkNotificationsRead("alice", []string{n1.ID, n2.ID})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	// Re-marking already-read ids touches nothing
	affected, err = MarkNotificationsRead("alice", []string{n1.ID, n2.ID})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	count, err := CountUnreadNotifications("alice")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var reloaded models.Notification
	database.DB.First(&reloaded, "id = ?", n3.ID)
	assert.False(t, reloaded.IsRead)
}

func TestMarkNotificationsReadIgnoresForeignRows(t *testing.T) {
	setupTestDB(t)
	seedProfile(t, "alice", models.TierGold)
	seedProfile(t, "bob", models.TierSilver)

	theirs := seedNotification(t, "bob", time.Now())

	affected, err := MarkNotificationsRead("alice", []string{theirs.ID})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	var reloaded models.Notification
	database.DB.First(&reloaded, "id = ?", theirs.ID)
	assert.False(t, reloaded.IsRead, "another recipient's read state is private")
}

func TestMarkAllNotificationsReadIdempotent(t *testing.T) {
	setupTestDB(t)
	seedProfile(t, "alice", models.TierGold)

	now := time.Now()
	seedNotification(t, "alice", now.Add(-2*time.Minute))
	seedNotification(t, "alice", now.Add(-1*time.Minute))

	affected, err := MarkAllNotificationsRead("alice")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	// Second call with nothing new affects zero rows
	affected, err = MarkAllNotificationsRead("alice")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestMarkAllNotificationsReadSnapshotBound(t *testing.T) {
	setupTestDB(t)
	seedProfile(t, "alice", models.TierGold)

	seedNotification(t, "alice", time.Now().Add(-time.Minute))

	affected, err := MarkAllNotificationsRead("alice")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// A notification created after the call stays unread
	seedNotification(t, "alice", time.Now().Add(time.Second))

	count, err := CountUnreadNotifications("alice")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestListNotificationsPagination(t *testing.T) {
	setupTestDB(t)
	seedProfile(t, "alice", models.TierGold)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		seedNotification(t, "alice", base.Add(time.Duration(i)*time.Minute))
	}

	first, err := ListNotifications("alice", nil, 3)
	assert.NoError(t, err)
	assert.Len(t, first, 3)

	last := first[len(first)-1]
	second, err := ListNotifications("alice", &MessageCursor{CreatedAt: last.CreatedAt, ID: last.ID}, 10)
	assert.NoError(t, err)
	assert.Len(t, second, 4)

	// Newest first, no overlap across pages
	seen := make(map[string]bool)
	for _, n := range append(first, second...) {
		assert.False(t, seen[n.ID])
		seen[n.ID] = true
	}
}

func TestDeleteNotificationOwnership(t *testing.T) {
	setupTestDB(t)
	seedProfile(t, "alice", models.TierGold)
	seedProfile(t, "bob", models.TierSilver)

	theirs := seedNotification(t, "bob", time.Now())

	err := DeleteNotification("alice", theirs.ID)
	assert.Equal(t, apperrors.ErrForbidden, err)

	err = DeleteNotification("bob", theirs.ID)
	assert.NoError(t, err)

	err = DeleteNotification("bob", theirs.ID)
	assert.Equal(t, apperrors.ErrNotFound, err)
}
