package services

import (
	"fmt"
	"time"

	"github.com/hivecrest/community-backend/internal/database"
	"github.com/hivecrest/community-backend/internal/models"
	apperrors "github.com/hivecrest/community-backend/pkg/errors"
)

func unreadCacheKey(profileID string) string {
	return fmt.Sprintf("notifications:unread:%s", profileID)
}

// ListNotifications pages the recipient's notifications, newest first,
// keyed by (created_at, id) like message history.
func ListNotifications(profileID string, cursor *MessageCursor, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := database.DB.Preload("Actor").Where("profile_id = ?", profileID)
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var notifications []models.Notification
	err := query.Order("created_at desc, id desc").Limit(limit).Find(&notifications).Error
	if err != nil {
		return nil, apperrors.TransientStore("Failed to load notifications")
	}
	return notifications, nil
}

// CountUnreadNotifications returns the recipient's unread total, served
// from cache when fresh.
func CountUnreadNotifications(profileID string) (int64, error) {
	var cached int64
	if err := database.CacheGet(unreadCacheKey(profileID), &cached); err == nil {
		return cached, nil
	}

	var count int64
	err := database.DB.Model(&models.Notification{}).
		Where("profile_id = ? AND is_read = ?", profileID, false).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.TransientStore("Failed to count notifications")
	}

	go database.CacheSet(unreadCacheKey(profileID), count, 30*time.Second)
	return count, nil
}

// MarkNotificationsRead flips the given ids to read for the recipient.
// Idempotent: already-read ids and ids owned by someone else don't count.
// Returns the number of newly affected rows.
func MarkNotificationsRead(profileID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := database.DB.Model(&models.Notification{}).
		Where("profile_id = ? AND id IN ? AND is_read = ?", profileID, ids, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, apperrors.TransientStore("Failed to mark notifications read")
	}

	if result.RowsAffected > 0 {
		database.CacheInvalidate(unreadCacheKey(profileID))
	}
	return result.RowsAffected, nil
}

// MarkAllNotificationsRead marks everything unread at call time. The
// created_at bound snapshots the set so a notification arriving mid-call
// is not swallowed.
func MarkAllNotificationsRead(profileID string) (int64, error) {
	now := time.Now()
	result := database.DB.Model(&models.Notification{}).
		Where("profile_id = ? AND is_read = ? AND created_at <= ?", profileID, false, now).
		Update("is_read", true)
	if result.Error != nil {
		return 0, apperrors.TransientStore("Failed to mark notifications read")
	}

	if result.RowsAffected > 0 {
		database.CacheInvalidate(unreadCacheKey(profileID))
	}
	return result.RowsAffected, nil
}

// DeleteNotification removes one of the recipient's own notifications.
func DeleteNotification(profileID, notificationID string) error {
	var notification models.Notification
	err := database.DB.First(&notification, "id = ?", notificationID).Error
	if err != nil {
		return apperrors.ErrNotFound
	}
	if notification.ProfileID != profileID {
		return apperrors.ErrForbidden
	}

	if err := database.DB.Delete(&notification).Error; err != nil {
		return apperrors.TransientStore("Failed to delete notification")
	}
	database.CacheInvalidate(unreadCacheKey(profileID))
	return nil
}
