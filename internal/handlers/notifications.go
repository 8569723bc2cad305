package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hivecrest/community-backend/internal/middleware"
	"github.com/hivecrest/community-backend/internal/services"
)

// GetNotifications GET /notifications — cursor-paged, newest first
func GetNotifications(c *gin.Context) {
	profileID := c.MustGet("userId").(string)

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	var cursor *services.MessageCursor
	if beforeAt := c.Query("beforeAt"); beforeAt != "" {
		parsed, err := parseCursor(beforeAt, c.Query("beforeId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cursor"})
			return
		}
		cursor = parsed
	}

	notifications, err := services.ListNotifications(profileID, cursor, limit)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// GetUnreadCount GET /notifications/unread-count
func GetUnreadCount(c *gin.Context) {
	profileID := c.MustGet("userId").(string)

	count, err := services.CountUnreadNotifications(profileID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkNotificationsRead PUT /notifications/read — batch by id set.
// Already-read ids are unaffected; returns the newly-read count.
func MarkNotificationsRead(c *gin.Context) {
	profileID := c.MustGet("userId").(string)

	var req struct {
		IDs []string `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	affected, err := services.MarkNotificationsRead(profileID, req.IDs)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"markedRead": affected})
}

// MarkAllNotificationsRead PUT /notifications/read-all
func MarkAllNotificationsRead(c *gin.Context) {
	profileID := c.MustGet("userId").(string)

	affected, err := services.MarkAllNotificationsRead(profileID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"markedRead": affected})
}

// DeleteNotification DELETE /notifications/:id
func DeleteNotification(c *gin.Context) {
	profileID := c.MustGet("userId").(string)
	notificationID := c.Param("id")

	if err := services.DeleteNotification(profileID, notificationID); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
