package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hivecrest/community-backend/internal/database"
	"github.com/hivecrest/community-backend/internal/middleware"
	"github.com/hivecrest/community-backend/internal/models"
	"github.com/hivecrest/community-backend/internal/realtime"
	"github.com/hivecrest/community-backend/internal/services"
)

// GetConversations returns the caller's inbox: conversations ordered by
// recency with counterpart, last message and unread count.
func GetConversations(c *gin.Context) {
	profileID := c.MustGet("userId").(string)

	summaries, err := services.ListConversations(profileID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

// GetMessages returns a page of history for one conversation.
// ?beforeAt=<RFC3339>&beforeId=<id> pages backward, ?afterAt/?afterId forward.
func GetMessages(c *gin.Context) {
	profileID := c.MustGet("userId").(string)
	conversationID := c.Param("id")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	var messages []models.Message
	var err error

	if afterAt := c.Query("afterAt"); afterAt != "" {
		cursor, cursorErr := parseCursor(afterAt, c.Query("afterId"))
		if cursorErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cursor"})
			return
		}
		messages, err = services.ListMessagesAfter(conversationID, profileID, cursor, limit)
	} else {
		var cursor *services.MessageCursor
		if beforeAt := c.Query("beforeAt"); beforeAt != "" {
			cursor, err = parseCursor(beforeAt, c.Query("beforeId"))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cursor"})
				return
			}
		}
		messages, err = services.ListMessagesBefore(conversationID, profileID, cursor, limit)
	}
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func parseCursor(at, id string) (*services.MessageCursor, error) {
	ts, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return nil, err
	}
	return &services.MessageCursor{CreatedAt: ts, ID: id}, nil
}

// SendMessage appends a message to the (lazily created) conversation with
// the recipient, pushes it on the conversation topic and leaves a durable
// notification when the recipient isn't watching the thread. A fan-out
// failure never rolls back or fails the send.
func SendMessage(c *gin.Context) {
	senderID := c.MustGet("userId").(string)

	var req struct {
		RecipientID string          `json:"recipientId" binding:"required"`
		Content     json.RawMessage `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if allowed, _ := database.CheckRateLimit(senderID, 30, time.Minute); !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many messages, slow down"})
		return
	}

	content, err := SanitizeMessageContent(req.Content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conv, err := services.GetOrCreateConversation(senderID, req.RecipientID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	msg, err := services.AppendMessage(conv.ID, senderID, content)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	// Fire-and-forget push on the conversation topic. Delivery is
	// at-least-once; clients merge by message id. The sender's own
	// devices get it too via their personal room.
	payload := gin.H{"message": msg, "conversationId": conv.ID}
	realtime.EmitToConversation(conv.ID, "receive_message", payload)
	realtime.EmitToProfile(senderID, "receive_message", payload)
	realtime.EmitToProfile(req.RecipientID, "receive_message", payload)

	var sender models.Profile
	senderName := ""
	if err := database.DB.Select("id", "name", "username").First(&sender, "id = ?", senderID).Error; err == nil {
		senderName = sender.Name
		if senderName == "" {
			senderName = sender.Username
		}
	}
	go services.NotifyMessage(msg, senderName, req.RecipientID)

	c.JSON(http.StatusOK, gin.H{"message": msg, "conversationId": conv.ID})
}

// MarkConversationRead advances the caller's read cursor to now (or the
// provided timestamp). Older timestamps are a no-op.
func MarkConversationRead(c *gin.Context) {
	profileID := c.MustGet("userId").(string)
	conversationID := c.Param("id")

	var req struct {
		ReadAt *time.Time `json:"readAt"`
	}
	// Body is optional; default to now
	_ = c.ShouldBindJSON(&req)

	readAt := time.Now()
	if req.ReadAt != nil {
		readAt = *req.ReadAt
	}

	advanced, err := services.MarkConversationRead(conversationID, profileID, readAt)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	if advanced {
		// Tell the counterpart their messages were seen
		realtime.EmitToConversation(conversationID, "conversation_read", gin.H{
			"conversationId": conversationID,
			"profileId":      profileID,
			"readAt":         readAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"advanced": advanced, "readAt": readAt})
}

// GetUnreadMessageCount returns the caller's unread count for one conversation
func GetUnreadMessageCount(c *gin.Context) {
	profileID := c.MustGet("userId").(string)
	conversationID := c.Param("id")

	count, err := services.UnreadCount(conversationID, profileID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
