package services

import (
	"encoding/json"
	"time"

	"github.com/hivecrest/community-backend/internal/database"
	"github.com/hivecrest/community-backend/internal/models"
	apperrors "github.com/hivecrest/community-backend/pkg/errors"
	"github.com/hivecrest/community-backend/pkg/utils"
	"gorm.io/gorm"
)

const previewLength = 140

// AppendMessage is the single mutation path into a conversation's log.
// The sender must be a participant, the document must carry visible text,
// and the assigned created_at is strictly greater than every earlier
// message in the conversation so (created_at, id) totally orders the log.
func AppendMessage(conversationID, senderID string, rawContent json.RawMessage) (*models.Message, error) {
	var conv models.Conversation
	err := database.DB.First(&conv, "id = ?", conversationID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.TransientStore("Failed to load conversation")
	}

	if senderID != conv.ParticipantAID && senderID != conv.ParticipantBID {
		return nil, apperrors.Forbidden("Sender is not a participant of this conversation")
	}

	doc, err := utils.ParseRichDocument(rawContent)
	if err != nil {
		return nil, apperrors.ErrInvalidContent
	}
	plain := doc.PlainText()
	if plain == "" {
		return nil, apperrors.ErrInvalidContent
	}

	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, apperrors.ErrInvalidContent
	}

	var msg models.Message
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		// Bumping updated_at first takes the conversation's row lock, which
		// serializes concurrent appends so the timestamp assignment below
		// can't race.
		if err := tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			Update("updated_at", now).Error; err != nil {
			return err
		}

		var last models.Message
		createdAt := now
		err := tx.Where("conversation_id = ?", conversationID).
			Order("created_at desc, id desc").
			First(&last).Error
		if err == nil && !createdAt.After(last.CreatedAt) {
			createdAt = last.CreatedAt.Add(time.Microsecond)
		} else if err != nil && err != gorm.ErrRecordNotFound {
			return err
		}

		msg = models.Message{
			ConversationID: conversationID,
			SenderID:       senderID,
			Content:        string(normalized),
			PlainText:      plain,
			CreatedAt:      createdAt,
		}
		return tx.Create(&msg).Error
	})
	if err != nil {
		return nil, apperrors.TransientStore("Failed to append message")
	}

	return &msg, nil
}

// MessageCursor is the keyset position for history pagination.
type MessageCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

// ListMessagesBefore pages backward through history: the newest page when
// cursor is nil, strictly older rows otherwise. Keyset on (created_at, id)
// means concurrent appends never duplicate or skip a row mid-pagination.
func ListMessagesBefore(conversationID, profileID string, cursor *MessageCursor, limit int) ([]models.Message, error) {
	if _, err := GetParticipant(conversationID, profileID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := database.DB.Where("conversation_id = ?", conversationID)
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var messages []models.Message
	err := query.Order("created_at desc, id desc").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, apperrors.TransientStore("Failed to load messages")
	}
	return messages, nil
}

// ListMessagesAfter pages forward from a cursor, oldest first. Clients use
// this to backfill after reconnecting, merging by message id.
func ListMessagesAfter(conversationID, profileID string, cursor *MessageCursor, limit int) ([]models.Message, error) {
	if _, err := GetParticipant(conversationID, profileID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := database.DB.Where("conversation_id = ?", conversationID)
	if cursor != nil {
		query = query.Where(
			"created_at > ? OR (created_at = ? AND id > ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var messages []models.Message
	err := query.Order("created_at asc, id asc").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, apperrors.TransientStore("Failed to load messages")
	}
	return messages, nil
}

// MessagePreview is the short plain-text form used in notification bodies.
func MessagePreview(m *models.Message) string {
	return utils.TruncateString(m.PlainText, previewLength)
}
