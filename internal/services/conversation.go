package services

import (
	"time"

	"github.com/hivecrest/community-backend/internal/database"
	"github.com/hivecrest/community-backend/internal/models"
	apperrors "github.com/hivecrest/community-backend/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetOrCreateConversation returns the single conversation for an unordered
// pair of profiles, creating it (and both participant rows) on first use.
// Concurrent creators race on the unique pair index; the loser's insert is
// a no-op and both callers fetch the same row.
func GetOrCreateConversation(profileA, profileB string) (*models.Conversation, error) {
	if profileA == "" || profileB == "" {
		return nil, apperrors.BadRequest("Both participants are required")
	}
	if profileA == profileB {
		return nil, apperrors.BadRequest("Cannot start a conversation with yourself")
	}

	first, second := models.CanonicalPair(profileA, profileB)

	conv := models.Conversation{
		ParticipantAID: first,
		ParticipantBID: second,
	}
	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "participant_a_id"}, {Name: "participant_b_id"}},
		DoNothing: true,
	}).Create(&conv).Error
	if err != nil {
		return nil, apperrors.TransientStore("Failed to create conversation")
	}

	// Re-read by pair: on conflict the generated id above never hit the table
	var existing models.Conversation
	err = database.DB.
		Where("participant_a_id = ? AND participant_b_id = ?", first, second).
		First(&existing).Error
	if err != nil {
		return nil, apperrors.TransientStore("Failed to load conversation")
	}

	now := time.Now()
	participants := []models.ConversationParticipant{
		{ConversationID: existing.ID, ProfileID: first, JoinedAt: now},
		{ConversationID: existing.ID, ProfileID: second, JoinedAt: now},
	}
	err = database.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&participants).Error
	if err != nil {
		return nil, apperrors.TransientStore("Failed to create participants")
	}

	return &existing, nil
}

// GetParticipant loads the caller's participant row, which doubles as the
// membership check for every conversation-scoped operation.
func GetParticipant(conversationID, profileID string) (*models.ConversationParticipant, error) {
	var participant models.ConversationParticipant
	err := database.DB.
		Where("conversation_id = ? AND profile_id = ?", conversationID, profileID).
		First(&participant).Error
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.TransientStore("Failed to load participant")
	}
	return &participant, nil
}

// MarkConversationRead advances the caller's read cursor. The cursor is
// monotonic: a timestamp at or before the stored one is a no-op, never an
// error. Returns whether the cursor actually moved.
func MarkConversationRead(conversationID, profileID string, readAt time.Time) (bool, error) {
	if _, err := GetParticipant(conversationID, profileID); err != nil {
		return false, err
	}

	result := database.DB.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND profile_id = ?", conversationID, profileID).
		Where("last_read_at IS NULL OR last_read_at < ?", readAt).
		Update("last_read_at", readAt)
	if result.Error != nil {
		return false, apperrors.TransientStore("Failed to mark conversation read")
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	// Soft display flag on counterpart messages. The cursor above is what
	// unread counts derive from; this only keeps list payloads consistent.
	database.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND created_at <= ? AND is_read = ?",
			conversationID, profileID, readAt, false).
		Update("is_read", true)

	return true, nil
}

// UnreadCount counts counterpart messages newer than the caller's read cursor.
func UnreadCount(conversationID, profileID string) (int64, error) {
	participant, err := GetParticipant(conversationID, profileID)
	if err != nil {
		return 0, err
	}

	query := database.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id != ?", conversationID, profileID)
	if participant.LastReadAt != nil {
		query = query.Where("created_at > ?", *participant.LastReadAt)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, apperrors.TransientStore("Failed to count unread messages")
	}
	return count, nil
}

// ConversationSummary is one row of the inbox view.
type ConversationSummary struct {
	Conversation models.Conversation `json:"conversation"`
	Counterpart  models.Profile      `json:"counterpart"`
	LastMessage  *models.Message     `json:"lastMessage"`
	UnreadCount  int64               `json:"unreadCount"`
}

// ListConversations returns the caller's conversations ordered by recency,
// each with the counterpart profile, last message and unread count.
func ListConversations(profileID string) ([]ConversationSummary, error) {
	var conversations []models.Conversation
	err := database.DB.
		Where("participant_a_id = ? OR participant_b_id = ?", profileID, profileID).
		Order("updated_at desc").
		Find(&conversations).Error
	if err != nil {
		return nil, apperrors.TransientStore("Failed to load conversations")
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		counterpartID := conv.ParticipantAID
		if counterpartID == profileID {
			counterpartID = conv.ParticipantBID
		}

		var counterpart models.Profile
		if err := database.DB.First(&counterpart, "id = ?", counterpartID).Error; err != nil {
			continue
		}

		var last models.Message
		var lastMessage *models.Message
		err := database.DB.
			Where("conversation_id = ?", conv.ID).
			Order("created_at desc, id desc").
			First(&last).Error
		if err == nil {
			lastMessage = &last
		}

		unread, err := UnreadCount(conv.ID, profileID)
		if err != nil {
			unread = 0
		}

		summaries = append(summaries, ConversationSummary{
			Conversation: conv,
			Counterpart:  counterpart,
			LastMessage:  lastMessage,
			UnreadCount:  unread,
		})
	}

	return summaries, nil
}
