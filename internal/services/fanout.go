package services

import (
	"time"

	"github.com/hivecrest/community-backend/internal/access"
	"github.com/hivecrest/community-backend/internal/database"
	"github.com/hivecrest/community-backend/internal/models"
	"github.com/hivecrest/community-backend/internal/realtime"
	"github.com/hivecrest/community-backend/pkg/logger"
)

// NotificationEvent is one domain occurrence to fan out: who caused it,
// which gated resource it concerns, and who it explicitly affects.
type NotificationEvent struct {
	Type    models.NotificationType
	ActorID string // causer; never notified

	// SpaceID scopes membership-based recipient expansion and the
	// membership check for private resources. Empty for DM notices.
	SpaceID  string
	Resource access.Resource

	// Affected names explicit recipients (post author for a reply, the
	// mentioned member, an invitee). NEW_POST and EVENT_REMINDER expand
	// to the space membership instead.
	Affected []string

	Title   string
	Body    string
	Link    string
	Payload models.NotificationPayload
}

// Notify computes the recipient set for an event, persists one notification
// per eligible recipient and pushes it to their topic. A recipient failing
// the access policy is silently excluded; a persistence failure for one
// recipient is logged and never affects the others or the triggering write.
// Returns the ids that were actually notified.
func Notify(event NotificationEvent) []string {
	candidates := event.Affected
	if event.Type == models.NotificationTypeNewPost || event.Type == models.NotificationTypeEventReminder {
		candidates = spaceMemberIDs(event.SpaceID)
	}

	seen := make(map[string]bool)
	notified := make([]string, 0, len(candidates))

	for _, recipientID := range candidates {
		if recipientID == "" || recipientID == event.ActorID || seen[recipientID] {
			continue
		}
		seen[recipientID] = true

		// Fresh tier lookup per evaluation: a demoted member must drop out
		// of fan-out immediately, so the tier is never cached here.
		var recipient models.Profile
		if err := database.DB.Select("id", "tier", "role").First(&recipient, "id = ?", recipientID).Error; err != nil {
			logger.Warn().Err(err).Str("recipient_id", recipientID).Msg("fanout: recipient lookup failed")
			continue
		}

		resource := event.Resource
		if event.SpaceID != "" {
			resource.IsMember = isSpaceMember(event.SpaceID, recipientID)
		}

		actor := access.Actor{ID: recipient.ID, Tier: recipient.Tier, Role: recipient.Role}
		if !access.CanAccess(actor, resource) {
			continue
		}

		notification := models.Notification{
			ProfileID: recipientID,
			Type:      event.Type,
			Title:     event.Title,
			Body:      event.Body,
			Link:      event.Link,
			Metadata:  models.EncodeNotificationPayload(event.Payload),
			CreatedAt: time.Now(),
		}
		if event.ActorID != "" {
			actorID := event.ActorID
			notification.ActorID = &actorID
		}

		if err := database.DB.Create(&notification).Error; err != nil {
			// Per-recipient isolation: log and move on
			logger.Error().Err(err).
				Str("recipient_id", recipientID).
				Str("type", string(event.Type)).
				Msg("fanout: failed to persist notification")
			continue
		}

		database.CacheInvalidate(unreadCacheKey(recipientID))
		realtime.EmitToProfile(recipientID, "notification", notification)
		notified = append(notified, recipientID)
	}

	return notified
}

// NotifyMessage persists a "new direct message" notice for the recipient,
// but only when they are not already viewing the conversation. The push on
// the conversation topic has already happened; this is the durable nudge.
func NotifyMessage(msg *models.Message, senderName, recipientID string) {
	if realtime.IsViewingConversation(recipientID, msg.ConversationID) {
		return
	}

	Notify(NotificationEvent{
		Type:     models.NotificationTypeSystem,
		ActorID:  msg.SenderID,
		Affected: []string{recipientID},
		Title:    "New message",
		Body:     senderName + ": " + MessagePreview(msg),
		Link:     "/messages/" + msg.ConversationID,
		Payload: models.SystemPayload{
			ConversationID: msg.ConversationID,
			MessageID:      msg.ID,
		},
	})
}

func spaceMemberIDs(spaceID string) []string {
	if spaceID == "" {
		return nil
	}
	var ids []string
	err := database.DB.Model(&models.SpaceMembership{}).
		Where("space_id = ?", spaceID).
		Pluck("profile_id", &ids).Error
	if err != nil {
		logger.Error().Err(err).Str("space_id", spaceID).Msg("fanout: member expansion failed")
		return nil
	}
	return ids
}

func isSpaceMember(spaceID, profileID string) bool {
	var count int64
	database.DB.Model(&models.SpaceMembership{}).
		Where("space_id = ? AND profile_id = ?", spaceID, profileID).
		Count(&count)
	return count > 0
}
