package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTypeMention       NotificationType = "MENTION"
	NotificationTypeReply         NotificationType = "REPLY"
	NotificationTypeLike          NotificationType = "LIKE"
	NotificationTypeEventReminder NotificationType = "EVENT_REMINDER"
	NotificationTypeNewPost       NotificationType = "NEW_POST"
	NotificationTypeInvitation    NotificationType = "INVITATION"
	NotificationTypeSystem        NotificationType = "SYSTEM"
)

// Notification is owned by its recipient. IsRead transitions false→true
// exactly once and never back.
type Notification struct {
	ID        string           `gorm:"primaryKey;type:text" json:"id"`
	ProfileID string           `gorm:"index;type:text;not null" json:"profileId"` // Recipient
	ActorID   *string          `gorm:"index;type:text" json:"actorId"`            // Who caused it, if anyone
	Type      NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Title     string           `gorm:"type:text" json:"title"`
	Body      string           `gorm:"type:text" json:"body"`
	Link      string           `gorm:"type:text" json:"link"`
	Metadata  string           `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	IsRead    bool             `gorm:"default:false" json:"isRead"`
	CreatedAt time.Time        `gorm:"index" json:"createdAt"`

	// Relations
	Profile Profile  `gorm:"foreignKey:ProfileID" json:"-"`
	Actor   *Profile `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return
}

// NotificationPayload is the metadata variant carried by a notification.
// Each notification type has one known payload shape, fixed when the
// notification is built rather than interpreted at render time.
type NotificationPayload interface {
	NotificationType() NotificationType
}

type MentionPayload struct {
	PostID  string `json:"postId,omitempty"`
	ReplyID string `json:"replyId,omitempty"`
	SpaceID string `json:"spaceId,omitempty"`
}

func (MentionPayload) NotificationType() NotificationType { return NotificationTypeMention }

type ReplyPayload struct {
	PostID  string `json:"postId"`
	ReplyID string `json:"replyId"`
	SpaceID string `json:"spaceId,omitempty"`
}

func (ReplyPayload) NotificationType() NotificationType { return NotificationTypeReply }

type LikePayload struct {
	PostID  string `json:"postId"`
	SpaceID string `json:"spaceId,omitempty"`
}

func (LikePayload) NotificationType() NotificationType { return NotificationTypeLike }

type EventReminderPayload struct {
	EventID  string    `json:"eventId"`
	SpaceID  string    `json:"spaceId"`
	StartsAt time.Time `json:"startsAt"`
}

func (EventReminderPayload) NotificationType() NotificationType { return NotificationTypeEventReminder }

type NewPostPayload struct {
	PostID  string `json:"postId"`
	SpaceID string `json:"spaceId"`
}

func (NewPostPayload) NotificationType() NotificationType { return NotificationTypeNewPost }

type InvitationPayload struct {
	SpaceID   string `json:"spaceId"`
	InviterID string `json:"inviterId"`
}

func (InvitationPayload) NotificationType() NotificationType { return NotificationTypeInvitation }

// SystemPayload covers platform notices, including the "new direct message
// while you were away" notice which carries the conversation pointer.
type SystemPayload struct {
	ConversationID string `json:"conversationId,omitempty"`
	MessageID      string `json:"messageId,omitempty"`
	Note           string `json:"note,omitempty"`
}

func (SystemPayload) NotificationType() NotificationType { return NotificationTypeSystem }

// EncodeNotificationPayload serializes a payload for the metadata column.
func EncodeNotificationPayload(p NotificationPayload) string {
	if p == nil {
		return "{}"
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// DecodeNotificationPayload resolves the metadata column back into the
// variant matching the notification type.
func DecodeNotificationPayload(t NotificationType, raw string) (NotificationPayload, error) {
	var p NotificationPayload
	switch t {
	case NotificationTypeMention:
		p = &MentionPayload{}
	case NotificationTypeReply:
		p = &ReplyPayload{}
	case NotificationTypeLike:
		p = &LikePayload{}
	case NotificationTypeEventReminder:
		p = &EventReminderPayload{}
	case NotificationTypeNewPost:
		p = &NewPostPayload{}
	case NotificationTypeInvitation:
		p = &InvitationPayload{}
	default:
		p = &SystemPayload{}
	}
	if err := json.Unmarshal([]byte(raw), p); err != nil {
		return nil, err
	}
	return p, nil
}
