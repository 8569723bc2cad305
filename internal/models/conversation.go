package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is a direct-message thread between exactly two profiles.
// ParticipantAID/ParticipantBID hold the pair in canonical (lexicographic)
// order so the unique index makes get-or-create idempotent under races.
type Conversation struct {
	ID             string    `gorm:"primaryKey;type:text" json:"id"`
	ParticipantAID string    `gorm:"type:text;not null;uniqueIndex:idx_conversation_pair" json:"participantAId"`
	ParticipantBID string    `gorm:"type:text;not null;uniqueIndex:idx_conversation_pair" json:"participantBId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `gorm:"index" json:"updatedAt"`

	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// CanonicalPair orders an unordered profile pair so (A,B) and (B,A)
// always map to the same conversation row.
func CanonicalPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// ConversationParticipant tracks per-member read state for a conversation.
// LastReadAt only ever moves forward and only by the owning member.
type ConversationParticipant struct {
	ConversationID string     `gorm:"primaryKey;type:text" json:"conversationId"`
	ProfileID      string     `gorm:"primaryKey;type:text" json:"profileId"`
	JoinedAt       time.Time  `json:"joinedAt"`
	LastReadAt     *time.Time `json:"lastReadAt"`

	Profile Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}

// Message is an immutable entry in a conversation's append-only log.
// CreatedAt is strictly increasing within a conversation; there is no
// update or delete path.
type Message struct {
	ID             string `gorm:"primaryKey;type:text" json:"id"`
	ConversationID string `gorm:"type:text;not null;index:idx_messages_conv_created,priority:1" json:"conversationId"`
	SenderID       string `gorm:"type:text;not null;index" json:"senderId"`

	// Content is the structured rich-text document as submitted; PlainText
	// is the derived projection used for previews and notification bodies.
	Content   string `gorm:"type:jsonb;not null" json:"content"`
	PlainText string `gorm:"type:text;not null" json:"plainText"`

	// Soft display flag. last_read_at on the participant row is what unread
	// counts are derived from; this never drives behavior.
	IsRead bool `gorm:"default:false" json:"isRead"`

	CreatedAt time.Time `gorm:"index:idx_messages_conv_created,priority:2" json:"createdAt"`

	Sender Profile `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}
