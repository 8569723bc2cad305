package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Space is a tier-gated discussion area. TierRequired and Visibility feed
// the access policy both for browsing and for notification fan-out.
type Space struct {
	ID           string     `gorm:"primaryKey;type:text" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	Slug         string     `gorm:"uniqueIndex;not null" json:"slug"`
	Description  string     `gorm:"type:text" json:"description"`
	TierRequired Tier       `gorm:"type:text;default:'SILVER'" json:"tierRequired"`
	Visibility   Visibility `gorm:"type:text;default:'PUBLIC'" json:"visibility"`
	CreatedByID  string     `gorm:"type:text" json:"createdById"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	Members []SpaceMembership `gorm:"foreignKey:SpaceID" json:"members,omitempty"`
}

func (s *Space) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return
}

type SpaceMembership struct {
	SpaceID   string    `gorm:"primaryKey;type:text" json:"spaceId"`
	ProfileID string    `gorm:"primaryKey;type:text" json:"profileId"`
	JoinedAt  time.Time `json:"joinedAt"`

	Profile Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}

// Post is a space post — the trigger for new_post, like, reply and
// mention notifications.
type Post struct {
	ID        string         `gorm:"primaryKey;type:text" json:"id"`
	SpaceID   string         `gorm:"index;type:text;not null" json:"spaceId"`
	AuthorID  string         `gorm:"index;type:text;not null" json:"authorId"`
	Title     string         `gorm:"not null" json:"title"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	Tags      pq.StringArray `gorm:"type:text[]" json:"tags"`
	CreatedAt time.Time      `json:"createdAt"`

	Space  Space   `gorm:"foreignKey:SpaceID" json:"-"`
	Author Profile `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

type PostReply struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	PostID    string    `gorm:"index;type:text;not null" json:"postId"`
	AuthorID  string    `gorm:"index;type:text;not null" json:"authorId"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"createdAt"`

	Post   Post    `gorm:"foreignKey:PostID" json:"-"`
	Author Profile `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (r *PostReply) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

// PostLike is unique per (post, member).
type PostLike struct {
	PostID    string    `gorm:"primaryKey;type:text" json:"postId"`
	ProfileID string    `gorm:"primaryKey;type:text" json:"profileId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Event is a scheduled space event; reminders fan out to space members
// who still pass the space's tier gate at send time.
type Event struct {
	ID          string    `gorm:"primaryKey;type:text" json:"id"`
	SpaceID     string    `gorm:"index;type:text;not null" json:"spaceId"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `gorm:"index" json:"startsAt"`
	CreatedByID string    `gorm:"type:text" json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`

	Space Space `gorm:"foreignKey:SpaceID" json:"-"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return
}
