package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleMember  Role = "MEMBER"
	RolePartner Role = "PARTNER"
	RoleAdmin   Role = "ADMIN"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

// Tier is the ordered membership level gating content visibility.
// Ordering (silver < gold < platinum < diamond) lives in internal/access.
type Tier string

const (
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
	TierDiamond  Tier = "DIAMOND"
)

// Profile is an authenticated member. Tier, role and visibility are owned by
// the profile-settings flows; the messaging core only reads them.
type Profile struct {
	ID        string         `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name     string `json:"name"`
	Username string `gorm:"uniqueIndex" json:"username"`
	Email    string `gorm:"uniqueIndex" json:"email"`
	Image    string `json:"image"`
	Bio      string `json:"bio"`

	Tier       Tier       `gorm:"type:text;default:'SILVER'" json:"tier"`
	Role       Role       `gorm:"type:text;default:'MEMBER'" json:"role"`
	Visibility Visibility `gorm:"type:text;default:'PUBLIC'" json:"visibility"`
}
