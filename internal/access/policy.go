// Package access decides what a member may see or be notified about.
// Everything here is pure: callers load the current tier and membership
// rows, the policy only compares them.
package access

import "github.com/hivecrest/community-backend/internal/models"

// Actor is the identity view the evaluator works with, as supplied by the
// auth layer or a fresh profile lookup at fan-out time.
type Actor struct {
	ID   string
	Tier models.Tier
	Role models.Role
}

// Resource is the gated thing: a space, an event or a space post. Direct
// messages carry no tier gate and never go through CanAccess.
type Resource struct {
	TierRequired models.Tier
	Visibility   models.Visibility
	IsMember     bool
}

var tierLevels = map[models.Tier]int{
	models.TierSilver:   1,
	models.TierGold:     2,
	models.TierPlatinum: 3,
	models.TierDiamond:  4,
}

// TierLevel maps a tier to its rank. Unknown or missing tiers rank as the
// lowest tier, never the highest.
func TierLevel(t models.Tier) int {
	if level, ok := tierLevels[t]; ok {
		return level
	}
	return tierLevels[models.TierSilver]
}

// CanAccess reports whether the actor may view the resource or be notified
// about it. Admins bypass gating; everyone else needs the tier rank and,
// for private resources, a membership row.
func CanAccess(actor Actor, res Resource) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	if TierLevel(actor.Tier) < TierLevel(res.TierRequired) {
		return false
	}
	if res.Visibility == models.VisibilityPrivate && !res.IsMember {
		return false
	}
	return true
}
