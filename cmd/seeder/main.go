package main

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hivecrest/community-backend/internal/config"
	"github.com/hivecrest/community-backend/internal/database"
	"github.com/hivecrest/community-backend/internal/models"
)

// Seeds demo profiles across all four tiers plus a couple of gated spaces,
// enough to exercise messaging and notification fan-out locally.
func main() {
	config.LoadConfig()
	database.Connect()

	log.Println("Running migrations (just in case)...")
	database.DB.AutoMigrate(
		&models.Profile{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.Message{},
		&models.Notification{},
		&models.Space{},
		&models.SpaceMembership{},
		&models.Post{},
		&models.PostReply{},
		&models.PostLike{},
		&models.Event{},
	)

	profiles := []models.Profile{
		{Username: "ada", Name: "Ada Fischer", Email: "ada@hivecrest.dev", Tier: models.TierDiamond, Role: models.RoleAdmin},
		{Username: "bruno", Name: "Bruno Leite", Email: "bruno@hivecrest.dev", Tier: models.TierPlatinum, Role: models.RoleMember},
		{Username: "carla", Name: "Carla Ngo", Email: "carla@hivecrest.dev", Tier: models.TierGold, Role: models.RolePartner},
		{Username: "dev", Name: "Dev Sharma", Email: "dev@hivecrest.dev", Tier: models.TierSilver, Role: models.RoleMember},
	}

	for i := range profiles {
		profiles[i].ID = uuid.New().String()
		profiles[i].Image = "https://api.dicebear.com/7.x/identicon/svg?seed=" + profiles[i].Username

		var existing models.Profile
		if err := database.DB.Where("username = ?", profiles[i].Username).First(&existing).Error; err == nil {
			profiles[i] = existing
			log.Printf("Profile exists: %s", existing.Username)
			continue
		}
		if err := database.DB.Create(&profiles[i]).Error; err != nil {
			log.Fatalf("Failed to seed profile %s: %v", profiles[i].Username, err)
		}
		log.Printf("Profile created: %s (%s)", profiles[i].Username, profiles[i].Tier)
	}

	spaces := []models.Space{
		{Name: "The Commons", Slug: "commons", Description: "Open to every member", TierRequired: models.TierSilver, Visibility: models.VisibilityPublic},
		{Name: "Founders Circle", Slug: "founders-circle", Description: "Platinum and up", TierRequired: models.TierPlatinum, Visibility: models.VisibilityPublic},
		{Name: "Diamond Lounge", Slug: "diamond-lounge", Description: "Invitation only", TierRequired: models.TierDiamond, Visibility: models.VisibilityPrivate},
	}

	for i := range spaces {
		spaces[i].CreatedByID = profiles[0].ID

		var existing models.Space
		if err := database.DB.Where("slug = ?", spaces[i].Slug).First(&existing).Error; err == nil {
			spaces[i] = existing
			log.Printf("Space exists: %s", existing.Slug)
			continue
		}
		if err := database.DB.Create(&spaces[i]).Error; err != nil {
			log.Fatalf("Failed to seed space %s: %v", spaces[i].Slug, err)
		}
		log.Printf("Space created: %s (tier %s)", spaces[i].Slug, spaces[i].TierRequired)
	}

	// Everyone joins the commons; higher tiers join their gated spaces
	for _, p := range profiles {
		memberships := []models.SpaceMembership{{SpaceID: spaces[0].ID, ProfileID: p.ID, JoinedAt: time.Now()}}
		if p.Tier == models.TierPlatinum || p.Tier == models.TierDiamond {
			memberships = append(memberships, models.SpaceMembership{SpaceID: spaces[1].ID, ProfileID: p.ID, JoinedAt: time.Now()})
		}
		if p.Tier == models.TierDiamond {
			memberships = append(memberships, models.SpaceMembership{SpaceID: spaces[2].ID, ProfileID: p.ID, JoinedAt: time.Now()})
		}
		for _, m := range memberships {
			database.DB.FirstOrCreate(&m, models.SpaceMembership{SpaceID: m.SpaceID, ProfileID: m.ProfileID})
		}
	}

	log.Println("Seeding complete")
}
