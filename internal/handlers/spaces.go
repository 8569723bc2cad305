package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hivecrest/community-backend/internal/access"
	"github.com/hivecrest/community-backend/internal/database"
	"github.com/hivecrest/community-backend/internal/middleware"
	"github.com/hivecrest/community-backend/internal/models"
	"github.com/hivecrest/community-backend/internal/services"
	"github.com/hivecrest/community-backend/pkg/utils"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Space endpoints are thin CRUD around the fan-out triggers. Tier gating
// happens here on the way in and again inside fan-out on the way out, so
// a member demoted after joining stops receiving gated notifications.

func spaceResource(space *models.Space, profileID string) access.Resource {
	res := access.Resource{
		TierRequired: space.TierRequired,
		Visibility:   space.Visibility,
	}
	var count int64
	database.DB.Model(&models.SpaceMembership{}).
		Where("space_id = ? AND profile_id = ?", space.ID, profileID).
		Count(&count)
	res.IsMember = count > 0
	return res
}

func loadSpace(c *gin.Context, spaceID string) (*models.Space, bool) {
	var space models.Space
	if err := database.DB.First(&space, "id = ?", spaceID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Space not found"})
		return nil, false
	}
	return &space, true
}

// ListSpaces returns spaces the caller may see
func ListSpaces(c *gin.Context) {
	profileID, tier, role := middleware.ActorFromContext(c)
	actor := access.Actor{ID: profileID, Tier: tier, Role: role}

	var spaces []models.Space
	if err := database.DB.Order("created_at asc").Find(&spaces).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch spaces"})
		return
	}

	visible := make([]models.Space, 0, len(spaces))
	for _, space := range spaces {
		if access.CanAccess(actor, spaceResource(&space, profileID)) {
			visible = append(visible, space)
		}
	}

	c.JSON(http.StatusOK, gin.H{"spaces": visible})
}

// CreateSpace POST /spaces (admin)
func CreateSpace(c *gin.Context) {
	profileID := c.MustGet("userId").(string)

	var req struct {
		Name         string            `json:"name" binding:"required"`
		Slug         string            `json:"slug"`
		Description  string            `json:"description"`
		TierRequired models.Tier       `json:"tierRequired"`
		Visibility   models.Visibility `json:"visibility"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.Slug == "" {
		req.Slug = utils.GenerateSlug(req.Name)
	}

	space := models.Space{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		TierRequired: req.TierRequired,
		Visibility:   req.Visibility,
		CreatedByID:  profileID,
	}
	if space.TierRequired == "" {
		space.TierRequired = models.TierSilver
	}
	if space.Visibility == "" {
		space.Visibility = models.VisibilityPublic
	}

	if err := database.DB.Create(&space).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create space"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"space": space})
}

// JoinSpace POST /spaces/:id/join — tier-gated
func JoinSpace(c *gin.Context) {
	profileID, tier, role := middleware.ActorFromContext(c)

	space, ok := loadSpace(c, c.Param("id"))
	if !ok {
		return
	}

	actor := access.Actor{ID: profileID, Tier: tier, Role: role}
	res := access.Resource{TierRequired: space.TierRequired, Visibility: models.VisibilityPublic}
	if !access.CanAccess(actor, res) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Your membership tier does not include this space"})
		return
	}

	membership := models.SpaceMembership{
		SpaceID:   space.ID,
		ProfileID: profileID,
		JoinedAt:  time.Now(),
	}
	if err := database.DB.FirstOrCreate(&membership,
		models.SpaceMembership{SpaceID: space.ID, ProfileID: profileID}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join space"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"membership": membership})
}

// CreatePost POST /spaces/:id/posts — fans out NEW_POST to eligible members
func CreatePost(c *gin.Context) {
	profileID, tier, role := middleware.ActorFromContext(c)

	space, ok := loadSpace(c, c.Param("id"))
	if !ok {
		return
	}

	actor := access.Actor{ID: profileID, Tier: tier, Role: role}
	if !access.CanAccess(actor, spaceResource(space, profileID)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	var req struct {
		Title   string   `json:"title" binding:"required"`
		Content string   `json:"content" binding:"required"`
		Tags    []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	post := models.Post{
		SpaceID:  space.ID,
		AuthorID: profileID,
		Title:    req.Title,
		Content:  req.Content,
		Tags:     pq.StringArray(req.Tags),
	}
	if err := database.DB.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	go services.Notify(services.NotificationEvent{
		Type:    models.NotificationTypeNewPost,
		ActorID: profileID,
		SpaceID: space.ID,
		Resource: access.Resource{
			TierRequired: space.TierRequired,
			Visibility:   space.Visibility,
		},
		Title:   "New post in " + space.Name,
		Body:    post.Title,
		Link:    "/spaces/" + space.Slug + "/posts/" + post.ID,
		Payload: models.NewPostPayload{PostID: post.ID, SpaceID: space.ID},
	})

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// LikePost POST /posts/:id/like — notifies the author once
func LikePost(c *gin.Context) {
	profileID := c.MustGet("userId").(string)
	postID := c.Param("id")

	var post models.Post
	if err := database.DB.Preload("Space").First(&post, "id = ?", postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	like := models.PostLike{PostID: post.ID, ProfileID: profileID, CreatedAt: time.Now()}
	result := database.DB.FirstOrCreate(&like, models.PostLike{PostID: post.ID, ProfileID: profileID})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to like post"})
		return
	}

	// Only a fresh like notifies; re-likes are silent
	if result.RowsAffected > 0 {
		go services.Notify(services.NotificationEvent{
			Type:     models.NotificationTypeLike,
			ActorID:  profileID,
			SpaceID:  post.SpaceID,
			Resource: access.Resource{TierRequired: post.Space.TierRequired, Visibility: post.Space.Visibility},
			Affected: []string{post.AuthorID},
			Title:    "Your post was liked",
			Body:     post.Title,
			Link:     "/spaces/" + post.Space.Slug + "/posts/" + post.ID,
			Payload:  models.LikePayload{PostID: post.ID, SpaceID: post.SpaceID},
		})
	}

	c.JSON(http.StatusOK, gin.H{"liked": true})
}

// ReplyToPost POST /posts/:id/replies — notifies the author, plus any mentions
func ReplyToPost(c *gin.Context) {
	profileID := c.MustGet("userId").(string)
	postID := c.Param("id")

	var post models.Post
	if err := database.DB.Preload("Space").First(&post, "id = ?", postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var req struct {
		Content  string   `json:"content" binding:"required"`
		Mentions []string `json:"mentions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	reply := models.PostReply{
		PostID:   post.ID,
		AuthorID: profileID,
		Content:  req.Content,
	}
	if err := database.DB.Create(&reply).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reply"})
		return
	}

	resource := access.Resource{TierRequired: post.Space.TierRequired, Visibility: post.Space.Visibility}
	link := "/spaces/" + post.Space.Slug + "/posts/" + post.ID

	go func() {
		services.Notify(services.NotificationEvent{
			Type:     models.NotificationTypeReply,
			ActorID:  profileID,
			SpaceID:  post.SpaceID,
			Resource: resource,
			Affected: []string{post.AuthorID},
			Title:    "New reply to your post",
			Body:     post.Title,
			Link:     link,
			Payload:  models.ReplyPayload{PostID: post.ID, ReplyID: reply.ID, SpaceID: post.SpaceID},
		})

		if len(req.Mentions) > 0 {
			services.Notify(services.NotificationEvent{
				Type:     models.NotificationTypeMention,
				ActorID:  profileID,
				SpaceID:  post.SpaceID,
				Resource: resource,
				Affected: req.Mentions,
				Title:    "You were mentioned",
				Body:     post.Title,
				Link:     link,
				Payload:  models.MentionPayload{PostID: post.ID, ReplyID: reply.ID, SpaceID: post.SpaceID},
			})
		}
	}()

	c.JSON(http.StatusCreated, gin.H{"reply": reply})
}

// InviteToSpace POST /spaces/:id/invite — notifies the invitee
func InviteToSpace(c *gin.Context) {
	profileID := c.MustGet("userId").(string)

	space, ok := loadSpace(c, c.Param("id"))
	if !ok {
		return
	}

	var req struct {
		ProfileID string `json:"profileId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	go services.Notify(services.NotificationEvent{
		Type:     models.NotificationTypeInvitation,
		ActorID:  profileID,
		SpaceID:  space.ID,
		Resource: access.Resource{TierRequired: space.TierRequired, Visibility: models.VisibilityPublic},
		Affected: []string{req.ProfileID},
		Title:    "You're invited to " + space.Name,
		Body:     space.Description,
		Link:     "/spaces/" + space.Slug,
		Payload:  models.InvitationPayload{SpaceID: space.ID, InviterID: profileID},
	})

	c.JSON(http.StatusOK, gin.H{"invited": req.ProfileID})
}

// CreateEvent POST /spaces/:id/events
func CreateEvent(c *gin.Context) {
	profileID := c.MustGet("userId").(string)

	space, ok := loadSpace(c, c.Param("id"))
	if !ok {
		return
	}

	var req struct {
		Title       string    `json:"title" binding:"required"`
		Description string    `json:"description"`
		Location    string    `json:"location"`
		StartsAt    time.Time `json:"startsAt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	event := models.Event{
		SpaceID:     space.ID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		CreatedByID: profileID,
	}
	if err := database.DB.Create(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"event": event})
}

// RemindEvent POST /events/:id/remind — fans out EVENT_REMINDER to members
// who still pass the space's tier gate.
func RemindEvent(c *gin.Context) {
	profileID := c.MustGet("userId").(string)
	eventID := c.Param("id")

	var event models.Event
	err := database.DB.Preload("Space").First(&event, "id = ?", eventID).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load event"})
		return
	}

	recipients := services.Notify(services.NotificationEvent{
		Type:    models.NotificationTypeEventReminder,
		ActorID: profileID,
		SpaceID: event.SpaceID,
		Resource: access.Resource{
			TierRequired: event.Space.TierRequired,
			Visibility:   event.Space.Visibility,
		},
		Title:   "Upcoming event: " + event.Title,
		Body:    event.Location,
		Link:    "/spaces/" + event.Space.Slug + "/events/" + event.ID,
		Payload: models.EventReminderPayload{EventID: event.ID, SpaceID: event.SpaceID, StartsAt: event.StartsAt},
	})

	c.JSON(http.StatusOK, gin.H{"notified": len(recipients)})
}
