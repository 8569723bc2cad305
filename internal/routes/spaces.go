package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/hivecrest/community-backend/internal/handlers"
	"github.com/hivecrest/community-backend/internal/middleware"
)

func RegisterSpaceRoutes(r gin.IRouter) {
	spaces := r.Group("/spaces")
	spaces.Use(middleware.AuthMiddleware())
	{
		spaces.GET("", handlers.ListSpaces)
		spaces.POST("", middleware.AdminMiddleware(), handlers.CreateSpace)
		spaces.POST("/:id/join", handlers.JoinSpace)
		spaces.POST("/:id/posts", middleware.SpaceWriteRateLimit(), handlers.CreatePost)
		spaces.POST("/:id/invite", middleware.SpaceWriteRateLimit(), handlers.InviteToSpace)
		spaces.POST("/:id/events", middleware.AdminMiddleware(), handlers.CreateEvent)
	}

	posts := r.Group("/posts")
	posts.Use(middleware.AuthMiddleware())
	{
		posts.POST("/:id/like", handlers.LikePost)
		posts.POST("/:id/replies", middleware.SpaceWriteRateLimit(), handlers.ReplyToPost)
	}

	events := r.Group("/events")
	events.Use(middleware.AuthMiddleware())
	{
		events.POST("/:id/remind", middleware.AdminMiddleware(), handlers.RemindEvent)
	}
}
