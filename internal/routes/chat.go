package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/hivecrest/community-backend/internal/handlers"
	"github.com/hivecrest/community-backend/internal/middleware"
)

func RegisterChatRoutes(r gin.IRouter) {
	chat := r.Group("/chat")
	chat.Use(middleware.AuthMiddleware())
	{
		chat.GET("/conversations", handlers.GetConversations)
		chat.GET("/conversations/:id/messages", handlers.GetMessages)
		chat.GET("/conversations/:id/unread-count", handlers.GetUnreadMessageCount)
		chat.POST("/conversations/:id/read", handlers.MarkConversationRead)
		chat.POST("/messages", middleware.ChatRateLimit(), handlers.SendMessage)
	}
}
