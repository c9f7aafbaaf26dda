package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/gatherspace/chat-sync/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes; every chat route requires a wallet session token
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(authCfg))
	{
		// Chat entry: entitlement gate, group locate/create, entry sync
		v1.GET("/events/:id/chat", handler.AccessChat)

		// Group history and send
		v1.GET("/groups/:id/messages", handler.GetMessages)
		v1.POST("/groups/:id/messages", handler.SendMessage)

		// Live message stream (SSE)
		v1.GET("/groups/:id/stream", handler.StreamMessages)
	}
}
