package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	handlers "ninepros_server/internal/api"
)

// RegisterRoutes sets up the API endpoints and groups them logically.
// limit guards the model endpoints and may be nil.
func RegisterRoutes(router *gin.Engine, h *handlers.APIHandler, limit gin.HandlerFunc) {
	apiGroup := router.Group("/api")

	// --- Generation and edits (model calls, rate limited) ---
	askGroup := apiGroup.Group("/ask-ai")
	if limit != nil {
		askGroup.Use(limit)
	}
	{
		askGroup.POST("", h.AskAI)   // Stream a new site from a prompt or redesign url
		askGroup.PUT("", h.EditSite) // Apply a follow-up edit to existing pages
	}

	// --- Project Lifecycle ---
	projectGroup := apiGroup.Group("/projects")
	{
		projectGroup.POST("", h.CreateProject)
		projectGroup.GET("", h.ListProjects)
		projectGroup.GET("/:id", h.GetProject)
		projectGroup.PUT("/:id/pages", h.SavePages)
		projectGroup.GET("/:id/preview/*path", h.PreviewPage)
		projectGroup.POST("/:id/deploy", h.DeployProject)
	}

	apiGroup.GET("/analytics", h.Analytics)

	// --- Simple Health Check ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
