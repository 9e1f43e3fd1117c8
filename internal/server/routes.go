// Package server configures the HTTP server and routes.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bookforge/cover-service/internal/config"
	"github.com/bookforge/cover-service/internal/handler"
	"github.com/bookforge/cover-service/internal/middleware"
	"github.com/bookforge/cover-service/internal/service"
)

// Deps carries the wired collaborators the routes need. Dependencies are
// passed explicitly; no DI container.
type Deps struct {
	CoverService *service.CoverService
}

// RegisterRoutes sets up all HTTP routes on the Gin engine.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps, logger *zap.Logger) {
	healthHandler := handler.NewHealthHandler()
	coverHandler := handler.NewCoverHandler(deps.CoverService, logger)
	adminHandler := handler.NewAdminHandler(deps.CoverService, logger)

	// Public endpoints (no auth)
	r.GET("/healthz", healthHandler.Healthz)

	// CORS middleware applies to the entire API group.
	api := r.Group("/api/v1")
	api.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Authenticated API endpoints
	authed := api.Group("")
	authed.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	authed.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	{
		authed.POST("/covers", coverHandler.Generate)
		authed.POST("/covers/convert", coverHandler.Convert)
		authed.GET("/covers/:digest", coverHandler.Download)
	}

	// Admin endpoints (separate auth with admin keys)
	admin := api.Group("/admin")
	admin.Use(middleware.AdminKeyAuth(cfg.Auth.AdminKeys))
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/recent", adminHandler.Recent)
	}
}
