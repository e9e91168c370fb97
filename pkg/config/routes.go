package config

import (
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/models"
)

// RegisterRoutesWithAuth exposes the effective policies to administrators.
func RegisterRoutesWithAuth(g *echo.Group, cfg *Config, authMiddleware *auth.Middleware) {
	h := &handler{config: cfg}

	configGroup := g.Group("/config")
	configGroup.Use(authMiddleware.Authenticate)
	configGroup.Use(authMiddleware.RequireRole(models.RoleAdministrator))
	configGroup.GET("/policies", h.policies)
}
