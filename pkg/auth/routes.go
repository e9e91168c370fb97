package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/binder"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the auth routes on g and returns the middleware
// the other packages gate their routes with.
func RegisterRoutes(g *echo.Group, db *bun.DB, jwtSecret string) *Middleware {
	authService := NewService(db, jwtSecret)
	authMiddleware := NewMiddleware(authService)

	h := &handler{
		authService: authService,
	}

	auth := g.Group("/auth")
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)
	auth.POST("/logout", h.logout, binder.AllowEmptyBody)
	auth.GET("/me", h.me, authMiddleware.Authenticate)

	return authMiddleware
}
