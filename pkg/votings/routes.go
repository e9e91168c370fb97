package votings

import (
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/binder"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers voting routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	votingService := NewService(db)

	h := &handler{
		votingService: votingService,
	}

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.GET("/library/:id", h.listLibrary)
	g.PUT("/vote/:id", h.vote, authMiddleware.Authenticate, binder.AllowEmptyBody)
	g.PUT("/end/:id", h.end, authMiddleware.Authenticate, authMiddleware.RequireStaff(), binder.AllowEmptyBody)
	g.DELETE("/:id", h.delete, authMiddleware.Authenticate, authMiddleware.RequireStaff())
}
