package publications

import (
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/binder"
	"github.com/librisapp/libris/pkg/config"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers publication routes on a pre-configured
// group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config, authMiddleware *auth.Middleware) {
	publicationService := NewService(db, cfg.RatingPolicy())

	h := &handler{
		publicationService: publicationService,
	}

	staff := authMiddleware.RequireStaff()

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.GET("/:id/library/:library_id", h.availability)
	g.POST("", h.create, authMiddleware.Authenticate, staff)
	g.PUT("/:id", h.update, authMiddleware.Authenticate, staff)
	g.POST("/:id/library/:library_id", h.associate, authMiddleware.Authenticate, staff, binder.AllowEmptyBody)
	g.POST("/:id/rate/:rate", h.rate, authMiddleware.Authenticate, binder.AllowEmptyBody)
}
