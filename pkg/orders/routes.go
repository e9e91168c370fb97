package orders

import (
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/binder"
	"github.com/librisapp/libris/pkg/models"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers order routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	orderService := NewService(db)

	h := &handler{
		orderService: orderService,
	}

	g.Use(authMiddleware.Authenticate)

	// Distributors see and fulfil orders but never place them.
	supply := authMiddleware.RequireRole(models.RoleLibrarian, models.RoleAdministrator, models.RoleDistributor)

	g.GET("", h.list, supply)
	g.GET("/:id", h.retrieve, supply)
	g.POST("/create", h.create, authMiddleware.RequireStaff())
	g.POST("/:id/deliver", h.deliver, supply, binder.AllowEmptyBody)
}
