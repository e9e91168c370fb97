package libraries

import (
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/models"
	"github.com/uptrace/bun"
)

func RegisterRoutesWithAuth(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	libraryService := NewService(db)

	h := &handler{
		libraryService: libraryService,
	}

	admin := authMiddleware.RequireRole(models.RoleAdministrator)

	g.GET("/library", h.list)
	g.GET("/library/:id", h.retrieve)
	g.POST("/library", h.create, authMiddleware.Authenticate, admin)
	g.PUT("/library/:id", h.update, authMiddleware.Authenticate, admin)
}
