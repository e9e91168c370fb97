package accounts

import (
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/binder"
	"github.com/librisapp/libris/pkg/models"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers account routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, adminKey string, authMiddleware *auth.Middleware) {
	accountService := NewService(db, adminKey)

	h := &handler{
		accountService: accountService,
	}

	// All account routes require authentication
	g.Use(authMiddleware.Authenticate)

	admin := authMiddleware.RequireRole(models.RoleAdministrator)

	g.GET("", h.list, authMiddleware.RequireStaff())
	g.GET("/:id", h.retrieve, authMiddleware.RequireStaff())
	g.PUT("/:id/role/:role", h.setRole, admin, binder.AllowEmptyBody)
	g.PUT("/:id/library/:library_id", h.assignLibrary, admin, binder.AllowEmptyBody)
	g.POST("/admin/claim", h.claimAdministrator)
	g.POST("/me/password", h.changePassword)
}
