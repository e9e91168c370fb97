package books

import (
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers book routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	bookService := NewService(db)

	h := &handler{
		bookService: bookService,
	}

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.PUT("/:id", h.update, authMiddleware.Authenticate, authMiddleware.RequireStaff())
}
