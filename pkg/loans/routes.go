package loans

import (
	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/binder"
	"github.com/librisapp/libris/pkg/config"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the book loan and waiting list routes under g.
func RegisterRoutes(g *echo.Group, db *bun.DB, policy config.LoanPolicy, authMiddleware *auth.Middleware) {
	loanService := NewService(db, policy)

	h := &handler{
		loanService: loanService,
	}

	staff := authMiddleware.RequireStaff()

	loans := g.Group("/bookloan", authMiddleware.Authenticate)
	loans.GET("", h.list, staff)
	loans.GET("/me", h.me)
	loans.GET("/:id", h.retrieve, staff)
	loans.GET("/library/:id", h.listLibrary, staff)
	loans.GET("/user/:id", h.listUser, staff)
	loans.POST("/create", h.create)
	loans.POST("/:id/loan", h.confirm, staff, binder.AllowEmptyBody)
	loans.POST("/:id/receive", h.receive, staff, binder.AllowEmptyBody)
	loans.PUT("/:id/fine/:fine", h.fine, staff, binder.AllowEmptyBody)
	loans.POST("/:id/extend/:days", h.extend, binder.AllowEmptyBody)

	waiting := g.Group("/waitinglist", authMiddleware.Authenticate)
	waiting.GET("/library/:id", h.listWaitingList, staff)
}
