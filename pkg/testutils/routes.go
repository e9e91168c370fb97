// Package testutils provides database fixtures for package tests and
// test-only API endpoints for end-to-end runs.
// The routes are only registered when ENVIRONMENT=test.
package testutils

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers test-only routes.
// These endpoints should ONLY be registered in test environments.
func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{db: db}

	test := e.Group("/test")
	test.POST("/accounts", h.createAccount)
	test.POST("/books", h.createBooks)
	test.DELETE("/data", h.deleteAll)
}
