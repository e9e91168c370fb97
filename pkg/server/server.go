package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/librisapp/libris/pkg/accounts"
	"github.com/librisapp/libris/pkg/auth"
	"github.com/librisapp/libris/pkg/binder"
	"github.com/librisapp/libris/pkg/books"
	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/libraries"
	"github.com/librisapp/libris/pkg/loans"
	"github.com/librisapp/libris/pkg/orders"
	"github.com/librisapp/libris/pkg/publications"
	"github.com/librisapp/libris/pkg/testutils"
	"github.com/librisapp/libris/pkg/votings"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e, err := newEcho(cfg, db)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func newEcho(cfg *config.Config, db *bun.DB) (*echo.Echo, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b
	e.JSONSerializer = &jsonSerializer{}

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	api := e.Group("/api")

	// Register auth routes and get the middleware every other group uses
	authMiddleware := auth.RegisterRoutes(api, db, cfg.JWTSecret)

	registerRoutes(api, db, cfg, authMiddleware)

	// Test-only helpers for end-to-end suites
	if cfg.Environment == "test" {
		testutils.RegisterRoutes(e, db)
	}

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	return e, nil
}

// registerRoutes registers the domain routes under the api group. Each package
// applies its own authentication and role checks per route.
func registerRoutes(api *echo.Group, db *bun.DB, cfg *config.Config, authMiddleware *auth.Middleware) {
	libraries.RegisterRoutesWithAuth(api, db, authMiddleware)

	books.RegisterRoutesWithGroup(api.Group("/book"), db, authMiddleware)
	publications.RegisterRoutesWithGroup(api.Group("/publication"), db, cfg, authMiddleware)
	orders.RegisterRoutesWithGroup(api.Group("/order"), db, authMiddleware)
	votings.RegisterRoutesWithGroup(api.Group("/voting"), db, authMiddleware)
	accounts.RegisterRoutesWithGroup(api.Group("/account"), db, cfg.AdminKey, authMiddleware)

	// Registers both bookloan and waitinglist
	loans.RegisterRoutes(api, db, cfg.LoanPolicy(), authMiddleware)

	config.RegisterRoutesWithAuth(api, cfg, authMiddleware)
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
