package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
)

// ContextKeyAccount is the echo context key holding the *models.Account of the
// caller.
const ContextKeyAccount = "account"

// Middleware provides authentication middleware.
type Middleware struct {
	authService *Service
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(authService *Service) *Middleware {
	return &Middleware{
		authService: authService,
	}
}

// tokenFromRequest reads the session cookie, falling back to a bearer token.
func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return ""
}

func (m *Middleware) resolve(c echo.Context) (*models.Account, error) {
	token := tokenFromRequest(c)
	if token == "" {
		return nil, errcodes.Unauthorized("Authentication credentials were not provided.")
	}

	claims, err := m.authService.ValidateToken(token)
	if err != nil {
		return nil, errcodes.Unauthorized("Invalid or expired token.")
	}

	account, err := m.authService.GetAccountByID(c.Request().Context(), claims.AccountID)
	if err != nil {
		return nil, errcodes.Unauthorized("Account not found.")
	}
	return account, nil
}

// Authenticate validates the session token and stores the account in the
// context. If not authenticated, it returns 401.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		account, err := m.resolve(c)
		if err != nil {
			return err
		}
		c.Set(ContextKeyAccount, account)
		return next(c)
	}
}

// AuthenticateOptional stores the account in the context when a valid token is
// present. Otherwise the caller is treated as an unregistered visitor.
func (m *Middleware) AuthenticateOptional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		account, err := m.resolve(c)
		if err != nil {
			account = &models.Account{Role: models.RoleUnregistered}
		}
		c.Set(ContextKeyAccount, account)
		return next(c)
	}
}

// RequireRole returns middleware that rejects callers whose role is not one of
// roles. Must be used after Authenticate.
func (m *Middleware) RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			account, ok := CurrentAccount(c)
			if !ok || account.ID == 0 {
				return errcodes.Unauthorized("Authentication credentials were not provided.")
			}
			if !account.HasRole(roles...) {
				return errcodes.Forbidden(account.Role.String() + " access")
			}
			return next(c)
		}
	}
}

// RequireStaff allows librarians and administrators.
func (m *Middleware) RequireStaff() echo.MiddlewareFunc {
	return m.RequireRole(models.RoleLibrarian, models.RoleAdministrator)
}

// CurrentAccount returns the account stored by Authenticate or
// AuthenticateOptional.
func CurrentAccount(c echo.Context) (*models.Account, bool) {
	account, ok := c.Get(ContextKeyAccount).(*models.Account)
	return account, ok && account != nil
}
