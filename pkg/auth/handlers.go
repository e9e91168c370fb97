package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
	"github.com/librisapp/libris/pkg/response"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "libris_session"
	// CookieMaxAge is how long the cookie is valid.
	CookieMaxAge = TokenExpiry
)

type handler struct {
	authService *Service
}

func sessionCookie(c echo.Context, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Request().TLS != nil || c.Request().Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *handler) startSession(c echo.Context, account *models.Account) error {
	token, err := h.authService.GenerateToken(account)
	if err != nil {
		return errors.WithStack(err)
	}

	c.SetCookie(sessionCookie(c, token, int(CookieMaxAge.Seconds())))

	return response.Success(c, LoginResponse{Token: token, Account: account})
}

func (h *handler) register(c echo.Context) error {
	ctx := c.Request().Context()

	params := RegisterPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	account, err := h.authService.Register(ctx, params)
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info("account registered", logger.Data{"account_id": account.ID})

	return h.startSession(c, account)
}

func (h *handler) login(c echo.Context) error {
	ctx := c.Request().Context()

	params := LoginPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	account, err := h.authService.Authenticate(ctx, params.Email, params.Password)
	if err != nil {
		return err
	}

	return h.startSession(c, account)
}

func (h *handler) logout(c echo.Context) error {
	c.SetCookie(sessionCookie(c, "", -1))
	return response.Success(c, map[string]time.Time{"logged_out_at": time.Now()})
}

func (h *handler) me(c echo.Context) error {
	account, ok := CurrentAccount(c)
	if !ok {
		return errcodes.Unauthorized("Authentication credentials were not provided.")
	}
	return response.Success(c, account)
}
