package testutils

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/binder"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/librisapp/libris/pkg/models"
	"github.com/stretchr/testify/require"
)

// NewEchoContext builds a handler context with the application binder and
// error handler. An empty payload sends no body.
func NewEchoContext(t *testing.T, method, target, payload string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	req := httptest.NewRequest(method, target, strings.NewReader(payload))
	if payload != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr), rr
}

// SetParams sets route parameters as alternating name, value pairs.
func SetParams(c echo.Context, pairs ...string) {
	names := make([]string, 0, len(pairs)/2)
	values := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		names = append(names, pairs[i])
		values = append(values, pairs[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
}

// AsAccount stores account as the authenticated caller.
func AsAccount(c echo.Context, account *models.Account) {
	c.Set("account", account)
}

// AllowEmptyBody mirrors the binder.AllowEmptyBody route middleware for
// handlers called directly.
func AllowEmptyBody(c echo.Context) {
	c.Set(binder.AllowEmptyBodyKey, true)
}
