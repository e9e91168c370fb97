package binder

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/librisapp/libris/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type params struct {
	Hello string `json:"hello" mod:"trim" validate:"max=9"`
	Omit  string `json:"-"`
}

type pathParams struct {
	ID   int `param:"id" json:"-" validate:"min=1"`
	Fine int `param:"fine" json:"-" validate:"min=0"`
}

type loanParams struct {
	DateFrom time.Time `json:"date_from" validate:"required"`
	DateTo   time.Time `json:"date_to" validate:"required,gtefield=DateFrom"`
	Books    []int     `json:"books" validate:"required,min=1"`
}

var (
	goodJSON             = `{"hello":" world "}`
	unknownFieldsErrJSON = `{"hello":"world","foo":"bar"}`
	typeErrJSON          = `{"hello":123}`
	validationErrJSON    = `{"hello":"0123456789"}`
)

func TestNew(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)
	assert.NotNil(t, b)

	t.Run("only allows application/json", func(tt *testing.T) {
		c := newContext(http.MethodPost, goodJSON, echo.MIMEApplicationXML)
		p := params{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "Unsupported Media Type")
	})

	t.Run("disallows unknown fields", func(tt *testing.T) {
		c := newContext(http.MethodPost, unknownFieldsErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `Unknown Parameter "foo"`)
	})

	t.Run("returns a good message for type errors", func(tt *testing.T) {
		c := newContext(http.MethodPost, typeErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `"hello" should be of type string`)
	})

	t.Run("use mod tag to modify params", func(tt *testing.T) {
		c := newContext(http.MethodPost, goodJSON, echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		require.NoError(tt, err)
		assert.Equal(tt, "world", p.Hello)
	})

	t.Run("use validate tag to validate params", func(tt *testing.T) {
		c := newContext(http.MethodPost, validationErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "length must be less than or equal to 9 characters")
	})

	t.Run("rejects an empty body by default", func(tt *testing.T) {
		c := newContext(http.MethodPost, "", echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		var codeErr *errcodes.Error
		require.ErrorAs(tt, err, &codeErr)
		assert.Equal(tt, "empty_request_body", codeErr.Code)
	})

	t.Run("binds path params when the body may be empty", func(tt *testing.T) {
		c := newContext(http.MethodPut, "", echo.MIMEApplicationJSON)
		c.SetParamNames("id", "fine")
		c.SetParamValues("12", "150")
		c.Set(AllowEmptyBodyKey, true)
		p := pathParams{}
		err := b.Bind(&p, c)
		require.NoError(tt, err)
		assert.Equal(tt, 12, p.ID)
		assert.Equal(tt, 150, p.Fine)
	})

	t.Run("reports path param type errors by param name", func(tt *testing.T) {
		c := newContext(http.MethodPut, "", echo.MIMEApplicationJSON)
		c.SetParamNames("id", "fine")
		c.SetParamValues("12", "lots")
		c.Set(AllowEmptyBodyKey, true)
		p := pathParams{}
		err := b.Bind(&p, c)
		var codeErr *errcodes.Error
		require.ErrorAs(tt, err, &codeErr)
		assert.Equal(tt, "validation_type_error", codeErr.Code)
		assert.Contains(tt, codeErr.Message, `"fine"`)
	})

	t.Run("validates path params by param name", func(tt *testing.T) {
		c := newContext(http.MethodPut, "", echo.MIMEApplicationJSON)
		c.SetParamNames("id", "fine")
		c.SetParamValues("12", "-5")
		c.Set(AllowEmptyBodyKey, true)
		p := pathParams{}
		err := b.Bind(&p, c)
		assert.EqualError(tt, err, `"fine" must be greater than or equal to 0`)
	})

	t.Run("compares date fields", func(tt *testing.T) {
		c := newContext(http.MethodPost, `{"date_from":"2026-02-10T00:00:00Z","date_to":"2026-02-01T00:00:00Z","books":[1]}`, echo.MIMEApplicationJSON)
		p := loanParams{}
		err := b.Bind(&p, c)
		assert.EqualError(tt, err, `"date_to" must be greater than or equal to date_from`)
	})

	t.Run("requires at least one element", func(tt *testing.T) {
		c := newContext(http.MethodPost, `{"date_from":"2026-02-01T00:00:00Z","date_to":"2026-02-10T00:00:00Z","books":[]}`, echo.MIMEApplicationJSON)
		p := loanParams{}
		err := b.Bind(&p, c)
		assert.EqualError(tt, err, `"books" length must be greater than or equal to 1 element`)
	})
}

func newContext(method, payload, mime string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, mime)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr)
}
