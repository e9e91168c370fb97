package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/testutils"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Details string          `json:"details"`
}

func do(t *testing.T, h http.Handler, method, target, body, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var env envelope
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	}
	return rr, env
}

func TestServer_EndToEnd(t *testing.T) {
	cfg := config.NewForTest()
	cfg.AdminKey = "claim-me"
	db := testutils.NewTestDB(t)

	e, err := newEcho(cfg, db)
	require.NoError(t, err)

	rr, _ := do(t, e, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr, env := do(t, e, http.MethodGet, "/api/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "not_found", env.Code)

	rr, env = do(t, e, http.MethodGet, "/api/library", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "success", env.Status)

	// Anonymous callers cannot create loans.
	rr, _ = do(t, e, http.MethodPost, "/api/bookloan/create", `{}`, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, env = do(t, e, http.MethodPost, "/api/auth/register", `{"email":"Reader@Example.com","password":"password123","first_name":"Ada","last_name":"Reader"}`, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr, env = do(t, e, http.MethodPost, "/api/auth/login", `{"email":"reader@example.com","password":"password123"}`, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.Token)

	// Readers are not staff.
	rr, env = do(t, e, http.MethodPost, "/api/library", `{"name":"Central","city":"Brno","street":"Kolejni 2","zip_code":61200}`, login.Token)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "forbidden", env.Code)

	rr, env = do(t, e, http.MethodPost, "/api/account/admin/claim", `{"key":"claim-me"}`, login.Token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr, env = do(t, e, http.MethodPost, "/api/library", `{"name":"Central","city":"Brno","street":"Kolejni 2","zip_code":61200}`, login.Token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "success", env.Status)

	rr, env = do(t, e, http.MethodGet, "/api/config/policies", "", login.Token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, string(env.Data), `"max_extension_days":30`)
}

func TestServer_TestRoutesOnlyInTestEnvironment(t *testing.T) {
	cfg := config.NewForTest()
	cfg.Environment = "production"
	db := testutils.NewTestDB(t)

	e, err := newEcho(cfg, db)
	require.NoError(t, err)

	rr, _ := do(t, e, http.MethodDelete, "/test/data", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
