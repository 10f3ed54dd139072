package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/ecommerce-backend/internal/auth"
	"github.com/iliyamo/ecommerce-backend/internal/model"
	"github.com/iliyamo/ecommerce-backend/internal/repository"
)

const testSecret = "middleware-test-secret"

// stubDirectory serves profiles from a map, standing in for the MySQL-backed
// repository.
type stubDirectory struct {
	profiles map[uint64]model.Profile
	err      error
}

func (s *stubDirectory) GetProfileByID(ctx context.Context, id uint64) (model.Profile, error) {
	if s.err != nil {
		return model.Profile{}, s.err
	}
	p, ok := s.profiles[id]
	if !ok {
		return model.Profile{}, repository.ErrNotFound
	}
	return p, nil
}

func activeAlice() *stubDirectory {
	return &stubDirectory{profiles: map[uint64]model.Profile{
		42: {ID: 42, Email: "alice@example.com", Role: model.RoleCustomer, IsActive: true, EmailVerified: true},
	}}
}

// invoke runs a middleware chain against a GET request and returns the
// recorder plus whether the terminal handler was reached.
func invoke(t *testing.T, header string, mws ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	h := func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	}
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	require.NoError(t, h(c))
	return rec, reached
}

func bodyMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}

func TestAuthenticateMissingHeader(t *testing.T) {
	rec, reached := invoke(t, "", Authenticate(testSecret, activeAlice()))
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, auth.ErrNoAuthHeader.Error(), bodyMessage(t, rec))
}

func TestAuthenticateExpiredToken(t *testing.T) {
	raw, err := auth.NewAccessToken(testSecret, 42, "alice@example.com", model.RoleCustomer, -time.Minute)
	require.NoError(t, err)

	rec, reached := invoke(t, "Bearer "+raw, Authenticate(testSecret, activeAlice()))
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token expired, please log in again", bodyMessage(t, rec))
}

func TestAuthenticateWrongSignature(t *testing.T) {
	raw, err := auth.NewAccessToken("other-secret", 42, "alice@example.com", model.RoleCustomer, time.Hour)
	require.NoError(t, err)

	rec, reached := invoke(t, "Bearer "+raw, Authenticate(testSecret, activeAlice()))
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid access token", bodyMessage(t, rec))
}

func TestAuthenticateUnknownUser(t *testing.T) {
	raw, err := auth.NewAccessToken(testSecret, 99, "ghost@example.com", model.RoleCustomer, time.Hour)
	require.NoError(t, err)

	rec, reached := invoke(t, "Bearer "+raw, Authenticate(testSecret, activeAlice()))
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "user not found", bodyMessage(t, rec))
}

func TestAuthenticateDeactivatedUser(t *testing.T) {
	dir := &stubDirectory{profiles: map[uint64]model.Profile{
		42: {ID: 42, Email: "alice@example.com", Role: model.RoleCustomer, IsActive: false},
	}}
	raw, err := auth.NewAccessToken(testSecret, 42, "alice@example.com", model.RoleCustomer, time.Hour)
	require.NoError(t, err)

	rec, reached := invoke(t, "Bearer "+raw, Authenticate(testSecret, dir))
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "account is deactivated", bodyMessage(t, rec))
}

func TestAuthenticateSuccessAttachesUser(t *testing.T) {
	raw, err := auth.NewAccessToken(testSecret, 42, "alice@example.com", model.RoleCustomer, time.Hour)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen model.Profile
	h := Authenticate(testSecret, activeAlice())(func(c echo.Context) error {
		u, ok := CurrentUser(c)
		require.True(t, ok)
		seen = u
		assert.Equal(t, raw, c.Get(ContextTokenKey))
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(42), seen.ID)
	assert.Equal(t, "alice@example.com", seen.Email)
}

func TestOptionalAuthAnonymousPassesThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := OptionalAuth(testSecret, activeAlice())(func(c echo.Context) error {
		_, ok := CurrentUser(c)
		assert.False(t, ok)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOptionalAuthResolvesValidToken(t *testing.T) {
	raw, err := auth.NewAccessToken(testSecret, 42, "alice@example.com", model.RoleCustomer, time.Hour)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := OptionalAuth(testSecret, activeAlice())(func(c echo.Context) error {
		u, ok := CurrentUser(c)
		require.True(t, ok)
		assert.Equal(t, uint64(42), u.ID)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleWithoutUser(t *testing.T) {
	rec, reached := invoke(t, "", RequireRole(model.RoleAdmin))
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authentication required", bodyMessage(t, rec))
}

func TestRequireRoleWrongRole(t *testing.T) {
	raw, err := auth.NewAccessToken(testSecret, 42, "alice@example.com", model.RoleCustomer, time.Hour)
	require.NoError(t, err)

	rec, reached := invoke(t, "Bearer "+raw,
		Authenticate(testSecret, activeAlice()), RequireRole(model.RoleAdmin))
	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "access denied, required role: ADMIN", bodyMessage(t, rec))
}

func TestRequireRoleAllows(t *testing.T) {
	raw, err := auth.NewAccessToken(testSecret, 42, "alice@example.com", model.RoleCustomer, time.Hour)
	require.NoError(t, err)

	rec, reached := invoke(t, "Bearer "+raw,
		Authenticate(testSecret, activeAlice()), RequireRole(model.RoleAdmin, model.RoleCustomer))
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireVerifiedEmailBlocksUnverified(t *testing.T) {
	dir := &stubDirectory{profiles: map[uint64]model.Profile{
		42: {ID: 42, Email: "alice@example.com", Role: model.RoleCustomer, IsActive: true, EmailVerified: false},
	}}
	raw, err := auth.NewAccessToken(testSecret, 42, "alice@example.com", model.RoleCustomer, time.Hour)
	require.NoError(t, err)

	rec, reached := invoke(t, "Bearer "+raw,
		Authenticate(testSecret, dir), RequireVerifiedEmail())
	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "please verify your email address to access this resource", bodyMessage(t, rec))
}

func TestRequireVerifiedEmailAllowsVerified(t *testing.T) {
	raw, err := auth.NewAccessToken(testSecret, 42, "alice@example.com", model.RoleCustomer, time.Hour)
	require.NoError(t, err)

	rec, reached := invoke(t, "Bearer "+raw,
		Authenticate(testSecret, activeAlice()), RequireVerifiedEmail())
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
}
