package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nri-matrimony/matrimony/config"
	"github.com/nri-matrimony/matrimony/services/jwt"
	"github.com/nri-matrimony/matrimony/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager(config.SessionConfig{
		Name:     "session",
		MaxAge:   time.Hour,
		Path:     "/",
		HttpOnly: true,
		SameSite: "lax",
	}, NewMemoryStore())
}

func newTestJWT() *jwt.Service {
	cfg := testutils.GetTestConfig()
	return jwt.NewService(&cfg.JWT, nil)
}

// newTestServer mounts login, logout and a protected route behind the session middleware.
func newTestServer(manager *Manager, jwtSvc *jwt.Service) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(manager))

	e.POST("/login", func(c echo.Context) error {
		if err := Login(c, 42); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})
	e.POST("/logout", func(c echo.Context) error {
		if err := Logout(c); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"user_id": CurrentUserID(c),
			"bearer":  BearerClaims(c) != nil,
		})
	}, RequireAuth(jwtSvc))

	return e
}

func do(e *echo.Echo, method, path string, cookies []*http.Cookie, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSessionLoginFlow(t *testing.T) {
	e := newTestServer(newTestManager(), newTestJWT())

	rec := do(e, http.MethodGet, "/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())

	rec = do(e, http.MethodPost, "/login", nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	rec = do(e, http.MethodGet, "/me", cookies, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":42,"bearer":false}`, rec.Body.String())

	rec = do(e, http.MethodPost, "/logout", cookies, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(e, http.MethodGet, "/me", cookies, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_Bearer(t *testing.T) {
	jwtSvc := newTestJWT()
	e := newTestServer(newTestManager(), jwtSvc)

	token, err := jwtSvc.GenerateToken(9)
	require.NoError(t, err)

	rec := do(e, http.MethodGet, "/me", nil, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":9,"bearer":true}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/me", nil, map[string]string{"Authorization": "Bearer not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_BearerWithoutSecret(t *testing.T) {
	cfg := testutils.GetTestConfig()
	cfg.JWT.SecretKey = ""
	e := newTestServer(newTestManager(), jwt.NewService(&cfg.JWT, nil))

	rec := do(e, http.MethodGet, "/me", nil, map[string]string{"Authorization": "Bearer abc"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_WithoutSessions(t *testing.T) {
	e := newTestServer(nil, newTestJWT())

	rec := do(e, http.MethodGet, "/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/login", nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{header: "Bearer abc", want: "abc", ok: true},
		{header: "bearer abc", want: "abc", ok: true},
		{header: "Bearer ", ok: false},
		{header: "Basic abc", ok: false},
		{header: "", ok: false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", tt.header)
		got, ok := bearerToken(req)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func TestConvertToUint(t *testing.T) {
	assert.Equal(t, uint(5), convertToUint(uint(5)))
	assert.Equal(t, uint(5), convertToUint(5))
	assert.Equal(t, uint(5), convertToUint(int64(5)))
	assert.Equal(t, uint(5), convertToUint(float64(5)))
	assert.Equal(t, uint(0), convertToUint(-1))
	assert.Equal(t, uint(0), convertToUint("5"))
	assert.Equal(t, uint(0), convertToUint(nil))
}

func TestProvideSessionManager(t *testing.T) {
	cfg := testutils.GetTestConfig()

	t.Run("memory store", func(t *testing.T) {
		manager, err := ProvideSessionManager(cfg, nil, nil)
		require.NoError(t, err)
		require.NotNil(t, manager)
		assert.Equal(t, "session", manager.Cookie.Name)
		assert.Equal(t, http.SameSiteLaxMode, manager.Cookie.SameSite)
	})

	t.Run("database store", func(t *testing.T) {
		dbCfg := *cfg
		dbCfg.Session.Store = "database"
		db := testutils.SetupTestDB(t)

		manager, err := ProvideSessionManager(&dbCfg, db, nil)
		require.NoError(t, err)
		assert.NotNil(t, manager)
	})

	t.Run("disabled", func(t *testing.T) {
		off := *cfg
		off.Session.Enabled = false
		manager, err := ProvideSessionManager(&off, nil, nil)
		require.NoError(t, err)
		assert.Nil(t, manager)
	})

	t.Run("unknown store", func(t *testing.T) {
		bad := *cfg
		bad.Session.Store = "redis"
		_, err := ProvideSessionManager(&bad, nil, nil)
		assert.Error(t, err)
	})
}
