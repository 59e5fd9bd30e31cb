package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandlerRouter(t *testing.T, svc *Service) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), NewMiddleware(svc).Authenticate())
	NewHandlers(svc).RegisterRoutes(router)

	return router
}

func TestLinksEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.Groups.Prefix = "wiki.example#"
	svc := newTestService(t, cfg)
	router := newHandlerRouter(t, svc)

	t.Run("anonymous visitor gets a login link", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/session/links?return=/wiki/Main_Page", nil)
		req.Host = "wiki.example.org"
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]Link
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

		login, ok := body["login"]
		require.True(t, ok)
		assert.Equal(t, "Login via Single Sign-on", login.Text)
		assert.Contains(t, login.Href, "/Shibboleth.sso/WAYF/WAYF?target=")
		assert.Contains(t, login.Href, "wiki.example.org%2Fwiki%2FMain_Page")
	})

	t.Run("authenticated visitor gets a logout link and display name", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/session/links", nil)
		req.Host = "wiki.example.org"
		req.Header.Set("eppn", "jdoe")
		req.Header.Set("commonName", "Jane Doe")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Contains(t, body, "logout")
		assert.JSONEq(t, `"Jane Doe"`, string(body["display_name"]))
	})
}

func TestLoginEndpointRedirects(t *testing.T) {
	svc := newTestService(t, testConfig())
	router := newHandlerRouter(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/session/login?return=/wiki/Help", nil)
	req.Host = "wiki.example.org"
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	location := w.Header().Get("Location")
	assert.Contains(t, location, "/Shibboleth.sso/WAYF/WAYF?target=")
	assert.Contains(t, location, "%2Fwiki%2FHelp")
}

func TestLogoutEndpoint(t *testing.T) {
	cfg := testConfig()
	svc := newTestService(t, cfg)
	router := newHandlerRouter(t, svc)

	// Bootstrap a session through the pipeline.
	first := httptest.NewRecorder()
	bootstrap := httptest.NewRequest(http.MethodGet, "/session/whoami", nil)
	bootstrap.Header.Set("eppn", "jdoe")
	router.ServeHTTP(first, bootstrap)
	require.Equal(t, http.StatusOK, first.Code)
	cookies := first.Result().Cookies()
	require.Len(t, cookies, 1)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/session/logout", nil)
	req.Host = "wiki.example.org"
	req.AddCookie(cookies[0])
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/Shibboleth.sso/Logout?return=")

	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, cfg.Session.CookieName, cleared[0].Name)
	assert.Equal(t, -1, cleared[0].MaxAge)

	// The revoked session no longer resolves.
	again := httptest.NewRecorder()
	replay := httptest.NewRequest(http.MethodGet, "/session/whoami", nil)
	replay.AddCookie(cookies[0])
	router.ServeHTTP(again, replay)
	assert.Equal(t, http.StatusUnauthorized, again.Code)
}

func TestWhoAmIEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.Groups.Prefix = "wiki.example#"
	svc := newTestService(t, cfg)
	router := newHandlerRouter(t, svc)

	t.Run("no session", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/session/whoami", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bound session", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/session/whoami", nil)
		req.Header.Set("eppn", "jdoe")
		req.Header.Set("mail", "j@x.org")
		req.Header.Set("isMemberOf", "wiki.example#editors")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Username    string   `json:"username"`
			DisplayName string   `json:"display_name"`
			Email       string   `json:"email"`
			Groups      []string `json:"groups"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

		assert.Equal(t, "Jdoe", body.Username)
		assert.Equal(t, "j@x.org", body.Email)
		assert.Equal(t, []string{"editors"}, body.Groups)
	})
}
