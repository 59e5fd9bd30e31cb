package auth

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/wikifed/shibgate/auth/db"
	"github.com/wikifed/shibgate/auth/repository"
)

// testConfig returns a configuration with the documented defaults used
// across the package tests.
func testConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:      ":8080",
			PublicURL: "http://localhost:8080",
		},
		Session: SessionConfig{
			CookieName:         "shibgate_session",
			TTLSeconds:         3600,
			BrowserSessionOnly: true,
			JWTSecret:          "test-secret",
		},
		Attributes: AttributeConfig{
			Username:   "eppn",
			CommonName: "commonName",
			GivenName:  "givenName",
			Surname:    "surname",
			Email:      "mail",
			Groups:     "isMemberOf",
		},
		SSO: SSOConfig{
			HandlerPath: "/Shibboleth.sso",
			WAYFStyle:   WAYFStyleWAYF,
			WAYFName:    "WAYF",
			LoginText:   "Login via Single Sign-on",
			LogoutText:  "Logout",
		},
	}
}

// newTestAccounts creates a GORM account repository backed by in-memory
// SQLite.
func newTestAccounts(t *testing.T) repository.AccountRepository {
	t.Helper()

	tdb := db.MustCreateTestDB(t)
	t.Cleanup(tdb.Cleanup)

	return repository.NewGormAccountRepository(tdb.DB)
}

// newTestSessions creates a session manager backed by miniredis
func newTestSessions(t *testing.T, cfg Config) *SessionManager {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSessionManager(db.NewRedisDBFromClient(client), cfg.Session, cfg.Server.PublicURL)
}

// newTestService wires a full pipeline against in-memory stores
func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()

	return NewServiceWithStores(newTestAccounts(t), newTestSessions(t, cfg), cfg)
}
