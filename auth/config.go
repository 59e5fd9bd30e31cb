package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wikifed/shibgate/internal/envutil"
	"github.com/wikifed/shibgate/internal/slogging"
)

// Discovery-service styles for the SSO login link.
const (
	WAYFStyleWAYF        = "WAYF"
	WAYFStyleDS          = "DS"
	WAYFStyleCustomLogin = "CustomLogin"
)

// Config holds all shibgate configuration. It is built once at startup and
// passed by value into the pipeline components; nothing mutates it afterwards.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Session    SessionConfig
	Attributes AttributeConfig
	Groups     GroupSyncConfig
	SSO        SSOConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr      string // listen address (default ":8080")
	PublicURL string // externally visible base URL, e.g. "https://wiki.example.org"
	LogLevel  string
	LogDir    string
	IsDev     bool
}

// DatabaseConfig holds the account store connection configuration
type DatabaseConfig struct {
	URL string // DATABASE_URL, postgres:// connection string
}

// RedisConfig holds the session store connection configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// SessionConfig holds session and cookie configuration
type SessionConfig struct {
	CookieName string
	TTLSeconds int
	// BrowserSessionOnly forces the session cookie to expire at browser
	// close. Federated sessions must not outlive the browser: logout state
	// lives at the identity provider, not locally.
	BrowserSessionOnly bool
	JWTSecret          string
}

// AttributeConfig maps transport attribute names to principal fields.
// mod_shib exports attributes as request headers; HeaderPrefix supports
// deployments that namespace them (e.g. "X-Shib-").
type AttributeConfig struct {
	Username     string // required; no secondary source exists
	CommonName   string
	GivenName    string
	Surname      string
	Email        string
	Groups       string
	HeaderPrefix string
}

// GroupSyncConfig controls group membership synchronization
type GroupSyncConfig struct {
	// Prefix filters asserted group tokens; only tokens carrying this
	// prefix are applied, with the prefix stripped. Empty applies every
	// token verbatim.
	Prefix string
	// DeleteExisting clears all current memberships before applying the
	// asserted set (full sync). Default is additive: upstream revocations
	// persist locally until an administrator removes them.
	DeleteExisting bool
}

// SSOConfig holds the SP endpoint layout used to construct login and
// logout redirect URLs.
type SSOConfig struct {
	HandlerPath string // SP handler base path, default "/Shibboleth.sso"
	WAYFStyle   string // WAYF, DS, or CustomLogin
	WAYFName    string // session-initiator name appended in WAYF style
	RequireTLS  bool
	LoginText   string
	LogoutText  string
	LogoutURL   string // overrides the derived "<HandlerPath>/Logout" when set
}

// LoadConfig loads configuration from environment variables with
// documented defaults.
func LoadConfig() (Config, error) {
	logger := slogging.Get()
	logger.Info("Loading shibgate configuration from environment variables")

	redisDB, err := strconv.Atoi(envutil.Get("REDIS_DB", "0"))
	if err != nil {
		logger.Warn("Invalid REDIS_DB value %q, using 0", envutil.Get("REDIS_DB", "0"))
		redisDB = 0
	}

	sessionTTL, err := strconv.Atoi(envutil.Get("SESSION_TTL_SECONDS", "86400"))
	if err != nil {
		logger.Warn("Invalid SESSION_TTL_SECONDS value %q, using 86400", envutil.Get("SESSION_TTL_SECONDS", "86400"))
		sessionTTL = 86400
	}

	config := Config{
		Server: ServerConfig{
			Addr:      envutil.Get("LISTEN_ADDR", ":8080"),
			PublicURL: envutil.Get("PUBLIC_URL", "http://localhost:8080"),
			LogLevel:  envutil.Get("LOG_LEVEL", "info"),
			LogDir:    envutil.Get("LOG_DIR", "logs"),
			IsDev:     envutil.Get("BUILD_MODE", "production") == "dev",
		},
		Database: DatabaseConfig{
			URL: envutil.Get("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Host:     envutil.Get("REDIS_HOST", "localhost"),
			Port:     envutil.Get("REDIS_PORT", "6379"),
			Password: envutil.Get("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Session: SessionConfig{
			CookieName:         envutil.Get("SESSION_COOKIE_NAME", "shibgate_session"),
			TTLSeconds:         sessionTTL,
			BrowserSessionOnly: envutil.Get("SESSION_BROWSER_ONLY", "true") == "true",
			JWTSecret:          envutil.Get("JWT_SECRET", ""),
		},
		Attributes: AttributeConfig{
			Username:     envutil.Get("ATTR_USERNAME", "eppn"),
			CommonName:   envutil.Get("ATTR_COMMON_NAME", "commonName"),
			GivenName:    envutil.Get("ATTR_GIVEN_NAME", "givenName"),
			Surname:      envutil.Get("ATTR_SURNAME", "surname"),
			Email:        envutil.Get("ATTR_EMAIL", "mail"),
			Groups:       envutil.Get("ATTR_GROUPS", "isMemberOf"),
			HeaderPrefix: envutil.Get("ATTR_HEADER_PREFIX", ""),
		},
		Groups: GroupSyncConfig{
			Prefix:         envutil.Get("GROUP_PREFIX", ""),
			DeleteExisting: envutil.Get("GROUP_DELETE_EXISTING", "false") == "true",
		},
		SSO: SSOConfig{
			HandlerPath: envutil.Get("SSO_HANDLER_PATH", "/Shibboleth.sso"),
			WAYFStyle:   envutil.Get("SSO_WAYF_STYLE", WAYFStyleWAYF),
			WAYFName:    envutil.Get("SSO_WAYF_NAME", "WAYF"),
			RequireTLS:  envutil.Get("SSO_REQUIRE_TLS", "false") == "true",
			LoginText:   envutil.Get("SSO_LOGIN_TEXT", "Login via Single Sign-on"),
			LogoutText:  envutil.Get("SSO_LOGOUT_TEXT", "Logout"),
			LogoutURL:   envutil.Get("SSO_LOGOUT_URL", ""),
		},
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate checks the configuration for consistency
func (c Config) Validate() error {
	if c.Attributes.Username == "" {
		return errors.New("username attribute key must not be empty")
	}

	if c.Session.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	if c.Session.TTLSeconds <= 0 {
		return errors.New("session TTL must be positive")
	}

	switch c.SSO.WAYFStyle {
	case WAYFStyleWAYF, WAYFStyleDS, WAYFStyleCustomLogin:
	default:
		return fmt.Errorf("invalid WAYF style %q (want %s, %s, or %s)",
			c.SSO.WAYFStyle, WAYFStyleWAYF, WAYFStyleDS, WAYFStyleCustomLogin)
	}

	if c.SSO.HandlerPath == "" || !strings.HasPrefix(c.SSO.HandlerPath, "/") {
		return fmt.Errorf("SSO handler path %q must begin with /", c.SSO.HandlerPath)
	}

	return nil
}
