package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wikifed/shibgate/auth/db"
	"github.com/wikifed/shibgate/auth/repository"
	"github.com/wikifed/shibgate/internal/slogging"
)

// ErrSessionInvalid is returned when a presented session token cannot be
// verified or its server-side record no longer exists.
var ErrSessionInvalid = errors.New("session invalid or expired")

// Session is the issued browser session: a signed cookie token plus a
// revocable server-side record.
type Session struct {
	ID        string
	Token     string
	AccountID string
	Username  string
	ExpiresAt time.Time
}

// SessionRecord is the server-side session state kept in Redis. Deleting
// the record revokes the session regardless of the cookie's validity.
type SessionRecord struct {
	SessionID string    `json:"session_id"`
	AccountID string    `json:"account_id"`
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"issued_at"`
}

// SessionClaims are the JWT claims carried in the session cookie
type SessionClaims struct {
	AccountID string `json:"account_id"`
	jwt.RegisteredClaims
}

// SessionManager issues, resolves, and revokes sessions. The cookie value
// is an HS256 JWT whose jti keys the Redis record.
type SessionManager struct {
	redis  *db.RedisDB
	cfg    SessionConfig
	issuer string
}

// NewSessionManager creates a session manager. The issuer is derived from
// the public URL (scheme and host only).
func NewSessionManager(redis *db.RedisDB, cfg SessionConfig, publicURL string) *SessionManager {
	return &SessionManager{
		redis:  redis,
		cfg:    cfg,
		issuer: deriveIssuer(publicURL),
	}
}

func deriveIssuer(publicURL string) string {
	if publicURL == "" {
		return "http://localhost:8080"
	}
	parsed, err := url.Parse(publicURL)
	if err != nil || parsed.Host == "" {
		return publicURL
	}
	return fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
}

func sessionKey(id string) string {
	return "session:" + id
}

// TTL returns the configured session lifetime
func (m *SessionManager) TTL() time.Duration {
	return time.Duration(m.cfg.TTLSeconds) * time.Second
}

// Issue creates a session for the resolved account: a Redis record with
// the configured TTL and a signed cookie token referencing it.
func (m *SessionManager) Issue(ctx context.Context, account *repository.Account) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(m.TTL())
	sessionID := uuid.New().String()

	claims := &SessionClaims{
		AccountID: account.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   account.Username,
			Audience:  jwt.ClaimStrings{m.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        sessionID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.cfg.JWTSecret))
	if err != nil {
		return Session{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	record := SessionRecord{
		SessionID: sessionID,
		AccountID: account.ID,
		Username:  account.Username,
		IssuedAt:  now,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return Session{}, fmt.Errorf("failed to marshal session record: %w", err)
	}

	if err := m.redis.Set(ctx, sessionKey(sessionID), string(data), m.TTL()); err != nil {
		return Session{}, fmt.Errorf("failed to store session record: %w", err)
	}

	return Session{
		ID:        sessionID,
		Token:     signed,
		AccountID: account.ID,
		Username:  account.Username,
		ExpiresAt: expiresAt,
	}, nil
}

// Resolve verifies a session token and loads its server-side record.
// A verified token whose record is gone (revoked or expired) resolves to
// ErrSessionInvalid.
func (m *SessionManager) Resolve(ctx context.Context, tokenString string) (*SessionRecord, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrSessionInvalid
	}

	if claims.Issuer != m.issuer {
		return nil, ErrSessionInvalid
	}

	data, err := m.redis.Get(ctx, sessionKey(claims.ID))
	if err != nil {
		return nil, ErrSessionInvalid
	}

	var record SessionRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		slogging.Get().Error("Corrupt session record for %s: %v", claims.ID, err)
		return nil, ErrSessionInvalid
	}

	return &record, nil
}

// Revoke deletes the server-side session record
func (m *SessionManager) Revoke(ctx context.Context, sessionID string) error {
	return m.redis.Del(ctx, sessionKey(sessionID))
}

// CookieFor builds the session cookie. With BrowserSessionOnly set the
// cookie carries no Max-Age, so it expires when the browser closes even
// though the server-side record lives for the full TTL.
func (m *SessionManager) CookieFor(session Session) *http.Cookie {
	cookie := &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    session.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   strings.HasPrefix(m.issuer, "https://"),
		SameSite: http.SameSiteLaxMode,
	}

	if !m.cfg.BrowserSessionOnly {
		cookie.MaxAge = m.cfg.TTLSeconds
		cookie.Expires = session.ExpiresAt
	}

	return cookie
}

// ClearCookie builds an expired cookie that removes the session cookie
// from the browser.
func (m *SessionManager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	}
}
