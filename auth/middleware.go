package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wikifed/shibgate/internal/slogging"
)

// Context keys set by the middleware
const (
	contextKeySession   = "shibSession"
	contextKeyRequestID = "requestID"
)

// Middleware integrates the reconciliation pipeline into request handling
type Middleware struct {
	service *Service
}

// NewMiddleware creates authentication middleware for the service
func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// RequestID assigns a request ID for log correlation
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextKeyRequestID, uuid.New().String())
		c.Next()
	}
}

// Authenticate resolves the caller's identity. An existing valid session
// passes through untouched — the pipeline never re-runs for it, and a
// failing federation login can never degrade it. Without a session, the
// pipeline runs once when the transport asserts a username; the session
// cookie is issued exactly once, here. Requests without an asserted
// username proceed unauthenticated.
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := slogging.GetContextLogger(c)
		sessions := m.service.Sessions()

		if cookie, err := c.Request.Cookie(m.service.Config().Session.CookieName); err == nil && cookie.Value != "" {
			record, err := sessions.Resolve(c.Request.Context(), cookie.Value)
			if err == nil {
				c.Set(contextKeySession, record)
				c.Next()
				return
			}
			logger.Debug("Presented session cookie did not resolve: %v", err)
		}

		attrs := AttributesFromRequest(c.Request, m.service.Config().Attributes)

		result, err := m.service.Login(c.Request.Context(), attrs)
		if err != nil {
			if !errors.Is(err, ErrMissingPrincipal) {
				logger.Error("Federated login failed: %v", err)
			}
			c.Next()
			return
		}

		http.SetCookie(c.Writer, sessions.CookieFor(result.Session))
		c.Set(contextKeySession, &SessionRecord{
			SessionID: result.Session.ID,
			AccountID: result.Account.ID,
			Username:  result.Account.Username,
			IssuedAt:  result.Session.ExpiresAt.Add(-sessions.TTL()),
		})

		c.Next()
	}
}

// RequireAuthenticated aborts with 401 when no identity is bound
func (m *Middleware) RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := SessionFromContext(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		c.Next()
	}
}

// SessionFromContext returns the session record bound by Authenticate
func SessionFromContext(c *gin.Context) (*SessionRecord, bool) {
	value, exists := c.Get(contextKeySession)
	if !exists {
		return nil, false
	}

	record, ok := value.(*SessionRecord)
	return record, ok
}
