package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wikifed/shibgate/auth/repository"
	"github.com/wikifed/shibgate/internal/slogging"
)

// Handlers exposes the session HTTP surface consumed by the host wiki UI
type Handlers struct {
	service *Service
	links   *LinkBuilder
}

// NewHandlers creates the HTTP handlers for the service
func NewHandlers(service *Service) *Handlers {
	return &Handlers{
		service: service,
		links:   NewLinkBuilder(service.Config().SSO),
	}
}

// RegisterRoutes attaches the session routes to a router group
func (h *Handlers) RegisterRoutes(r gin.IRoutes) {
	r.GET("/session/links", h.Links)
	r.GET("/session/login", h.Login)
	r.GET("/session/logout", h.Logout)
	r.GET("/session/whoami", h.WhoAmI)
}

// requestScheme mirrors the transport's notion of the current scheme,
// honoring the proxy's forwarded header.
func requestScheme(c *gin.Context) string {
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}

// returnTarget reconstructs the page the browser should land on after the
// SSO round trip: the current host plus the caller-supplied return path.
func returnTarget(c *gin.Context) string {
	path := c.Query("return")
	if path == "" || path[0] != '/' {
		path = "/"
	}
	return fmt.Sprintf("%s://%s%s", requestScheme(c), c.Request.Host, path)
}

// Links returns the navigation entries for the current page: a logout
// link (plus the resolved display name) when a session is bound, a login
// link otherwise.
func (h *Handlers) Links(c *gin.Context) {
	target := returnTarget(c)
	host := c.Request.Host

	record, ok := SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"login": h.links.LoginLink(host, target),
		})
		return
	}

	response := gin.H{
		"logout": h.links.LogoutLink(host, target),
	}

	account, err := h.service.GetAccount(c.Request.Context(), record.Username)
	if err == nil && account.DisplayName != "" {
		response["display_name"] = account.DisplayName
	}

	c.JSON(http.StatusOK, response)
}

// Login redirects the browser to the SP session initiator
func (h *Handlers) Login(c *gin.Context) {
	c.Redirect(http.StatusFound, h.links.LoginURL(c.Request.Host, returnTarget(c)))
}

// Logout revokes the local session, clears the cookie, and redirects to
// the SP logout endpoint. Logout state at the identity provider is the
// SP's concern; locally the session record is simply deleted.
func (h *Handlers) Logout(c *gin.Context) {
	logger := slogging.GetContextLogger(c)

	if record, ok := SessionFromContext(c); ok {
		if err := h.service.Sessions().Revoke(c.Request.Context(), record.SessionID); err != nil {
			logger.Warn("Failed to revoke session %s: %v", record.SessionID, err)
		}
	}

	http.SetCookie(c.Writer, h.service.Sessions().ClearCookie())
	c.Redirect(http.StatusFound, h.links.LogoutURL(c.Request.Host, returnTarget(c)))
}

// WhoAmI returns the resolved account bound to the current session
func (h *Handlers) WhoAmI(c *gin.Context) {
	record, ok := SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}

	account, err := h.service.GetAccount(c.Request.Context(), record.Username)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "account no longer exists"})
			return
		}
		slogging.GetContextLogger(c).Error("Failed to load account %s: %v", record.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load account"})
		return
	}

	groups, err := h.service.GetGroups(c.Request.Context(), account.ID)
	if err != nil {
		slogging.GetContextLogger(c).Warn("Failed to list groups for %s: %v", account.Username, err)
		groups = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"username":     account.Username,
		"display_name": account.DisplayName,
		"email":        account.Email,
		"groups":       groups,
	})
}
