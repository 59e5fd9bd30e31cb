package auth

import (
	"fmt"
	"net/url"
)

// Link is one navigation entry the host UI renders
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// LinkBuilder constructs the SSO login and logout redirect URLs from the
// configured SP endpoint layout. URLs are plain concatenation of scheme,
// host, handler path, discovery-style segment, and the return target.
type LinkBuilder struct {
	cfg SSOConfig
}

// NewLinkBuilder creates a link builder
func NewLinkBuilder(cfg SSOConfig) *LinkBuilder {
	return &LinkBuilder{cfg: cfg}
}

func (b *LinkBuilder) scheme() string {
	if b.cfg.RequireTLS {
		return "https"
	}
	return "http"
}

// LoginURL builds the session-initiator URL for the configured discovery
// style. WAYF deployments address the initiator under a WAYF/ consumer
// segment, discovery-service deployments directly under the handler path,
// and CustomLogin deployments use the handler path bare.
func (b *LinkBuilder) LoginURL(host, target string) string {
	base := fmt.Sprintf("%s://%s%s", b.scheme(), host, b.cfg.HandlerPath)

	switch b.cfg.WAYFStyle {
	case WAYFStyleCustomLogin:
		// base stays the handler path
	case WAYFStyleWAYF:
		base += "/WAYF/" + b.cfg.WAYFName
	default:
		base += "/" + b.cfg.WAYFName
	}

	return base + "?target=" + url.QueryEscape(target)
}

// LogoutURL builds the SP logout URL. A fully configured logout endpoint
// overrides the derived "<handler>/Logout" path.
func (b *LinkBuilder) LogoutURL(host, returnTo string) string {
	path := b.cfg.LogoutURL
	if path == "" {
		path = b.cfg.HandlerPath + "/Logout"
	}

	return fmt.Sprintf("%s://%s%s?return=%s", b.scheme(), host, path, url.QueryEscape(returnTo))
}

// LoginLink builds the login navigation entry for the given page
func (b *LinkBuilder) LoginLink(host, target string) Link {
	return Link{
		Text: b.cfg.LoginText,
		Href: b.LoginURL(host, target),
	}
}

// LogoutLink builds the logout navigation entry for the given page
func (b *LinkBuilder) LogoutLink(host, returnTo string) Link {
	return Link{
		Text: b.cfg.LogoutText,
		Href: b.LogoutURL(host, returnTo),
	}
}
