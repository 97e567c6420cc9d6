package config

import "strings"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// DefaultLandingURL is the post-login destination when the token does
	// not name a valid course.
	DefaultLandingURL string `env:"APP_DEFAULT_LANDING_URL" envDefault:"/"`

	// AlternateLoginURL is where unauthenticated requests are sent when the
	// hand-off pipeline does not claim them. Empty means the host answers
	// with a plain 401 instead of redirecting.
	AlternateLoginURL string `env:"APP_ALTERNATE_LOGIN_URL" envDefault:""`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.Addr = strings.TrimSpace(h.Addr)
	if h.DefaultLandingURL == "" {
		h.DefaultLandingURL = "/"
	}
}
