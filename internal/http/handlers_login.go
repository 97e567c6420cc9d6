package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/openlms/anonauth/internal/domain/auth"
	"github.com/openlms/anonauth/internal/service"
)

const sessionCookieName = "session_id"

var errNotAuthenticated = errors.New("not authenticated")

// SessionReader resolves session IDs to sessions.
type SessionReader interface {
	GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
}

// HandoffServiceInterface defines the service operations the login handlers need.
type HandoffServiceInterface interface {
	SessionReader
	Activate(ctx context.Context, encodedToken string) (*service.Outcome, error)
	Logout(ctx context.Context, sessionID string) error
}

// LoginHandlers provides HTTP handlers for the token hand-off endpoints.
type LoginHandlers struct {
	Svc          HandoffServiceInterface
	CookieDomain string

	// AlternateLoginURL, when set, is where unclaimed login requests are
	// sent instead of a 401. It stands in for the host's own login page.
	AlternateLoginURL string

	// LogoutURL, when set, overrides the post-logout destination for
	// sessions established by this mechanism.
	LogoutURL string

	Logger *slog.Logger
}

func (h *LoginHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Hook handles the login hand-off endpoint.
// GET /login?auth=<token>.
//
// The token comes from the "auth" query parameter; when that is absent the
// raw query string itself is treated as the token, so links of the form
// /login?<base64> work unchanged. A claimed request gets a session cookie
// and a redirect to its destination. An unclaimed request falls through to
// the alternate login URL, or a 401 when none is configured; the reason is
// never disclosed.
func (h *LoginHandlers) Hook(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("auth")
	if token == "" {
		token = r.URL.RawQuery
	}

	outcome, err := h.Svc.Activate(r.Context(), token)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "hand-off failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "handoff_failed",
			Err:     err,
		})
		return
	}

	if !outcome.Routed() {
		if h.AlternateLoginURL != "" {
			http.Redirect(w, r, h.AlternateLoginURL, http.StatusFound)
			return
		}
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "not_authenticated",
			Err:     errNotAuthenticated,
		})
		return
	}

	h.setSessionCookie(w, r, *outcome.Session)
	// The destination is service-computed: either a course path or the
	// operator-configured landing URL, which may legitimately be absolute.
	http.Redirect(w, r, outcome.Destination, http.StatusFound)
}

// Logout handles the logout endpoint.
// POST /logout.
func (h *LoginHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	// Resolve the session before invalidating it; sessions established by
	// this mechanism may carry a dedicated post-logout destination.
	var session *domainauth.Session
	if sessionCookie, err := r.Cookie(sessionCookieName); err == nil {
		session, _ = h.Svc.GetSession(r.Context(), sessionCookie.Value)
		if logoutErr := h.Svc.Logout(r.Context(), sessionCookie.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}

	h.clearCookie(w, r, sessionCookieName)

	redirectURI := r.FormValue("redirect_uri")
	if redirectURI == "" {
		redirectURI = r.URL.Query().Get("redirect_uri")
	}
	redirectURI = safeRedirectPath(redirectURI)

	if session != nil && session.IsAnonymous() && h.LogoutURL != "" {
		redirectURI = h.LogoutURL
	}

	// AJAX requests get a JSON payload; regular requests redirect
	isAJAX := strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
	if isAJAX {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": redirectURI,
		})
		return
	}

	http.Redirect(w, r, redirectURI, http.StatusFound)
}

// Status returns the current authentication status.
// GET /status.
func (h *LoginHandlers) Status(w http.ResponseWriter, r *http.Request) {
	sessionCookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"authenticated": false,
		})
		return
	}

	session, err := h.Svc.GetSession(r.Context(), sessionCookie.Value)
	if err != nil {
		// Session is invalid or expired, clear the cookie
		h.clearCookie(w, r, sessionCookieName)
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"authenticated": false,
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user": map[string]interface{}{
			"id":          session.UserID,
			"username":    session.Username,
			"first_name":  session.FirstName,
			"last_name":   session.LastName,
			"email":       session.Email,
			"auth_method": session.AuthMethod,
		},
		"expires_at": session.ExpiresAt,
	})
}

// setSessionCookie writes the session cookie based on the session's expiry.
func (h *LoginHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}

// clearCookie clears a cookie by setting it to expire immediately.
// It mirrors the attributes used when setting cookies to maximize
// compatibility across browsers during deletion.
func (h *LoginHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
