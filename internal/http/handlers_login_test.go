package httpx

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlms/anonauth/config"
	mocks "github.com/openlms/anonauth/internal/mocks/auth"
	"github.com/openlms/anonauth/internal/service"
	"github.com/openlms/anonauth/internal/token"
)

type loginFixture struct {
	users    *mocks.MemoryUserStore
	cohorts  *mocks.MemoryCohortStore
	courses  *mocks.MemoryCourseStore
	sessions *mocks.MemorySessionStore
	landing  string
	svc      *service.HandoffService
	handlers *LoginHandlers
}

func newLoginFixture(t *testing.T, mutate func(*loginFixture, *config.AuthConfig)) *loginFixture {
	t.Helper()

	f := &loginFixture{
		users:    mocks.NewMemoryUserStore(),
		cohorts:  mocks.NewMemoryCohortStore(),
		courses:  mocks.NewMemoryCourseStore(),
		sessions: mocks.NewMemorySessionStore(),
	}

	cfg := config.AuthConfig{
		Cohort:     "anonymous",
		FirstName:  "anonymous",
		LastName:   "user",
		Email:      "nobody@127.0.0.1",
		SiteSecret: "test-secret",
		SessionTTL: time.Hour,
	}
	f.handlers = &LoginHandlers{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if mutate != nil {
		mutate(f, &cfg)
	}

	svc, err := service.NewHandoffService(service.HandoffServiceOptions{
		Users:             f.users,
		Cohorts:           f.cohorts,
		Courses:           f.courses,
		Sessions:          f.sessions,
		Auth:              cfg,
		DefaultLandingURL: f.landing,
		Logger:            f.handlers.Logger,
	})
	require.NoError(t, err)

	f.svc = svc
	f.handlers.Svc = svc
	return f
}

func freshToken(extra map[string]string) string {
	raw := token.RawParams{
		token.ParamActivate:  "1",
		token.ParamKey:       "visitor-1",
		token.ParamTimestamp: strconv.FormatInt(time.Now().Unix(), 10),
	}
	for k, v := range extra {
		raw[k] = v
	}
	return token.Encode(raw)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	return nil
}

func TestHook_RoutedSetsCookieAndRedirects(t *testing.T) {
	f := newLoginFixture(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/login?auth="+url.QueryEscape(freshToken(nil)), nil)
	rec := httptest.NewRecorder()
	f.handlers.Hook(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie, "session cookie should be set")
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Positive(t, cookie.MaxAge)

	// Cookie must reference a live server-side session
	sess, err := f.svc.GetSession(req.Context(), cookie.Value)
	require.NoError(t, err)
	assert.True(t, sess.IsAnonymous())
	assert.Equal(t, 1, f.users.Count())
}

func TestHook_TokenFromRawQuery(t *testing.T) {
	f := newLoginFixture(t, nil)

	// Legacy link form: the whole query string is the token
	req := httptest.NewRequest(http.MethodGet, "/login?"+freshToken(nil), nil)
	rec := httptest.NewRecorder()
	f.handlers.Hook(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	require.NotNil(t, sessionCookie(t, rec))
}

func TestHook_AbsoluteLandingURLPreserved(t *testing.T) {
	f := newLoginFixture(t, func(f *loginFixture, _ *config.AuthConfig) {
		f.landing = "https://portal.example.org/home"
	})

	req := httptest.NewRequest(http.MethodGet, "/login?auth="+url.QueryEscape(freshToken(nil)), nil)
	rec := httptest.NewRecorder()
	f.handlers.Hook(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://portal.example.org/home", rec.Header().Get("Location"))
}

func TestHook_CourseDestination(t *testing.T) {
	f := newLoginFixture(t, func(f *loginFixture, _ *config.AuthConfig) {
		f.courses.AddCourse(42)
	})

	tok := freshToken(map[string]string{token.ParamCourse: "42"})
	req := httptest.NewRequest(http.MethodGet, "/login?auth="+url.QueryEscape(tok), nil)
	rec := httptest.NewRecorder()
	f.handlers.Hook(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/course/view?id=42", rec.Header().Get("Location"))
}

func TestHook_NotHandledWithoutAlternateLogin(t *testing.T) {
	f := newLoginFixture(t, nil)

	// No activation flag: pipeline declines the request
	req := httptest.NewRequest(http.MethodGet, "/login?redirect_uri=%2Fsomewhere", nil)
	rec := httptest.NewRecorder()
	f.handlers.Hook(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, sessionCookie(t, rec))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_authenticated", body["error"])
}

func TestHook_NotHandledRedirectsToAlternateLogin(t *testing.T) {
	f := newLoginFixture(t, func(f *loginFixture, _ *config.AuthConfig) {
		f.handlers.AlternateLoginURL = "/auth/sso"
	})

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rec := httptest.NewRecorder()
	f.handlers.Hook(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/sso", rec.Header().Get("Location"))
	assert.Nil(t, sessionCookie(t, rec))
}

func TestHook_RejectionIsOpaque(t *testing.T) {
	f := newLoginFixture(t, func(_ *loginFixture, cfg *config.AuthConfig) {
		cfg.Timeout = 300
	})

	stale := token.Encode(token.RawParams{
		token.ParamActivate:  "1",
		token.ParamKey:       "visitor-1",
		token.ParamTimestamp: strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10),
	})
	missing := token.Encode(token.RawParams{token.ParamActivate: "1"})

	for name, tok := range map[string]string{"stale": stale, "missing params": missing} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/login?auth="+url.QueryEscape(tok), nil)
			rec := httptest.NewRecorder()
			f.handlers.Hook(rec, req)

			// Identical answer for every rejection reason
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, map[string]string{
				"error":   "not_authenticated",
				"message": "not authenticated",
			}, body)
		})
	}
}

func TestHook_StorageFailureIsFatal(t *testing.T) {
	f := newLoginFixture(t, func(f *loginFixture, _ *config.AuthConfig) {
		f.sessions.SaveErr = fmt.Errorf("redis down")
	})

	req := httptest.NewRequest(http.MethodGet, "/login?auth="+url.QueryEscape(freshToken(nil)), nil)
	rec := httptest.NewRecorder()
	f.handlers.Hook(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Nil(t, sessionCookie(t, rec))
}

func TestStatus(t *testing.T) {
	f := newLoginFixture(t, nil)

	// No cookie
	rec := httptest.NewRecorder()
	f.handlers.Status(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["authenticated"])

	// Establish a session, then query with its cookie
	loginRec := httptest.NewRecorder()
	f.handlers.Hook(loginRec, httptest.NewRequest(http.MethodGet, "/login?auth="+url.QueryEscape(freshToken(nil)), nil))
	cookie := sessionCookie(t, loginRec)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	f.handlers.Status(rec, req)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["authenticated"])
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "anonymous", user["auth_method"])
	assert.Equal(t, "anonymous", user["first_name"])

	// Stale cookie answers unauthenticated and clears it
	req = httptest.NewRequest(http.MethodGet, "/status", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "no-such-session"})
	rec = httptest.NewRecorder()
	f.handlers.Status(rec, req)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["authenticated"])
	cleared := sessionCookie(t, rec)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
}

func TestLogout_InvalidatesSessionAndRedirects(t *testing.T) {
	f := newLoginFixture(t, nil)

	loginRec := httptest.NewRecorder()
	f.handlers.Hook(loginRec, httptest.NewRequest(http.MethodGet, "/login?auth="+url.QueryEscape(freshToken(nil)), nil))
	cookie := sessionCookie(t, loginRec)
	require.NotNil(t, cookie)
	require.Equal(t, 1, f.sessions.Count())

	req := httptest.NewRequest(http.MethodPost, "/logout?redirect_uri=%2Fbye", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	f.handlers.Logout(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/bye", rec.Header().Get("Location"))
	assert.Equal(t, 0, f.sessions.Count())

	cleared := sessionCookie(t, rec)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)
}

func TestLogout_AnonymousSessionUsesLogoutURL(t *testing.T) {
	f := newLoginFixture(t, func(f *loginFixture, cfg *config.AuthConfig) {
		cfg.LogoutURL = "https://example.org/goodbye"
		f.handlers.LogoutURL = cfg.LogoutURL
	})

	loginRec := httptest.NewRecorder()
	f.handlers.Hook(loginRec, httptest.NewRequest(http.MethodGet, "/login?auth="+url.QueryEscape(freshToken(nil)), nil))
	cookie := sessionCookie(t, loginRec)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	f.handlers.Logout(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.org/goodbye", rec.Header().Get("Location"))
}

func TestLogout_AJAXGetsJSON(t *testing.T) {
	f := newLoginFixture(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	f.handlers.Logout(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "/", body["redirect_to"])
}

func TestSafeRedirectPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/"},
		{"/course/view?id=7", "/course/view?id=7"},
		{"https://evil.example/", "/"},
		{"//evil.example/x", "/"},
		{"relative/path", "/"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, safeRedirectPath(tc.in), "input %q", tc.in)
	}
}
