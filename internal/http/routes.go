package httpx

import (
	"log/slog"
	"net/http"

	"github.com/openlms/anonauth/config"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Handoff HandoffServiceInterface
	HTTP    config.HTTPConfig
	Auth    config.AuthConfig
	Logger  *slog.Logger
}

// NewRouter creates and configures the HTTP router with logging and panic
// recovery around every route.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	loginHandlers := &LoginHandlers{
		Svc:               services.Handoff,
		CookieDomain:      services.HTTP.CookieDomain,
		AlternateLoginURL: services.HTTP.AlternateLoginURL,
		LogoutURL:         services.Auth.LogoutURL,
		Logger:            services.Logger,
	}

	mux.Handle("GET /login", http.HandlerFunc(loginHandlers.Hook))
	mux.Handle("GET /status", http.HandlerFunc(loginHandlers.Status))
	mux.Handle("POST /logout", http.HandlerFunc(loginHandlers.Logout))
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var handler http.Handler = mux
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}
