package bootstrap

import (
	"database/sql"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/openlms/anonauth/config"
	"github.com/openlms/anonauth/internal/adapters/notify"
	redisadapter "github.com/openlms/anonauth/internal/adapters/redis"
	"github.com/openlms/anonauth/internal/data"
	"github.com/openlms/anonauth/internal/service"
)

// ServiceDeps groups shared dependencies for service construction.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient goredis.UniversalClient
	Logger      *slog.Logger
}

// ServiceContainer holds the constructed application services.
type ServiceContainer struct {
	Handoff *service.HandoffService
}

// NewServices wires repositories, the session store, and the hand-off
// pipeline from shared dependencies.
func NewServices(deps *ServiceDeps) (*ServiceContainer, error) {
	handoff, err := service.NewHandoffService(service.HandoffServiceOptions{
		Users:             data.NewUserRepo(deps.DB),
		Cohorts:           data.NewCohortRepo(deps.DB),
		Courses:           data.NewCourseRepo(deps.DB),
		Sessions:          redisadapter.NewSessionStore(deps.RedisClient),
		Notifier:          notify.NewSlogNotifier(deps.Logger),
		Roles:             data.NewRoleRepo(deps.DB),
		Auth:              deps.Config.Auth,
		DefaultLandingURL: deps.Config.HTTP.DefaultLandingURL,
		Logger:            deps.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build handoff service: %w", err)
	}

	return &ServiceContainer{Handoff: handoff}, nil
}
