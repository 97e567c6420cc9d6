package ports

// Package ports defines interfaces (hexagonal ports) for the hand-off
// pipeline's collaborators. Implementations live in internal/adapters and
// internal/data; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/openlms/anonauth/internal/domain/auth"
	"github.com/openlms/anonauth/internal/domain/model"
)

// UserStore persists durable identities. Lookups are scoped by auth method
// so the pipeline only ever sees accounts it owns. The store enforces
// username uniqueness; a concurrent create racing on the same username
// must surface a conflict, never corrupt state.
type UserStore interface {
	// FindByUsername returns data-layer ErrUserNotFound when absent.
	FindByUsername(ctx context.Context, username, authMethod string) (*model.User, error)

	// Create inserts a new user and returns it with ID and timestamps set.
	Create(ctx context.Context, user *model.User) (*model.User, error)

	// UpdateCredential overwrites the stored credential hash.
	UpdateCredential(ctx context.Context, userID int64, credentialHash string) error
}

// CohortStore resolves enrollment scopes and their memberships.
type CohortStore interface {
	// FindByIDNumber looks a cohort up by its stable external identifier,
	// returning data-layer ErrCohortNotFound when absent.
	FindByIDNumber(ctx context.Context, idnumber string) (*model.Cohort, error)

	IsMember(ctx context.Context, cohortID, userID int64) (bool, error)

	// AddMember is idempotent: adding an existing member is a no-op.
	AddMember(ctx context.Context, cohortID, userID int64) error
}

// CourseStore answers whether a post-login course destination exists.
type CourseStore interface {
	Exists(ctx context.Context, courseID int64) (bool, error)
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// Notifier receives identity lifecycle notifications. Implementations must
// not fail the pipeline; delivery is fire-and-forget.
type Notifier interface {
	UserCreated(ctx context.Context, user *model.User)
	UserUpdated(ctx context.Context, user *model.User)
}

// RoleAssigner grants a configured role at system scope. Assignment is
// idempotent; re-assigning an existing role is a no-op.
type RoleAssigner interface {
	AssignSystemRole(ctx context.Context, roleID, userID int64) error
}
