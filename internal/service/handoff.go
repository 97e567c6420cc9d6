package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/openlms/anonauth/config"
	"github.com/openlms/anonauth/internal/data"
	domainauth "github.com/openlms/anonauth/internal/domain/auth"
	"github.com/openlms/anonauth/internal/domain/model"
	"github.com/openlms/anonauth/internal/ports"
	"github.com/openlms/anonauth/internal/token"
)

// OutcomeStatus is the terminal state of one hand-off attempt.
type OutcomeStatus string

const (
	// StatusRouted means the pipeline claimed the request: a session was
	// established and the caller must redirect and stop all further
	// authentication processing.
	StatusRouted OutcomeStatus = "routed"

	// StatusNotHandled means the pipeline did not claim the request —
	// inactive token, failed validation, or failed authentication. The
	// caller's normal authentication flow proceeds as if this mechanism
	// had never run. The reason is deliberately not part of the outcome.
	StatusNotHandled OutcomeStatus = "not_handled"
)

// Outcome is the typed terminal result of Activate. Storage failures are
// returned as errors instead; they are fatal to the request.
type Outcome struct {
	Status      OutcomeStatus
	Destination string
	Session     *domainauth.Session
}

// Routed reports whether the pipeline claimed the request.
func (o *Outcome) Routed() bool { return o != nil && o.Status == StatusRouted }

var notHandled = &Outcome{Status: StatusNotHandled}

// HandoffServiceOptions groups dependencies for HandoffService.
type HandoffServiceOptions struct {
	Users    ports.UserStore
	Cohorts  ports.CohortStore
	Courses  ports.CourseStore
	Sessions ports.SessionStore
	Notifier ports.Notifier
	Roles    ports.RoleAssigner // optional; used when Auth.AssignRole > 0

	Auth config.AuthConfig

	// DefaultLandingURL is the post-login destination when the token does
	// not name an existing course.
	DefaultLandingURL string

	Logger *slog.Logger
}

// HandoffService runs the token-to-identity resolution pipeline:
// decode, validate, derive, provision, authenticate, enroll, route.
type HandoffService struct {
	users    ports.UserStore
	cohorts  ports.CohortStore
	courses  ports.CourseStore
	sessions ports.SessionStore
	notifier ports.Notifier
	roles    ports.RoleAssigner

	cfg       config.AuthConfig
	validator *token.Validator
	landing   string
	logger    *slog.Logger
}

// NewHandoffService constructs a HandoffService, compiling the key pattern
// up front so a bad pattern fails at startup rather than per request.
func NewHandoffService(opts HandoffServiceOptions) (*HandoffService, error) {
	if opts.Users == nil || opts.Sessions == nil {
		return nil, errors.New("user store and session store are required")
	}
	if opts.Auth.SiteSecret == "" {
		return nil, errors.New("site secret is required")
	}
	validator, err := token.NewValidator(opts.Auth.Timeout, opts.Auth.Regex)
	if err != nil {
		return nil, err
	}
	landing := opts.DefaultLandingURL
	if landing == "" {
		landing = "/"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &HandoffService{
		users:     opts.Users,
		cohorts:   opts.Cohorts,
		courses:   opts.Courses,
		sessions:  opts.Sessions,
		notifier:  opts.Notifier,
		roles:     opts.Roles,
		cfg:       opts.Auth,
		validator: validator,
		landing:   landing,
		logger:    logger,
	}, nil
}

// Activate runs the pipeline for one encoded token.
//
// It returns StatusNotHandled for everything the pipeline declines to
// claim: missing activation flag, failed validation gates, failed
// authentication. Rejection reasons are logged at debug level only, never
// surfaced, so callers cannot be used as an oracle against the freshness
// and pattern gates. A non-nil error means a storage failure; the request
// is in an unknown state and must not fall through to other mechanisms.
func (s *HandoffService) Activate(ctx context.Context, encodedToken string) (*Outcome, error) {
	raw := token.Decode(encodedToken)
	if !raw.Active() {
		return notHandled, nil
	}

	params, err := token.ParseParams(raw)
	if err != nil {
		s.logger.DebugContext(ctx, "hand-off rejected", "reason", "missing parameters")
		return notHandled, nil
	}
	if !s.validator.ValidTimestamp(params.Timestamp) {
		s.logger.DebugContext(ctx, "hand-off rejected", "reason", "stale or future timestamp")
		return notHandled, nil
	}
	if !s.validator.ValidKey(params.Key) {
		s.logger.DebugContext(ctx, "hand-off rejected", "reason", "key pattern mismatch")
		return notHandled, nil
	}

	username := token.DeriveUsername(domainauth.AuthMethod, params.Key)

	user, err := s.provision(ctx, username, params.Key)
	if err != nil {
		return nil, err
	}

	sess, err := s.establishSession(ctx, username)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		// Authentication failed against the just-written credential. Should
		// not occur, but it is recoverable: no session exists and the
		// caller's normal flow proceeds untouched.
		s.logger.DebugContext(ctx, "hand-off rejected", "reason", "authentication failed", "username", username)
		return notHandled, nil
	}

	if err := s.enroll(ctx, user, params); err != nil {
		return nil, err
	}

	dest, err := s.destination(ctx, params)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Status:      StatusRouted,
		Destination: dest,
		Session:     sess,
	}, nil
}

// provision creates the identity on first use, or refreshes its credential
// hash on every later use so the credential check never sees a stale
// entry. Exactly one identity exists per derived username; a concurrent
// first-use race is resolved by the store's uniqueness constraint.
func (s *HandoffService) provision(ctx context.Context, username, key string) (*model.User, error) {
	credential := token.CredentialHash(username, s.cfg.SiteSecret)

	user, err := s.users.FindByUsername(ctx, username, domainauth.AuthMethod)
	switch {
	case err == nil:
		if updateErr := s.users.UpdateCredential(ctx, user.ID, credential); updateErr != nil {
			return nil, fmt.Errorf("update credential: %w", updateErr)
		}
		user.CredentialHash = credential
		if s.notifier != nil {
			s.notifier.UserUpdated(ctx, user)
		}

	case errors.Is(err, data.ErrUserNotFound):
		created, createErr := s.users.Create(ctx, &model.User{
			Username:       username,
			IDNumber:       key,
			AuthMethod:     domainauth.AuthMethod,
			FirstName:      s.cfg.FirstName,
			LastName:       s.cfg.LastName,
			Email:          s.cfg.Email,
			Locale:         "",
			Confirmed:      true,
			CredentialHash: credential,
		})
		if createErr != nil {
			return nil, fmt.Errorf("create user: %w", createErr)
		}
		user = created
		if s.notifier != nil {
			s.notifier.UserCreated(ctx, user)
		}

	default:
		return nil, fmt.Errorf("find user: %w", err)
	}

	if s.cfg.AssignRole > 0 && s.roles != nil {
		if roleErr := s.roles.AssignSystemRole(ctx, s.cfg.AssignRole, user.ID); roleErr != nil {
			return nil, fmt.Errorf("assign role: %w", roleErr)
		}
	}
	return user, nil
}

// establishSession authenticates the provisioned identity against the
// store using the derived credential — never the opaque key — and persists
// a session. A nil session with nil error means authentication was
// rejected (recoverable); errors are storage failures.
func (s *HandoffService) establishSession(ctx context.Context, username string) (*domainauth.Session, error) {
	user, err := s.users.FindByUsername(ctx, username, domainauth.AuthMethod)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("authenticate user: %w", err)
	}
	if user.CredentialHash != token.CredentialHash(username, s.cfg.SiteSecret) {
		return nil, nil
	}

	sess := domainauth.Session{
		ID:         uuid.New().String(),
		UserID:     user.ID,
		Username:   user.Username,
		AuthMethod: user.AuthMethod,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Email:      user.Email,
		ExpiresAt:  time.Now().Add(s.cfg.SessionTTL),
	}
	if saveErr := s.sessions.Save(ctx, sess); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}
	return &sess, nil
}

// enroll adds the identity to the effective cohort. Enrollment is
// best-effort by design: an unknown cohort is skipped silently, an
// existing membership is left alone.
func (s *HandoffService) enroll(ctx context.Context, user *model.User, params token.Params) error {
	if s.cohorts == nil {
		return nil
	}

	name := params.Cohort
	if name == "" {
		name = s.cfg.Cohort
	}
	if name == "" {
		return nil
	}

	cohort, err := s.cohorts.FindByIDNumber(ctx, name)
	if err != nil {
		if errors.Is(err, data.ErrCohortNotFound) {
			s.logger.DebugContext(ctx, "cohort not found, skipping enrollment", "cohort", name)
			return nil
		}
		return fmt.Errorf("find cohort: %w", err)
	}

	member, err := s.cohorts.IsMember(ctx, cohort.ID, user.ID)
	if err != nil {
		return fmt.Errorf("check cohort membership: %w", err)
	}
	if member {
		return nil
	}
	if err := s.cohorts.AddMember(ctx, cohort.ID, user.ID); err != nil {
		return fmt.Errorf("add cohort member: %w", err)
	}
	return nil
}

// destination computes the post-login redirect: the course view when the
// token names an existing course, otherwise the default landing URL.
func (s *HandoffService) destination(ctx context.Context, params token.Params) (string, error) {
	if params.CourseID > 0 && s.courses != nil {
		exists, err := s.courses.Exists(ctx, params.CourseID)
		if err != nil {
			return "", fmt.Errorf("check course: %w", err)
		}
		if exists {
			return fmt.Sprintf("/course/view?id=%d", params.CourseID), nil
		}
	}
	return s.landing, nil
}

// GetSession retrieves a session by ID, deleting it when expired.
func (s *HandoffService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if time.Now().After(sess.ExpiresAt) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, fmt.Errorf("delete expired session: %w", deleteErr)
		}
		return nil, errors.New("session expired")
	}
	return &sess, nil
}

// Logout removes a session.
func (s *HandoffService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to logout
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
