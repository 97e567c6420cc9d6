package auth

// Package auth contains simple hand-written test doubles for the hand-off
// ports. These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"

	"github.com/openlms/anonauth/internal/data"
	domainauth "github.com/openlms/anonauth/internal/domain/auth"
	"github.com/openlms/anonauth/internal/domain/model"
	"github.com/openlms/anonauth/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.UserStore    = (*MemoryUserStore)(nil)
	_ ports.CohortStore  = (*MemoryCohortStore)(nil)
	_ ports.CourseStore  = (*MemoryCourseStore)(nil)
	_ ports.SessionStore = (*MemorySessionStore)(nil)
	_ ports.Notifier     = (*RecordingNotifier)(nil)
	_ ports.RoleAssigner = (*RecordingRoleAssigner)(nil)
)

// ErrNotFound is returned by the session-store mock when a session is not
// present. The user and cohort mocks return the data-layer sentinels so
// service code exercises the same errors.Is paths as production.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var ErrNotFound error = notFoundError{}

// MemoryUserStore is an in-memory UserStore with username uniqueness.
type MemoryUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*model.User // keyed by username

	// CreateErr / UpdateErr / FindErr force failures when set.
	CreateErr error
	UpdateErr error
	FindErr   error

	CreateCalls int
	UpdateCalls int
}

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*model.User)}
}

func (m *MemoryUserStore) FindByUsername(_ context.Context, username, authMethod string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	u, ok := m.users[username]
	if !ok || u.AuthMethod != authMethod {
		return nil, data.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryUserStore) Create(_ context.Context, user *model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if _, exists := m.users[user.Username]; exists {
		return nil, data.ErrUsernameExists
	}
	m.nextID++
	cp := *user
	cp.ID = m.nextID
	m.users[cp.Username] = &cp
	out := cp
	return &out, nil
}

func (m *MemoryUserStore) UpdateCredential(_ context.Context, userID int64, credentialHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	for _, u := range m.users {
		if u.ID == userID {
			u.CredentialHash = credentialHash
			return nil
		}
	}
	return data.ErrUserNotFound
}

// Count returns the number of stored users.
func (m *MemoryUserStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// MemoryCohortStore is an in-memory CohortStore.
type MemoryCohortStore struct {
	mu      sync.Mutex
	nextID  int64
	cohorts map[string]*model.Cohort // keyed by idnumber
	members map[int64]map[int64]bool // cohortID -> userID set

	FindErr      error
	AddMemberErr error

	AddMemberCalls int
}

// NewMemoryCohortStore creates an empty in-memory cohort store.
func NewMemoryCohortStore() *MemoryCohortStore {
	return &MemoryCohortStore{
		cohorts: make(map[string]*model.Cohort),
		members: make(map[int64]map[int64]bool),
	}
}

// AddCohort seeds a cohort and returns it.
func (m *MemoryCohortStore) AddCohort(idnumber, name string) *model.Cohort {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c := &model.Cohort{ID: m.nextID, IDNumber: idnumber, Name: name}
	m.cohorts[idnumber] = c
	m.members[c.ID] = make(map[int64]bool)
	return c
}

func (m *MemoryCohortStore) FindByIDNumber(_ context.Context, idnumber string) (*model.Cohort, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	c, ok := m.cohorts[idnumber]
	if !ok {
		return nil, data.ErrCohortNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryCohortStore) IsMember(_ context.Context, cohortID, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.members[cohortID][userID], nil
}

func (m *MemoryCohortStore) AddMember(_ context.Context, cohortID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddMemberCalls++
	if m.AddMemberErr != nil {
		return m.AddMemberErr
	}
	if m.members[cohortID] == nil {
		m.members[cohortID] = make(map[int64]bool)
	}
	m.members[cohortID][userID] = true
	return nil
}

// MemberCount returns the number of members in a cohort.
func (m *MemoryCohortStore) MemberCount(cohortID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.members[cohortID])
}

// MemoryCourseStore is an in-memory CourseStore.
type MemoryCourseStore struct {
	mu      sync.Mutex
	courses map[int64]bool

	ExistsErr error
}

// NewMemoryCourseStore creates an empty in-memory course store.
func NewMemoryCourseStore() *MemoryCourseStore {
	return &MemoryCourseStore{courses: make(map[int64]bool)}
}

// AddCourse seeds a course id.
func (m *MemoryCourseStore) AddCourse(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[id] = true
}

func (m *MemoryCourseStore) Exists(_ context.Context, courseID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	return m.courses[courseID], nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session

	SaveErr error
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Count returns the number of stored sessions.
func (m *MemorySessionStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// RecordingNotifier records lifecycle notifications for assertions.
type RecordingNotifier struct {
	mu      sync.Mutex
	Created []int64
	Updated []int64
}

// NewRecordingNotifier creates an empty RecordingNotifier.
func NewRecordingNotifier() *RecordingNotifier { return &RecordingNotifier{} }

func (n *RecordingNotifier) UserCreated(_ context.Context, user *model.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Created = append(n.Created, user.ID)
}

func (n *RecordingNotifier) UserUpdated(_ context.Context, user *model.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Updated = append(n.Updated, user.ID)
}

// RecordingRoleAssigner records role assignments for assertions.
type RecordingRoleAssigner struct {
	mu          sync.Mutex
	Assignments map[int64]int64 // userID -> roleID
	AssignErr   error
}

// NewRecordingRoleAssigner creates an empty RecordingRoleAssigner.
func NewRecordingRoleAssigner() *RecordingRoleAssigner {
	return &RecordingRoleAssigner{Assignments: make(map[int64]int64)}
}

func (r *RecordingRoleAssigner) AssignSystemRole(_ context.Context, roleID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.AssignErr != nil {
		return r.AssignErr
	}
	r.Assignments[userID] = roleID
	return nil
}
