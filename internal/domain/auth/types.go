package auth

// Package auth contains domain-level types for hand-off authentication and
// sessions. It is pure and free of framework/adapter concerns.

import "time"

// AuthMethod tags accounts and sessions owned by the anonymous hand-off
// pipeline. Accounts carrying this tag are never authenticated by any
// other mechanism.
const AuthMethod = "anonymous"

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (e.g., random URL-safe string).
type Session struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	AuthMethod string    `json:"auth_method"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// IsAnonymous reports whether this session was established by the hand-off
// pipeline. The logout hook only overrides the redirect for these.
func (s Session) IsAnonymous() bool { return s.AuthMethod == AuthMethod }
