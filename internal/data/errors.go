package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// User repository sentinels.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameExists is returned when a create races another request for
	// the same derived username and loses to the uniqueness constraint.
	ErrUsernameExists = errors.New("username already exists")

	// Cohort repository sentinels.
	ErrCohortNotFound = errors.New("cohort not found")
)
