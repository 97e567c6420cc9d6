package data

import (
	"context"
	"database/sql"
	"fmt"
)

// RoleRepo records system-scope role assignments for provisioned accounts.
type RoleRepo struct {
	DB *sql.DB
}

// NewRoleRepo creates a new RoleRepo.
func NewRoleRepo(db *sql.DB) *RoleRepo {
	return &RoleRepo{DB: db}
}

// AssignSystemRole grants a role at system scope. Assignment is idempotent:
// re-assigning an existing role is a no-op.
func (r *RoleRepo) AssignSystemRole(ctx context.Context, roleID, userID int64) error {
	if _, err := r.DB.ExecContext(ctx, `
		INSERT INTO role_assignments (role_id, user_id, component, assigned_at)
		VALUES ($1, $2, 'auth_anonymous', now())
		ON CONFLICT (role_id, user_id) DO NOTHING`,
		roleID, userID,
	); err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	return nil
}
