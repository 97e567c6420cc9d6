package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/openlms/anonauth/internal/data/pgxutil"
	"github.com/openlms/anonauth/internal/domain/model"
)

// UserRepo provides database operations for durable identities. Username
// uniqueness is enforced by the database; a racing create surfaces
// ErrUsernameExists rather than corrupting state.
type UserRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewUserRepo creates a new UserRepo with real time provider.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewUserRepoWithTimeProvider creates a new UserRepo with a custom time provider (useful for tests).
func NewUserRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *UserRepo {
	return &UserRepo{DB: db, timeProvider: tp}
}

const userColumns = `id, username, idnumber, auth_method, first_name, last_name, email, locale, confirmed, credential_hash, created_at, updated_at`

// FindByUsername retrieves a user by derived username, scoped to an auth method.
func (r *UserRepo) FindByUsername(ctx context.Context, username, authMethod string) (*model.User, error) {
	var out model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+userColumns+` FROM users WHERE username = $1 AND auth_method = $2`,
			username, authMethod,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return &out, nil
}

// Create inserts a new user and returns the stored row.
func (r *UserRepo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if user == nil {
		return nil, errors.New("user is required")
	}
	if user.Username == "" {
		return nil, errors.New("username is required")
	}

	now := r.timeProvider.Now().UTC()
	var out model.User
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO users (
				username, idnumber, auth_method, first_name, last_name, email, locale, confirmed, credential_hash, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10
			) RETURNING `+userColumns,
			user.Username,
			user.IDNumber,
			user.AuthMethod,
			user.FirstName,
			user.LastName,
			user.Email,
			user.Locale,
			user.Confirmed,
			user.CredentialHash,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return err
	}); err != nil {
		return nil, mapUserWriteErr(err)
	}
	return &out, nil
}

// UpdateCredential overwrites the stored credential hash for a user.
func (r *UserRepo) UpdateCredential(ctx context.Context, userID int64, credentialHash string) error {
	now := r.timeProvider.Now().UTC()
	var tag pgconn.CommandTag
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var execErr error
		tag, execErr = conn.Exec(ctx,
			`UPDATE users SET credential_hash = $1, updated_at = $2 WHERE id = $3`,
			credentialHash, now, userID,
		)
		return execErr
	}); err != nil {
		return fmt.Errorf("failed to update credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// mapUserWriteErr maps Postgres constraint violations to sentinel errors.
func mapUserWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrUsernameExists
	}
	return fmt.Errorf("failed to create user: %w", err)
}
