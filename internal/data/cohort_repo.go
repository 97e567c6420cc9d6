package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/openlms/anonauth/internal/data/pgxutil"
	"github.com/openlms/anonauth/internal/domain/model"
)

// CohortRepo provides database operations for enrollment cohorts and their
// memberships.
type CohortRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCohortRepo creates a new CohortRepo.
func NewCohortRepo(db *sql.DB) *CohortRepo {
	return &CohortRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// FindByIDNumber looks a cohort up by its stable external identifier.
func (r *CohortRepo) FindByIDNumber(ctx context.Context, idnumber string) (*model.Cohort, error) {
	var out model.Cohort
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT id, idnumber, name, created_at FROM cohorts WHERE idnumber = $1`,
			idnumber,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Cohort])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCohortNotFound
		}
		return nil, fmt.Errorf("failed to find cohort: %w", err)
	}
	return &out, nil
}

// Create inserts a new cohort (used by seeding and tests).
func (r *CohortRepo) Create(ctx context.Context, idnumber, name string) (*model.Cohort, error) {
	now := r.timeProvider.Now().UTC()
	var out model.Cohort
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO cohorts (idnumber, name, created_at)
			VALUES ($1, $2, $3)
			RETURNING id, idnumber, name, created_at`,
			idnumber, name, now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Cohort])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to create cohort: %w", err)
	}
	return &out, nil
}

// IsMember reports whether a user already belongs to a cohort.
func (r *CohortRepo) IsMember(ctx context.Context, cohortID, userID int64) (bool, error) {
	var exists bool
	if err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM cohort_members WHERE cohort_id = $1 AND user_id = $2)`,
		cohortID, userID,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check cohort membership: %w", err)
	}
	return exists, nil
}

// AddMember enrolls a user into a cohort. Enrollment is idempotent: an
// existing membership is a no-op, not an error.
func (r *CohortRepo) AddMember(ctx context.Context, cohortID, userID int64) error {
	now := r.timeProvider.Now().UTC()
	if _, err := r.DB.ExecContext(ctx, `
		INSERT INTO cohort_members (cohort_id, user_id, added_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (cohort_id, user_id) DO NOTHING`,
		cohortID, userID, now,
	); err != nil {
		return fmt.Errorf("failed to add cohort member: %w", err)
	}
	return nil
}
