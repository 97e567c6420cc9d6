// Package devseed seeds local development data: the default enrollment
// cohort and a demo course to route into. Production deployments never run
// this; it is gated on the DEV flag.
package devseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openlms/anonauth/internal/data"
)

// Options groups the inputs for Seed.
type Options struct {
	DB *sql.DB

	// CohortIDNumber is the default cohort configured for enrollment.
	CohortIDNumber string

	Logger *slog.Logger
}

// Seed ensures the development fixtures exist. It is idempotent: rerunning
// against a seeded database changes nothing.
func Seed(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := seedCohort(ctx, opts.DB, opts.CohortIDNumber, logger); err != nil {
		return err
	}
	return seedDemoCourse(ctx, opts.DB, logger)
}

func seedCohort(ctx context.Context, db *sql.DB, idnumber string, logger *slog.Logger) error {
	if idnumber == "" {
		return nil
	}

	cohorts := data.NewCohortRepo(db)
	if _, err := cohorts.FindByIDNumber(ctx, idnumber); err == nil {
		return nil
	} else if !errors.Is(err, data.ErrCohortNotFound) {
		return fmt.Errorf("look up seed cohort: %w", err)
	}

	created, err := cohorts.Create(ctx, idnumber, "Anonymous visitors")
	if err != nil {
		return fmt.Errorf("seed cohort: %w", err)
	}
	logger.InfoContext(ctx, "seeded cohort", "id", created.ID, "idnumber", created.IDNumber)
	return nil
}

func seedDemoCourse(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	const shortname = "demo"

	var exists bool
	if err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM courses WHERE shortname = $1)`, shortname,
	).Scan(&exists); err != nil {
		return fmt.Errorf("look up demo course: %w", err)
	}
	if exists {
		return nil
	}

	courses := data.NewCourseRepo(db)
	id, err := courses.Create(ctx, shortname, "Demo course")
	if err != nil {
		return fmt.Errorf("seed demo course: %w", err)
	}
	logger.InfoContext(ctx, "seeded demo course", "id", id, "shortname", shortname)
	return nil
}
