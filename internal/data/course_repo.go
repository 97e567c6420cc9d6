package data

import (
	"context"
	"database/sql"
	"fmt"
)

// CourseRepo answers course existence for post-login routing.
type CourseRepo struct {
	DB *sql.DB
}

// NewCourseRepo creates a new CourseRepo.
func NewCourseRepo(db *sql.DB) *CourseRepo {
	return &CourseRepo{DB: db}
}

// Exists reports whether a course with the given id exists.
func (r *CourseRepo) Exists(ctx context.Context, courseID int64) (bool, error) {
	var exists bool
	if err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM courses WHERE id = $1)`,
		courseID,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check course existence: %w", err)
	}
	return exists, nil
}

// Create inserts a course (used by seeding and tests).
func (r *CourseRepo) Create(ctx context.Context, shortname, fullname string) (int64, error) {
	var id int64
	if err := r.DB.QueryRowContext(ctx, `
		INSERT INTO courses (shortname, fullname, created_at)
		VALUES ($1, $2, now())
		RETURNING id`,
		shortname, fullname,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create course: %w", err)
	}
	return id, nil
}
