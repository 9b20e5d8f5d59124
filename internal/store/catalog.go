package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"material-recon/internal/domain"
)

// UpsertCourse inserts or refreshes catalog data by course code and returns
// the row id. Concurrent enrichment tasks targeting the same code converge
// on the conflict clause instead of duplicating.
func (s *Store) UpsertCourse(ctx context.Context, c *domain.Course) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
INSERT INTO courses (code, name, short_name, catalog_id, program, fetched_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (code) DO UPDATE SET
  name = EXCLUDED.name,
  short_name = EXCLUDED.short_name,
  catalog_id = EXCLUDED.catalog_id,
  program = EXCLUDED.program,
  fetched_at = now()
RETURNING id
`, c.Code, c.Name, c.ShortName, c.CatalogID, c.Program).Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// CourseFetchedAt reports when a course code was last materialized; ok is
// false when the code was never fetched. Drives the staleness filter.
func (s *Store) CourseFetchedAt(ctx context.Context, code string) (time.Time, bool, error) {
	var at time.Time
	found := true
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `SELECT fetched_at FROM courses WHERE code = $1`, code).Scan(&at)
		if errors.Is(err, pgx.ErrNoRows) {
			found = false
			return nil
		}
		return err
	})
	if err != nil {
		return time.Time{}, false, err
	}
	return at, found, nil
}

// CourseIDByCode resolves a materialized course, 0 when absent.
func (s *Store) CourseIDByCode(ctx context.Context, code string) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `SELECT id FROM courses WHERE code = $1`, code).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			id = 0
			return nil
		}
		return err
	})
	return id, err
}

// LinkRecordCourse attaches a course to a record; repeats are no-ops.
func (s *Store) LinkRecordCourse(ctx context.Context, recordID, courseID int64) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
INSERT INTO record_courses (record_id, course_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`, recordID, courseID)
		return err
	})
}

// UpsertPerson inserts or refreshes directory data by display name.
func (s *Store) UpsertPerson(ctx context.Context, p *domain.Person) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
INSERT INTO persons (display_name, email, faculty_abbr, fetched_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (display_name) DO UPDATE SET
  email = EXCLUDED.email,
  faculty_abbr = EXCLUDED.faculty_abbr,
  fetched_at = now()
RETURNING id
`, p.DisplayName, p.Email, p.FacultyAbbr).Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// LinkCoursePerson attaches a person to a course under a role tag. The
// (course, person, role) triple is unique; re-enrichment is a no-op here.
func (s *Store) LinkCoursePerson(ctx context.Context, courseID, personID int64, role string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
INSERT INTO course_persons (course_id, person_id, role)
VALUES ($1, $2, $3)
ON CONFLICT DO NOTHING
`, courseID, personID, role)
		return err
	})
}

// SetRecordFaculty stamps the faculty abbreviation derived from directory
// affiliation data onto the record.
func (s *Store) SetRecordFaculty(ctx context.Context, recordID int64, abbr string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
UPDATE records SET faculty_abbr = $2, updated_at = now() WHERE id = $1
`, recordID, abbr)
		return err
	})
}
