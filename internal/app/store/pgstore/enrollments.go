package pgstore

import (
	"context"
	"time"

	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/google/uuid"
)

type Enrollments struct{ c *Connection }

var _ repo.Enrollments = (*Enrollments)(nil)

func (s *Enrollments) Find(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	var e models.Enrollment
	err := s.c.q(ctx).QueryRow(ctx, `
		SELECT id, user_id, course_id, status, created_at, updated_at
		FROM enrollments WHERE user_id = $1 AND course_id = $2`, userID, courseID).
		Scan(&e.ID, &e.UserID, &e.CourseID, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, wrap("enrollments.Find", "enrollment not found", err)
	}
	return &e, nil
}

// Upsert creates the (user, course) row or updates its status.
func (s *Enrollments) Upsert(ctx context.Context, userID, courseID string, status models.EnrollmentStatus) error {
	now := time.Now().UTC()
	_, err := s.c.q(ctx).Exec(ctx, `
		INSERT INTO enrollments (id, user_id, course_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (user_id, course_id) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`,
		uuid.NewString(), userID, courseID, status, now)
	return wrap("enrollments.Upsert", "", err)
}

func (s *Enrollments) Delete(ctx context.Context, userID, courseID string) (bool, error) {
	n, err := execCount(ctx, s.c, "enrollments.Delete",
		`DELETE FROM enrollments WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	return n > 0, err
}

func (s *Enrollments) CountActive(ctx context.Context, courseID string) (int64, error) {
	var n int64
	err := s.c.q(ctx).QueryRow(ctx,
		`SELECT count(*) FROM enrollments WHERE course_id = $1 AND status = $2`,
		courseID, models.EnrollmentActive).Scan(&n)
	return n, wrap("enrollments.CountActive", "", err)
}

func (s *Enrollments) CountActiveByCourses(ctx context.Context, courseIDs []string) (map[string]int64, error) {
	return countBy(ctx, s.c, "enrollments.CountActiveByCourses", `
		SELECT course_id, count(*) FROM enrollments
		WHERE course_id = ANY($1) AND status = $2 GROUP BY course_id`,
		courseIDs, models.EnrollmentActive)
}

func (s *Enrollments) Counts(ctx context.Context, courseID string) (repo.EnrollmentCounts, error) {
	var out repo.EnrollmentCounts
	err := s.c.q(ctx).QueryRow(ctx, `
		SELECT count(*) FILTER (WHERE status = $2), count(*) FILTER (WHERE status <> $2)
		FROM enrollments WHERE course_id = $1`, courseID, models.EnrollmentActive).
		Scan(&out.Active, &out.Inactive)
	return out, wrap("enrollments.Counts", "", err)
}

func (s *Enrollments) ActiveCourseIDs(ctx context.Context, userID string) ([]string, error) {
	const op = "enrollments.ActiveCourseIDs"
	rows, err := s.c.q(ctx).Query(ctx,
		`SELECT course_id FROM enrollments WHERE user_id = $1 AND status = $2 ORDER BY course_id`,
		userID, models.EnrollmentActive)
	if err != nil {
		return nil, wrap(op, "", err)
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrap(op, "", err)
		}
		ids = append(ids, id)
	}
	return ids, wrap(op, "", rows.Err())
}

func (s *Enrollments) StatusesFor(ctx context.Context, courseID string, userIDs []string) (map[string]models.EnrollmentStatus, error) {
	const op = "enrollments.StatusesFor"
	out := map[string]models.EnrollmentStatus{}
	if len(userIDs) == 0 {
		return out, nil
	}
	rows, err := s.c.q(ctx).Query(ctx,
		`SELECT user_id, status FROM enrollments WHERE course_id = $1 AND user_id = ANY($2)`, courseID, userIDs)
	if err != nil {
		return nil, wrap(op, "", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var st models.EnrollmentStatus
		if err := rows.Scan(&id, &st); err != nil {
			return nil, wrap(op, "", err)
		}
		out[id] = st
	}
	return out, wrap(op, "", rows.Err())
}

func (s *Enrollments) DeleteForUser(ctx context.Context, userID string) (int64, error) {
	return execCount(ctx, s.c, "enrollments.DeleteForUser", `DELETE FROM enrollments WHERE user_id = $1`, userID)
}

func (s *Enrollments) DeleteForCourse(ctx context.Context, courseID string) (int64, error) {
	return execCount(ctx, s.c, "enrollments.DeleteForCourse", `DELETE FROM enrollments WHERE course_id = $1`, courseID)
}
