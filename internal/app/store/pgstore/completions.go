package pgstore

import (
	"context"
	"time"

	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/google/uuid"
)

type Completions struct{ c *Connection }

var _ repo.Completions = (*Completions)(nil)

func (s *Completions) Exists(ctx context.Context, userID, sessionID string) (bool, error) {
	var ok bool
	err := s.c.q(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM completions WHERE user_id = $1 AND session_id = $2)`,
		userID, sessionID).Scan(&ok)
	return ok, wrap("completions.Exists", "", err)
}

// Upsert records the completion once; repeats are no-ops.
func (s *Completions) Upsert(ctx context.Context, userID, sessionID string) error {
	_, err := s.c.q(ctx).Exec(ctx, `
		INSERT INTO completions (id, user_id, session_id, completed_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, session_id) DO NOTHING`,
		uuid.NewString(), userID, sessionID, time.Now().UTC())
	return wrap("completions.Upsert", "", err)
}

func (s *Completions) CountForCourse(ctx context.Context, userID, courseID string) (int64, error) {
	var n int64
	err := s.c.q(ctx).QueryRow(ctx, `
		SELECT count(*) FROM completions c
		JOIN sessions s ON s.id = c.session_id
		WHERE c.user_id = $1 AND s.course_id = $2`, userID, courseID).Scan(&n)
	return n, wrap("completions.CountForCourse", "", err)
}

func (s *Completions) CountByUsers(ctx context.Context, userIDs []string) (map[string]int64, error) {
	return countBy(ctx, s.c, "completions.CountByUsers",
		`SELECT user_id, count(*) FROM completions WHERE user_id = ANY($1) GROUP BY user_id`, userIDs)
}

func (s *Completions) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	return execCount(ctx, s.c, "completions.DeleteAllForUser", `DELETE FROM completions WHERE user_id = $1`, userID)
}

func (s *Completions) DeleteForSessions(ctx context.Context, sessionIDs []string) (int64, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}
	return execCount(ctx, s.c, "completions.DeleteForSessions",
		`DELETE FROM completions WHERE session_id = ANY($1)`, sessionIDs)
}

// Progress answers the join queries.
type Progress struct{ c *Connection }

var _ repo.Progress = (*Progress)(nil)

func (s *Progress) CompletedCells(ctx context.Context, courseID string) (int64, error) {
	var n int64
	err := s.c.q(ctx).QueryRow(ctx, `
		SELECT count(*) FROM completions c
		JOIN sessions s    ON s.id = c.session_id
		JOIN enrollments e ON e.user_id = c.user_id AND e.course_id = s.course_id
		WHERE s.course_id = $1 AND e.status = 'ACTIVE'`, courseID).Scan(&n)
	return n, wrap("progress.CompletedCells", "", err)
}

func (s *Progress) CompletedByCourse(ctx context.Context, userID string, courseIDs []string) (map[string]int64, error) {
	return countBy(ctx, s.c, "progress.CompletedByCourse", `
		SELECT s.course_id, count(*) FROM sessions s
		JOIN completions c ON c.session_id = s.id AND c.user_id = $2
		WHERE s.course_id = ANY($1)
		GROUP BY s.course_id`, courseIDs, userID)
}
