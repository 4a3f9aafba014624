package pgstore

import (
	"context"
	"time"

	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const sessionCols = `id, course_id, idx, title, summary, video_url, captions_url, transcript, guide_url, guide_pdf_url, thumbnail, created_at`

type Sessions struct{ c *Connection }

var _ repo.Sessions = (*Sessions)(nil)

func scanSession(row pgx.Row) (models.Session, error) {
	var s models.Session
	err := row.Scan(&s.ID, &s.CourseID, &s.Index, &s.Title, &s.Summary, &s.VideoURL, &s.CaptionsURL,
		&s.Transcript, &s.GuideURL, &s.GuidePDFURL, &s.Thumbnail, &s.CreatedAt)
	return s, err
}

func (s *Sessions) Create(ctx context.Context, in models.Session) (models.Session, error) {
	const op = "sessions.Create"
	if in.CourseID == "" {
		return models.Session{}, errs.E(op, errs.ErrInvalid, "course is required")
	}
	if in.Index < 1 {
		return models.Session{}, errs.E(op, errs.ErrInvalid, "index must be 1 or greater")
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	in.CreatedAt = time.Now().UTC()
	_, err := s.c.q(ctx).Exec(ctx,
		`INSERT INTO sessions (`+sessionCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		in.ID, in.CourseID, in.Index, in.Title, in.Summary, in.VideoURL, in.CaptionsURL,
		in.Transcript, in.GuideURL, in.GuidePDFURL, in.Thumbnail, in.CreatedAt)
	if err != nil {
		return models.Session{}, wrap(op, "a session with this index already exists in the course", err)
	}
	return in, nil
}

func (s *Sessions) GetByID(ctx context.Context, id string) (*models.Session, error) {
	out, err := scanSession(s.c.q(ctx).QueryRow(ctx, `SELECT `+sessionCols+` FROM sessions WHERE id = $1`, id))
	if err != nil {
		return nil, wrap("sessions.GetByID", "session not found", err)
	}
	return &out, nil
}

func (s *Sessions) GetByIndex(ctx context.Context, courseID string, index int) (*models.Session, error) {
	out, err := scanSession(s.c.q(ctx).QueryRow(ctx,
		`SELECT `+sessionCols+` FROM sessions WHERE course_id = $1 AND idx = $2`, courseID, index))
	if err != nil {
		return nil, wrap("sessions.GetByIndex", "session not found", err)
	}
	return &out, nil
}

func (s *Sessions) ListSessions(ctx context.Context, courseID string) ([]models.Session, error) {
	const op = "sessions.ListSessions"
	rows, err := s.c.q(ctx).Query(ctx,
		`SELECT `+sessionCols+` FROM sessions WHERE course_id = $1 ORDER BY idx`, courseID)
	if err != nil {
		return nil, wrap(op, "", err)
	}
	defer rows.Close()
	out := []models.Session{}
	for rows.Next() {
		x, err := scanSession(rows)
		if err != nil {
			return nil, wrap(op, "", err)
		}
		out = append(out, x)
	}
	return out, wrap(op, "", rows.Err())
}

func (s *Sessions) CountSessions(ctx context.Context, courseID string) (int64, error) {
	var n int64
	err := s.c.q(ctx).QueryRow(ctx, `SELECT count(*) FROM sessions WHERE course_id = $1`, courseID).Scan(&n)
	return n, wrap("sessions.CountSessions", "", err)
}

func (s *Sessions) CountByCourses(ctx context.Context, courseIDs []string) (map[string]int64, error) {
	return countBy(ctx, s.c, "sessions.CountByCourses",
		`SELECT course_id, count(*) FROM sessions WHERE course_id = ANY($1) GROUP BY course_id`, courseIDs)
}

func (s *Sessions) Delete(ctx context.Context, id string) error {
	tag, err := s.c.q(ctx).Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return wrap("sessions.Delete", "", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.E("sessions.Delete", errs.ErrNotFound, "session not found")
	}
	return nil
}

func (s *Sessions) DeleteForCourse(ctx context.Context, courseID string) (int64, error) {
	return execCount(ctx, s.c, "sessions.DeleteForCourse", `DELETE FROM sessions WHERE course_id = $1`, courseID)
}
