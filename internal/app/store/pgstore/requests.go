package pgstore

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/app/system/search"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const requestCols = `id, course_id, name, email, message, status, COALESCE(decided_by, ''), decided_at, created_at`

type AccessRequests struct{ c *Connection }

var _ repo.AccessRequests = (*AccessRequests)(nil)

func scanRequest(row pgx.Row) (models.AccessRequest, error) {
	var r models.AccessRequest
	err := row.Scan(&r.ID, &r.CourseID, &r.Name, &r.Email, &r.Message, &r.Status, &r.DecidedBy, &r.DecidedAt, &r.CreatedAt)
	return r, err
}

func (s *AccessRequests) Create(ctx context.Context, r models.AccessRequest) (models.AccessRequest, error) {
	const op = "accessrequests.Create"
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" || r.CourseID == "" {
		return models.AccessRequest{}, errs.E(op, errs.ErrInvalid, "email and course are required")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.Status = models.RequestPending
	r.DecidedBy, r.DecidedAt = "", nil
	r.CreatedAt = time.Now().UTC()
	_, err := s.c.q(ctx).Exec(ctx, `
		INSERT INTO access_requests (id, course_id, name, email, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.CourseID, r.Name, r.Email, r.Message, r.Status, r.CreatedAt)
	if err != nil {
		return models.AccessRequest{}, wrap(op, "", err)
	}
	return r, nil
}

func (s *AccessRequests) GetByID(ctx context.Context, id string) (*models.AccessRequest, error) {
	r, err := scanRequest(s.c.q(ctx).QueryRow(ctx, `SELECT `+requestCols+` FROM access_requests WHERE id = $1`, id))
	if err != nil {
		return nil, wrap("accessrequests.GetByID", "access request not found", err)
	}
	return &r, nil
}

// Decide transitions a PENDING request exactly once.
func (s *AccessRequests) Decide(ctx context.Context, id string, status models.AccessRequestStatus, decidedBy string, at time.Time) error {
	const op = "accessrequests.Decide"
	if status != models.RequestApproved && status != models.RequestRejected {
		return errs.E(op, errs.ErrInvalid, "decision must be APPROVED or REJECTED")
	}
	tag, err := s.c.q(ctx).Exec(ctx, `
		UPDATE access_requests SET status = $2, decided_by = $3, decided_at = $4
		WHERE id = $1 AND status = 'PENDING'`, id, status, decidedBy, at.UTC())
	if err != nil {
		return wrap(op, "", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := s.c.q(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM access_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return wrap(op, "", err)
	}
	if !exists {
		return errs.E(op, errs.ErrNotFound, "access request not found")
	}
	return errs.E(op, errs.ErrConflict, "access request was already decided")
}

func (s *AccessRequests) List(ctx context.Context, f repo.RequestFilter) ([]models.AccessRequest, int64, error) {
	const op = "accessrequests.List"
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}
	if f.CourseID != "" {
		conds = append(conds, "course_id = "+arg(f.CourseID))
	}
	if f.Status != "" {
		conds = append(conds, "status = "+arg(f.Status))
	}
	if q := strings.TrimSpace(f.Q); q != "" {
		p := arg(search.LikePattern(q))
		or := "email ILIKE " + p + " OR name ILIKE " + p
		if len(f.QCourseIDs) > 0 {
			or += " OR course_id = ANY(" + arg(f.QCourseIDs) + ")"
		}
		conds = append(conds, "("+or+")")
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := s.c.q(ctx).QueryRow(ctx, `SELECT count(*) FROM access_requests`+where, args...).Scan(&total); err != nil {
		return nil, 0, wrap(op, "", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	sql := `SELECT ` + requestCols + ` FROM access_requests` + where +
		` ORDER BY created_at DESC, id LIMIT ` + arg(limit) + ` OFFSET ` + arg(f.Offset)
	rows, err := s.c.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, wrap(op, "", err)
	}
	defer rows.Close()
	out := []models.AccessRequest{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, 0, wrap(op, "", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrap(op, "", err)
	}
	return out, total, nil
}

func (s *AccessRequests) DeleteForCourse(ctx context.Context, courseID string) (int64, error) {
	return execCount(ctx, s.c, "accessrequests.DeleteForCourse", `DELETE FROM access_requests WHERE course_id = $1`, courseID)
}
