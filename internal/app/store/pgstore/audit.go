package pgstore

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/coursehub/internal/app/store/audit"
	"github.com/dalemusser/coursehub/internal/app/store/repo"
)

type AuditEvents struct{ c *Connection }

var _ repo.AuditStore = (*AuditEvents)(nil)

func (s *AuditEvents) Log(ctx context.Context, e audit.Event) error {
	e.Prepare()
	_, err := s.c.q(ctx).Exec(ctx, `
		INSERT INTO audit_events (id, ts, category, event_type, user_id, actor_id, course_id, ip, user_agent, success, failure_reason, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, e.Timestamp, e.Category, e.EventType, e.UserID, e.ActorID, e.CourseID,
		e.IP, e.UserAgent, e.Success, e.FailureReason, e.Details)
	return wrap("audit.Log", "", err)
}

func where(f audit.QueryFilter) (string, []any) {
	var conds []string
	var args []any
	eq := func(col, v string) {
		if v != "" {
			args = append(args, v)
			conds = append(conds, col+" = $"+itoa(len(args)))
		}
	}
	eq("user_id", f.UserID)
	eq("actor_id", f.ActorID)
	eq("course_id", f.CourseID)
	eq("category", f.Category)
	eq("event_type", f.EventType)
	if f.StartTime != nil {
		args = append(args, *f.StartTime)
		conds = append(conds, "ts >= $"+itoa(len(args)))
	}
	if f.EndTime != nil {
		args = append(args, *f.EndTime)
		conds = append(conds, "ts <= $"+itoa(len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *AuditEvents) Query(ctx context.Context, f audit.QueryFilter) ([]audit.Event, error) {
	const op = "audit.Query"
	w, args := where(f)
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, f.Offset)
	rows, err := s.c.q(ctx).Query(ctx, `
		SELECT id, ts, category, event_type, user_id, actor_id, course_id, ip, user_agent, success, failure_reason, details
		FROM audit_events`+w+` ORDER BY ts DESC, id LIMIT $`+itoa(len(args)-1)+` OFFSET $`+itoa(len(args)), args...)
	if err != nil {
		return nil, wrap(op, "", err)
	}
	defer rows.Close()
	out := []audit.Event{}
	for rows.Next() {
		var e audit.Event
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Category, &e.EventType, &e.UserID, &e.ActorID, &e.CourseID,
			&e.IP, &e.UserAgent, &e.Success, &e.FailureReason, &e.Details); err != nil {
			return nil, wrap(op, "", err)
		}
		out = append(out, e)
	}
	return out, wrap(op, "", rows.Err())
}

func (s *AuditEvents) CountByFilter(ctx context.Context, f audit.QueryFilter) (int64, error) {
	w, args := where(f)
	var n int64
	err := s.c.q(ctx).QueryRow(ctx, `SELECT count(*) FROM audit_events`+w, args...).Scan(&n)
	return n, wrap("audit.CountByFilter", "", err)
}

func (s *AuditEvents) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.c.q(ctx).Exec(ctx, `DELETE FROM audit_events WHERE ts < $1`, cutoff)
	if err != nil {
		return 0, wrap("audit.DeleteBefore", "", err)
	}
	return tag.RowsAffected(), nil
}
