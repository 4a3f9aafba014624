// internal/app/service/audit.go
package service

import (
	"context"
	"time"

	"github.com/dalemusser/coursehub/internal/app/store/audit"
	"github.com/dalemusser/coursehub/internal/app/system/paging"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"go.uber.org/zap"
)

// AuditQuery filters AuditTrail. Zero fields do not filter.
type AuditQuery struct {
	Category  string
	EventType string
	UserID    string
	CourseID  string
	Start     *time.Time
	End       *time.Time
	Page      int
}

// AuditRow is one event with the actor and target names resolved.
type AuditRow struct {
	audit.Event
	ActorName  string `json:"actor_name,omitempty"`
	TargetName string `json:"target_name,omitempty"`
}

type AuditPage struct {
	Events []AuditRow  `json:"events"`
	Meta   paging.Meta `json:"paging"`
}

// AuditTrail pages audit events, most recent first. ADMIN only.
func (s *Service) AuditTrail(ctx context.Context, actor models.Actor, q AuditQuery) (*AuditPage, error) {
	const op = "service.AuditTrail"
	if err := requireAdmin(op, actor); err != nil {
		return nil, err
	}
	if q.Start != nil && q.End != nil && q.End.Before(*q.Start) {
		return nil, errs.E(op, errs.ErrInvalid, "end date is before start date")
	}
	win := paging.Window(q.Page, paging.AuditPageSize)
	filter := audit.QueryFilter{
		Category:  q.Category,
		EventType: q.EventType,
		UserID:    q.UserID,
		CourseID:  q.CourseID,
		StartTime: q.Start,
		EndTime:   q.End,
		Limit:     win.Limit,
		Offset:    win.Offset,
	}

	events, err := s.repos.Audit.Query(ctx, filter)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	total, err := s.repos.Audit.CountByFilter(ctx, filter)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}

	names := s.userNames(ctx, events)
	out := &AuditPage{
		Events: make([]AuditRow, 0, len(events)),
		Meta:   paging.ComputeMeta(q.Page, paging.AuditPageSize, total, len(events)),
	}
	for _, e := range events {
		out.Events = append(out.Events, AuditRow{Event: e, ActorName: names[e.ActorID], TargetName: names[e.UserID]})
	}
	return out, nil
}

// userNames resolves the names of the users an audit page mentions. Deleted
// users and lookup failures are left unnamed.
func (s *Service) userNames(ctx context.Context, events []audit.Event) map[string]string {
	names := map[string]string{}
	for _, e := range events {
		for _, id := range []string{e.ActorID, e.UserID} {
			if id == "" {
				continue
			}
			if _, done := names[id]; done {
				continue
			}
			names[id] = ""
			u, err := s.repos.Users.GetByID(ctx, id)
			switch {
			case err == nil:
				names[id] = u.Name
			case !errs.IsNotFound(err):
				s.log.Warn("audit name lookup failed", zap.String("user_id", id), zap.Error(err))
			}
		}
	}
	return names
}
