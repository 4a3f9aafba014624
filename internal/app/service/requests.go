// internal/app/service/requests.go
package service

import (
	"context"
	"strings"

	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/coursehub/internal/app/system/inputval"
	"github.com/dalemusser/coursehub/internal/app/system/paging"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
)

// AccessRequestInput is the public request form.
type AccessRequestInput struct {
	CourseID string `json:"course_id" validate:"required"`
	Name     string `json:"name" validate:"max=200"`
	Email    string `json:"email" validate:"required,email"`
	Message  string `json:"message" validate:"max=2000"`
}

// RequestAccess files a PENDING request for a published course. Name and
// message are reduced to plain text.
func (s *Service) RequestAccess(ctx context.Context, in AccessRequestInput) (models.AccessRequest, error) {
	const op = "service.RequestAccess"
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := inputval.Struct(op, in); err != nil {
		return models.AccessRequest{}, err
	}
	c, err := s.repos.Courses.GetByID(ctx, in.CourseID)
	if err != nil {
		return models.AccessRequest{}, errs.Unavailable(op, err)
	}
	if !c.Published {
		return models.AccessRequest{}, errs.E(op, errs.ErrNotFound, "course not found")
	}
	req, err := s.repos.Requests.Create(ctx, models.AccessRequest{
		CourseID: c.ID,
		Name:     htmlsanitize.PlainText(in.Name),
		Email:    in.Email,
		Message:  htmlsanitize.PlainText(in.Message),
		Status:   models.RequestPending,
	})
	if err != nil {
		return models.AccessRequest{}, errs.Unavailable(op, err)
	}
	s.audit.AccessRequested(ctx, req)
	return req, nil
}

// Decision is the outcome of DecideAccessRequest.
type Decision struct {
	Request models.AccessRequest `json:"request"`
	// EnrolledUserID is set when approval enrolled an existing account.
	EnrolledUserID string `json:"enrolled_user_id,omitempty"`
}

// DecideAccessRequest approves or rejects a PENDING request. Approval
// enrolls the account with the request's e-mail, if there is one.
func (s *Service) DecideAccessRequest(ctx context.Context, actor models.Actor, id, decision string) (*Decision, error) {
	const op = "service.DecideAccessRequest"
	if err := requireStaff(op, actor); err != nil {
		return nil, err
	}
	status, _ := models.ParseAccessRequestStatus(decision)
	if status != models.RequestApproved && status != models.RequestRejected {
		return nil, errs.E(op, errs.ErrInvalid, "decision must be APPROVED or REJECTED")
	}
	req, err := s.repos.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	if !req.Pending() {
		return nil, errs.E(op, errs.ErrConflict, "access request was already decided")
	}

	out := &Decision{}
	at := s.now()
	err = s.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repos.Requests.Decide(ctx, req.ID, status, actor.ID, at); err != nil {
			return err
		}
		if status != models.RequestApproved {
			return nil
		}
		u, err := s.repos.Users.GetByEmail(ctx, req.Email)
		if errs.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.repos.Enrollments.Upsert(ctx, u.ID, req.CourseID, models.EnrollmentActive); err != nil {
			return err
		}
		out.EnrolledUserID = u.ID
		return nil
	})
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}

	req.Status, req.DecidedBy, req.DecidedAt = status, actor.ID, &at
	out.Request = *req
	s.audit.RequestDecided(ctx, actor, *req, status, out.EnrolledUserID)
	return out, nil
}

// RequestQuery filters ListAccessRequests. Status is ALL, PENDING, APPROVED
// or REJECTED; empty means ALL.
type RequestQuery struct {
	Q        string
	CourseID string
	Status   string
	Page     int
}

type RequestRow struct {
	Request     models.AccessRequest `json:"request"`
	CourseTitle string               `json:"course_title"`
}

type RequestList struct {
	Requests []RequestRow `json:"requests"`
	Meta     paging.Meta  `json:"paging"`
}

// ListAccessRequests pages requests newest first. Q matches e-mail, name or
// course title.
func (s *Service) ListAccessRequests(ctx context.Context, actor models.Actor, f RequestQuery) (*RequestList, error) {
	const op = "service.ListAccessRequests"
	if err := requireStaff(op, actor); err != nil {
		return nil, err
	}
	status, ok := models.ParseAccessRequestStatus(f.Status)
	if !ok {
		return nil, errs.E(op, errs.ErrInvalid, "status must be ALL, PENDING, APPROVED or REJECTED")
	}
	filter := repo.RequestFilter{
		Q:        strings.TrimSpace(f.Q),
		CourseID: f.CourseID,
		Status:   status,
		Page:     paging.Window(f.Page, paging.RequestPageSize),
	}
	if filter.Q != "" {
		ids, err := s.repos.Courses.SearchIDs(ctx, filter.Q)
		if err != nil {
			return nil, errs.Unavailable(op, err)
		}
		filter.QCourseIDs = ids
	}
	reqs, total, err := s.repos.Requests.List(ctx, filter)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}

	seen := map[string]struct{}{}
	var cids []string
	for _, r := range reqs {
		if _, ok := seen[r.CourseID]; !ok {
			seen[r.CourseID] = struct{}{}
			cids = append(cids, r.CourseID)
		}
	}
	courses, err := s.repos.Courses.ListByIDs(ctx, cids)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	titles := make(map[string]string, len(courses))
	for _, c := range courses {
		titles[c.ID] = c.Title
	}

	out := &RequestList{
		Requests: make([]RequestRow, 0, len(reqs)),
		Meta:     paging.ComputeMeta(f.Page, paging.RequestPageSize, total, len(reqs)),
	}
	for _, r := range reqs {
		out.Requests = append(out.Requests, RequestRow{Request: r, CourseTitle: titles[r.CourseID]})
	}
	return out, nil
}
