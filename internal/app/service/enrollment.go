// internal/app/service/enrollment.go
package service

import (
	"context"

	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/app/system/paging"
	"github.com/dalemusser/coursehub/internal/app/system/search"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
)

// checkPair verifies both ends of an enrollment exist.
func (s *Service) checkPair(ctx context.Context, op, courseID, userID string) error {
	if _, err := s.repos.Courses.GetByID(ctx, courseID); err != nil {
		return errs.Unavailable(op, err)
	}
	if _, err := s.repos.Users.GetByID(ctx, userID); err != nil {
		return errs.Unavailable(op, err)
	}
	return nil
}

// Enroll makes userID an ACTIVE member of courseID.
func (s *Service) Enroll(ctx context.Context, actor models.Actor, courseID, userID string) error {
	const op = "service.Enroll"
	if err := requireStaff(op, actor); err != nil {
		return err
	}
	if err := s.checkPair(ctx, op, courseID, userID); err != nil {
		return err
	}
	if err := s.repos.Enrollments.Upsert(ctx, userID, courseID, models.EnrollmentActive); err != nil {
		return errs.Unavailable(op, err)
	}
	s.audit.Enrolled(ctx, actor, userID, courseID)
	return nil
}

// Unenroll removes the enrollment. A missing row is not an error.
func (s *Service) Unenroll(ctx context.Context, actor models.Actor, courseID, userID string) error {
	const op = "service.Unenroll"
	if err := requireStaff(op, actor); err != nil {
		return err
	}
	removed, err := s.repos.Enrollments.Delete(ctx, userID, courseID)
	if err != nil {
		return errs.Unavailable(op, err)
	}
	if removed {
		s.audit.Unenrolled(ctx, actor, userID, courseID)
	}
	return nil
}

// SetEnrollmentStatus stores status for (userID, courseID), creating the row
// if needed.
func (s *Service) SetEnrollmentStatus(ctx context.Context, actor models.Actor, courseID, userID, status string) error {
	const op = "service.SetEnrollmentStatus"
	if err := requireStaff(op, actor); err != nil {
		return err
	}
	st, ok := models.ParseEnrollmentStatus(status)
	if !ok {
		return errs.E(op, errs.ErrInvalid, "status must be ACTIVE or INACTIVE")
	}
	if err := s.checkPair(ctx, op, courseID, userID); err != nil {
		return err
	}
	if err := s.repos.Enrollments.Upsert(ctx, userID, courseID, st); err != nil {
		return errs.Unavailable(op, err)
	}
	s.audit.EnrollmentStatusChanged(ctx, actor, userID, courseID, st)
	return nil
}

// BulkResult reports a bulk enrollment.
type BulkResult struct {
	Requested int      `json:"requested"`
	Enrolled  int      `json:"enrolled"`
	Unknown   []string `json:"unknown"`
}

// BulkEnroll enrolls every existing user whose e-mail appears in raw.
// Addresses with no account are reported back; none are created.
func (s *Service) BulkEnroll(ctx context.Context, actor models.Actor, courseID, raw string) (BulkResult, error) {
	const op = "service.BulkEnroll"
	if err := requireStaff(op, actor); err != nil {
		return BulkResult{}, err
	}
	emails := search.SplitEmails(raw)
	if len(emails) == 0 {
		return BulkResult{}, errs.E(op, errs.ErrInvalid, "enter at least one e-mail address")
	}
	if _, err := s.repos.Courses.GetByID(ctx, courseID); err != nil {
		return BulkResult{}, errs.Unavailable(op, err)
	}
	users, err := s.repos.Users.GetByEmails(ctx, emails)
	if err != nil {
		return BulkResult{}, errs.Unavailable(op, err)
	}

	res := BulkResult{Requested: len(emails), Unknown: []string{}}
	byEmail := make(map[string]models.User, len(users))
	for _, u := range users {
		byEmail[u.Email] = u
	}
	err = s.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, e := range emails {
			u, ok := byEmail[e]
			if !ok {
				continue
			}
			if err := s.repos.Enrollments.Upsert(ctx, u.ID, courseID, models.EnrollmentActive); err != nil {
				return err
			}
			res.Enrolled++
		}
		return nil
	})
	if err != nil {
		return BulkResult{}, errs.Unavailable(op, err)
	}
	for _, e := range emails {
		if _, ok := byEmail[e]; !ok {
			res.Unknown = append(res.Unknown, e)
		}
	}
	s.audit.BulkEnrolled(ctx, actor, courseID, res.Requested, res.Enrolled, len(res.Unknown))
	return res, nil
}

// RosterEntry is a user and their status in the roster's course ("" when not
// enrolled).
type RosterEntry struct {
	User   models.User             `json:"user"`
	Status models.EnrollmentStatus `json:"status,omitempty"`
}

type Roster struct {
	Course  models.Course         `json:"course"`
	Counts  repo.EnrollmentCounts `json:"counts"`
	Entries []RosterEntry         `json:"entries"`
}

// EnrollmentRoster lists up to paging.RosterLimit users matching q with
// their status in courseID.
func (s *Service) EnrollmentRoster(ctx context.Context, actor models.Actor, courseID, q string) (*Roster, error) {
	const op = "service.EnrollmentRoster"
	if err := requireStaff(op, actor); err != nil {
		return nil, err
	}
	c, err := s.repos.Courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	users, _, err := s.repos.Users.List(ctx, repo.UserFilter{Q: q, Page: repo.Page{Limit: paging.RosterLimit}})
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	statuses, err := s.repos.Enrollments.StatusesFor(ctx, courseID, ids)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	counts, err := s.repos.Enrollments.Counts(ctx, courseID)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	out := &Roster{Course: *c, Counts: counts, Entries: make([]RosterEntry, 0, len(users))}
	for _, u := range users {
		out.Entries = append(out.Entries, RosterEntry{User: u, Status: statuses[u.ID]})
	}
	return out, nil
}
