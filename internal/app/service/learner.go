// internal/app/service/learner.go
package service

import (
	"context"
	"sort"
	"strings"

	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
)

// CatalogCourse is one published course as listed publicly.
type CatalogCourse struct {
	Course   models.Course `json:"course"`
	Sessions int64         `json:"sessions"`
	Enrolled int64         `json:"enrolled"`
}

// Catalog lists published courses by title with their session and active
// enrollment counts.
func (s *Service) Catalog(ctx context.Context) ([]CatalogCourse, error) {
	const op = "service.Catalog"
	courses, err := s.repos.Courses.ListPublished(ctx)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	ids := courseIDs(courses)
	sessions, err := s.repos.Sessions.CountByCourses(ctx, ids)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	enrolled, err := s.repos.Enrollments.CountActiveByCourses(ctx, ids)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	out := make([]CatalogCourse, 0, len(courses))
	for _, c := range courses {
		out = append(out, CatalogCourse{Course: c, Sessions: sessions[c.ID], Enrolled: enrolled[c.ID]})
	}
	return out, nil
}

// CourseCard is a course on the caller's course list.
type CourseCard struct {
	Course   models.Course   `json:"course"`
	Progress models.Progress `json:"progress"`
	Percent  int             `json:"percent"`
}

// ListCoursesFor returns every course (newest first) to staff and, to a
// USER, the published courses they hold an ACTIVE enrollment in (by title).
func (s *Service) ListCoursesFor(ctx context.Context, actor models.Actor) ([]CourseCard, error) {
	const op = "service.ListCoursesFor"
	if err := requireSignedIn(op, actor); err != nil {
		return nil, err
	}

	var courses []models.Course
	if actor.IsStaff() {
		all, err := s.repos.Courses.ListAll(ctx)
		if err != nil {
			return nil, errs.Unavailable(op, err)
		}
		courses = all
	} else {
		ids, err := s.repos.Enrollments.ActiveCourseIDs(ctx, actor.ID)
		if err != nil {
			return nil, errs.Unavailable(op, err)
		}
		found, err := s.repos.Courses.ListByIDs(ctx, ids)
		if err != nil {
			return nil, errs.Unavailable(op, err)
		}
		for _, c := range found {
			if c.Published {
				courses = append(courses, c)
			}
		}
		sort.SliceStable(courses, func(i, j int) bool {
			return strings.ToLower(courses[i].Title) < strings.ToLower(courses[j].Title)
		})
	}

	ids := courseIDs(courses)
	totals, err := s.repos.Sessions.CountByCourses(ctx, ids)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	done, err := s.progress.ProgressByCourse(ctx, actor.ID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]CourseCard, 0, len(courses))
	for _, c := range courses {
		p := models.Progress{Completed: done[c.ID], Total: int(totals[c.ID])}
		out = append(out, CourseCard{Course: c, Progress: p, Percent: p.Percent()})
	}
	return out, nil
}

// Overview is a course page.
type Overview struct {
	Course   models.Course    `json:"course"`
	Sessions []models.Session `json:"sessions"`
	Progress models.Progress  `json:"progress"`
	Percent  int              `json:"percent"`
}

// courseForActor loads the course by slug and checks the caller may view it.
func (s *Service) courseForActor(ctx context.Context, op string, actor models.Actor, slug string) (*models.Course, error) {
	if err := requireSignedIn(op, actor); err != nil {
		return nil, err
	}
	c, err := s.repos.Courses.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	if err := s.access.Require(ctx, actor.ID, actor.Role, c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

// CourseOverview returns the course, its ordered sessions and the caller's
// progress in it.
func (s *Service) CourseOverview(ctx context.Context, actor models.Actor, slug string) (*Overview, error) {
	const op = "service.CourseOverview"
	c, err := s.courseForActor(ctx, op, actor, slug)
	if err != nil {
		return nil, err
	}
	sessions, err := s.repos.Sessions.ListSessions(ctx, c.ID)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	p, err := s.progress.UserCourseProgress(ctx, actor.ID, c.ID)
	if err != nil {
		return nil, err
	}
	return &Overview{Course: *c, Sessions: sessions, Progress: p, Percent: p.Percent()}, nil
}

// SessionPage is one session as seen by the caller.
type SessionPage struct {
	Course    models.Course   `json:"course"`
	Session   models.Session  `json:"session"`
	PrevIndex int             `json:"prev_index,omitempty"` // 0 when first
	NextIndex int             `json:"next_index,omitempty"` // 0 when last
	Completed bool            `json:"completed"`
	Progress  models.Progress `json:"progress"`
	Percent   int             `json:"percent"`
}

// SessionView returns session index of the course with neighbours, the
// caller's completion flag and their course progress.
func (s *Service) SessionView(ctx context.Context, actor models.Actor, slug string, index int) (*SessionPage, error) {
	const op = "service.SessionView"
	if index < 1 {
		return nil, errs.E(op, errs.ErrInvalid, "week must be 1 or greater")
	}
	c, err := s.courseForActor(ctx, op, actor, slug)
	if err != nil {
		return nil, err
	}
	sessions, err := s.repos.Sessions.ListSessions(ctx, c.ID)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}

	page := &SessionPage{Course: *c}
	found := false
	for _, x := range sessions {
		switch {
		case x.Index < index:
			page.PrevIndex = x.Index
		case x.Index == index:
			page.Session, found = x, true
		case page.NextIndex == 0:
			page.NextIndex = x.Index
		}
	}
	if !found {
		return nil, errs.E(op, errs.ErrNotFound, "session not found")
	}

	done, err := s.repos.Completions.Exists(ctx, actor.ID, page.Session.ID)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	p, err := s.progress.UserCourseProgress(ctx, actor.ID, c.ID)
	if err != nil {
		return nil, err
	}
	page.Completed, page.Progress, page.Percent = done, p, p.Percent()
	return page, nil
}

// MarkSessionComplete records that the caller finished sessionID. Calling it
// again is a no-op.
func (s *Service) MarkSessionComplete(ctx context.Context, actor models.Actor, sessionID string) error {
	const op = "service.MarkSessionComplete"
	if !actor.SignedIn() {
		return errs.E(op, errs.ErrForbidden, "sign in required")
	}
	sess, err := s.repos.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return errs.Unavailable(op, err)
	}
	if err := s.access.Require(ctx, actor.ID, actor.Role, sess.CourseID); err != nil {
		return err
	}
	if err := s.repos.Completions.Upsert(ctx, actor.ID, sess.ID); err != nil {
		return errs.Unavailable(op, err)
	}
	s.audit.SessionCompleted(ctx, actor.ID, *sess)
	return nil
}

// CompleteByIndex resolves session index of the course and marks it complete,
// returning the caller's updated progress.
func (s *Service) CompleteByIndex(ctx context.Context, actor models.Actor, slug string, index int) (models.Progress, error) {
	const op = "service.CompleteByIndex"
	if index < 1 {
		return models.Progress{}, errs.E(op, errs.ErrInvalid, "week must be 1 or greater")
	}
	c, err := s.courseForActor(ctx, op, actor, slug)
	if err != nil {
		return models.Progress{}, err
	}
	sess, err := s.repos.Sessions.GetByIndex(ctx, c.ID, index)
	if err != nil {
		return models.Progress{}, errs.Unavailable(op, err)
	}
	if err := s.MarkSessionComplete(ctx, actor, sess.ID); err != nil {
		return models.Progress{}, err
	}
	return s.progress.UserCourseProgress(ctx, actor.ID, c.ID)
}

// ResetUserProgress deletes every completion of userID. ADMIN only.
func (s *Service) ResetUserProgress(ctx context.Context, actor models.Actor, userID string) (int64, error) {
	const op = "service.ResetUserProgress"
	if err := requireAdmin(op, actor); err != nil {
		return 0, err
	}
	if _, err := s.repos.Users.GetByID(ctx, userID); err != nil {
		return 0, errs.Unavailable(op, err)
	}
	n, err := s.repos.Completions.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, errs.Unavailable(op, err)
	}
	s.audit.ProgressReset(ctx, actor, userID, n)
	return n, nil
}

func courseIDs(cs []models.Course) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	return ids
}
