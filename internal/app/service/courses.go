// internal/app/service/courses.go
package service

import (
	"context"
	"strings"

	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/coursehub/internal/app/system/inputval"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
)

// AdminCourseRow is a course on the admin list.
type AdminCourseRow struct {
	Course   models.Course `json:"course"`
	Sessions int64         `json:"sessions"`
	Grid     models.Grid   `json:"grid"`
	Percent  int           `json:"percent"`
}

// AdminCourses lists every course, newest first, with its completion grid.
func (s *Service) AdminCourses(ctx context.Context, actor models.Actor) ([]AdminCourseRow, error) {
	const op = "service.AdminCourses"
	if err := requireStaff(op, actor); err != nil {
		return nil, err
	}
	courses, err := s.repos.Courses.ListAll(ctx)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	ids := courseIDs(courses)
	sessions, err := s.repos.Sessions.CountByCourses(ctx, ids)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	grids, err := s.progress.GridsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]AdminCourseRow, 0, len(courses))
	for _, c := range courses {
		g := grids[c.ID]
		out = append(out, AdminCourseRow{Course: c, Sessions: sessions[c.ID], Grid: g, Percent: g.Percent()})
	}
	return out, nil
}

type AdminCourseDetail struct {
	Course      models.Course         `json:"course"`
	Sessions    []models.Session      `json:"sessions"`
	Enrollments repo.EnrollmentCounts `json:"enrollments"`
	Grid        models.Grid           `json:"grid"`
	Percent     int                   `json:"percent"`
}

func (s *Service) AdminCourse(ctx context.Context, actor models.Actor, id string) (*AdminCourseDetail, error) {
	const op = "service.AdminCourse"
	if err := requireStaff(op, actor); err != nil {
		return nil, err
	}
	c, err := s.repos.Courses.GetByID(ctx, id)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	sessions, err := s.repos.Sessions.ListSessions(ctx, c.ID)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	counts, err := s.repos.Enrollments.Counts(ctx, c.ID)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	g, err := s.progress.CourseCompletionGrid(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return &AdminCourseDetail{Course: *c, Sessions: sessions, Enrollments: counts, Grid: g, Percent: g.Percent()}, nil
}

type NewCourse struct {
	Slug      string `json:"slug" validate:"required,slug"`
	Title     string `json:"title" validate:"notblank,max=200"`
	Summary   string `json:"summary" validate:"max=4000"`
	Thumbnail string `json:"thumbnail" validate:"max=500"`
	Published bool   `json:"is_published"`
}

func (s *Service) CreateCourse(ctx context.Context, actor models.Actor, in NewCourse) (models.Course, error) {
	const op = "service.CreateCourse"
	if err := requireAdmin(op, actor); err != nil {
		return models.Course{}, err
	}
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	in.Title = strings.TrimSpace(in.Title)
	if err := inputval.Struct(op, in); err != nil {
		return models.Course{}, err
	}
	c, err := s.repos.Courses.Create(ctx, models.Course{
		Slug:      in.Slug,
		Title:     in.Title,
		Summary:   htmlsanitize.PlainText(in.Summary),
		Thumbnail: strings.TrimSpace(in.Thumbnail),
		Published: in.Published,
	})
	if err != nil {
		return models.Course{}, errs.Unavailable(op, err)
	}
	s.audit.CourseCreated(ctx, actor, c)
	return c, nil
}

func (s *Service) SetPublished(ctx context.Context, actor models.Actor, id string, published bool) error {
	const op = "service.SetPublished"
	if err := requireAdmin(op, actor); err != nil {
		return err
	}
	if err := s.repos.Courses.SetPublished(ctx, id, published); err != nil {
		return errs.Unavailable(op, err)
	}
	s.audit.CoursePublished(ctx, actor, id, published)
	return nil
}

// NewSession is the payload for AddSession. Index 0 appends after the last
// session.
type NewSession struct {
	Index       int    `json:"index" validate:"omitempty,min=1"`
	Title       string `json:"title" validate:"notblank,max=200"`
	Summary     string `json:"summary"`
	VideoURL    string `json:"video_url" validate:"omitempty,max=500"`
	CaptionsURL string `json:"captions_url" validate:"omitempty,max=500"`
	Transcript  string `json:"transcript"`
	GuideURL    string `json:"guide_url" validate:"omitempty,max=500"`
	GuidePDFURL string `json:"guide_pdf_url" validate:"omitempty,max=500"`
	Thumbnail   string `json:"thumbnail" validate:"omitempty,max=500"`
}

// AddSession adds a session to courseID. Summary and transcript may carry
// basic markup; anything unsafe is stripped.
func (s *Service) AddSession(ctx context.Context, actor models.Actor, courseID string, in NewSession) (models.Session, error) {
	const op = "service.AddSession"
	if err := requireAdmin(op, actor); err != nil {
		return models.Session{}, err
	}
	if err := inputval.Struct(op, in); err != nil {
		return models.Session{}, err
	}
	c, err := s.repos.Courses.GetByID(ctx, courseID)
	if err != nil {
		return models.Session{}, errs.Unavailable(op, err)
	}
	if in.Index == 0 {
		existing, err := s.repos.Sessions.ListSessions(ctx, c.ID)
		if err != nil {
			return models.Session{}, errs.Unavailable(op, err)
		}
		in.Index = 1
		if n := len(existing); n > 0 {
			in.Index = existing[n-1].Index + 1
		}
	}
	sess, err := s.repos.Sessions.Create(ctx, models.Session{
		CourseID:    c.ID,
		Index:       in.Index,
		Title:       strings.TrimSpace(in.Title),
		Summary:     htmlsanitize.Sanitize(in.Summary),
		VideoURL:    strings.TrimSpace(in.VideoURL),
		CaptionsURL: strings.TrimSpace(in.CaptionsURL),
		Transcript:  htmlsanitize.Sanitize(in.Transcript),
		GuideURL:    strings.TrimSpace(in.GuideURL),
		GuidePDFURL: strings.TrimSpace(in.GuidePDFURL),
		Thumbnail:   strings.TrimSpace(in.Thumbnail),
	})
	if err != nil {
		return models.Session{}, errs.Unavailable(op, err)
	}
	s.audit.SessionAdded(ctx, actor, sess)
	return sess, nil
}

// DeleteSession removes a session and every completion of it.
func (s *Service) DeleteSession(ctx context.Context, actor models.Actor, sessionID string) error {
	const op = "service.DeleteSession"
	if err := requireAdmin(op, actor); err != nil {
		return err
	}
	sess, err := s.repos.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return errs.Unavailable(op, err)
	}
	var removed int64
	err = s.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := s.repos.Completions.DeleteForSessions(ctx, []string{sess.ID})
		if err != nil {
			return err
		}
		removed = n
		return s.repos.Sessions.Delete(ctx, sess.ID)
	})
	if err != nil {
		return errs.Unavailable(op, err)
	}
	s.audit.SessionDeleted(ctx, actor, *sess, removed)
	return nil
}

// DeleteCourse removes a course with its sessions, their completions, its
// enrollments and its access requests.
func (s *Service) DeleteCourse(ctx context.Context, actor models.Actor, id string) error {
	const op = "service.DeleteCourse"
	if err := requireAdmin(op, actor); err != nil {
		return err
	}
	c, err := s.repos.Courses.GetByID(ctx, id)
	if err != nil {
		return errs.Unavailable(op, err)
	}
	err = s.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.clearSessions(ctx, c.ID); err != nil {
			return err
		}
		if _, err := s.repos.Enrollments.DeleteForCourse(ctx, c.ID); err != nil {
			return err
		}
		if _, err := s.repos.Requests.DeleteForCourse(ctx, c.ID); err != nil {
			return err
		}
		return s.repos.Courses.Delete(ctx, c.ID)
	})
	if err != nil {
		return errs.Unavailable(op, err)
	}
	s.audit.CourseDeleted(ctx, actor, *c)
	return nil
}

// clearSessions deletes every session of courseID and their completions.
func (s *Service) clearSessions(ctx context.Context, courseID string) error {
	sessions, err := s.repos.Sessions.ListSessions(ctx, courseID)
	if err != nil {
		return err
	}
	ids := make([]string, len(sessions))
	for i, x := range sessions {
		ids[i] = x.ID
	}
	if len(ids) > 0 {
		if _, err := s.repos.Completions.DeleteForSessions(ctx, ids); err != nil {
			return err
		}
	}
	_, err = s.repos.Sessions.DeleteForCourse(ctx, courseID)
	return err
}
