// internal/app/service/seed.go
package service

import (
	"context"
	"fmt"

	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
)

const (
	BasicsSlug    = "basics"
	basicsWeeks   = 8
	basicsTitle   = "Basics"
	basicsSummary = "An 8-week foundational course."
)

// SeedBasics creates or refreshes the published "basics" course and replaces
// its sessions with the eight standard weeks. Completions of the replaced
// sessions are removed with them.
func (s *Service) SeedBasics(ctx context.Context, actor models.Actor) (models.Course, error) {
	const op = "service.SeedBasics"
	if err := requireAdmin(op, actor); err != nil {
		return models.Course{}, err
	}
	var course models.Course
	err := s.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.repos.Courses.UpsertBySlug(ctx, models.Course{
			Slug:      BasicsSlug,
			Title:     basicsTitle,
			Summary:   basicsSummary,
			Published: true,
		})
		if err != nil {
			return err
		}
		course = c
		if err := s.clearSessions(ctx, c.ID); err != nil {
			return err
		}
		for i := 1; i <= basicsWeeks; i++ {
			if _, err := s.repos.Sessions.Create(ctx, basicsWeek(c.ID, i)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Course{}, errs.Unavailable(op, err)
	}
	s.audit.CourseSeeded(ctx, actor, course, basicsWeeks)
	return course, nil
}

func basicsWeek(courseID string, n int) models.Session {
	return models.Session{
		CourseID:    courseID,
		Index:       n,
		Title:       fmt.Sprintf("Week %d: Lesson", n),
		Summary:     fmt.Sprintf("Overview for week %d", n),
		VideoURL:    fmt.Sprintf("/videos/week%d.mp4", n),
		CaptionsURL: fmt.Sprintf("/captions/week%d.vtt", n),
		Transcript:  fmt.Sprintf("Transcript placeholder for week %d", n),
		GuideURL:    fmt.Sprintf("/guides/week%d.html", n),
		GuidePDFURL: fmt.Sprintf("/guides/week%d.pdf", n),
		Thumbnail:   fmt.Sprintf("/thumbs/week%d.jpg", n),
	}
}
