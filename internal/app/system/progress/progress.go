// Package progress aggregates completion records into per-user and
// per-course figures. Every call re-reads the stores; nothing is cached.
// Any store failure aborts the aggregation so no figure is ever computed
// from partial data.
package progress

import (
	"context"

	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
)

// Engine reads sessions, enrollments and completions.
type Engine struct {
	sessions    repo.Sessions
	enrollments repo.Enrollments
	completions repo.Completions
	progress    repo.Progress
}

func New(r repo.Repos) *Engine {
	return &Engine{
		sessions:    r.Sessions,
		enrollments: r.Enrollments,
		completions: r.Completions,
		progress:    r.Progress,
	}
}

// UserCourseProgress returns how many of courseID's sessions userID completed.
func (e *Engine) UserCourseProgress(ctx context.Context, userID, courseID string) (models.Progress, error) {
	const op = "progress.UserCourseProgress"
	total, err := e.sessions.CountSessions(ctx, courseID)
	if err != nil {
		return models.Progress{}, errs.Unavailable(op, err)
	}
	if total == 0 {
		return models.Progress{}, nil
	}
	done, err := e.completions.CountForCourse(ctx, userID, courseID)
	if err != nil {
		return models.Progress{}, errs.Unavailable(op, err)
	}
	return models.Progress{Completed: int(done), Total: int(total)}, nil
}

// CourseCompletionGrid returns the course's (session x active learner) grid.
// Completions by learners no longer ACTIVE in the course are not counted.
func (e *Engine) CourseCompletionGrid(ctx context.Context, courseID string) (models.Grid, error) {
	const op = "progress.CourseCompletionGrid"
	sessions, err := e.sessions.CountSessions(ctx, courseID)
	if err != nil {
		return models.Grid{}, errs.Unavailable(op, err)
	}
	active, err := e.enrollments.CountActive(ctx, courseID)
	if err != nil {
		return models.Grid{}, errs.Unavailable(op, err)
	}
	total := sessions * active
	if total == 0 {
		return models.Grid{}, nil
	}
	done, err := e.progress.CompletedCells(ctx, courseID)
	if err != nil {
		return models.Grid{}, errs.Unavailable(op, err)
	}
	return models.Grid{CompletedCells: int(done), TotalCells: int(total)}, nil
}

// ProgressByCourse returns userID's completed count for each candidate
// course. Courses with no completions map to 0.
func (e *Engine) ProgressByCourse(ctx context.Context, userID string, courseIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(courseIDs))
	if len(courseIDs) == 0 {
		return out, nil
	}
	counts, err := e.progress.CompletedByCourse(ctx, userID, courseIDs)
	if err != nil {
		return nil, errs.Unavailable("progress.ProgressByCourse", err)
	}
	for _, id := range courseIDs {
		out[id] = int(counts[id])
	}
	return out, nil
}

// GridsFor computes the grid of each course. It stops at the first failure.
func (e *Engine) GridsFor(ctx context.Context, courseIDs []string) (map[string]models.Grid, error) {
	out := make(map[string]models.Grid, len(courseIDs))
	for _, id := range courseIDs {
		g, err := e.CourseCompletionGrid(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = g
	}
	return out, nil
}
