package progress_test

import (
	"context"
	"testing"

	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/app/system/progress"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/dalemusser/coursehub/internal/testutil/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type basics struct {
	db       *memstore.DB
	r        repo.Repos
	eng      *progress.Engine
	course   models.Course
	sessions []models.Session
	u1, u2   models.User
}

// newBasics builds a course with three sessions and two ACTIVE learners.
func newBasics(t *testing.T) *basics {
	t.Helper()
	ctx := context.Background()
	db := memstore.New()
	r := db.Repos()

	c, err := r.Courses.Create(ctx, models.Course{Slug: "basics", Title: "Basics", Published: true})
	require.NoError(t, err)
	b := &basics{db: db, r: r, eng: progress.New(r), course: c}
	for i := 1; i <= 3; i++ {
		s, err := r.Sessions.Create(ctx, models.Session{CourseID: c.ID, Index: i, Title: "Week"})
		require.NoError(t, err)
		b.sessions = append(b.sessions, s)
	}
	b.u1, err = r.Users.Create(ctx, models.User{Email: "u1@example.com"})
	require.NoError(t, err)
	b.u2, err = r.Users.Create(ctx, models.User{Email: "u2@example.com"})
	require.NoError(t, err)
	require.NoError(t, r.Enrollments.Upsert(ctx, b.u1.ID, c.ID, models.EnrollmentActive))
	require.NoError(t, r.Enrollments.Upsert(ctx, b.u2.ID, c.ID, models.EnrollmentActive))
	return b
}

func TestBasicsScenario(t *testing.T) {
	ctx := context.Background()
	b := newBasics(t)

	require.NoError(t, b.r.Completions.Upsert(ctx, b.u1.ID, b.sessions[0].ID))
	require.NoError(t, b.r.Completions.Upsert(ctx, b.u1.ID, b.sessions[1].ID))

	p, err := b.eng.UserCourseProgress(ctx, b.u1.ID, b.course.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Progress{Completed: 2, Total: 3}, p)
	assert.Equal(t, 67, p.Percent())

	g, err := b.eng.CourseCompletionGrid(ctx, b.course.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Grid{CompletedCells: 2, TotalCells: 6}, g)
	assert.Equal(t, 33, g.Percent())

	_, err = b.r.Enrollments.Delete(ctx, b.u1.ID, b.course.ID)
	require.NoError(t, err)

	g, err = b.eng.CourseCompletionGrid(ctx, b.course.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Grid{CompletedCells: 0, TotalCells: 3}, g)
}

func TestInactiveLearnerLeavesGrid(t *testing.T) {
	ctx := context.Background()
	b := newBasics(t)

	require.NoError(t, b.r.Completions.Upsert(ctx, b.u2.ID, b.sessions[2].ID))
	require.NoError(t, b.r.Enrollments.Upsert(ctx, b.u2.ID, b.course.ID, models.EnrollmentInactive))

	g, err := b.eng.CourseCompletionGrid(ctx, b.course.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Grid{CompletedCells: 0, TotalCells: 3}, g)
}

func TestZeroSessions(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	r := db.Repos()
	c, err := r.Courses.Create(ctx, models.Course{Slug: "empty", Title: "Empty"})
	require.NoError(t, err)
	require.NoError(t, r.Enrollments.Upsert(ctx, "u", c.ID, models.EnrollmentActive))

	eng := progress.New(r)
	p, err := eng.UserCourseProgress(ctx, "u", c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Progress{}, p)
	assert.Equal(t, 0, p.Percent())

	g, err := eng.CourseCompletionGrid(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Grid{}, g)
}

func TestTotalCellsIsSessionsTimesActive(t *testing.T) {
	ctx := context.Background()
	b := newBasics(t)
	require.NoError(t, b.r.Enrollments.Upsert(ctx, "third", b.course.ID, models.EnrollmentActive))
	require.NoError(t, b.r.Enrollments.Upsert(ctx, "fourth", b.course.ID, models.EnrollmentInactive))

	sessions, err := b.r.Sessions.CountSessions(ctx, b.course.ID)
	require.NoError(t, err)
	active, err := b.r.Enrollments.CountActive(ctx, b.course.ID)
	require.NoError(t, err)

	g, err := b.eng.CourseCompletionGrid(ctx, b.course.ID)
	require.NoError(t, err)
	assert.Equal(t, int(sessions*active), g.TotalCells)
	assert.Equal(t, 9, g.TotalCells)
}

func TestDeletedSessionIsExcluded(t *testing.T) {
	ctx := context.Background()
	b := newBasics(t)
	require.NoError(t, b.r.Completions.Upsert(ctx, b.u1.ID, b.sessions[2].ID))
	require.NoError(t, b.r.Sessions.Delete(ctx, b.sessions[2].ID))

	p, err := b.eng.UserCourseProgress(ctx, b.u1.ID, b.course.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Progress{Completed: 0, Total: 2}, p)
}

func TestProgressByCourse(t *testing.T) {
	ctx := context.Background()
	b := newBasics(t)
	other, err := b.r.Courses.Create(ctx, models.Course{Slug: "other", Title: "Other"})
	require.NoError(t, err)
	require.NoError(t, b.r.Completions.Upsert(ctx, b.u1.ID, b.sessions[0].ID))

	got, err := b.eng.ProgressByCourse(ctx, b.u1.ID, []string{b.course.ID, other.ID})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{b.course.ID: 1, other.ID: 0}, got)

	empty, err := b.eng.ProgressByCourse(ctx, b.u1.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStoreFailureYieldsNoFigure(t *testing.T) {
	ctx := context.Background()
	b := newBasics(t)
	b.db.Fail = memstore.ErrDown

	_, err := b.eng.CourseCompletionGrid(ctx, b.course.ID)
	assert.ErrorIs(t, err, errs.ErrUnavailable)
	_, err = b.eng.UserCourseProgress(ctx, b.u1.ID, b.course.ID)
	assert.ErrorIs(t, err, errs.ErrUnavailable)
	_, err = b.eng.GridsFor(ctx, []string{b.course.ID})
	assert.ErrorIs(t, err, errs.ErrUnavailable)
}
