package service_test

import (
	"context"
	"testing"

	"github.com/dalemusser/coursehub/internal/app/service"
	"github.com/dalemusser/coursehub/internal/app/store/audit"
	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/app/system/auditlog"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/dalemusser/coursehub/internal/testutil/memstore"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	db       *memstore.DB
	r        repo.Repos
	svc      *service.Service
	admin    models.User
	leader   models.User
	u1, u2   models.User
	course   models.Course
	sessions []models.Session
}

// newFixture builds a published course with three sessions, one admin, one
// leader and two learners with no enrollments.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := memstore.New()
	r := db.Repos()
	f := &fixture{
		db:  db,
		r:   r,
		svc: service.New(r, auditlog.New(r.Audit, zap.NewNop(), auditlog.Config{}), zap.NewNop()),
	}

	var err error
	f.admin, err = r.Users.Create(ctx, models.User{Name: "Ada", Email: "ada@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)
	f.leader, err = r.Users.Create(ctx, models.User{Name: "Lee", Email: "lee@example.com", Role: models.RoleLeader})
	require.NoError(t, err)
	f.u1, err = r.Users.Create(ctx, models.User{Name: "Uma", Email: "u1@example.com"})
	require.NoError(t, err)
	f.u2, err = r.Users.Create(ctx, models.User{Name: "Ugo", Email: "u2@example.com"})
	require.NoError(t, err)

	f.course, err = r.Courses.Create(ctx, models.Course{Slug: "basics", Title: "Basics", Published: true})
	require.NoError(t, err)
	for i := 1; i <= 3; i++ {
		s, err := r.Sessions.Create(ctx, models.Session{CourseID: f.course.ID, Index: i, Title: "Week"})
		require.NoError(t, err)
		f.sessions = append(f.sessions, s)
	}
	return f
}

func as(u models.User) models.Actor { return models.Actor{ID: u.ID, Role: u.Role} }

func (f *fixture) enroll(t *testing.T, u models.User) {
	t.Helper()
	require.NoError(t, f.svc.Enroll(context.Background(), as(f.admin), f.course.ID, u.ID))
}

func (f *fixture) eventTypes() []string {
	var out []string
	for _, e := range f.db.Events() {
		out = append(out, e.EventType)
	}
	return out
}

func (f *fixture) lastEvent(t *testing.T) audit.Event {
	t.Helper()
	ev := f.db.Events()
	require.NotEmpty(t, ev)
	return ev[len(ev)-1]
}
