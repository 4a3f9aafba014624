package coursepolicy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/coursehub/internal/app/policy/coursepolicy"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFinder struct {
	rows  map[string]models.EnrollmentStatus
	err   error
	calls int
}

func (f *fakeFinder) Find(_ context.Context, userID, courseID string) (*models.Enrollment, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	st, ok := f.rows[userID+"|"+courseID]
	if !ok {
		return nil, errs.E("enrollments.Find", errs.ErrNotFound, "enrollment not found")
	}
	return &models.Enrollment{UserID: userID, CourseID: courseID, Status: st}, nil
}

func TestCanAccessCourse_StaffBypassesEnrollment(t *testing.T) {
	f := &fakeFinder{err: errors.New("must not be called")}
	eng := coursepolicy.New(f)

	for _, role := range []models.Role{models.RoleAdmin, models.RoleLeader} {
		ok, err := eng.CanAccessCourse(context.Background(), "u1", role, "c1")
		require.NoError(t, err)
		assert.True(t, ok, role)
	}
	assert.Zero(t, f.calls)
}

func TestCanAccessCourse_User(t *testing.T) {
	f := &fakeFinder{rows: map[string]models.EnrollmentStatus{
		"active|c1":   models.EnrollmentActive,
		"inactive|c1": models.EnrollmentInactive,
		"odd|c1":      "PAUSED",
	}}
	eng := coursepolicy.New(f)

	tests := []struct {
		user string
		want bool
	}{
		{"active", true},
		{"inactive", false},
		{"odd", false},
		{"none", false},
		{"", false},
	}
	for _, tc := range tests {
		ok, err := eng.CanAccessCourse(context.Background(), tc.user, models.RoleUser, "c1")
		require.NoError(t, err)
		assert.Equal(t, tc.want, ok, "user %q", tc.user)
	}
}

func TestCanAccessCourse_StoreFailureIsError(t *testing.T) {
	f := &fakeFinder{err: errs.Wrap("enrollments.Find", errs.ErrUnavailable, errors.New("timeout"))}
	eng := coursepolicy.New(f)

	ok, err := eng.CanAccessCourse(context.Background(), "u1", models.RoleUser, "c1")
	assert.False(t, ok)
	assert.ErrorIs(t, err, errs.ErrUnavailable)
}

func TestRequire(t *testing.T) {
	f := &fakeFinder{rows: map[string]models.EnrollmentStatus{"u1|c1": models.EnrollmentActive}}
	eng := coursepolicy.New(f)
	ctx := context.Background()

	assert.NoError(t, eng.Require(ctx, "u1", models.RoleUser, "c1"))
	assert.True(t, errs.IsForbidden(eng.Require(ctx, "u2", models.RoleUser, "c1")))

	f.err = errors.New("down")
	err := eng.Require(ctx, "u1", models.RoleUser, "c1")
	assert.ErrorIs(t, err, errs.ErrUnavailable)
	assert.False(t, errs.IsForbidden(err))
}
