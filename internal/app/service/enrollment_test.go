package service_test

import (
	"context"
	"testing"

	"github.com/dalemusser/coursehub/internal/app/store/audit"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnroll_RequiresStaff(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.svc.Enroll(ctx, as(f.u1), f.course.ID, f.u2.ID)
	assert.True(t, errs.IsForbidden(err))

	err = f.svc.Enroll(ctx, as(f.leader), "missing", f.u2.ID)
	assert.True(t, errs.IsNotFound(err))
	err = f.svc.Enroll(ctx, as(f.leader), f.course.ID, "missing")
	assert.True(t, errs.IsNotFound(err))
}

func TestEnroll_UpsertsActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.svc.SetEnrollmentStatus(ctx, as(f.leader), f.course.ID, f.u1.ID, "INACTIVE"))
	require.NoError(t, f.svc.Enroll(ctx, as(f.leader), f.course.ID, f.u1.ID))

	en, err := f.r.Enrollments.Find(ctx, f.u1.ID, f.course.ID)
	require.NoError(t, err)
	assert.True(t, en.Active())

	counts, err := f.r.Enrollments.Counts(ctx, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Active)
	assert.Equal(t, int64(0), counts.Inactive)
}

func TestSetEnrollmentStatus_Invalid(t *testing.T) {
	f := newFixture(t)
	err := f.svc.SetEnrollmentStatus(context.Background(), as(f.admin), f.course.ID, f.u1.ID, "paused")
	assert.True(t, errs.IsInvalid(err))
}

func TestUnenroll_AbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	before := len(f.db.Events())

	require.NoError(t, f.svc.Unenroll(ctx, as(f.leader), f.course.ID, f.u1.ID))
	assert.Len(t, f.db.Events(), before, "no event for a no-op unenroll")

	f.enroll(t, f.u1)
	require.NoError(t, f.svc.Unenroll(ctx, as(f.leader), f.course.ID, f.u1.ID))
	assert.Equal(t, audit.EventUserUnenrolled, f.lastEvent(t).EventType)
}

func TestBulkEnroll(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.svc.BulkEnroll(ctx, as(f.leader), f.course.ID, " U1@example.com, u2@example.com\nnobody@example.com;u1@example.com ")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Requested)
	assert.Equal(t, 2, res.Enrolled)
	assert.Equal(t, []string{"nobody@example.com"}, res.Unknown)

	n, err := f.r.Enrollments.CountActive(ctx, f.course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	ev := f.lastEvent(t)
	assert.Equal(t, audit.EventBulkEnrolled, ev.EventType)
	assert.Equal(t, "1", ev.Details["unknown"])

	_, err = f.svc.BulkEnroll(ctx, as(f.leader), f.course.ID, " , \n")
	assert.True(t, errs.IsInvalid(err))
}

func TestEnrollmentRoster(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.enroll(t, f.u1)
	require.NoError(t, f.svc.SetEnrollmentStatus(ctx, as(f.leader), f.course.ID, f.u2.ID, "inactive"))

	roster, err := f.svc.EnrollmentRoster(ctx, as(f.leader), f.course.ID, "example.com")
	require.NoError(t, err)
	assert.Len(t, roster.Entries, 4)
	assert.Equal(t, int64(1), roster.Counts.Active)
	assert.Equal(t, int64(1), roster.Counts.Inactive)

	statuses := map[string]models.EnrollmentStatus{}
	for _, e := range roster.Entries {
		statuses[e.User.ID] = e.Status
	}
	assert.Equal(t, models.EnrollmentActive, statuses[f.u1.ID])
	assert.Equal(t, models.EnrollmentInactive, statuses[f.u2.ID])
	assert.Equal(t, models.EnrollmentStatus(""), statuses[f.admin.ID])

	roster, err = f.svc.EnrollmentRoster(ctx, as(f.leader), f.course.ID, "uma")
	require.NoError(t, err)
	require.Len(t, roster.Entries, 1)
	assert.Equal(t, f.u1.ID, roster.Entries[0].User.ID)
}
