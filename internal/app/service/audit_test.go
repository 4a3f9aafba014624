package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/coursehub/internal/app/service"
	"github.com/dalemusser/coursehub/internal/app/store/audit"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditTrail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Enroll(ctx, as(f.admin), f.course.ID, f.u1.ID))
	_, err := f.svc.ChangeRole(ctx, as(f.admin), f.u2.ID, "LEADER")
	require.NoError(t, err)

	page, err := f.svc.AuditTrail(ctx, as(f.admin), service.AuditQuery{})
	require.NoError(t, err)
	require.Len(t, page.Events, 2)
	assert.Equal(t, int64(2), page.Meta.Total)

	latest := page.Events[0]
	assert.Equal(t, audit.EventUserRoleChanged, latest.EventType)
	assert.Equal(t, "Ada", latest.ActorName)
	assert.Equal(t, "Ugo", latest.TargetName)

	page, err = f.svc.AuditTrail(ctx, as(f.admin), service.AuditQuery{EventType: audit.EventUserEnrolled})
	require.NoError(t, err)
	require.Len(t, page.Events, 1)
	assert.Equal(t, f.course.ID, page.Events[0].CourseID)

	future := time.Now().Add(time.Hour)
	page, err = f.svc.AuditTrail(ctx, as(f.admin), service.AuditQuery{Start: &future})
	require.NoError(t, err)
	assert.Empty(t, page.Events)
}

func TestAuditTrail_Guards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AuditTrail(ctx, as(f.leader), service.AuditQuery{})
	assert.True(t, errs.IsForbidden(err))

	start := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(-24 * time.Hour)
	_, err = f.svc.AuditTrail(ctx, as(f.admin), service.AuditQuery{Start: &start, End: &end})
	assert.True(t, errs.IsInvalid(err))
}
