// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/coursehub/internal/app/features/errors"
	"github.com/dalemusser/coursehub/internal/app/service"
	"github.com/dalemusser/coursehub/internal/app/store/audit"
	"github.com/dalemusser/coursehub/internal/app/system/authz"
	"github.com/dalemusser/coursehub/internal/app/system/paging"
	"github.com/dalemusser/coursehub/internal/app/system/timeouts"
	"github.com/dalemusser/coursehub/internal/app/system/timezones"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/waffle/pantry/query"
)

const dateLayout = "2006-01-02"

// ServeList handles GET /admin/audit - the audit log with filtering.
//
// Filters: category, event_type, user_id, course_id, start_date and
// end_date (YYYY-MM-DD, end date inclusive), tz (zone the dates are read in,
// default UTC) and page.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := service.AuditQuery{
		Category:  strings.TrimSpace(query.Get(r, "category")),
		EventType: strings.TrimSpace(query.Get(r, "event_type")),
		UserID:    strings.TrimSpace(query.Get(r, "user_id")),
		CourseID:  strings.TrimSpace(query.Get(r, "course_id")),
		Page:      paging.ParsePage(r),
	}
	loc, err := timezones.Location(strings.TrimSpace(query.Get(r, "tz")))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad tz", errs.Wrap("auditlog.ServeList", errs.ErrInvalid, err), "tz is not a supported time zone")
		return
	}
	if s := strings.TrimSpace(query.Get(r, "start_date")); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, loc)
		if err != nil {
			h.ErrLog.LogBadRequest(w, r, "bad start_date", errs.Wrap("auditlog.ServeList", errs.ErrInvalid, err), "start_date must be YYYY-MM-DD")
			return
		}
		q.Start = &t
	}
	if s := strings.TrimSpace(query.Get(r, "end_date")); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, loc)
		if err != nil {
			h.ErrLog.LogBadRequest(w, r, "bad end_date", errs.Wrap("auditlog.ServeList", errs.ErrInvalid, err), "end_date must be YYYY-MM-DD")
			return
		}
		// End of day
		end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		q.End = &end
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	page, err := h.Svc.AuditTrail(ctx, authz.Actor(r), q)
	if err != nil {
		h.ErrLog.Write(w, r, "audit log list failed", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, page)
}

// category lists the event types filed under one category.
type category struct {
	Value      string   `json:"value"`
	Label      string   `json:"label"`
	EventTypes []string `json:"event_types"`
}

func allCategories() []category {
	return []category{
		{
			Value: audit.CategoryAdmin,
			Label: "Administration",
			EventTypes: []string{
				audit.EventUserCreated,
				audit.EventUserRoleChanged,
				audit.EventUserDeleted,
				audit.EventProgressReset,
				audit.EventUserEnrolled,
				audit.EventUserUnenrolled,
				audit.EventEnrollmentStatus,
				audit.EventBulkEnrolled,
				audit.EventRequestApproved,
				audit.EventRequestRejected,
				audit.EventCourseCreated,
				audit.EventCoursePublished,
				audit.EventCourseUnpublished,
				audit.EventCourseDeleted,
				audit.EventSessionAdded,
				audit.EventSessionDeleted,
				audit.EventCourseSeeded,
			},
		},
		{
			Value:      audit.CategoryLearner,
			Label:      "Learners",
			EventTypes: []string{audit.EventSessionCompleted, audit.EventAccessRequested},
		},
		{
			Value:      audit.CategorySecurity,
			Label:      "Security",
			EventTypes: []string{audit.EventLastAdminProtected, audit.EventRequestThrottled},
		},
	}
}

// ServeCategories handles GET /admin/audit/categories, the filter options.
func (h *Handler) ServeCategories(w http.ResponseWriter, r *http.Request) {
	uierrors.JSON(w, http.StatusOK, map[string]any{
		"categories": allCategories(),
		"timezones":  timezones.All(),
	})
}
