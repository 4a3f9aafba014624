package auditlog_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/dalemusser/coursehub/internal/app/features/auditlog"
	uierrors "github.com/dalemusser/coursehub/internal/app/features/errors"
	"github.com/dalemusser/coursehub/internal/app/store/audit"
	"github.com/dalemusser/coursehub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) (chi.Router, *testutil.ResponseRecorder) {
	t.Helper()
	db, svc := testutil.NewMemService()
	ctx := context.Background()
	events := []audit.Event{
		{Category: audit.CategoryAdmin, EventType: audit.EventCourseCreated, CourseID: "c1", Success: true},
		{Category: audit.CategoryLearner, EventType: audit.EventSessionCompleted, CourseID: "c1", UserID: "u1", Success: true},
		{Category: audit.CategorySecurity, EventType: audit.EventRequestThrottled, Success: false},
	}
	for _, e := range events {
		if err := db.Repos().Audit.Log(ctx, e); err != nil {
			t.Fatalf("log: %v", err)
		}
	}
	logger := zap.NewNop()
	h := auditlog.NewHandler(svc, uierrors.NewErrorLogger(logger), logger)
	return auditlog.Routes(h, testutil.NewSessionManager(t)), testutil.NewRecorder()
}

func TestServeList_AdminOnly(t *testing.T) {
	router, rec := newRouter(t)
	router.ServeHTTP(rec, testutil.WithUser(testutil.NewJSONRequest("GET", "/", ""), testutil.LeaderUser()))
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestServeList_All(t *testing.T) {
	router, rec := newRouter(t)
	router.ServeHTTP(rec, testutil.WithUser(testutil.NewJSONRequest("GET", "/", ""), testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"total":3`)
	rec.AssertContains(t, `"event_type":"access_request_throttled"`)
}

func TestServeList_WithFilters(t *testing.T) {
	router, rec := newRouter(t)
	req := testutil.NewJSONRequest("GET", "/?category=learner&course_id=c1&start_date=2020-01-01&end_date=2999-12-31&page=1", "")
	router.ServeHTTP(rec, testutil.WithUser(req, testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"total":1`)
	rec.AssertContains(t, `"event_type":"session_completed"`)
}

func TestServeList_BadDate(t *testing.T) {
	router, rec := newRouter(t)
	req := testutil.NewJSONRequest("GET", "/?start_date=yesterday", "")
	router.ServeHTTP(rec, testutil.WithUser(req, testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "start_date must be YYYY-MM-DD")
}

func TestServeCategories(t *testing.T) {
	router, rec := newRouter(t)
	router.ServeHTTP(rec, testutil.WithUser(testutil.NewJSONRequest("GET", "/categories", ""), testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"value":"security"`)
	rec.AssertContains(t, `"id":"America/Chicago"`)
}

func TestServeList_TimeZone(t *testing.T) {
	router, rec := newRouter(t)
	req := testutil.NewJSONRequest("GET", "/?tz=America/Chicago&start_date=2020-01-01", "")
	router.ServeHTTP(rec, testutil.WithUser(req, testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"total":3`)

	rec = testutil.NewRecorder()
	req = testutil.NewJSONRequest("GET", "/?tz=Mars/Olympus", "")
	router.ServeHTTP(rec, testutil.WithUser(req, testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "tz is not a supported time zone")
}
