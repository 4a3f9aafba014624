package courses_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/dalemusser/coursehub/internal/app/features/courses"
	uierrors "github.com/dalemusser/coursehub/internal/app/features/errors"
	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/dalemusser/coursehub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type env struct {
	r       repo.Repos
	router  chi.Router
	learner testutil.TestUser
	course  models.Course
}

func setup(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	db, svc := testutil.NewMemService()
	r := db.Repos()

	u, err := r.Users.Create(ctx, models.User{Name: "Uma", Email: "uma@example.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	c, err := r.Courses.Create(ctx, models.Course{Slug: "basics", Title: "Basics", Published: true})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	for i := 1; i <= 2; i++ {
		if _, err := r.Sessions.Create(ctx, models.Session{CourseID: c.ID, Index: i, Title: "Week"}); err != nil {
			t.Fatalf("create session: %v", err)
		}
	}

	h := courses.NewHandler(svc, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())
	return &env{
		r:       r,
		router:  courses.Routes(h, testutil.NewSessionManager(t)),
		learner: testutil.FromModel(u),
		course:  c,
	}
}

func (e *env) do(req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestCourses_RequiresSignIn(t *testing.T) {
	e := setup(t)
	rec := e.do(testutil.NewJSONRequest("GET", "/", ""))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeCourse_DeniedWithoutEnrollment(t *testing.T) {
	e := setup(t)

	rec := e.do(testutil.WithUser(testutil.NewJSONRequest("GET", "/basics", ""), e.learner))
	rec.AssertStatus(t, http.StatusForbidden)

	html := testutil.WithUser(testutil.NewRequest("GET", "/basics"), e.learner)
	html.Header.Set("Accept", "text/html")
	rec = e.do(html)
	rec.AssertRedirect(t, "/courses")
}

func TestServeCourse_Enrolled(t *testing.T) {
	e := setup(t)
	if err := e.r.Enrollments.Upsert(context.Background(), e.learner.ID, e.course.ID, models.EnrollmentActive); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	rec := e.do(testutil.WithUser(testutil.NewJSONRequest("GET", "/basics", ""), e.learner))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"total":2`)

	rec = e.do(testutil.WithUser(testutil.NewJSONRequest("GET", "/", ""), e.learner))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"slug":"basics"`)
}

func TestServeSession(t *testing.T) {
	e := setup(t)
	leader := testutil.LeaderUser()

	rec := e.do(testutil.WithUser(testutil.NewJSONRequest("GET", "/basics/1", ""), leader))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"next_index":2`)

	rec = e.do(testutil.WithUser(testutil.NewJSONRequest("GET", "/basics/0", ""), leader))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = e.do(testutil.WithUser(testutil.NewJSONRequest("GET", "/basics/week", ""), leader))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = e.do(testutil.WithUser(testutil.NewJSONRequest("GET", "/basics/7", ""), leader))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = e.do(testutil.WithUser(testutil.NewJSONRequest("GET", "/unknown/1", ""), leader))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHandleComplete(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	if err := e.r.Enrollments.Upsert(ctx, e.learner.ID, e.course.ID, models.EnrollmentActive); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	for i := 0; i < 2; i++ {
		rec := e.do(testutil.WithUser(testutil.NewJSONRequest("POST", "/basics/1/complete", ""), e.learner))
		rec.AssertStatus(t, http.StatusOK)
		rec.AssertContains(t, `"percent":50`)
	}
	n, err := e.r.Completions.CountForCourse(ctx, e.learner.ID, e.course.ID)
	if err != nil || n != 1 {
		t.Errorf("completions: got %d (err %v), want 1", n, err)
	}

	html := testutil.WithUser(testutil.NewRequest("POST", "/basics/2/complete"), e.learner)
	html.Header.Set("Accept", "text/html")
	rec := e.do(html)
	rec.AssertRedirect(t, "/courses/basics/2")
}

func TestHandleComplete_NotEnrolled(t *testing.T) {
	e := setup(t)
	rec := e.do(testutil.WithUser(testutil.NewJSONRequest("POST", "/basics/1/complete", ""), e.learner))
	rec.AssertStatus(t, http.StatusForbidden)
}
