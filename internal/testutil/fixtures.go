package testutil

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures inserts test documents directly, bypassing the stores.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert test %s: %v", coll, err)
	}
}

// CreateUser creates a user with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string, role models.Role) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:        uuid.NewString(),
		Name:      name,
		NameCI:    text.Fold(name),
		Email:     strings.ToLower(email),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateAdmin creates an ADMIN user.
func (f *Fixtures) CreateAdmin(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleAdmin)
}

// CreateLearner creates a USER.
func (f *Fixtures) CreateLearner(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleUser)
}

// CreateCourse creates a course; published controls catalog visibility.
func (f *Fixtures) CreateCourse(ctx context.Context, slug, title string, published bool) models.Course {
	f.t.Helper()
	now := time.Now().UTC()
	c := models.Course{
		ID:        uuid.NewString(),
		Slug:      slug,
		Title:     title,
		TitleCI:   text.Fold(title),
		Published: published,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "courses", c)
	return c
}

// CreateSessions creates sessions 1..n for the course.
func (f *Fixtures) CreateSessions(ctx context.Context, courseID string, n int) []models.Session {
	f.t.Helper()
	out := make([]models.Session, 0, n)
	for i := 1; i <= n; i++ {
		s := models.Session{
			ID:        uuid.NewString(),
			CourseID:  courseID,
			Index:     i,
			Title:     "Week " + strconv.Itoa(i),
			CreatedAt: time.Now().UTC(),
		}
		f.insert(ctx, "sessions", s)
		out = append(out, s)
	}
	return out
}

// Enroll creates an enrollment row.
func (f *Fixtures) Enroll(ctx context.Context, userID, courseID string, status models.EnrollmentStatus) models.Enrollment {
	f.t.Helper()
	now := time.Now().UTC()
	e := models.Enrollment{
		ID:        uuid.NewString(),
		UserID:    userID,
		CourseID:  courseID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "enrollments", e)
	return e
}

// Complete marks a session done for a user.
func (f *Fixtures) Complete(ctx context.Context, userID, sessionID string) models.Completion {
	f.t.Helper()
	c := models.Completion{
		ID:          uuid.NewString(),
		UserID:      userID,
		SessionID:   sessionID,
		CompletedAt: time.Now().UTC(),
	}
	f.insert(ctx, "completions", c)
	return c
}

// CreateAccessRequest creates a PENDING request.
func (f *Fixtures) CreateAccessRequest(ctx context.Context, courseID, name, email string) models.AccessRequest {
	f.t.Helper()
	r := models.AccessRequest{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		Name:      name,
		Email:     strings.ToLower(email),
		Status:    models.RequestPending,
		CreatedAt: time.Now().UTC(),
	}
	f.insert(ctx, "access_requests", r)
	return r
}
