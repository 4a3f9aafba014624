// internal/app/store/repo/repo.go
//
// Package repo declares the storage contracts the engines and services depend
// on. The Mongo stores under internal/app/store and the Postgres implementation
// in internal/app/store/pgstore both satisfy them.
//
// Every method reports failures with internal/domain/errs kinds: a missing row
// is errs.ErrNotFound, a unique-key violation errs.ErrConflict and anything the
// driver returns otherwise errs.ErrUnavailable.
package repo

import (
	"context"
	"time"

	"github.com/dalemusser/coursehub/internal/app/store/audit"
	"github.com/dalemusser/coursehub/internal/domain/models"
)

// Page is an offset window. Limit <= 0 means the store default.
type Page struct {
	Offset int64
	Limit  int64
}

type UserFilter struct {
	Q string // contains, case-insensitive, over email, name and role
	Page
}

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByEmails(ctx context.Context, emails []string) ([]models.User, error)
	SetRole(ctx context.Context, id string, role models.Role) error
	SetPassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, role models.Role) (int64, error)
	// List returns one page, newest first, and the total matching count.
	List(ctx context.Context, f UserFilter) ([]models.User, int64, error)
}

type Courses interface {
	Create(ctx context.Context, c models.Course) (models.Course, error)
	// UpsertBySlug creates the course or overwrites title, summary and the
	// published flag of the existing one.
	UpsertBySlug(ctx context.Context, c models.Course) (models.Course, error)
	GetByID(ctx context.Context, id string) (*models.Course, error)
	GetBySlug(ctx context.Context, slug string) (*models.Course, error)
	ListPublished(ctx context.Context) ([]models.Course, error) // by title
	ListAll(ctx context.Context) ([]models.Course, error)       // newest first
	ListByIDs(ctx context.Context, ids []string) ([]models.Course, error)
	// SearchIDs returns ids of courses whose title contains q.
	SearchIDs(ctx context.Context, q string) ([]string, error)
	SetPublished(ctx context.Context, id string, published bool) error
	Delete(ctx context.Context, id string) error
}

// Sessions is the content store for course sessions.
type Sessions interface {
	Create(ctx context.Context, s models.Session) (models.Session, error)
	GetByID(ctx context.Context, id string) (*models.Session, error)
	GetByIndex(ctx context.Context, courseID string, index int) (*models.Session, error)
	ListSessions(ctx context.Context, courseID string) ([]models.Session, error) // ascending index
	CountSessions(ctx context.Context, courseID string) (int64, error)
	CountByCourses(ctx context.Context, courseIDs []string) (map[string]int64, error)
	Delete(ctx context.Context, id string) error
	DeleteForCourse(ctx context.Context, courseID string) (int64, error)
}

type EnrollmentCounts struct {
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

type Enrollments interface {
	Find(ctx context.Context, userID, courseID string) (*models.Enrollment, error)
	Upsert(ctx context.Context, userID, courseID string, status models.EnrollmentStatus) error
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, userID, courseID string) (bool, error)
	CountActive(ctx context.Context, courseID string) (int64, error)
	CountActiveByCourses(ctx context.Context, courseIDs []string) (map[string]int64, error)
	Counts(ctx context.Context, courseID string) (EnrollmentCounts, error)
	ActiveCourseIDs(ctx context.Context, userID string) ([]string, error)
	StatusesFor(ctx context.Context, courseID string, userIDs []string) (map[string]models.EnrollmentStatus, error)
	DeleteForUser(ctx context.Context, userID string) (int64, error)
	DeleteForCourse(ctx context.Context, courseID string) (int64, error)
}

type Completions interface {
	Exists(ctx context.Context, userID, sessionID string) (bool, error)
	// Upsert is idempotent on (user, session).
	Upsert(ctx context.Context, userID, sessionID string) error
	// CountForCourse counts the user's completions whose session belongs to courseID.
	CountForCourse(ctx context.Context, userID, courseID string) (int64, error)
	CountByUsers(ctx context.Context, userIDs []string) (map[string]int64, error)
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
	DeleteForSessions(ctx context.Context, sessionIDs []string) (int64, error)
}

// Progress holds the join-heavy aggregations.
type Progress interface {
	// CompletedCells counts completions of courseID's sessions by users that
	// hold an ACTIVE enrollment in courseID.
	CompletedCells(ctx context.Context, courseID string) (int64, error)
	// CompletedByCourse returns, for each candidate course, how many of its
	// sessions userID completed. Courses with none are absent.
	CompletedByCourse(ctx context.Context, userID string, courseIDs []string) (map[string]int64, error)
}

type RequestFilter struct {
	Q          string   // contains, case-insensitive, over email and name
	QCourseIDs []string // courses whose title matched Q
	CourseID   string
	Status     models.AccessRequestStatus // "" = all
	Page
}

type AccessRequests interface {
	Create(ctx context.Context, r models.AccessRequest) (models.AccessRequest, error)
	GetByID(ctx context.Context, id string) (*models.AccessRequest, error)
	// Decide moves a PENDING request to status. errs.ErrConflict when the
	// request is no longer pending.
	Decide(ctx context.Context, id string, status models.AccessRequestStatus, decidedBy string, at time.Time) error
	List(ctx context.Context, f RequestFilter) ([]models.AccessRequest, int64, error) // newest first
	DeleteForCourse(ctx context.Context, courseID string) (int64, error)
}

type AuditStore interface {
	Log(ctx context.Context, e audit.Event) error
	Query(ctx context.Context, f audit.QueryFilter) ([]audit.Event, error)
	CountByFilter(ctx context.Context, f audit.QueryFilter) (int64, error)
	// DeleteBefore removes events older than cutoff and reports how many.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Transactor groups several store calls into one unit of work. Stores called
// with the ctx handed to fn take part in it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoTx runs fn directly; used by tests and fakes.
type NoTx struct{}

func (NoTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Repos bundles one backend's implementations.
type Repos struct {
	Users       Users
	Courses     Courses
	Sessions    Sessions
	Enrollments Enrollments
	Completions Completions
	Progress    Progress
	Requests    AccessRequests
	Audit       AuditStore
	Tx          Transactor
	Pinger      Pinger
}
