package pgstore_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/coursehub/internal/app/store/audit"
	"github.com/dalemusser/coursehub/internal/app/store/pgstore"
	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/google/uuid"
)

// setup migrates a throwaway schema on PG_TEST_URL and returns its repos.
func setup(t *testing.T) (context.Context, repo.Repos) {
	t.Helper()
	url := os.Getenv("PG_TEST_URL")
	if url == "" {
		t.Skip("PG_TEST_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	admin, err := pgstore.Open(ctx, url, 2)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	schema := "coursehub_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	if _, err := admin.Pool().Exec(ctx, `CREATE SCHEMA `+schema); err != nil {
		admin.Close()
		t.Fatalf("create schema: %v", err)
	}

	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	conn, err := pgstore.Open(ctx, url+sep+"search_path="+schema, 4)
	if err != nil {
		t.Fatalf("open schema connection: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		_, _ = admin.Pool().Exec(context.Background(), `DROP SCHEMA `+schema+` CASCADE`)
		admin.Close()
	})

	n, err := pgstore.NewMigrator(conn).Migrate(ctx)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if n != len(pgstore.Migrations()) {
		t.Fatalf("migrations applied: got %d, want %d", n, len(pgstore.Migrations()))
	}
	if again, err := pgstore.NewMigrator(conn).Migrate(ctx); err != nil || again != 0 {
		t.Fatalf("second migrate: got (%d, %v), want (0, nil)", again, err)
	}
	return ctx, pgstore.NewRepos(conn)
}

func mustUser(t *testing.T, ctx context.Context, r repo.Repos, email string, role models.Role) models.User {
	t.Helper()
	u, err := r.Users.Create(ctx, models.User{Email: email, Name: email, Role: role})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func TestUsers(t *testing.T) {
	ctx, r := setup(t)

	u := mustUser(t, ctx, r, "Ada@Example.com", "")
	if u.Email != "ada@example.com" || u.Role != models.RoleUser {
		t.Errorf("create: got %q/%q, want lower-cased email and USER", u.Email, u.Role)
	}
	if _, err := r.Users.Create(ctx, models.User{Email: "ada@example.com"}); !errs.IsConflict(err) {
		t.Errorf("duplicate email: got %v, want conflict", err)
	}
	if _, err := r.Users.GetByID(ctx, "missing"); !errs.IsNotFound(err) {
		t.Errorf("missing user: got %v, want not found", err)
	}
	if err := r.Users.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
		t.Fatalf("set role: %v", err)
	}
	if n, _ := r.Users.CountByRole(ctx, models.RoleAdmin); n != 1 {
		t.Errorf("admin count: got %d, want 1", n)
	}
	mustUser(t, ctx, r, "grace@example.com", models.RoleLeader)

	list, total, err := r.Users.List(ctx, repo.UserFilter{Q: "LEAD"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].Email != "grace@example.com" {
		t.Errorf("list by role text: got %d/%v", total, list)
	}
	if list[0].PasswordHash != "" {
		t.Error("list must not return password hashes")
	}
	if err := r.Users.Delete(ctx, u.ID); err != nil {
		t.Errorf("delete: %v", err)
	}
	if err := r.Users.Delete(ctx, u.ID); !errs.IsNotFound(err) {
		t.Errorf("second delete: got %v, want not found", err)
	}
}

func TestProgressJoins(t *testing.T) {
	ctx, r := setup(t)

	c, err := r.Courses.Create(ctx, models.Course{Slug: "basics", Title: "Basics", Published: true})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	var sessions []models.Session
	for i := 1; i <= 3; i++ {
		s, err := r.Sessions.Create(ctx, models.Session{CourseID: c.ID, Index: i, Title: "Week"})
		if err != nil {
			t.Fatalf("create session %d: %v", i, err)
		}
		sessions = append(sessions, s)
	}
	if _, err := r.Sessions.Create(ctx, models.Session{CourseID: c.ID, Index: 2}); !errs.IsConflict(err) {
		t.Errorf("duplicate index: got %v, want conflict", err)
	}

	u1 := mustUser(t, ctx, r, "u1@example.com", "")
	u2 := mustUser(t, ctx, r, "u2@example.com", "")
	for _, u := range []models.User{u1, u2} {
		if err := r.Enrollments.Upsert(ctx, u.ID, c.ID, models.EnrollmentActive); err != nil {
			t.Fatalf("enroll: %v", err)
		}
	}
	for _, s := range sessions[:2] {
		for i := 0; i < 2; i++ {
			if err := r.Completions.Upsert(ctx, u1.ID, s.ID); err != nil {
				t.Fatalf("complete: %v", err)
			}
		}
	}

	if n, _ := r.Completions.CountForCourse(ctx, u1.ID, c.ID); n != 2 {
		t.Errorf("CountForCourse: got %d, want 2", n)
	}
	if n, _ := r.Progress.CompletedCells(ctx, c.ID); n != 2 {
		t.Errorf("CompletedCells: got %d, want 2", n)
	}
	by, err := r.Progress.CompletedByCourse(ctx, u1.ID, []string{c.ID, "other"})
	if err != nil || by[c.ID] != 2 || by["other"] != 0 {
		t.Errorf("CompletedByCourse: got %v, %v", by, err)
	}

	if removed, err := r.Enrollments.Delete(ctx, u1.ID, c.ID); err != nil || !removed {
		t.Fatalf("unenroll: got (%v, %v)", removed, err)
	}
	if n, _ := r.Progress.CompletedCells(ctx, c.ID); n != 0 {
		t.Errorf("CompletedCells after unenroll: got %d, want 0", n)
	}
	counts, _ := r.Enrollments.Counts(ctx, c.ID)
	if counts.Active != 1 || counts.Inactive != 0 {
		t.Errorf("Counts: got %+v", counts)
	}
}

func TestAccessRequestDecideOnce(t *testing.T) {
	ctx, r := setup(t)
	c, err := r.Courses.Create(ctx, models.Course{Slug: "algebra", Title: "Algebra"})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	req, err := r.Requests.Create(ctx, models.AccessRequest{CourseID: c.ID, Name: "Lin", Email: "LIN@example.com"})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if req.Status != models.RequestPending || req.Email != "lin@example.com" {
		t.Errorf("create: got %+v", req)
	}

	now := time.Now()
	if err := r.Requests.Decide(ctx, req.ID, models.RequestApproved, "admin", now); err != nil {
		t.Fatalf("decide: %v", err)
	}
	if err := r.Requests.Decide(ctx, req.ID, models.RequestRejected, "admin", now); !errs.IsConflict(err) {
		t.Errorf("second decide: got %v, want conflict", err)
	}
	if err := r.Requests.Decide(ctx, "missing", models.RequestRejected, "admin", now); !errs.IsNotFound(err) {
		t.Errorf("missing decide: got %v, want not found", err)
	}

	list, total, err := r.Requests.List(ctx, repo.RequestFilter{Q: "lin", Status: models.RequestApproved})
	if err != nil || total != 1 || len(list) != 1 {
		t.Fatalf("list: got %d/%d, %v", total, len(list), err)
	}
	if list[0].DecidedBy != "admin" || list[0].DecidedAt == nil {
		t.Errorf("decision fields: got %+v", list[0])
	}
}

func TestWithinTxRollsBack(t *testing.T) {
	ctx, r := setup(t)
	boom := errors.New("boom")
	err := r.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := r.Users.Create(ctx, models.User{Email: "tx@example.com"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx: got %v, want boom", err)
	}
	if _, err := r.Users.GetByEmail(ctx, "tx@example.com"); !errs.IsNotFound(err) {
		t.Errorf("rolled back user: got %v, want not found", err)
	}
}

func TestAuditQuery(t *testing.T) {
	ctx, r := setup(t)
	for _, et := range []string{audit.EventUserCreated, audit.EventUserDeleted} {
		if err := r.Audit.Log(ctx, audit.Event{Category: audit.CategoryAdmin, EventType: et, Success: true,
			Details: map[string]string{"k": "v"}}); err != nil {
			t.Fatalf("log: %v", err)
		}
	}
	got, err := r.Audit.Query(ctx, audit.QueryFilter{EventType: audit.EventUserDeleted})
	if err != nil || len(got) != 1 {
		t.Fatalf("query: got %d, %v", len(got), err)
	}
	if got[0].Details["k"] != "v" {
		t.Errorf("details: got %v", got[0].Details)
	}
	if n, _ := r.Audit.CountByFilter(ctx, audit.QueryFilter{Category: audit.CategoryAdmin}); n != 2 {
		t.Errorf("count: got %d, want 2", n)
	}
}

func TestAuditDeleteBefore(t *testing.T) {
	ctx, r := setup(t)
	now := time.Now().UTC()
	for _, ts := range []time.Time{now.Add(-72 * time.Hour), now} {
		if err := r.Audit.Log(ctx, audit.Event{Category: audit.CategoryAdmin, EventType: audit.EventCourseCreated, Timestamp: ts}); err != nil {
			t.Fatalf("log: %v", err)
		}
	}
	n, err := r.Audit.DeleteBefore(ctx, now.Add(-24*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("delete before: got (%d, %v), want (1, nil)", n, err)
	}
	if left, _ := r.Audit.CountByFilter(ctx, audit.QueryFilter{}); left != 1 {
		t.Errorf("remaining: got %d, want 1", left)
	}
}
