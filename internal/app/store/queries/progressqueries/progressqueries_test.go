package progressqueries_test

import (
	"testing"

	"github.com/dalemusser/coursehub/internal/app/store/queries/progressqueries"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/dalemusser/coursehub/internal/testutil"
)

// basics: 3 sessions, u1 and u2 ACTIVE, u1 completed sessions 1 and 2.
func TestCompletedCells_BasicsScenario(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	q := progressqueries.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	course := fixtures.CreateCourse(ctx, "basics", "Basics", true)
	sessions := fixtures.CreateSessions(ctx, course.ID, 3)
	fixtures.Enroll(ctx, "u1", course.ID, models.EnrollmentActive)
	fixtures.Enroll(ctx, "u2", course.ID, models.EnrollmentActive)
	fixtures.Complete(ctx, "u1", sessions[0].ID)
	fixtures.Complete(ctx, "u1", sessions[1].ID)
	// noise: inactive learner and a completion in another course
	fixtures.Enroll(ctx, "u3", course.ID, models.EnrollmentInactive)
	fixtures.Complete(ctx, "u3", sessions[0].ID)
	fixtures.Complete(ctx, "u1", "other-course-session")

	n, err := q.CompletedCells(ctx, course.ID)
	if err != nil {
		t.Fatalf("CompletedCells failed: %v", err)
	}
	if n != 2 {
		t.Errorf("completed cells: got %d, want 2", n)
	}

	if _, err := db.Collection("enrollments").DeleteOne(ctx, map[string]string{"user_id": "u1", "course_id": course.ID}); err != nil {
		t.Fatalf("unenroll: %v", err)
	}
	n, err = q.CompletedCells(ctx, course.ID)
	if err != nil {
		t.Fatalf("CompletedCells failed: %v", err)
	}
	if n != 0 {
		t.Errorf("completed cells after unenroll: got %d, want 0", n)
	}
}

func TestCompletedByCourse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	q := progressqueries.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateSessions(ctx, "ca", 3)
	b := fixtures.CreateSessions(ctx, "cb", 2)
	fixtures.CreateSessions(ctx, "cc", 2)
	fixtures.Complete(ctx, "u1", a[0].ID)
	fixtures.Complete(ctx, "u1", a[2].ID)
	fixtures.Complete(ctx, "u1", b[1].ID)
	fixtures.Complete(ctx, "u2", b[0].ID)

	got, err := q.CompletedByCourse(ctx, "u1", []string{"ca", "cb", "cc"})
	if err != nil {
		t.Fatalf("CompletedByCourse failed: %v", err)
	}
	if got["ca"] != 2 || got["cb"] != 1 {
		t.Errorf("counts: got %v, want ca=2 cb=1", got)
	}
	if _, ok := got["cc"]; ok {
		t.Errorf("expected no entry for a course without completions, got %v", got)
	}

	empty, err := q.CompletedByCourse(ctx, "u1", nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("no candidates: got (%v, %v)", empty, err)
	}
}
