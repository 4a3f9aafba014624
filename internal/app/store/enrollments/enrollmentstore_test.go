package enrollmentstore_test

import (
	"sync"
	"testing"

	enrollmentstore "github.com/dalemusser/coursehub/internal/app/store/enrollments"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/dalemusser/coursehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStore_Upsert_UpdatesStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Upsert(ctx, "u1", "c1", models.EnrollmentActive); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, "u1", "c1", models.EnrollmentInactive); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	n, err := db.Collection("enrollments").CountDocuments(ctx, bson.M{"user_id": "u1", "course_id": "c1"})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("rows: got %d, want 1", n)
	}

	e, err := store.Find(ctx, "u1", "c1")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if e.Status != models.EnrollmentInactive {
		t.Errorf("status: got %q, want INACTIVE", e.Status)
	}
}

func TestStore_Upsert_Concurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- store.Upsert(ctx, "u1", "c1", models.EnrollmentActive)
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Errorf("concurrent Upsert: %v", err)
		}
	}

	n, _ := store.CountActive(ctx, "c1")
	if n != 1 {
		t.Errorf("active: got %d, want 1", n)
	}
}

func TestStore_Find_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Find(ctx, "u1", "c1"); !errs.IsNotFound(err) {
		t.Errorf("got %v, want not found", err)
	}
}

func TestStore_CountsAndDeletes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.Enroll(ctx, "u1", "c1", models.EnrollmentActive)
	fixtures.Enroll(ctx, "u2", "c1", models.EnrollmentActive)
	fixtures.Enroll(ctx, "u3", "c1", models.EnrollmentInactive)
	fixtures.Enroll(ctx, "u1", "c2", models.EnrollmentActive)

	counts, err := store.Counts(ctx, "c1")
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts.Active != 2 || counts.Inactive != 1 {
		t.Errorf("counts: got %+v, want 2 active / 1 inactive", counts)
	}

	byCourse, err := store.CountActiveByCourses(ctx, []string{"c1", "c2"})
	if err != nil {
		t.Fatalf("CountActiveByCourses failed: %v", err)
	}
	if byCourse["c1"] != 2 || byCourse["c2"] != 1 {
		t.Errorf("by course: got %v", byCourse)
	}

	ids, err := store.ActiveCourseIDs(ctx, "u1")
	if err != nil {
		t.Fatalf("ActiveCourseIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("active courses for u1: got %v, want 2", ids)
	}

	statuses, err := store.StatusesFor(ctx, "c1", []string{"u1", "u3", "u9"})
	if err != nil {
		t.Fatalf("StatusesFor failed: %v", err)
	}
	if statuses["u1"] != models.EnrollmentActive || statuses["u3"] != models.EnrollmentInactive {
		t.Errorf("statuses: got %v", statuses)
	}
	if _, ok := statuses["u9"]; ok {
		t.Error("expected no status for a user without enrollment")
	}

	removed, err := store.Delete(ctx, "u2", "c1")
	if err != nil || !removed {
		t.Errorf("Delete: got (%v, %v), want (true, nil)", removed, err)
	}
	removed, err = store.Delete(ctx, "u2", "c1")
	if err != nil || removed {
		t.Errorf("second Delete: got (%v, %v), want (false, nil)", removed, err)
	}

	n, err := store.DeleteForUser(ctx, "u1")
	if err != nil || n != 2 {
		t.Errorf("DeleteForUser: got (%d, %v), want (2, nil)", n, err)
	}
}
