package sessionstore_test

import (
	"testing"

	sessionstore "github.com/dalemusser/coursehub/internal/app/store/sessions"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/dalemusser/coursehub/internal/testutil"
)

func TestStore_Create_IndexRules(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Session{CourseID: "c1", Index: 0, Title: "Zero"}); !errs.IsInvalid(err) {
		t.Errorf("index 0: got %v, want invalid", err)
	}
	if _, err := store.Create(ctx, models.Session{CourseID: "c1", Index: 1, Title: "One"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Session{CourseID: "c1", Index: 1, Title: "Again"}); !errs.IsConflict(err) {
		t.Errorf("duplicate index: got %v, want conflict", err)
	}
	// same index in another course is fine
	if _, err := store.Create(ctx, models.Session{CourseID: "c2", Index: 1, Title: "Other"}); err != nil {
		t.Errorf("index 1 in c2: %v", err)
	}
}

func TestStore_ListSessions_Ordered(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, i := range []int{3, 1, 2} {
		if _, err := store.Create(ctx, models.Session{CourseID: "c1", Index: i, Title: "S"}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	got, err := store.ListSessions(ctx, "c1")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	for i, s := range got {
		if s.Index != i+1 {
			t.Errorf("position %d: got index %d, want %d", i, s.Index, i+1)
		}
	}

	n, err := store.CountSessions(ctx, "c1")
	if err != nil {
		t.Fatalf("CountSessions failed: %v", err)
	}
	if n != 3 {
		t.Errorf("count: got %d, want 3", n)
	}
}

func TestStore_CountByCoursesAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessionstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateSessions(ctx, "c1", 3)
	fixtures.CreateSessions(ctx, "c2", 1)

	counts, err := store.CountByCourses(ctx, []string{"c1", "c2", "c3"})
	if err != nil {
		t.Fatalf("CountByCourses failed: %v", err)
	}
	if counts["c1"] != 3 || counts["c2"] != 1 || counts["c3"] != 0 {
		t.Errorf("counts: got %v", counts)
	}

	removed, err := store.DeleteForCourse(ctx, "c1")
	if err != nil {
		t.Fatalf("DeleteForCourse failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("removed: got %d, want 3", removed)
	}

	if _, err := store.GetByIndex(ctx, "c1", 1); !errs.IsNotFound(err) {
		t.Errorf("GetByIndex after delete: got %v, want not found", err)
	}
}
