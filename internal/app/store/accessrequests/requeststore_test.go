package requeststore_test

import (
	"testing"
	"time"

	requeststore "github.com/dalemusser/coursehub/internal/app/store/accessrequests"
	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/dalemusser/coursehub/internal/testutil"
)

func TestStore_Create_ForcesPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	r, err := store.Create(ctx, models.AccessRequest{
		CourseID: "c1",
		Email:    " New@Example.com ",
		Status:   models.RequestApproved,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if r.Status != models.RequestPending {
		t.Errorf("status: got %q, want PENDING", r.Status)
	}
	if r.Email != "new@example.com" {
		t.Errorf("email: got %q, want %q", r.Email, "new@example.com")
	}

	if _, err := store.Create(ctx, models.AccessRequest{CourseID: "c1"}); !errs.IsInvalid(err) {
		t.Errorf("missing email: got %v, want invalid", err)
	}
}

func TestStore_Decide_ExactlyOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	r := fixtures.CreateAccessRequest(ctx, "c1", "Pat", "pat@example.com")
	now := time.Now()

	if err := store.Decide(ctx, r.ID, models.RequestApproved, "leader-1", now); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if err := store.Decide(ctx, r.ID, models.RequestRejected, "leader-2", now); !errs.IsConflict(err) {
		t.Errorf("second Decide: got %v, want conflict", err)
	}
	if err := store.Decide(ctx, "missing", models.RequestRejected, "leader-2", now); !errs.IsNotFound(err) {
		t.Errorf("missing request: got %v, want not found", err)
	}
	if err := store.Decide(ctx, r.ID, models.RequestPending, "leader-2", now); !errs.IsInvalid(err) {
		t.Errorf("PENDING decision: got %v, want invalid", err)
	}

	got, err := store.GetByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.RequestApproved || got.DecidedBy != "leader-1" || got.DecidedAt == nil {
		t.Errorf("decided request: got %+v", got)
	}
}

func TestStore_List_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateAccessRequest(ctx, "c1", "Pat", "pat@example.com")
	fixtures.CreateAccessRequest(ctx, "c1", "Sam", "sam@example.com")
	r3 := fixtures.CreateAccessRequest(ctx, "c2", "Kim", "kim@other.org")
	if err := store.Decide(ctx, r3.ID, models.RequestRejected, "x", time.Now()); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}

	tests := []struct {
		name   string
		filter repo.RequestFilter
		want   int64
	}{
		{"all", repo.RequestFilter{}, 3},
		{"pending", repo.RequestFilter{Status: models.RequestPending}, 2},
		{"course", repo.RequestFilter{CourseID: "c2"}, 1},
		{"q email", repo.RequestFilter{Q: "EXAMPLE"}, 2},
		{"q name", repo.RequestFilter{Q: "kim"}, 1},
		{"q course title", repo.RequestFilter{Q: "zzz", QCourseIDs: []string{"c1"}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, total, err := store.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if total != tt.want || int64(len(rows)) != tt.want {
				t.Errorf("got total=%d len=%d, want %d", total, len(rows), tt.want)
			}
		})
	}
}
