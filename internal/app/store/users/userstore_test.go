package userstore_test

import (
	"testing"

	"github.com/dalemusser/coursehub/internal/app/store/repo"
	userstore "github.com/dalemusser/coursehub/internal/app/store/users"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/dalemusser/coursehub/internal/testutil"
)

func TestStore_Create_Normalizes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{Name: "  Ada Lovelace ", Email: "Ada@Example.COM"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if created.Email != "ada@example.com" {
		t.Errorf("email: got %q, want %q", created.Email, "ada@example.com")
	}
	if created.Name != "Ada Lovelace" {
		t.Errorf("name: got %q, want %q", created.Name, "Ada Lovelace")
	}
	if created.Role != models.RoleUser {
		t.Errorf("role: got %q, want USER default", created.Role)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_InvalidRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.User{Name: "X", Email: "x@example.com", Role: "OWNER"})
	if !errs.IsInvalid(err) {
		t.Errorf("expected invalid error, got %v", err)
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{Name: "One", Email: "dup@example.com"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.User{Name: "Two", Email: "DUP@example.com"})
	if !errs.IsConflict(err) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, "missing")
	if !errs.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestStore_GetByEmails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateLearner(ctx, "A", "a@example.com")
	fixtures.CreateLearner(ctx, "B", "b@example.com")

	got, err := store.GetByEmails(ctx, []string{"a@example.com", "b@example.com", "nobody@example.com"})
	if err != nil {
		t.Fatalf("GetByEmails failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("users: got %d, want 2", len(got))
	}
}

func TestStore_SetRoleAndCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateAdmin(ctx, "Root", "root@example.com")
	u := fixtures.CreateLearner(ctx, "Lee", "lee@example.com")

	if err := store.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
		t.Fatalf("SetRole failed: %v", err)
	}
	n, err := store.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		t.Fatalf("CountByRole failed: %v", err)
	}
	if n != 2 {
		t.Errorf("admins: got %d, want 2", n)
	}

	if err := store.SetRole(ctx, "missing", models.RoleUser); !errs.IsNotFound(err) {
		t.Errorf("SetRole on missing user: got %v, want not found", err)
	}
}

func TestStore_List_SearchAndPaging(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateAdmin(ctx, "Root", "root@example.com")
	for _, e := range []string{"a@example.com", "b@example.com", "c@other.org"} {
		fixtures.CreateLearner(ctx, "Learner", e)
	}

	users, total, err := store.List(ctx, repo.UserFilter{Q: "EXAMPLE.com"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 3 || len(users) != 3 {
		t.Errorf("search: got total=%d len=%d, want 3/3", total, len(users))
	}

	users, total, err = store.List(ctx, repo.UserFilter{Q: "admin"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || users[0].Role != models.RoleAdmin {
		t.Errorf("role search: got total=%d, want the one ADMIN", total)
	}

	users, total, err = store.List(ctx, repo.UserFilter{Page: repo.Page{Offset: 2, Limit: 2}})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 4 || len(users) != 2 {
		t.Errorf("page 2: got total=%d len=%d, want 4/2", total, len(users))
	}
	for _, u := range users {
		if u.PasswordHash != "" {
			t.Error("expected password hash to be projected out")
		}
	}
}

func TestFetcher_FetchUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Leah", "leah@example.com", models.RoleLeader)
	f := userstore.NewFetcher(db)

	su := f.FetchUser(ctx, u.ID)
	if su == nil {
		t.Fatal("expected user")
	}
	if su.Role != models.RoleLeader || su.Email != "leah@example.com" {
		t.Errorf("session user: got %+v", su)
	}
	if f.FetchUser(ctx, "missing") != nil {
		t.Error("expected nil for missing user")
	}
}
