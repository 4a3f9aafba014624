package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/coursehub/internal/app/store/audit"
	"github.com/dalemusser/coursehub/internal/testutil"
)

func TestStore_Log_FillsIDAndTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	before := time.Now().Add(-time.Second)
	err := store.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventUserEnrolled,
		ActorID:   "actor-1",
		UserID:    "user-1",
		CourseID:  "course-1",
		Success:   true,
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.Query(ctx, audit.QueryFilter{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID == "" {
		t.Error("expected ID to be generated")
	}
	if events[0].Timestamp.Before(before) {
		t.Errorf("timestamp: got %v, want after %v", events[0].Timestamp, before)
	}
}

func TestStore_QueryFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, e := range []audit.Event{
		{Category: audit.CategoryAdmin, EventType: audit.EventCourseCreated, CourseID: "c1", Success: true},
		{Category: audit.CategoryAdmin, EventType: audit.EventSessionAdded, CourseID: "c1", Success: true},
		{Category: audit.CategoryLearner, EventType: audit.EventSessionCompleted, CourseID: "c1", Success: true},
		{Category: audit.CategoryAdmin, EventType: audit.EventCourseCreated, CourseID: "c2", Success: true},
	} {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	n, err := store.CountByFilter(ctx, audit.QueryFilter{Category: audit.CategoryAdmin})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if n != 3 {
		t.Errorf("admin count: got %d, want 3", n)
	}

	events, err := store.Query(ctx, audit.QueryFilter{EventType: audit.EventCourseCreated, CourseID: "c2"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 || events[0].CourseID != "c2" {
		t.Errorf("course filter: got %+v, want one c2 event", events)
	}

	limited, err := store.Query(ctx, audit.QueryFilter{Limit: 2})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limit: got %d events, want 2", len(limited))
	}
}

func TestStore_DeleteBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	for _, ts := range []time.Time{now.Add(-72 * time.Hour), now} {
		if err := store.Log(ctx, audit.Event{Category: audit.CategoryAdmin, EventType: audit.EventCourseCreated, Timestamp: ts}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	n, err := store.DeleteBefore(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted: got %d, want 1", n)
	}
	left, err := store.CountByFilter(ctx, audit.QueryFilter{})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if left != 1 {
		t.Errorf("remaining: got %d, want 1", left)
	}
}
