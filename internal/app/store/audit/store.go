// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"github.com/dalemusser/coursehub/internal/app/store/mongoutil"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAdmin    = "admin"
	CategoryLearner  = "learner"
	CategorySecurity = "security"
)

// Admin and leader event types
const (
	EventUserCreated        = "user_created"
	EventUserRoleChanged    = "user_role_changed"
	EventUserDeleted        = "user_deleted"
	EventProgressReset      = "progress_reset"
	EventUserEnrolled       = "user_enrolled"
	EventUserUnenrolled     = "user_unenrolled"
	EventEnrollmentStatus   = "enrollment_status_changed"
	EventBulkEnrolled       = "bulk_enrolled"
	EventRequestApproved    = "access_request_approved"
	EventRequestRejected    = "access_request_rejected"
	EventCourseCreated      = "course_created"
	EventCoursePublished    = "course_published"
	EventCourseUnpublished  = "course_unpublished"
	EventCourseDeleted      = "course_deleted"
	EventSessionAdded       = "session_added"
	EventSessionDeleted     = "session_deleted"
	EventCourseSeeded       = "course_seeded"
	EventLastAdminProtected = "last_admin_protected"
)

// Learner and public event types
const (
	EventSessionCompleted = "session_completed"
	EventAccessRequested  = "access_requested"
	EventRequestThrottled = "access_request_throttled"
)

// Event is one audit record.
type Event struct {
	ID        string    `bson:"_id" json:"id"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`

	Category  string `bson:"category" json:"category"`
	EventType string `bson:"event_type" json:"event_type"`

	UserID   string `bson:"user_id,omitempty" json:"user_id,omitempty"`   // affected user
	ActorID  string `bson:"actor_id,omitempty" json:"actor_id,omitempty"` // who acted
	CourseID string `bson:"course_id,omitempty" json:"course_id,omitempty"`

	IP        string `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`

	Success       bool   `bson:"success" json:"success"`
	FailureReason string `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// QueryFilter narrows Query and CountByFilter.
type QueryFilter struct {
	UserID    string
	ActorID   string
	CourseID  string
	Category  string
	EventType string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int64
	Offset    int64
}

// Prepare fills the id and timestamp when absent.
func (e *Event) Prepare() {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
}

// Store keeps audit events in the audit_events collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	event.Prepare()
	_, err := s.c.InsertOne(ctx, event)
	return mongoutil.Wrap("audit.Log", "", err)
}

func (f QueryFilter) bson() bson.M {
	query := bson.M{}
	if f.UserID != "" {
		query["user_id"] = f.UserID
	}
	if f.ActorID != "" {
		query["actor_id"] = f.ActorID
	}
	if f.CourseID != "" {
		query["course_id"] = f.CourseID
	}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.EventType != "" {
		query["event_type"] = f.EventType
	}
	if f.StartTime != nil || f.EndTime != nil {
		ts := bson.M{}
		if f.StartTime != nil {
			ts["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			ts["$lte"] = *f.EndTime
		}
		query["timestamp"] = ts
	}
	return query
}

// Query returns matching events, most recent first. Limit defaults to 100.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cur, err := s.c.Find(ctx, filter.bson(), opts)
	if err != nil {
		return nil, mongoutil.Wrap("audit.Query", "", err)
	}
	defer cur.Close(ctx)

	events := []Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, mongoutil.Wrap("audit.Query", "", err)
	}
	return events, nil
}

// DeleteBefore removes events older than cutoff.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, mongoutil.Wrap("audit.DeleteBefore", "", err)
	}
	return res.DeletedCount, nil
}

// CountByFilter returns the count of events matching the filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	n, err := s.c.CountDocuments(ctx, filter.bson())
	return n, mongoutil.Wrap("audit.CountByFilter", "", err)
}
