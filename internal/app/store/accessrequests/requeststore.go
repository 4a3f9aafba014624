// internal/app/store/accessrequests/requeststore.go
package requeststore

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/coursehub/internal/app/store/mongoutil"
	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/app/system/search"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	msgNotFound = "access request not found"
	msgDecided  = "access request was already decided"

	defaultPageSize = 20
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("access_requests")}
}

var _ repo.AccessRequests = (*Store)(nil)

// Create stores a new PENDING request.
func (s *Store) Create(ctx context.Context, r models.AccessRequest) (models.AccessRequest, error) {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" || r.CourseID == "" {
		return models.AccessRequest{}, errs.E("accessrequests.Create", errs.ErrInvalid, "email and course are required")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.Status = models.RequestPending
	r.DecidedBy, r.DecidedAt = "", nil
	r.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.AccessRequest{}, mongoutil.Wrap("accessrequests.Create", "", err)
	}
	return r, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*models.AccessRequest, error) {
	var r models.AccessRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, mongoutil.Wrap("accessrequests.GetByID", msgNotFound, err)
	}
	return &r, nil
}

// Decide transitions the request only while it is still PENDING, so two
// deciders racing on one request cannot both win.
func (s *Store) Decide(ctx context.Context, id string, status models.AccessRequestStatus, decidedBy string, at time.Time) error {
	if status != models.RequestApproved && status != models.RequestRejected {
		return errs.E("accessrequests.Decide", errs.ErrInvalid, "decision must be APPROVED or REJECTED")
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.RequestPending},
		bson.M{"$set": bson.M{"status": status, "decided_by": decidedBy, "decided_at": at.UTC()}})
	if err != nil {
		return mongoutil.Wrap("accessrequests.Decide", "", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return errs.E("accessrequests.Decide", errs.ErrConflict, msgDecided)
}

// List pages requests newest first.
func (s *Store) List(ctx context.Context, f repo.RequestFilter) ([]models.AccessRequest, int64, error) {
	filter := bson.M{}
	if f.CourseID != "" {
		filter["course_id"] = f.CourseID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if q := strings.TrimSpace(f.Q); q != "" {
		rx := search.Contains(q)
		or := bson.A{bson.M{"email": rx}, bson.M{"name": rx}}
		if len(f.QCourseIDs) > 0 {
			or = append(or, bson.M{"course_id": bson.M{"$in": f.QCourseIDs}})
		}
		filter["$or"] = or
	}

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mongoutil.Wrap("accessrequests.List", "", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(f.Offset).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, mongoutil.Wrap("accessrequests.List", "", err)
	}
	defer cur.Close(ctx)

	out := []models.AccessRequest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, mongoutil.Wrap("accessrequests.List", "", err)
	}
	return out, total, nil
}

func (s *Store) DeleteForCourse(ctx context.Context, courseID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"course_id": courseID})
	if err != nil {
		return 0, mongoutil.Wrap("accessrequests.DeleteForCourse", "", err)
	}
	return res.DeletedCount, nil
}
