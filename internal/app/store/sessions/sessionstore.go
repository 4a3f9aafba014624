// internal/app/store/sessions/sessionstore.go
package sessionstore

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/coursehub/internal/app/store/mongoutil"
	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	msgNotFound  = "session not found"
	msgDuplicate = "a session with this index already exists in the course"
)

// Store is the content store for course sessions.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions")}
}

var _ repo.Sessions = (*Store)(nil)

func (s *Store) Create(ctx context.Context, sess models.Session) (models.Session, error) {
	if sess.CourseID == "" {
		return models.Session{}, errs.E("sessions.Create", errs.ErrInvalid, "course is required")
	}
	if sess.Index < 1 {
		return models.Session{}, errs.E("sessions.Create", errs.ErrInvalid, "index must be 1 or greater")
	}
	sess.Title = strings.TrimSpace(sess.Title)
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	sess.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return models.Session{}, mongoutil.Wrap("sessions.Create", msgDuplicate, err)
	}
	return sess, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*models.Session, error) {
	var out models.Session
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		return nil, mongoutil.Wrap("sessions.GetByID", msgNotFound, err)
	}
	return &out, nil
}

func (s *Store) GetByIndex(ctx context.Context, courseID string, index int) (*models.Session, error) {
	var out models.Session
	if err := s.c.FindOne(ctx, bson.M{"course_id": courseID, "index": index}).Decode(&out); err != nil {
		return nil, mongoutil.Wrap("sessions.GetByIndex", msgNotFound, err)
	}
	return &out, nil
}

// ListSessions returns the course's sessions by ascending index.
func (s *Store) ListSessions(ctx context.Context, courseID string) ([]models.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "index", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"course_id": courseID}, opts)
	if err != nil {
		return nil, mongoutil.Wrap("sessions.ListSessions", "", err)
	}
	defer cur.Close(ctx)
	out := []models.Session{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, mongoutil.Wrap("sessions.ListSessions", "", err)
	}
	return out, nil
}

func (s *Store) CountSessions(ctx context.Context, courseID string) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"course_id": courseID})
	return n, mongoutil.Wrap("sessions.CountSessions", "", err)
}

// CountByCourses groups session counts by course in one round trip.
func (s *Store) CountByCourses(ctx context.Context, courseIDs []string) (map[string]int64, error) {
	return mongoutil.CountBy(ctx, s.c, "sessions.CountByCourses", bson.M{"course_id": bson.M{"$in": courseIDs}}, "$course_id")
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mongoutil.Wrap("sessions.Delete", "", err)
	}
	if res.DeletedCount == 0 {
		return errs.E("sessions.Delete", errs.ErrNotFound, msgNotFound)
	}
	return nil
}

func (s *Store) DeleteForCourse(ctx context.Context, courseID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"course_id": courseID})
	if err != nil {
		return 0, mongoutil.Wrap("sessions.DeleteForCourse", "", err)
	}
	return res.DeletedCount, nil
}
