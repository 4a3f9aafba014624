// internal/app/store/enrollments/enrollmentstore.go
package enrollmentstore

import (
	"context"
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

const msgNotFound = "enrollment not found"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("enrollments")}
}

var _ repo.Enrollments = (*Store)(nil)

func (s *Store) Find(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	var e models.Enrollment
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID, "course_id": courseID}).Decode(&e); err != nil {
		return nil, mongoutil.Wrap("enrollments.Find", msgNotFound, err)
	}
	return &e, nil
}

// Upsert creates the (user, course) row or updates its status.
// A concurrent insert of the same key surfaces as a duplicate on one side;
// that call retries once as a plain update.
func (s *Store) Upsert(ctx context.Context, userID, courseID string, status models.EnrollmentStatus) error {
	if userID == "" || courseID == "" {
		return errs.E("enrollments.Upsert", errs.ErrInvalid, "user and course are required")
	}
	now := time.Now().UTC()
	filter := bson.M{"user_id": userID, "course_id": courseID}
	update := bson.M{
		"$set": bson.M{"status": status, "updated_at": now},
		"$setOnInsert": bson.M{
			"_id":        uuid.NewString(),
			"created_at": now,
		},
	}
	_, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		_, err = s.c.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"status": status, "updated_at": now}})
	}
	return mongoutil.Wrap("enrollments.Upsert", "", err)
}

func (s *Store) Delete(ctx context.Context, userID, courseID string) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "course_id": courseID})
	if err != nil {
		return false, mongoutil.Wrap("enrollments.Delete", "", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *Store) CountActive(ctx context.Context, courseID string) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"course_id": courseID, "status": models.EnrollmentActive})
	return n, mongoutil.Wrap("enrollments.CountActive", "", err)
}

func (s *Store) CountActiveByCourses(ctx context.Context, courseIDs []string) (map[string]int64, error) {
	return mongoutil.CountBy(ctx, s.c, "enrollments.CountActiveByCourses",
		bson.M{"course_id": bson.M{"$in": courseIDs}, "status": models.EnrollmentActive},
		"$course_id")
}

func (s *Store) Counts(ctx context.Context, courseID string) (repo.EnrollmentCounts, error) {
	byStatus, err := mongoutil.CountBy(ctx, s.c, "enrollments.Counts", bson.M{"course_id": courseID}, "$status")
	if err != nil {
		return repo.EnrollmentCounts{}, err
	}
	var out repo.EnrollmentCounts
	for st, n := range byStatus {
		if models.EnrollmentStatus(st) == models.EnrollmentActive {
			out.Active += n
		} else {
			out.Inactive += n
		}
	}
	return out, nil
}

func (s *Store) ActiveCourseIDs(ctx context.Context, userID string) ([]string, error) {
	vals, err := s.c.Distinct(ctx, "course_id", bson.M{"user_id": userID, "status": models.EnrollmentActive})
	if err != nil {
		return nil, mongoutil.Wrap("enrollments.ActiveCourseIDs", "", err)
	}
	ids := make([]string, 0, len(vals))
	for _, v := range vals {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Store) StatusesFor(ctx context.Context, courseID string, userIDs []string) (map[string]models.EnrollmentStatus, error) {
	out := map[string]models.EnrollmentStatus{}
	if len(userIDs) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx,
		bson.M{"course_id": courseID, "user_id": bson.M{"$in": userIDs}},
		options.Find().SetProjection(bson.M{"user_id": 1, "status": 1}))
	if err != nil {
		return nil, mongoutil.Wrap("enrollments.StatusesFor", "", err)
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var e models.Enrollment
		if err := cur.Decode(&e); err != nil {
			return nil, mongoutil.Wrap("enrollments.StatusesFor", "", err)
		}
		out[e.UserID] = e.Status
	}
	return out, mongoutil.Wrap("enrollments.StatusesFor", "", cur.Err())
}

func (s *Store) DeleteForUser(ctx context.Context, userID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, mongoutil.Wrap("enrollments.DeleteForUser", "", err)
	}
	return res.DeletedCount, nil
}

func (s *Store) DeleteForCourse(ctx context.Context, courseID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"course_id": courseID})
	if err != nil {
		return 0, mongoutil.Wrap("enrollments.DeleteForCourse", "", err)
	}
	return res.DeletedCount, nil
}
