// internal/app/store/completions/completionstore.go
package completionstore

import (
	"context"
	"time"

	"github.com/dalemusser/coursehub/internal/app/store/mongoutil"
	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store keeps one row per (user, session). It reads sessions to scope
// per-course counts; completions carry no course id of their own.
type Store struct {
	c        *mongo.Collection
	sessions *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("completions"),
		sessions: db.Collection("sessions"),
	}
}

var _ repo.Completions = (*Store)(nil)

func (s *Store) Exists(ctx context.Context, userID, sessionID string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"user_id": userID, "session_id": sessionID}, options.Count().SetLimit(1))
	if err != nil {
		return false, mongoutil.Wrap("completions.Exists", "", err)
	}
	return n > 0, nil
}

// Upsert marks the session done. Repeated and concurrent calls leave one row;
// the losing insert of a race is a duplicate-key no-op.
func (s *Store) Upsert(ctx context.Context, userID, sessionID string) error {
	if userID == "" || sessionID == "" {
		return errs.E("completions.Upsert", errs.ErrInvalid, "user and session are required")
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID, "session_id": sessionID},
		bson.M{"$setOnInsert": bson.M{
			"_id":          uuid.NewString(),
			"completed_at": time.Now().UTC(),
		}},
		options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return mongoutil.Wrap("completions.Upsert", "", err)
}

func (s *Store) sessionIDs(ctx context.Context, op, courseID string) ([]string, error) {
	vals, err := s.sessions.Distinct(ctx, "_id", bson.M{"course_id": courseID})
	if err != nil {
		return nil, mongoutil.Wrap(op, "", err)
	}
	ids := make([]string, 0, len(vals))
	for _, v := range vals {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// CountForCourse counts completions whose session currently belongs to the
// course. Rows pointing at deleted sessions never match.
func (s *Store) CountForCourse(ctx context.Context, userID, courseID string) (int64, error) {
	ids, err := s.sessionIDs(ctx, "completions.CountForCourse", courseID)
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	n, err := s.c.CountDocuments(ctx, bson.M{"user_id": userID, "session_id": bson.M{"$in": ids}})
	return n, mongoutil.Wrap("completions.CountForCourse", "", err)
}

func (s *Store) CountByUsers(ctx context.Context, userIDs []string) (map[string]int64, error) {
	if len(userIDs) == 0 {
		return map[string]int64{}, nil
	}
	return mongoutil.CountBy(ctx, s.c, "completions.CountByUsers",
		bson.M{"user_id": bson.M{"$in": userIDs}}, "$user_id")
}

func (s *Store) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, mongoutil.Wrap("completions.DeleteAllForUser", "", err)
	}
	return res.DeletedCount, nil
}

func (s *Store) DeleteForSessions(ctx context.Context, sessionIDs []string) (int64, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"session_id": bson.M{"$in": sessionIDs}})
	if err != nil {
		return 0, mongoutil.Wrap("completions.DeleteForSessions", "", err)
	}
	return res.DeletedCount, nil
}
