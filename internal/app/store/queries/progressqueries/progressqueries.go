// Package progressqueries holds the join-heavy, read-only aggregations behind
// the progress engine. Each query starts from the sessions collection so that
// completions whose session was deleted never count.
package progressqueries

import (
	"context"

	"github.com/dalemusser/coursehub/internal/app/store/mongoutil"
	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Queries struct {
	sessions *mongo.Collection
}

func New(db *mongo.Database) *Queries {
	return &Queries{sessions: db.Collection("sessions")}
}

var _ repo.Progress = (*Queries)(nil)

// CompletedCells counts (session, user) completions in the course where the
// user still holds an ACTIVE enrollment in it.
func (q *Queries) CompletedCells(ctx context.Context, courseID string) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"course_id": courseID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "completions",
			"localField":   "_id",
			"foreignField": "session_id",
			"as":           "done",
		}}},
		{{Key: "$unwind", Value: "$done"}},
		{{Key: "$lookup", Value: bson.M{
			"from": "enrollments",
			"let":  bson.M{"uid": "$done.user_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{
					"course_id": courseID,
					"status":    models.EnrollmentActive,
					"$expr":     bson.M{"$eq": bson.A{"$user_id", "$$uid"}},
				}},
				bson.M{"$limit": 1},
			},
			"as": "enr",
		}}},
		{{Key: "$match", Value: bson.M{"enr": bson.M{"$ne": bson.A{}}}}},
		{{Key: "$group", Value: bson.M{"_id": "$course_id", "n": bson.M{"$sum": 1}}}},
	}

	counts, err := mongoutil.GroupCounts(ctx, q.sessions, "progressqueries.CompletedCells", pipeline)
	if err != nil {
		return 0, err
	}
	return counts[courseID], nil
}

// CompletedByCourse counts the user's completed sessions for each candidate
// course in a single aggregation.
func (q *Queries) CompletedByCourse(ctx context.Context, userID string, courseIDs []string) (map[string]int64, error) {
	if len(courseIDs) == 0 {
		return map[string]int64{}, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"course_id": bson.M{"$in": courseIDs}}}},
		{{Key: "$lookup", Value: bson.M{
			"from": "completions",
			"let":  bson.M{"sid": "$_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{
					"user_id": userID,
					"$expr":   bson.M{"$eq": bson.A{"$session_id", "$$sid"}},
				}},
				bson.M{"$limit": 1},
			},
			"as": "done",
		}}},
		{{Key: "$match", Value: bson.M{"done": bson.M{"$ne": bson.A{}}}}},
		{{Key: "$group", Value: bson.M{"_id": "$course_id", "n": bson.M{"$sum": 1}}}},
	}
	return mongoutil.GroupCounts(ctx, q.sessions, "progressqueries.CompletedByCourse", pipeline)
}
