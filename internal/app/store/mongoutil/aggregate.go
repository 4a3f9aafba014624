package mongoutil

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CountBy groups the documents matching match by field (a "$path") and
// returns the count per key.
func CountBy(ctx context.Context, c *mongo.Collection, op string, match bson.M, field string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": field, "n": bson.M{"$sum": 1}}}},
	}
	return GroupCounts(ctx, c, op, pipeline)
}

// GroupCounts runs a pipeline whose output rows are {_id: string, n: int}.
func GroupCounts(ctx context.Context, c *mongo.Collection, op string, pipeline mongo.Pipeline) (map[string]int64, error) {
	cur, err := c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, Wrap(op, "", err)
	}
	defer cur.Close(ctx)

	out := map[string]int64{}
	for cur.Next(ctx) {
		var row struct {
			ID string `bson:"_id"`
			N  int64  `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, Wrap(op, "", err)
		}
		out[row.ID] = row.N
	}
	return out, Wrap(op, "", cur.Err())
}
