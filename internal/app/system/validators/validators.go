// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/coursehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the collections coursehub uses and attaches a JSON-Schema
// validator to each. Deployments without collMod support (some DocumentDB
// versions) are logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for _, c := range []struct {
		name   string
		schema bson.M
	}{
		{"users", usersSchema()},
		{"courses", coursesSchema()},
		{"sessions", sessionsSchema()},
		{"enrollments", enrollmentsSchema()},
		{"completions", completionsSchema()},
		{"access_requests", accessRequestsSchema()},
		{"audit_events", nil},
	} {
		if err := ensureCollection(ctx, db, c.name); err != nil {
			problems = append(problems, c.name+": "+err.Error())
			continue
		}
		if c.schema == nil {
			continue
		}
		if err := setValidator(ctx, db, c.name, c.schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", c.name))
				continue
			}
			problems = append(problems, c.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------------- collections ---------------------------- */

func ensureCollection(ctx context.Context, db *mongo.Database, name string) error {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err == nil && len(names) > 0 {
		zap.L().Debug("collection exists", zap.String("collection", name))
		return nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ---------------------------- error helpers ---------------------------- */

func commandErr(err error, code int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandErr(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandErr(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandErr(err, 115, "not implemented", "not supported")
}

/* ---------------------------- schemas ---------------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func enumOf[T ~string](vals ...T) bson.M {
	a := bson.A{}
	for _, v := range vals {
		a = append(a, string(v))
	}
	return bson.M{"enum": a}
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "email", "role"},
			"properties": bson.M{
				"_id":           nonBlank,
				"name":          bson.M{"bsonType": "string"},
				"email":         nonBlank,
				"password_hash": bson.M{"bsonType": "string"},
				"role":          enumOf(models.Roles...),
			},
		},
	}
}

func coursesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "slug", "title", "is_published"},
			"properties": bson.M{
				"_id":          nonBlank,
				"slug":         bson.M{"bsonType": "string", "pattern": "^[a-z0-9]+(-[a-z0-9]+)*$"},
				"title":        nonBlank,
				"is_published": bson.M{"bsonType": "bool"},
			},
		},
	}
}

func sessionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "course_id", "index", "title"},
			"properties": bson.M{
				"_id":       nonBlank,
				"course_id": nonBlank,
				"index":     bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
				"title":     bson.M{"bsonType": "string"},
			},
		},
	}
}

func enrollmentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "user_id", "course_id", "status"},
			"properties": bson.M{
				"_id":       nonBlank,
				"user_id":   nonBlank,
				"course_id": nonBlank,
				"status":    enumOf(models.EnrollmentActive, models.EnrollmentInactive),
			},
		},
	}
}

func completionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "user_id", "session_id", "completed_at"},
			"properties": bson.M{
				"_id":          nonBlank,
				"user_id":      nonBlank,
				"session_id":   nonBlank,
				"completed_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func accessRequestsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_id", "course_id", "email", "status", "created_at"},
			"properties": bson.M{
				"_id":        nonBlank,
				"course_id":  nonBlank,
				"email":      nonBlank,
				"status":     enumOf(models.RequestPending, models.RequestApproved, models.RequestRejected),
				"decided_at": bson.M{"bsonType": "date"},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}
