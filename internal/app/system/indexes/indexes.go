// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll runs at startup and from `coursehubctl migrate`. Every set is
idempotent; problems are collected so one bad collection does not hide another.

The unique indexes here are what make enroll and mark-complete safe to call
concurrently: both are upserts on these keys.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	sets := []struct {
		coll   string
		models []mongo.IndexModel
	}{
		{"users", userIndexes()},
		{"courses", courseIndexes()},
		{"sessions", sessionIndexes()},
		{"enrollments", enrollmentIndexes()},
		{"completions", completionIndexes()},
		{"access_requests", accessRequestIndexes()},
		{"audit_events", auditIndexes()},
	}

	var problems []string
	for _, s := range sets {
		if err := ensureIndexSet(ctx, db.Collection(s.coll), s.models); err != nil {
			problems = append(problems, s.coll+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconciliation                                                              */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolOf(b *bool) bool { return b != nil && *b }

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	return strings.Contains(err.Error(), "E11000")
}

// IndexOptionsConflict: same keys already indexed under another name or options.
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	out := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return out
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()), zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out
}

// replace drops the index named old and creates m in its place.
func replace(ctx context.Context, coll *mongo.Collection, old string, m mongo.IndexModel) error {
	if _, err := coll.Indexes().DropOne(ctx, old); err != nil {
		return fmt.Errorf("drop %s: %w", old, err)
	}
	_, err := coll.Indexes().CreateOne(ctx, m)
	return err
}

func describeCreateErr(coll *mongo.Collection, name string, unique bool, err error) string {
	if unique && isDuplicateKeyErr(err) {
		return fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name)
	}
	return fmt.Sprintf("%s(%s): %v", coll.Name(), name, err)
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var name string
		var uniqueOpt *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			uniqueOpt = m.Options.Unique
		}
		unique := boolOf(uniqueOpt)
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique))

		ex, found := listExisting(ctx, coll)[sig]
		switch {
		case found && boolOf(ex.Unique) == unique && (name == "" || ex.Name == name):
			log.Debug("reusing existing index")
			continue

		case found:
			// Same keys, different name or uniqueness.
			if err := replace(ctx, coll, ex.Name, m); err != nil {
				log.Warn("index replace failed", zap.String("existing", ex.Name), zap.Error(err))
				errs = append(errs, describeCreateErr(coll, name, unique, err))
				continue
			}
			log.Info("index replaced", zap.String("existing", ex.Name), zap.Duration("took", time.Since(start)))
			continue
		}

		_, err := coll.Indexes().CreateOne(ctx, m)
		if isOptionsConflictErr(err) {
			if ex, ok := listExisting(ctx, coll)[sig]; ok {
				err = replace(ctx, coll, ex.Name, m)
			}
		}
		if err != nil {
			log.Warn("index ensure failed", zap.Duration("took", time.Since(start)), zap.Error(err))
			errs = append(errs, describeCreateErr(coll, name, unique, err))
			continue
		}
		log.Info("index ensured", zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection index sets                                                       */
/* -------------------------------------------------------------------------- */

func userIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		// admin list: newest first
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_users_createdat_id"),
		},
		// last-admin guard counts by role
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index().SetName("idx_users_role"),
		},
	}
}

func courseIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_courses_slug"),
		},
		// catalog: published, by title
		{
			Keys:    bson.D{{Key: "is_published", Value: 1}, {Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_courses_published_titleci_id"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_courses_createdat"),
		},
	}
}

func sessionIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "course_id", Value: 1}, {Key: "index", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_sessions_course_index"),
		},
	}
}

func enrollmentIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "course_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_enrollments_user_course"),
		},
		// grid and catalog counts per course and status
		{
			Keys:    bson.D{{Key: "course_id", Value: 1}, {Key: "status", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_enrollments_course_status_user"),
		},
	}
}

func completionIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_completions_user_session"),
		},
		// grid lookups and cascade deletes by session
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_completions_session_user"),
		},
	}
}

func accessRequestIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_accessrequests_status_createdat"),
		},
		{
			Keys:    bson.D{{Key: "course_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_accessrequests_course_createdat"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_accessrequests_email"),
		},
	}
}

func auditIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_category_event_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_user_timestamp"),
		},
	}
}
