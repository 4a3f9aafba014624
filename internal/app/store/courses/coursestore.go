// internal/app/store/courses/coursestore.go
package coursestore

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/coursehub/internal/app/store/mongoutil"
	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/app/system/search"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	msgNotFound  = "course not found"
	msgDuplicate = "a course with this slug already exists"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("courses")}
}

var _ repo.Courses = (*Store)(nil)

func normalize(c *models.Course) error {
	c.Slug = strings.ToLower(strings.TrimSpace(c.Slug))
	c.Title = strings.TrimSpace(c.Title)
	c.TitleCI = text.Fold(c.Title)
	if !models.ValidSlug(c.Slug) {
		return errs.E("courses.normalize", errs.ErrInvalid, "slug must be lower-case letters, digits and dashes")
	}
	if c.Title == "" {
		return errs.E("courses.normalize", errs.ErrInvalid, "title is required")
	}
	return nil
}

func (s *Store) Create(ctx context.Context, c models.Course) (models.Course, error) {
	if err := normalize(&c); err != nil {
		return models.Course{}, err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Course{}, mongoutil.Wrap("courses.Create", msgDuplicate, err)
	}
	return c, nil
}

// UpsertBySlug creates or refreshes the course identified by c.Slug.
func (s *Store) UpsertBySlug(ctx context.Context, c models.Course) (models.Course, error) {
	if err := normalize(&c); err != nil {
		return models.Course{}, err
	}
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"title":        c.Title,
			"title_ci":     c.TitleCI,
			"summary":      c.Summary,
			"thumbnail":    c.Thumbnail,
			"is_published": c.Published,
			"updated_at":   now,
		},
		"$setOnInsert": bson.M{
			"_id":        uuid.NewString(),
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var out models.Course
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"slug": c.Slug}, update, opts).Decode(&out); err != nil {
		return models.Course{}, mongoutil.Wrap("courses.UpsertBySlug", msgDuplicate, err)
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*models.Course, error) {
	var c models.Course
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, mongoutil.Wrap("courses.GetByID", msgNotFound, err)
	}
	return &c, nil
}

func (s *Store) GetBySlug(ctx context.Context, slug string) (*models.Course, error) {
	var c models.Course
	if err := s.c.FindOne(ctx, bson.M{"slug": strings.ToLower(strings.TrimSpace(slug))}).Decode(&c); err != nil {
		return nil, mongoutil.Wrap("courses.GetBySlug", msgNotFound, err)
	}
	return &c, nil
}

func (s *Store) find(ctx context.Context, op string, filter bson.M, sort bson.D) ([]models.Course, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, mongoutil.Wrap(op, "", err)
	}
	defer cur.Close(ctx)
	out := []models.Course{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, mongoutil.Wrap(op, "", err)
	}
	return out, nil
}

// ListPublished returns the catalog ordered by title.
func (s *Store) ListPublished(ctx context.Context) ([]models.Course, error) {
	return s.find(ctx, "courses.ListPublished",
		bson.M{"is_published": true},
		bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}})
}

// ListAll returns every course, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Course, error) {
	return s.find(ctx, "courses.ListAll", bson.M{},
		bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
}

func (s *Store) ListByIDs(ctx context.Context, ids []string) ([]models.Course, error) {
	if len(ids) == 0 {
		return []models.Course{}, nil
	}
	return s.find(ctx, "courses.ListByIDs",
		bson.M{"_id": bson.M{"$in": ids}},
		bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}})
}

func (s *Store) SearchIDs(ctx context.Context, q string) ([]string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	filter := bson.M{"title": search.Contains(q)}
	cur, err := s.c.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, mongoutil.Wrap("courses.SearchIDs", "", err)
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var row struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, mongoutil.Wrap("courses.SearchIDs", "", err)
		}
		ids = append(ids, row.ID)
	}
	return ids, mongoutil.Wrap("courses.SearchIDs", "", cur.Err())
}

func (s *Store) SetPublished(ctx context.Context, id string, published bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_published": published,
		"updated_at":   time.Now().UTC(),
	}})
	if err != nil {
		return mongoutil.Wrap("courses.SetPublished", "", err)
	}
	if res.MatchedCount == 0 {
		return errs.E("courses.SetPublished", errs.ErrNotFound, msgNotFound)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mongoutil.Wrap("courses.Delete", "", err)
	}
	if res.DeletedCount == 0 {
		return errs.E("courses.Delete", errs.ErrNotFound, msgNotFound)
	}
	return nil
}
