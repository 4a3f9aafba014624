// internal/app/store/users/userstore.go
package userstore

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
	msgNotFound  = "user not found"
	msgDuplicate = "a user with this email already exists"

	defaultPageSize = 10
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var _ repo.Users = (*Store)(nil)

// Create inserts a new user after normalizing name and e-mail.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Name = strings.TrimSpace(u.Name)
	u.NameCI = text.Fold(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if !u.Role.Valid() {
		return models.User{}, errs.E("users.Create", errs.ErrInvalid, "role must be USER, LEADER or ADMIN")
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		return models.User{}, mongoutil.Wrap("users.Create", msgDuplicate, err)
	}
	return u, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, mongoutil.Wrap("users.GetByID", msgNotFound, err)
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).Decode(&u); err != nil {
		return nil, mongoutil.Wrap("users.GetByEmail", msgNotFound, err)
	}
	return &u, nil
}

// GetByEmails returns the users whose e-mail is in the list. Missing addresses
// are simply absent from the result.
func (s *Store) GetByEmails(ctx context.Context, emails []string) ([]models.User, error) {
	out := []models.User{}
	if len(emails) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"email": bson.M{"$in": emails}})
	if err != nil {
		return nil, mongoutil.Wrap("users.GetByEmails", "", err)
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, &out); err != nil {
		return nil, mongoutil.Wrap("users.GetByEmails", "", err)
	}
	return out, nil
}

func (s *Store) SetRole(ctx context.Context, id string, role models.Role) error {
	if !role.Valid() {
		return errs.E("users.SetRole", errs.ErrInvalid, "role must be USER, LEADER or ADMIN")
	}
	return s.update(ctx, "users.SetRole", id, bson.M{"role": role})
}

func (s *Store) SetPassword(ctx context.Context, id, hash string) error {
	return s.update(ctx, "users.SetPassword", id, bson.M{"password_hash": hash})
}

func (s *Store) update(ctx context.Context, op, id string, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return mongoutil.Wrap(op, "", err)
	}
	if res.MatchedCount == 0 {
		return errs.E(op, errs.ErrNotFound, msgNotFound)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mongoutil.Wrap("users.Delete", "", err)
	}
	if res.DeletedCount == 0 {
		return errs.E("users.Delete", errs.ErrNotFound, msgNotFound)
	}
	return nil
}

func (s *Store) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"role": role})
	return n, mongoutil.Wrap("users.CountByRole", "", err)
}

// List pages users newest first. Q matches email, name or role.
func (s *Store) List(ctx context.Context, f repo.UserFilter) ([]models.User, int64, error) {
	filter := bson.M{}
	if q := strings.TrimSpace(f.Q); q != "" {
		rx := search.Contains(q)
		filter["$or"] = bson.A{
			bson.M{"email": rx},
			bson.M{"name": rx},
			bson.M{"role": rx},
		}
	}

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mongoutil.Wrap("users.List", "", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(f.Offset).
		SetLimit(limit).
		SetProjection(bson.M{"password_hash": 0})

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, mongoutil.Wrap("users.List", "", err)
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, mongoutil.Wrap("users.List", "", err)
	}
	return out, total, nil
}
