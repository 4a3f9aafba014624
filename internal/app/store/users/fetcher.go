package userstore

import (
	"context"

	"github.com/dalemusser/coursehub/internal/app/system/auth"
	"github.com/dalemusser/coursehub/internal/app/system/timeouts"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection("users")}
}

// FetchUser returns nil if the user is not found or any error occurs.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{"_id": 1, "name": 1, "email": 1, "role": 1})
	if err := f.users.FindOne(ctx, bson.M{"_id": userID}, proj).Decode(&u); err != nil {
		return nil
	}
	role, ok := models.ParseRole(string(u.Role))
	if !ok {
		return nil
	}
	return &auth.SessionUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: role}
}
