// internal/app/bootstrap/fetcher.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/coursehub/internal/app/store/repo"
	userstore "github.com/dalemusser/coursehub/internal/app/store/users"
	"github.com/dalemusser/coursehub/internal/app/system/auth"
	"github.com/dalemusser/coursehub/internal/app/system/timeouts"
)

// repoFetcher implements auth.UserFetcher over any Users store. The Mongo
// backend uses userstore.Fetcher instead, which projects only the session
// fields.
type repoFetcher struct {
	users repo.Users
}

func (f repoFetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	u, err := f.users.GetByID(ctx, userID)
	if err != nil {
		return nil
	}
	return &auth.SessionUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func userFetcher(deps DBDeps) auth.UserFetcher {
	if deps.MongoDatabase != nil {
		return userstore.NewFetcher(deps.MongoDatabase)
	}
	return repoFetcher{users: deps.Repos.Users}
}
