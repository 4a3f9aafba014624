// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/coursehub/internal/app/store/pgstore"
	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app. Exactly one of
// the Mongo pair and Postgres is set, depending on the configured backend;
// Repos is built over whichever it is.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Postgres *pgstore.Connection

	// Redis is nil unless redis_addr is configured.
	Redis *redis.Client

	Repos repo.Repos
}
