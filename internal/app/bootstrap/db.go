// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/coursehub/internal/app/store/mongostore"
	"github.com/dalemusser/coursehub/internal/app/store/pgstore"
	"github.com/dalemusser/coursehub/internal/app/system/indexes"
	"github.com/dalemusser/coursehub/internal/app/system/timeouts"
	"github.com/dalemusser/coursehub/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects the configured store backend and, when redis_addr is
// set, the Redis client used by the access request limiter.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	var deps DBDeps

	switch appCfg.StoreBackend {
	case BackendPostgres:
		conn, err := pgstore.Open(ctx, appCfg.PostgresURL, appCfg.PostgresMaxConns)
		if err != nil {
			logger.Error("postgres connect failed", zap.Error(err))
			return DBDeps{}, err
		}
		deps.Postgres = conn
		deps.Repos = pgstore.NewRepos(conn)
		logger.Info("connected to Postgres", zap.Int32("max_conns", appCfg.PostgresMaxConns))

	default:
		client, err := connectMongo(ctx, appCfg)
		if err != nil {
			logger.Error("MongoDB connect failed", zap.Error(err))
			return DBDeps{}, err
		}
		deps.MongoClient = client
		deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
		deps.Repos = mongostore.NewRepos(deps.MongoDatabase)
		logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	}

	if appCfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     appCfg.RedisAddr,
			Password: appCfg.RedisPassword,
			DB:       appCfg.RedisDB,
		})
		pctx, cancel := context.WithTimeout(ctx, timeouts.Ping())
		defer cancel()
		if err := rdb.Ping(pctx).Err(); err != nil {
			// The limiter fails open, so an unreachable Redis is not fatal.
			logger.Warn("redis ping failed; limiter will fail open until it recovers",
				zap.String("addr", appCfg.RedisAddr), zap.Error(err))
		}
		deps.Redis = rdb
	}

	return deps, nil
}

func connectMongo(ctx context.Context, appCfg AppConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	cctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()
	client, err := mongo.Connect(cctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// EnsureSchema applies collection validators and indexes on Mongo, or the
// pending SQL migrations on Postgres.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Batch())
	defer cancel()

	if deps.Postgres != nil {
		n, err := pgstore.NewMigrator(deps.Postgres).Migrate(ctx)
		if err != nil {
			logger.Error("postgres migrations failed", zap.Error(err))
			return err
		}
		logger.Info("postgres schema ready", zap.Int("applied", n))
		return nil
	}

	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("collection validators failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("index setup failed", zap.Error(err))
		return err
	}
	logger.Info("mongo schema ready")
	return nil
}
