// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for CourseHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: COURSEHUB_MONGO_URI, COURSEHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "store_backend", Default: BackendMongo, Desc: "Store backend: 'mongo' or 'postgres'"},

	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "coursehub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "postgres_url", Default: "", Desc: "Postgres connection URL (required for the postgres backend)"},
	{Name: "postgres_max_conns", Default: 10, Desc: "Postgres max pool connections"},

	{Name: "redis_addr", Default: "", Desc: "Redis address for the access request limiter (blank keeps it in memory)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "coursehub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime"},

	// Audit logging settings
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_learner", Default: "all", Desc: "Learner event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_security", Default: "all", Desc: "Security event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_retention", Default: "2160h", Desc: "Age past which coursehubctl prune-audit deletes audit events"},

	{Name: "access_request_limit", Default: 5, Desc: "Access requests allowed per client IP per window"},
	{Name: "access_request_window", Default: "10m", Desc: "Access request throttle window (e.g., 10m, 1h)"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of a user to create or promote to ADMIN on startup"},
	{Name: "admin_password", Default: "", Desc: "Password used when the startup admin must be created"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config.yaml/json/toml
// files, environment variables (WAFFLE_* for core, COURSEHUB_* for app) and
// command-line flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "COURSEHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StoreBackend: strings.ToLower(strings.TrimSpace(appValues.String("store_backend"))),

		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		PostgresURL:      appValues.String("postgres_url"),
		PostgresMaxConns: int32(appValues.Int("postgres_max_conns")),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		AuditLogAdmin:    appValues.String("audit_log_admin"),
		AuditLogLearner:  appValues.String("audit_log_learner"),
		AuditLogSecurity: appValues.String("audit_log_security"),

		AuditRetention: appValues.Duration("audit_retention", 90*24*time.Hour),

		AccessRequestLimit:  appValues.Int("access_request_limit"),
		AccessRequestWindow: appValues.Duration("access_request_window", 10*time.Minute),

		AdminEmail:    strings.ToLower(strings.TrimSpace(appValues.String("admin_email"))),
		AdminPassword: appValues.String("admin_password"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The backend's connection settings are checked before any connection is
// attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StoreBackend {
	case BackendMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
	case BackendPostgres:
		if strings.TrimSpace(appCfg.PostgresURL) == "" {
			return fmt.Errorf("store_backend postgres requires postgres_url")
		}
	default:
		return fmt.Errorf("unknown store_backend %q (want mongo or postgres)", appCfg.StoreBackend)
	}

	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.SessionKey) < 32 {
		return fmt.Errorf("session_key must be at least 32 characters in prod")
	}
	if appCfg.AccessRequestLimit < 1 {
		return fmt.Errorf("access_request_limit must be at least 1")
	}
	for key, v := range map[string]string{
		"audit_log_admin":    appCfg.AuditLogAdmin,
		"audit_log_learner":  appCfg.AuditLogLearner,
		"audit_log_security": appCfg.AuditLogSecurity,
	} {
		switch v {
		case "", "all", "db", "log", "off":
		default:
			return fmt.Errorf("%s must be all, db, log or off (got %q)", key, v)
		}
	}
	if appCfg.AuditRetention < 0 {
		return fmt.Errorf("audit_retention must not be negative")
	}
	if appCfg.AdminEmail != "" && !strings.Contains(appCfg.AdminEmail, "@") {
		return fmt.Errorf("admin_email %q is not an e-mail address", appCfg.AdminEmail)
	}
	return nil
}
