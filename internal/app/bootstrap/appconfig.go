// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// Store backends.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration; ports, TLS, logging level
// and CORS stay in WAFFLE's CoreConfig.
type AppConfig struct {
	// StoreBackend selects the repositories: "mongo" or "postgres".
	StoreBackend string

	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Postgres connection configuration (only used if StoreBackend is "postgres")
	PostgresURL      string
	PostgresMaxConns int32

	// Redis backs the access request limiter when set; blank keeps it in memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Session cookie issued by the identity provider
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: coursehub-session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration

	// Audit logging: "all" (db+log), "db", "log" or "off"
	AuditLogAdmin    string
	AuditLogLearner  string
	AuditLogSecurity string

	// AuditRetention is the default window for coursehubctl prune-audit.
	AuditRetention time.Duration

	// Public access request throttle, per client IP
	AccessRequestLimit  int
	AccessRequestWindow time.Duration

	// Admin bootstrap
	AdminEmail    string // ensured to exist with role ADMIN at startup
	AdminPassword string // used only when the admin must be created
}
