// Package timeouts holds the deadlines handlers and the CLI put on store calls.
//
// Values start at the defaults below and can be overridden at startup with
// Configure or ConfigureFromEnv.
//
// Which one to use:
//   - Ping: /health and startup connectivity checks
//   - Short: single lookups (user by id, course by slug, mark complete)
//   - Medium: lists and page views (catalog, course overview, rosters)
//   - Long: multi-store writes (delete course, delete user, seeding)
//   - Batch: bulk enroll, audit pruning and schema migration
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 60 * time.Second
)

// EnvPrefix is prepended to PING, SHORT, MEDIUM, LONG and BATCH.
const EnvPrefix = "COURSEHUB_TIMEOUT_"

// Config carries overrides; zero fields keep the current value.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Batch  time.Duration
}

func defaults() Config {
	return Config{
		Ping:   DefaultPing,
		Short:  DefaultShort,
		Medium: DefaultMedium,
		Long:   DefaultLong,
		Batch:  DefaultBatch,
	}
}

var (
	mu      sync.RWMutex
	current = defaults()
)

func get(pick func(Config) time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return pick(current)
}

func Ping() time.Duration   { return get(func(c Config) time.Duration { return c.Ping }) }
func Short() time.Duration  { return get(func(c Config) time.Duration { return c.Short }) }
func Medium() time.Duration { return get(func(c Config) time.Duration { return c.Medium }) }
func Long() time.Duration   { return get(func(c Config) time.Duration { return c.Long }) }
func Batch() time.Duration  { return get(func(c Config) time.Duration { return c.Batch }) }

// fields pairs each override slot with its env suffix.
func (c *Config) fields() []struct {
	name string
	d    *time.Duration
} {
	return []struct {
		name string
		d    *time.Duration
	}{
		{"PING", &c.Ping},
		{"SHORT", &c.Short},
		{"MEDIUM", &c.Medium},
		{"LONG", &c.Long},
		{"BATCH", &c.Batch},
	}
}

// Configure applies cfg. Call it during startup, before routes are built.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	dst := current.fields()
	for i, f := range cfg.fields() {
		if *f.d > 0 {
			*dst[i].d = *f.d
		}
	}
}

// Reset restores the defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaults()
}

// ConfigureFromEnv applies COURSEHUB_TIMEOUT_<NAME> values such as "5s" or
// "2m". It returns how many were applied and the names of variables that
// were set but not a positive duration.
func ConfigureFromEnv() (applied int, invalid []string) {
	var cfg Config
	for _, f := range cfg.fields() {
		key := EnvPrefix + f.name
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			invalid = append(invalid, key)
			continue
		}
		*f.d = d
		applied++
	}
	Configure(cfg)
	return applied, invalid
}

// Current returns the values in effect; startup logs them.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// WithTimeout is context.WithTimeout whose cancel logs a warning when the
// deadline was hit, naming operation.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
