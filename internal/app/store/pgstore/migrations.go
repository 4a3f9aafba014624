package pgstore

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Migration is one forward schema step.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
}

// Migrations returns the embedded schema history in order.
func Migrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_core", UpSQL: migration001Up},
		{Version: 2, Name: "create_access_requests_and_audit", UpSQL: migration002Up},
	}
}

// Migrator applies pending migrations, each in its own transaction, and
// records them in schema_migrations.
type Migrator struct {
	conn       *Connection
	migrations []Migration
}

func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{conn: conn, migrations: Migrations()}
}

const migrationTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version    INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

func (m *Migrator) applied(ctx context.Context) (map[int]time.Time, error) {
	rows, err := m.conn.pool.Query(ctx, `SELECT version, applied_at FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[int]time.Time{}
	for rows.Next() {
		var v int
		var at time.Time
		if err := rows.Scan(&v, &at); err != nil {
			return nil, err
		}
		out[v] = at
	}
	return out, rows.Err()
}

// Migrate applies every migration not yet recorded and returns how many ran.
func (m *Migrator) Migrate(ctx context.Context) (int, error) {
	if _, err := m.conn.pool.Exec(ctx, migrationTable); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}
	done, err := m.applied(ctx)
	if err != nil {
		return 0, fmt.Errorf("read schema_migrations: %w", err)
	}

	ran := 0
	for _, mig := range m.migrations {
		if _, ok := done[mig.Version]; ok {
			continue
		}
		err := m.conn.WithinTx(ctx, func(ctx context.Context) error {
			q := m.conn.q(ctx)
			if _, err := q.Exec(ctx, mig.UpSQL); err != nil {
				return err
			}
			_, err := q.Exec(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return ran, fmt.Errorf("migration %03d_%s: %w", mig.Version, mig.Name, err)
		}
		zap.L().Info("applied migration", zap.Int("version", mig.Version), zap.String("name", mig.Name))
		ran++
	}
	return ran, nil
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL DEFAULT '',
    email         TEXT NOT NULL,
    password_hash TEXT NOT NULL DEFAULT '',
    role          TEXT NOT NULL DEFAULT 'USER',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT users_email_key UNIQUE (email),
    CONSTRAINT users_role_check CHECK (role IN ('USER', 'LEADER', 'ADMIN'))
);
CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);
CREATE INDEX IF NOT EXISTS idx_users_created ON users(created_at DESC, id);

CREATE TABLE IF NOT EXISTS courses (
    id           TEXT PRIMARY KEY,
    slug         TEXT NOT NULL,
    title        TEXT NOT NULL,
    summary      TEXT NOT NULL DEFAULT '',
    thumbnail    TEXT NOT NULL DEFAULT '',
    is_published BOOLEAN NOT NULL DEFAULT FALSE,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT courses_slug_key UNIQUE (slug)
);
CREATE INDEX IF NOT EXISTS idx_courses_published_title ON courses(is_published, lower(title));

CREATE TABLE IF NOT EXISTS sessions (
    id            TEXT PRIMARY KEY,
    course_id     TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
    idx           INTEGER NOT NULL,
    title         TEXT NOT NULL DEFAULT '',
    summary       TEXT NOT NULL DEFAULT '',
    video_url     TEXT NOT NULL DEFAULT '',
    captions_url  TEXT NOT NULL DEFAULT '',
    transcript    TEXT NOT NULL DEFAULT '',
    guide_url     TEXT NOT NULL DEFAULT '',
    guide_pdf_url TEXT NOT NULL DEFAULT '',
    thumbnail     TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT sessions_course_idx_key UNIQUE (course_id, idx),
    CONSTRAINT sessions_idx_check CHECK (idx >= 1)
);

CREATE TABLE IF NOT EXISTS enrollments (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    course_id  TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
    status     TEXT NOT NULL DEFAULT 'ACTIVE',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT enrollments_user_course_key UNIQUE (user_id, course_id)
);
CREATE INDEX IF NOT EXISTS idx_enrollments_course_status ON enrollments(course_id, status);

CREATE TABLE IF NOT EXISTS completions (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    session_id   TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    completed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT completions_user_session_key UNIQUE (user_id, session_id)
);
CREATE INDEX IF NOT EXISTS idx_completions_session ON completions(session_id);
`

const migration002Up = `
CREATE TABLE IF NOT EXISTS access_requests (
    id         TEXT PRIMARY KEY,
    course_id  TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
    name       TEXT NOT NULL DEFAULT '',
    email      TEXT NOT NULL,
    message    TEXT NOT NULL DEFAULT '',
    status     TEXT NOT NULL DEFAULT 'PENDING',
    decided_by TEXT,
    decided_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT access_requests_status_check CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED'))
);
CREATE INDEX IF NOT EXISTS idx_access_requests_created ON access_requests(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_access_requests_course_status ON access_requests(course_id, status);
CREATE INDEX IF NOT EXISTS idx_access_requests_email ON access_requests(email);

CREATE TABLE IF NOT EXISTS audit_events (
    id             TEXT PRIMARY KEY,
    ts             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    category       TEXT NOT NULL,
    event_type     TEXT NOT NULL,
    user_id        TEXT NOT NULL DEFAULT '',
    actor_id       TEXT NOT NULL DEFAULT '',
    course_id      TEXT NOT NULL DEFAULT '',
    ip             TEXT NOT NULL DEFAULT '',
    user_agent     TEXT NOT NULL DEFAULT '',
    success        BOOLEAN NOT NULL DEFAULT TRUE,
    failure_reason TEXT NOT NULL DEFAULT '',
    details        JSONB
);
CREATE INDEX IF NOT EXISTS idx_audit_events_ts ON audit_events(ts DESC);
CREATE INDEX IF NOT EXISTS idx_audit_events_category_ts ON audit_events(category, ts DESC);
`
