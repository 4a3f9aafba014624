// Package pgstore implements the repo contracts on PostgreSQL through pgx.
//
// Stores share one Connection. Calls made with a context produced by
// Connection.WithinTx run on that transaction; all others use the pool.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrConnectionClosed is returned once Close has been called.
var ErrConnectionClosed = errors.New("pgstore: connection pool is closed")

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// Connection wraps the pool.
type Connection struct {
	pool *pgxpool.Pool
}

// Open parses url, applies pool sizing and verifies the server answers.
func Open(ctx context.Context, url string, maxConns int32) (*Connection, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("pgstore: parse database URL: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgstore: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgstore: ping: %w", err)
	}
	return &Connection{pool: pool}, nil
}

func (c *Connection) Pool() *pgxpool.Pool { return c.pool }

func (c *Connection) Close() { c.pool.Close() }

func (c *Connection) Ping(ctx context.Context) error {
	return wrap("ping", "", c.pool.Ping(ctx))
}

// q returns the transaction carried by ctx, or the pool.
func (c *Connection) q(ctx context.Context) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return c.pool
}

// WithinTx runs fn in a read-committed transaction, committing when fn
// returns nil. Nested calls join the outer transaction.
func (c *Connection) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}
	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite})
	if err != nil {
		return wrap("tx.Begin", "", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	return wrap("tx.Commit", "", tx.Commit(ctx))
}
