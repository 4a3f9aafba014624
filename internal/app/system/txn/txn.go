// Package txn runs a unit of work inside a MongoDB transaction when the
// deployment supports one, and directly otherwise (standalone servers in dev
// and tests).
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Runner implements repo.Transactor for MongoDB.
type Runner struct {
	client *mongo.Client
}

func New(client *mongo.Client) *Runner {
	return &Runner{client: client}
}

// WithinTx calls fn with a session context. Store calls made with that
// context join the transaction.
func (r *Runner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return Run(ctx, r.client, fn)
}

// Run executes fn in a transaction, retrying fn directly when the server
// rejects transactions.
func Run(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		zap.L().Debug("transactions unsupported; running without", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// IsNotSupported reports whether err means the deployment cannot run
// multi-document transactions (standalone server, old DocumentDB).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263: // IllegalOperation, IllegalOperation (legacy), OperationNotSupportedInTransaction
			return true
		}
	}
	s := strings.ToLower(err.Error())
	has := func(w string) bool { return strings.Contains(s, w) }
	switch {
	case has("transaction") && has("replica set"):
		return true
	case has("session") && has("not supported"):
		return true
	case has("transaction") && has("session"):
		return true
	case has("illegal operation"):
		return true
	}
	return false
}
