// Package mongostore assembles the MongoDB implementations of the repo
// contracts.
package mongostore

import (
	"context"

	requeststore "github.com/dalemusser/coursehub/internal/app/store/accessrequests"
	"github.com/dalemusser/coursehub/internal/app/store/audit"
	completionstore "github.com/dalemusser/coursehub/internal/app/store/completions"
	coursestore "github.com/dalemusser/coursehub/internal/app/store/courses"
	enrollmentstore "github.com/dalemusser/coursehub/internal/app/store/enrollments"
	"github.com/dalemusser/coursehub/internal/app/store/queries/progressqueries"
	"github.com/dalemusser/coursehub/internal/app/store/repo"
	sessionstore "github.com/dalemusser/coursehub/internal/app/store/sessions"
	userstore "github.com/dalemusser/coursehub/internal/app/store/users"
	"github.com/dalemusser/coursehub/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type pinger struct{ c *mongo.Client }

func (p pinger) Ping(ctx context.Context) error { return p.c.Ping(ctx, readpref.Primary()) }

// NewRepos wires every store to db.
func NewRepos(db *mongo.Database) repo.Repos {
	return repo.Repos{
		Users:       userstore.New(db),
		Courses:     coursestore.New(db),
		Sessions:    sessionstore.New(db),
		Enrollments: enrollmentstore.New(db),
		Completions: completionstore.New(db),
		Progress:    progressqueries.New(db),
		Requests:    requeststore.New(db),
		Audit:       audit.New(db),
		Tx:          txn.New(db.Client()),
		Pinger:      pinger{c: db.Client()},
	}
}
