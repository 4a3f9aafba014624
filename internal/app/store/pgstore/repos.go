package pgstore

import "github.com/dalemusser/coursehub/internal/app/store/repo"

// NewRepos wires every store to conn.
func NewRepos(conn *Connection) repo.Repos {
	return repo.Repos{
		Users:       &Users{c: conn},
		Courses:     &Courses{c: conn},
		Sessions:    &Sessions{c: conn},
		Enrollments: &Enrollments{c: conn},
		Completions: &Completions{c: conn},
		Progress:    &Progress{c: conn},
		Requests:    &AccessRequests{c: conn},
		Audit:       &AuditEvents{c: conn},
		Tx:          conn,
		Pinger:      conn,
	}
}
