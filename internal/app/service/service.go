// internal/app/service/service.go
//
// Package service holds the application operations the HTTP features and the
// admin CLI share. It composes the stores with the access engine, the progress
// engine, the last-admin guard and the audit logger. Nothing here knows about
// HTTP; callers pass the Actor the identity provider reported.
package service

import (
	"time"

	"github.com/dalemusser/coursehub/internal/app/policy/adminpolicy"
	"github.com/dalemusser/coursehub/internal/app/policy/coursepolicy"
	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/app/system/auditlog"
	"github.com/dalemusser/coursehub/internal/app/system/progress"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"go.uber.org/zap"
)

// System is the actor used by the CLI and startup tasks. It has no id, so the
// self-action checks of the admin guard do not apply to it.
var System = models.Actor{Role: models.RoleAdmin}

type Service struct {
	repos    repo.Repos
	access   *coursepolicy.Engine
	progress *progress.Engine
	admins   *adminpolicy.Guard
	audit    *auditlog.Logger
	log      *zap.Logger
	now      func() time.Time
}

// New builds a Service over r. audit may be nil.
func New(r repo.Repos, audit *auditlog.Logger, logger *zap.Logger) *Service {
	if r.Tx == nil {
		r.Tx = repo.NoTx{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repos:    r,
		access:   coursepolicy.New(r.Enrollments),
		progress: progress.New(r),
		admins:   adminpolicy.New(r.Users),
		audit:    audit,
		log:      logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Access exposes the access engine for callers that only need the predicate.
func (s *Service) Access() *coursepolicy.Engine { return s.access }

// Progress exposes the aggregation engine.
func (s *Service) Progress() *progress.Engine { return s.progress }

func requireSignedIn(op string, a models.Actor) error {
	if !a.SignedIn() && a != System {
		return errs.E(op, errs.ErrForbidden, "sign in required")
	}
	return nil
}

func requireStaff(op string, a models.Actor) error {
	if !a.IsStaff() {
		return errs.E(op, errs.ErrForbidden, "leaders and admins only")
	}
	return nil
}

func requireAdmin(op string, a models.Actor) error {
	if !a.IsAdmin() {
		return errs.E(op, errs.ErrForbidden, "admins only")
	}
	return nil
}
