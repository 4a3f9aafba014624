package testutil

import (
	"github.com/dalemusser/coursehub/internal/app/service"
	"github.com/dalemusser/coursehub/internal/app/system/auditlog"
	"github.com/dalemusser/coursehub/internal/testutil/memstore"
	"go.uber.org/zap"
)

// NewMemService returns a service over a fresh in-memory store with audit
// events recorded in that store.
func NewMemService() (*memstore.DB, *service.Service) {
	db := memstore.New()
	r := db.Repos()
	return db, service.New(r, auditlog.New(r.Audit, zap.NewNop(), auditlog.Config{}), zap.NewNop())
}
