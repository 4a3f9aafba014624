// Package retention removes audit events that have outlived the configured
// retention window. It runs on demand (coursehubctl prune-audit); schedule it
// externally when needed.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// AuditPruner deletes audit events older than MaxAge.
type AuditPruner struct {
	store  repo.AuditStore
	log    *zap.Logger
	maxAge time.Duration
	now    func() time.Time
}

// NewAuditPruner creates the pruner.
//
// Parameters:
//   - store: the audit store to prune
//   - logger: zap logger for logging
//   - maxAge: how long events are kept (e.g., 90 days)
func NewAuditPruner(store repo.AuditStore, logger *zap.Logger, maxAge time.Duration) *AuditPruner {
	return &AuditPruner{
		store:  store,
		log:    logger,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Cutoff is the oldest timestamp that survives a prune.
func (p *AuditPruner) Cutoff() time.Time {
	return p.now().UTC().Add(-p.maxAge)
}

// Prune deletes events older than the retention window and reports how many
// were removed.
func (p *AuditPruner) Prune(ctx context.Context) (int64, error) {
	if p.maxAge <= 0 {
		return 0, fmt.Errorf("retention window must be positive, got %s", p.maxAge)
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Batch())
	defer cancel()

	cutoff := p.Cutoff()
	count, err := p.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		p.log.Error("failed to prune audit events", zap.Time("cutoff", cutoff), zap.Error(err))
		return 0, err
	}
	p.log.Info("pruned audit events", zap.Int64("count", count), zap.Time("cutoff", cutoff))
	return count, nil
}
