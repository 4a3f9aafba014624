// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/coursehub/internal/app/service"
	"github.com/dalemusser/coursehub/internal/app/system/auditlog"
	"github.com/dalemusser/coursehub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// newAuditLogger returns the audit logger over the backend's audit store.
func newAuditLogger(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *auditlog.Logger {
	return auditlog.New(deps.Repos.Audit, logger, auditlog.Config{
		Admin:    appCfg.AuditLogAdmin,
		Learner:  appCfg.AuditLogLearner,
		Security: appCfg.AuditLogSecurity,
	})
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// It applies COURSEHUB_TIMEOUT_* overrides and, when admin_email is configured, makes
// sure that account exists with the ADMIN role.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	applied, invalid := timeouts.ConfigureFromEnv()
	if len(invalid) > 0 {
		logger.Warn("ignored invalid timeout overrides", zap.Strings("vars", invalid))
	}
	if applied > 0 {
		cur := timeouts.Current()
		logger.Info("timeouts configured",
			zap.Duration("ping", cur.Ping),
			zap.Duration("short", cur.Short),
			zap.Duration("medium", cur.Medium),
			zap.Duration("long", cur.Long),
			zap.Duration("batch", cur.Batch),
		)
	}
	return ensureAdmin(ctx, appCfg, deps, logger)
}

func ensureAdmin(ctx context.Context, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminEmail == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	svc := service.New(deps.Repos, newAuditLogger(appCfg, deps, logger), logger)
	changed, err := svc.EnsureAdmin(ctx, appCfg.AdminEmail, appCfg.AdminPassword)
	if err != nil {
		logger.Error("ensure admin failed", zap.String("email", appCfg.AdminEmail), zap.Error(err))
		return err
	}
	if changed {
		logger.Info("startup admin ensured", zap.String("email", appCfg.AdminEmail))
	}
	return nil
}
