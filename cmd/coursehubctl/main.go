// Command coursehubctl runs administrative tasks against the configured
// store backend. It reads the same configuration as the server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dalemusser/coursehub/internal/app/bootstrap"
	"github.com/dalemusser/coursehub/internal/app/service"
	"github.com/dalemusser/coursehub/internal/app/system/auditlog"
	"go.uber.org/zap"
)

func main() {
	if err := run(context.Background(), os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		printUsage(os.Stdout)
		return errHelp
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Subcommand flags belong to the flag sets below, so configuration comes
	// from config files and COURSEHUB_* variables only.
	os.Args = args[:1]
	coreCfg, appCfg, err := bootstrap.LoadConfig(logger)
	if err != nil {
		return err
	}
	if err := bootstrap.ValidateConfig(coreCfg, appCfg, logger); err != nil {
		return err
	}

	deps, err := bootstrap.ConnectDB(ctx, coreCfg, appCfg, logger)
	if err != nil {
		return err
	}
	defer bootstrap.Shutdown(context.Background(), coreCfg, appCfg, deps, logger)

	audit := auditlog.New(deps.Repos.Audit, logger, auditlog.Config{
		Admin:    appCfg.AuditLogAdmin,
		Learner:  appCfg.AuditLogLearner,
		Security: appCfg.AuditLogSecurity,
	})
	cli := &commandLine{
		svc: service.New(deps.Repos, audit, logger),
		out: os.Stdout,
		migrate: func(ctx context.Context) error {
			return bootstrap.EnsureSchema(ctx, coreCfg, appCfg, deps, logger)
		},
		readPassword: readTerminalPassword,
		audit:        deps.Repos.Audit,
		retention:    appCfg.AuditRetention,
		log:          logger,
	}
	return cli.run(ctx, args)
}
