// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	admincoursesfeature "github.com/dalemusser/coursehub/internal/app/features/admincourses"
	auditlogfeature "github.com/dalemusser/coursehub/internal/app/features/auditlog"
	catalogfeature "github.com/dalemusser/coursehub/internal/app/features/catalog"
	coursesfeature "github.com/dalemusser/coursehub/internal/app/features/courses"
	enrollmentsfeature "github.com/dalemusser/coursehub/internal/app/features/enrollments"
	errorsfeature "github.com/dalemusser/coursehub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/coursehub/internal/app/features/health"
	programfeature "github.com/dalemusser/coursehub/internal/app/features/program"
	requestsfeature "github.com/dalemusser/coursehub/internal/app/features/requests"
	systemusersfeature "github.com/dalemusser/coursehub/internal/app/features/systemusers"
	userinfofeature "github.com/dalemusser/coursehub/internal/app/features/userinfo"
	"github.com/dalemusser/coursehub/internal/app/service"
	"github.com/dalemusser/coursehub/internal/app/system/auditlog"
	"github.com/dalemusser/coursehub/internal/app/system/auth"
	"github.com/dalemusser/coursehub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Every feature shares one Service built
// over the configured backend's repos.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Role changes and deletions take effect on the next request.
	sessionMgr.SetUserFetcher(userFetcher(deps))

	errLog := errorsfeature.NewErrorLogger(logger)
	audit := newAuditLogger(appCfg, deps, logger)
	svc := service.New(deps.Repos, audit, logger)

	r := chi.NewRouter()
	r.Use(auditlog.Middleware)
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.Repos.Pinger, appCfg.StoreBackend, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	userinfofeature.MountRoutes(r, userinfofeature.NewHandler())

	// Learner surfaces
	catalogHandler := catalogfeature.NewHandler(svc, audit, errLog, logger)
	r.Mount("/catalog", catalogfeature.Routes(catalogHandler, accessLimiter(appCfg, deps, logger)))

	coursesHandler := coursesfeature.NewHandler(svc, errLog, logger)
	r.Mount("/courses", coursesfeature.Routes(coursesHandler, sessionMgr))
	r.Mount("/program", programfeature.Routes())

	// Staff surfaces
	sysUsersHandler := systemusersfeature.NewHandler(svc, errLog, logger)
	r.Mount("/admin/users", systemusersfeature.Routes(sysUsersHandler, sessionMgr))

	enrollHandler := enrollmentsfeature.NewHandler(svc, errLog, logger)
	r.Mount("/admin/enroll", enrollmentsfeature.Routes(enrollHandler, sessionMgr))

	requestsHandler := requestsfeature.NewHandler(svc, errLog, logger)
	r.Mount("/admin/requests", requestsfeature.Routes(requestsHandler, sessionMgr))

	adminCoursesHandler := admincoursesfeature.NewHandler(svc, errLog, logger)
	r.Mount("/admin/courses", admincoursesfeature.Routes(adminCoursesHandler, sessionMgr))

	auditHandler := auditlogfeature.NewHandler(svc, errLog, logger)
	r.Mount("/admin/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	return r, nil
}

// accessLimiter throttles catalog access requests. Redis shares the window
// across instances; without it each process keeps its own.
func accessLimiter(appCfg AppConfig, deps DBDeps, logger *zap.Logger) ratelimit.Allower {
	if deps.Redis != nil {
		return ratelimit.NewRedis(deps.Redis, "coursehub:access:", appCfg.AccessRequestLimit, appCfg.AccessRequestWindow)
	}
	logger.Info("redis not configured; access request limiter is per-process")
	return ratelimit.New(appCfg.AccessRequestLimit, appCfg.AccessRequestWindow)
}
