// internal/app/features/catalog/handler.go
package catalog

import (
	uierrors "github.com/dalemusser/coursehub/internal/app/features/errors"
	"github.com/dalemusser/coursehub/internal/app/service"
	"github.com/dalemusser/coursehub/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// Handler serves the public catalog and the access-request form.
type Handler struct {
	Svc    *service.Service
	Audit  *auditlog.Logger
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(svc *service.Service, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:    svc,
		Audit:  audit,
		Log:    logger,
		ErrLog: errLog,
	}
}
