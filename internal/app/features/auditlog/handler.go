// internal/app/features/auditlog/handler.go
package auditlog

import (
	uierrors "github.com/dalemusser/coursehub/internal/app/features/errors"
	"github.com/dalemusser/coursehub/internal/app/service"
	"go.uber.org/zap"
)

type Handler struct {
	Svc    *service.Service
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs an Audit Log feature handler.
func NewHandler(svc *service.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:    svc,
		Log:    logger,
		ErrLog: errLog,
	}
}
