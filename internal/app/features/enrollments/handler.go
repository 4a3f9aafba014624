// internal/app/features/enrollments/handler.go
package enrollments

import (
	uierrors "github.com/dalemusser/coursehub/internal/app/features/errors"
	"github.com/dalemusser/coursehub/internal/app/service"
	"go.uber.org/zap"
)

// Handler serves the enrollment tools for leaders and admins.
type Handler struct {
	Svc    *service.Service
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(svc *service.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger, ErrLog: errLog}
}
