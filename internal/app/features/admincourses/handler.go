// internal/app/features/admincourses/handler.go
package admincourses

import (
	uierrors "github.com/dalemusser/coursehub/internal/app/features/errors"
	"github.com/dalemusser/coursehub/internal/app/service"
	"go.uber.org/zap"
)

// Handler serves course administration. Leaders may read; only admins
// change course content.
type Handler struct {
	Svc    *service.Service
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(svc *service.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger, ErrLog: errLog}
}
