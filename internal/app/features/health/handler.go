package health

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/coursehub/internal/app/features/errors"
	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Store   repo.Pinger
	Backend string
	Log     *zap.Logger
}

// NewHandler constructs a health Handler over the configured store.
func NewHandler(store repo.Pinger, backend string, logger *zap.Logger) *Handler {
	return &Handler{
		Store:   store,
		Backend: backend,
		Log:     logger,
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Backend  string `json:"backend"`
	Database string `json:"database"`
	Message  string `json:"message,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "backend":"mongo", "database":"connected" }
//
// On store failure: 503 and
//
//	{ "status":"error", "backend":"postgres", "database":"disconnected", "message":"Database unavailable" }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{
		Status:   "ok",
		Backend:  h.Backend,
		Database: "connected",
	}

	if err := h.Store.Ping(ctx); err != nil {
		h.Log.Error("health-check: store ping failed", zap.String("backend", h.Backend), zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		uierrors.JSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	uierrors.JSON(w, http.StatusOK, resp)
}

// ServeLive reports that the process is up. Orchestrators use it for
// liveness so a database outage does not restart the pod.
func (h *Handler) ServeLive(w http.ResponseWriter, r *http.Request) {
	uierrors.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
