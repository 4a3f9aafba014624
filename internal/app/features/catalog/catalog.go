// internal/app/features/catalog/catalog.go
package catalog

import (
	"net/http"

	uierrors "github.com/dalemusser/coursehub/internal/app/features/errors"
	"github.com/dalemusser/coursehub/internal/app/service"
	"github.com/dalemusser/coursehub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeList handles GET /catalog.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "catalog")
	defer cancel()

	courses, err := h.Svc.Catalog(ctx)
	if err != nil {
		h.ErrLog.Write(w, r, "catalog list failed", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{"courses": courses})
}

// HandleRequest handles POST /catalog/requests.
func (h *Handler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	var in service.AccessRequestInput
	if err := uierrors.Decode(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "access request decode failed", err, "")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "access request")
	defer cancel()

	req, err := h.Svc.RequestAccess(ctx, in)
	if err != nil {
		h.ErrLog.Write(w, r, "access request failed", err)
		return
	}
	h.Log.Info("access request filed", zap.String("request_id", req.ID), zap.String("course_id", req.CourseID))
	uierrors.JSON(w, http.StatusCreated, map[string]any{
		"request": req,
		"message": "Thanks! A leader will review your request.",
	})
}
