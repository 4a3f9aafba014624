// internal/app/features/requests/requests.go
package requests

import (
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/coursehub/internal/app/features/errors"
	"github.com/dalemusser/coursehub/internal/app/service"
	"github.com/dalemusser/coursehub/internal/app/system/authz"
	"github.com/dalemusser/coursehub/internal/app/system/paging"
	"github.com/dalemusser/coursehub/internal/app/system/timeouts"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
)

// ServeList handles GET /admin/requests?q=&course_id=&status=&page=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := service.RequestQuery{
		Q:        strings.TrimSpace(query.Get(r, "q")),
		CourseID: strings.TrimSpace(query.Get(r, "course_id")),
		Status:   query.Get(r, "status"),
		Page:     paging.ParsePage(r),
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "access request list")
	defer cancel()

	list, err := h.Svc.ListAccessRequests(ctx, authz.Actor(r), q)
	if err != nil {
		h.ErrLog.Write(w, r, "access request list failed", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, list)
}

// HandleApprove handles POST /admin/requests/{id}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.RequestApproved)
}

// HandleReject handles POST /admin/requests/{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.RequestRejected)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, status models.AccessRequestStatus) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "decide access request")
	defer cancel()

	d, err := h.Svc.DecideAccessRequest(ctx, authz.Actor(r), chi.URLParam(r, "id"), string(status))
	if err != nil {
		h.ErrLog.Write(w, r, "decide access request failed", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, d)
}
