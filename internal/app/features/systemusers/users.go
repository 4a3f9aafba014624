// internal/app/features/systemusers/users.go
package systemusers

import (
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/coursehub/internal/app/features/errors"
	"github.com/dalemusser/coursehub/internal/app/service"
	"github.com/dalemusser/coursehub/internal/app/system/authz"
	"github.com/dalemusser/coursehub/internal/app/system/paging"
	"github.com/dalemusser/coursehub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
)

// ServeList handles GET /admin/users?q=&page=.
//
// Users are listed newest first, ten per page, each with their completion
// count. The admin count lets the caller grey out demoting the last admin.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "user list")
	defer cancel()

	list, err := h.Svc.ListUsers(ctx, authz.Actor(r), strings.TrimSpace(query.Get(r, "q")), paging.ParsePage(r))
	if err != nil {
		h.ErrLog.Write(w, r, "user list failed", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, list)
}

// HandleCreate handles POST /admin/users.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.NewUser
	if err := uierrors.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "bad user payload", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create user")
	defer cancel()

	u, err := h.Svc.CreateUser(ctx, authz.Actor(r), in)
	if err != nil {
		h.ErrLog.Write(w, r, "create user failed", err)
		return
	}
	uierrors.JSON(w, http.StatusCreated, u)
}

type roleBody struct {
	Role string `json:"role"`
}

// HandleRole handles POST /admin/users/{id}/role.
func (h *Handler) HandleRole(w http.ResponseWriter, r *http.Request) {
	var body roleBody
	if err := uierrors.Decode(w, r, &body); err != nil {
		h.ErrLog.Write(w, r, "bad role payload", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "change role")
	defer cancel()

	u, err := h.Svc.ChangeRole(ctx, authz.Actor(r), chi.URLParam(r, "id"), body.Role)
	if err != nil {
		h.ErrLog.Write(w, r, "change role failed", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, u)
}

// HandleDelete handles DELETE /admin/users/{id} and the form-friendly
// POST /admin/users/{id}/delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete user")
	defer cancel()

	if err := h.Svc.DeleteUser(ctx, authz.Actor(r), chi.URLParam(r, "id")); err != nil {
		h.ErrLog.Write(w, r, "delete user failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleResetProgress handles POST /admin/users/{id}/reset-progress.
func (h *Handler) HandleResetProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "reset progress")
	defer cancel()

	n, err := h.Svc.ResetUserProgress(ctx, authz.Actor(r), chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Write(w, r, "reset progress failed", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, map[string]int64{"deleted": n})
}
