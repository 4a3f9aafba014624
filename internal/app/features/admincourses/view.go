// internal/app/features/admincourses/view.go
package admincourses

import (
	"net/http"

	uierrors "github.com/dalemusser/coursehub/internal/app/features/errors"
	"github.com/dalemusser/coursehub/internal/app/system/authz"
	"github.com/dalemusser/coursehub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// ServeList handles GET /admin/courses: every course with its session count
// and completion grid.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "admin course list")
	defer cancel()

	rows, err := h.Svc.AdminCourses(ctx, authz.Actor(r))
	if err != nil {
		h.ErrLog.Write(w, r, "admin course list failed", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{"courses": rows})
}

// ServeCourse handles GET /admin/courses/{id}.
func (h *Handler) ServeCourse(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "admin course")
	defer cancel()

	d, err := h.Svc.AdminCourse(ctx, authz.Actor(r), chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.Write(w, r, "admin course failed", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, d)
}
