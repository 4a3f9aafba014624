// internal/app/features/admincourses/edit.go
package admincourses

import (
	"net/http"

	uierrors "github.com/dalemusser/coursehub/internal/app/features/errors"
	"github.com/dalemusser/coursehub/internal/app/service"
	"github.com/dalemusser/coursehub/internal/app/system/authz"
	"github.com/dalemusser/coursehub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HandleCreate handles POST /admin/courses.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.NewCourse
	if err := uierrors.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "bad course payload", err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create course")
	defer cancel()

	c, err := h.Svc.CreateCourse(ctx, authz.Actor(r), in)
	if err != nil {
		h.ErrLog.Write(w, r, "create course failed", err)
		return
	}
	uierrors.JSON(w, http.StatusCreated, c)
}

// HandleSeed handles POST /admin/courses/seed.
func (h *Handler) HandleSeed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "seed basics")
	defer cancel()

	c, err := h.Svc.SeedBasics(ctx, authz.Actor(r))
	if err != nil {
		h.ErrLog.Write(w, r, "seed basics failed", err)
		return
	}
	h.Log.Info("basics course seeded", zap.String("course_id", c.ID))
	uierrors.JSON(w, http.StatusOK, c)
}

func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, true)
}

func (h *Handler) HandleUnpublish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, false)
}

func (h *Handler) setPublished(w http.ResponseWriter, r *http.Request, published bool) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "publish course")
	defer cancel()

	if err := h.Svc.SetPublished(ctx, authz.Actor(r), chi.URLParam(r, "id"), published); err != nil {
		h.ErrLog.Write(w, r, "publish course failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteCourse handles DELETE /admin/courses/{id}. Sessions,
// completions, enrollments and access requests of the course go with it.
func (h *Handler) HandleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "delete course")
	defer cancel()

	if err := h.Svc.DeleteCourse(ctx, authz.Actor(r), chi.URLParam(r, "id")); err != nil {
		h.ErrLog.Write(w, r, "delete course failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddSession handles POST /admin/courses/{id}/sessions.
func (h *Handler) HandleAddSession(w http.ResponseWriter, r *http.Request) {
	var in service.NewSession
	if err := uierrors.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, "bad session payload", err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "add session")
	defer cancel()

	s, err := h.Svc.AddSession(ctx, authz.Actor(r), chi.URLParam(r, "id"), in)
	if err != nil {
		h.ErrLog.Write(w, r, "add session failed", err)
		return
	}
	uierrors.JSON(w, http.StatusCreated, s)
}

// HandleDeleteSession handles DELETE /admin/courses/{id}/sessions/{sessionID}.
func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete session")
	defer cancel()

	if err := h.Svc.DeleteSession(ctx, authz.Actor(r), chi.URLParam(r, "sessionID")); err != nil {
		h.ErrLog.Write(w, r, "delete session failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
