// internal/app/features/courses/courses.go
package courses

import (
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/coursehub/internal/app/features/errors"
	"github.com/dalemusser/coursehub/internal/app/system/auth"
	"github.com/dalemusser/coursehub/internal/app/system/authz"
	"github.com/dalemusser/coursehub/internal/app/system/navigation"
	"github.com/dalemusser/coursehub/internal/app/system/timeouts"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// fail sends browsers that were denied a course back to /courses; API
// callers get the mapped status.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errs.IsForbidden(err) && auth.WantsHTML(r) {
		http.Redirect(w, r, "/courses", http.StatusSeeOther)
		return
	}
	h.ErrLog.Write(w, r, msg, err)
}

// indexParam parses {index}. Anything that is not a number is reported as
// index 0, which the service rejects as invalid.
func indexParam(r *http.Request) int {
	n, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0
	}
	return n
}

// ServeList handles GET /courses.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "course list")
	defer cancel()

	cards, err := h.Svc.ListCoursesFor(ctx, authz.Actor(r))
	if err != nil {
		h.fail(w, r, "course list failed", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{"courses": cards})
}

// ServeCourse handles GET /courses/{slug}.
func (h *Handler) ServeCourse(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "course overview")
	defer cancel()

	ov, err := h.Svc.CourseOverview(ctx, authz.Actor(r), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, r, "course overview failed", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, ov)
}

// ServeSession handles GET /courses/{slug}/{index}.
func (h *Handler) ServeSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "session view")
	defer cancel()

	page, err := h.Svc.SessionView(ctx, authz.Actor(r), chi.URLParam(r, "slug"), indexParam(r))
	if err != nil {
		h.fail(w, r, "session view failed", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, page)
}

// HandleComplete handles POST /courses/{slug}/{index}/complete.
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "mark complete")
	defer cancel()

	actor := authz.Actor(r)
	slug, index := chi.URLParam(r, "slug"), indexParam(r)
	p, err := h.Svc.CompleteByIndex(ctx, actor, slug, index)
	if err != nil {
		h.fail(w, r, "mark complete failed", err)
		return
	}
	h.Log.Debug("session completed",
		zap.String("user_id", actor.ID), zap.String("slug", slug), zap.Int("index", index))

	if auth.WantsHTML(r) {
		opts := navigation.SessionBackURL
		opts.Fallback = "/courses/" + slug + "/" + strconv.Itoa(index)
		http.Redirect(w, r, navigation.SafeBackURL(r, opts), http.StatusSeeOther)
		return
	}
	uierrors.JSON(w, http.StatusOK, map[string]any{"progress": p, "percent": p.Percent()})
}
