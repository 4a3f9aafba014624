// internal/app/features/enrollments/enroll.go
package enrollments

import (
	"io"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/coursehub/internal/app/features/errors"
	"github.com/dalemusser/coursehub/internal/app/service"
	"github.com/dalemusser/coursehub/internal/app/system/authz"
	"github.com/dalemusser/coursehub/internal/app/system/csvutil"
	"github.com/dalemusser/coursehub/internal/app/system/limits"
	"github.com/dalemusser/coursehub/internal/app/system/timeouts"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// ServeRoster handles GET /admin/enroll?course_id=&q=.
//
// Returns the course, its enrollment counts and up to fifty users matching q
// with their status in the course.
func (h *Handler) ServeRoster(w http.ResponseWriter, r *http.Request) {
	courseID := strings.TrimSpace(query.Get(r, "course_id"))
	if courseID == "" {
		h.ErrLog.LogBadRequest(w, r, "roster without course", errs.E("enrollments.ServeRoster", errs.ErrInvalid, ""), "course_id is required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "enrollment roster")
	defer cancel()

	roster, err := h.Svc.EnrollmentRoster(ctx, authz.Actor(r), courseID, strings.TrimSpace(query.Get(r, "q")))
	if err != nil {
		h.ErrLog.Write(w, r, "enrollment roster failed", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, roster)
}

type pairBody struct {
	CourseID string `json:"course_id"`
	UserID   string `json:"user_id"`
	Status   string `json:"status,omitempty"`
}

func (h *Handler) decodePair(w http.ResponseWriter, r *http.Request) (pairBody, bool) {
	var b pairBody
	if err := uierrors.Decode(w, r, &b); err != nil {
		h.ErrLog.Write(w, r, "bad enrollment payload", err)
		return b, false
	}
	if b.CourseID == "" || b.UserID == "" {
		h.ErrLog.LogBadRequest(w, r, "enrollment payload incomplete", errs.E("enrollments.decodePair", errs.ErrInvalid, ""), "course_id and user_id are required")
		return b, false
	}
	return b, true
}

// HandleEnroll handles POST /admin/enroll.
func (h *Handler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	b, ok := h.decodePair(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "enroll")
	defer cancel()

	if err := h.Svc.Enroll(ctx, authz.Actor(r), b.CourseID, b.UserID); err != nil {
		h.ErrLog.Write(w, r, "enroll failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUnenroll handles POST /admin/enroll/unenroll.
func (h *Handler) HandleUnenroll(w http.ResponseWriter, r *http.Request) {
	b, ok := h.decodePair(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "unenroll")
	defer cancel()

	if err := h.Svc.Unenroll(ctx, authz.Actor(r), b.CourseID, b.UserID); err != nil {
		h.ErrLog.Write(w, r, "unenroll failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleStatus handles POST /admin/enroll/status.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	b, ok := h.decodePair(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "enrollment status")
	defer cancel()

	if err := h.Svc.SetEnrollmentStatus(ctx, authz.Actor(r), b.CourseID, b.UserID, b.Status); err != nil {
		h.ErrLog.Write(w, r, "enrollment status failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type bulkBody struct {
	CourseID string `json:"course_id"`
	Emails   string `json:"emails"`
}

// HandleBulk handles POST /admin/enroll/bulk. Emails is free text separated
// by commas, semicolons or whitespace.
func (h *Handler) HandleBulk(w http.ResponseWriter, r *http.Request) {
	var b bulkBody
	if err := uierrors.Decode(w, r, &b); err != nil {
		h.ErrLog.Write(w, r, "bad bulk payload", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "bulk enroll")
	defer cancel()

	res, err := h.Svc.BulkEnroll(ctx, authz.Actor(r), strings.TrimSpace(b.CourseID), b.Emails)
	if err != nil {
		h.ErrLog.Write(w, r, "bulk enroll failed", err)
		return
	}
	h.Log.Info("bulk enroll",
		zap.String("course_id", b.CourseID),
		zap.Int("requested", res.Requested),
		zap.Int("enrolled", res.Enrolled))
	uierrors.JSON(w, http.StatusOK, res)
}

// rosterResult reports a CSV upload: the bulk outcome plus any rejected lines.
type rosterResult struct {
	service.BulkResult
	Rejected []csvutil.RowError `json:"rejected"`
}

// HandleUpload handles POST /admin/enroll/upload?course_id=.
//
// The roster is either the raw request body (text/csv) or the "file" field of
// a multipart form. Rows that are not e-mail addresses are reported back and
// the rest are enrolled.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	courseID := strings.TrimSpace(query.Get(r, "course_id"))
	if courseID == "" {
		h.ErrLog.LogBadRequest(w, r, "roster upload without course", errs.E("enrollments.HandleUpload", errs.ErrInvalid, ""), "course_id is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxCSVUpload)
	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := r.FormFile("file")
		if err != nil {
			h.ErrLog.LogBadRequest(w, r, "roster upload missing file", errs.Wrap("enrollments.HandleUpload", errs.ErrInvalid, err), "attach the roster as the file field")
			return
		}
		defer f.Close()
		src = f
	}

	roster, err := csvutil.PreScanRoster(src)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "roster upload unreadable", errs.Wrap("enrollments.HandleUpload", errs.ErrInvalid, err), "the roster could not be read as CSV")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "roster upload")
	defer cancel()

	res, err := h.Svc.BulkEnroll(ctx, authz.Actor(r), courseID, strings.Join(roster.Emails, "\n"))
	if err != nil {
		h.ErrLog.Write(w, r, "roster upload failed", err)
		return
	}
	h.Log.Info("roster upload",
		zap.String("course_id", courseID),
		zap.Int("requested", res.Requested),
		zap.Int("enrolled", res.Enrolled),
		zap.Int("rejected", len(roster.Errors)))
	out := rosterResult{BulkResult: res, Rejected: roster.Errors}
	if out.Rejected == nil {
		out.Rejected = []csvutil.RowError{}
	}
	uierrors.JSON(w, http.StatusOK, out)
}
