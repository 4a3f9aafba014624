// internal/app/features/enrollments/routes.go
package enrollments

import (
	"github.com/dalemusser/coursehub/internal/app/system/auth"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the enrollment tools (typically at "/admin/enroll").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(models.RoleLeader, models.RoleAdmin))

		pr.Get("/", h.ServeRoster)
		pr.Post("/", h.HandleEnroll)
		pr.Post("/unenroll", h.HandleUnenroll)
		pr.Post("/status", h.HandleStatus)
		pr.Post("/bulk", h.HandleBulk)
		pr.Post("/upload", h.HandleUpload)
	})

	return r
}
