// internal/app/features/requests/routes.go
package requests

import (
	"github.com/dalemusser/coursehub/internal/app/system/auth"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the request queue (typically at "/admin/requests").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(models.RoleLeader, models.RoleAdmin))

		pr.Get("/", h.ServeList)
		pr.Post("/{id}/approve", h.HandleApprove)
		pr.Post("/{id}/reject", h.HandleReject)
	})

	return r
}
