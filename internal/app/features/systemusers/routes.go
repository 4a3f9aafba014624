// internal/app/features/systemusers/routes.go
package systemusers

import (
	"github.com/dalemusser/coursehub/internal/app/system/auth"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts user administration under the path where this router is
// mounted (typically "/admin/users" from bootstrap).
//
// Example mount from bootstrap:
//
//	h := systemusers.NewHandler(svc, errLog, logger)
//	r.Mount("/admin/users", systemusers.Routes(h, sessionMgr))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(models.RoleAdmin))

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)

		pr.Post("/{id}/role", h.HandleRole)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Post("/{id}/delete", h.HandleDelete)
		pr.Post("/{id}/reset-progress", h.HandleResetProgress)
	})

	return r
}
