// internal/app/features/admincourses/routes.go
package admincourses

import (
	"github.com/dalemusser/coursehub/internal/app/system/auth"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts course administration (typically at "/admin/courses").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(models.RoleLeader, models.RoleAdmin))

		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeCourse)

		pr.Group(func(ar chi.Router) {
			ar.Use(sm.RequireRole(models.RoleAdmin))

			ar.Post("/", h.HandleCreate)
			ar.Post("/seed", h.HandleSeed)
			ar.Post("/{id}/publish", h.HandlePublish)
			ar.Post("/{id}/unpublish", h.HandleUnpublish)
			ar.Delete("/{id}", h.HandleDeleteCourse)
			ar.Post("/{id}/sessions", h.HandleAddSession)
			ar.Delete("/{id}/sessions/{sessionID}", h.HandleDeleteSession)
		})
	})

	return r
}
