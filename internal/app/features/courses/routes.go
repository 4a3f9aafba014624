// internal/app/features/courses/routes.go
package courses

import (
	"github.com/dalemusser/coursehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the course pages under /courses. Every route needs a
// signed-in user; enrollment is checked per course.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Get("/{slug}", h.ServeCourse)
		pr.Get("/{slug}/{index}", h.ServeSession)
		pr.Post("/{slug}/{index}/complete", h.HandleComplete)
	})
	return r
}
