// internal/app/features/catalog/routes.go
package catalog

import (
	"net/http"

	"github.com/dalemusser/coursehub/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the catalog under /catalog. Access requests are throttled
// per client IP by limiter.
func Routes(h *Handler, limiter ratelimit.Allower) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)

	r.Group(func(pr chi.Router) {
		pr.Use(ratelimit.Middleware(limiter, h.Log, func(req *http.Request) {
			h.Audit.RequestThrottled(req.Context(), ratelimit.ClientIP(req))
		}))
		pr.Post("/requests", h.HandleRequest)
	})
	return r
}
