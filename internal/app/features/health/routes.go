package health

import "github.com/go-chi/chi/v5"

// Routes serves GET / (store ping) and GET /live, which never touches the
// store. Mounted under /health.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Serve)
	r.Get("/live", h.ServeLive)
	return r
}
