package userinfo

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MountRoutes registers GET /api/user. The answer depends on the session
// cookie, so it is never cached.
func MountRoutes(r chi.Router, h *Handler) {
	r.With(middleware.NoCache).Get("/api/user", h.ServeUserInfo)
}
