// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/coursehub/internal/app/system/auth"
	"github.com/dalemusser/coursehub/internal/app/system/navigation"
)

// Handler serves the targets of the auth middleware's browser redirects.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden handles GET /forbidden.
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusForbidden, errorBody{Error: "you don't have permission to view this page", Back: backURL(r)})
}

// Unauthorized handles GET /unauthorized.
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusUnauthorized, errorBody{Error: "please sign in to continue", Back: "/login"})
}

func backURL(r *http.Request) string {
	if _, ok := auth.CurrentUser(r); !ok {
		return "/login"
	}
	return navigation.SafeBackURL(r, navigation.ForbiddenBackURL)
}
