// internal/app/features/userinfo/handler.go
package userinfo

import (
	"net/http"

	uierrors "github.com/dalemusser/coursehub/internal/app/features/errors"
	"github.com/dalemusser/coursehub/internal/app/system/auth"
)

// Handler serves user information for authenticated sessions.
type Handler struct{}

// NewHandler creates a new userinfo handler.
func NewHandler() *Handler {
	return &Handler{}
}

type userInfo struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	ID              string `json:"id,omitempty"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role,omitempty"`
}

// ServeUserInfo returns JSON with the current user's authentication status
// and identity as resolved by the session middleware.
//
// Response format:
//
//	{ "isAuthenticated": bool, "id": "...", "name": "...", "email": "...", "role": "USER" }
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.JSON(w, http.StatusOK, userInfo{})
		return
	}
	uierrors.JSON(w, http.StatusOK, userInfo{
		IsAuthenticated: true,
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Role:            string(user.Role),
	})
}
