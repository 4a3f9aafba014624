// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/coursehub/internal/app/system/auth"
	"github.com/dalemusser/coursehub/internal/domain/models"
)

// Actor returns the signed-in caller, or the zero (anonymous) Actor.
func Actor(r *http.Request) models.Actor {
	user, ok := auth.CurrentUser(r)
	if !ok || user.ID == "" {
		return models.Actor{}
	}
	role, ok := models.ParseRole(string(user.Role))
	if !ok {
		// Unknown role strings get the least privilege.
		role = models.RoleUser
	}
	return models.Actor{ID: user.ID, Role: role}
}

// HasAnyRole reports whether the caller holds one of roles (case-insensitive).
// Anonymous callers hold none.
func HasAnyRole(r *http.Request, roles ...models.Role) bool {
	a := Actor(r)
	if !a.SignedIn() {
		return false
	}
	for _, want := range roles {
		if strings.EqualFold(string(a.Role), strings.TrimSpace(string(want))) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the caller is an ADMIN.
func IsAdmin(r *http.Request) bool { return Actor(r).IsAdmin() }

// IsStaff reports whether the caller is a LEADER or ADMIN.
func IsStaff(r *http.Request) bool { return Actor(r).IsStaff() }
