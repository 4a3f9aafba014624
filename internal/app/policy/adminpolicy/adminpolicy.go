// Package adminpolicy guards user administration.
//
// Rules:
//   - There is always at least one ADMIN: demoting or deleting the last one is rejected
//   - An admin cannot demote or delete their own account
//
// Both checks are consulted by the HTTP handlers and the CLI before any write.
// ConfirmAdminRemains repeats the count once a demotion is written.
package adminpolicy

import (
	"context"

	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
)

// AdminCounter is the slice of the user store the guard reads.
type AdminCounter interface {
	CountByRole(ctx context.Context, role models.Role) (int64, error)
}

// Guard enforces the rules above.
type Guard struct {
	users AdminCounter
}

func New(users AdminCounter) *Guard {
	return &Guard{users: users}
}

// CheckRoleChange validates moving target to next on behalf of actorID.
// An empty actorID (the CLI) skips the self check.
func (g *Guard) CheckRoleChange(ctx context.Context, actorID string, target models.User, next models.Role) error {
	const op = "adminpolicy.CheckRoleChange"
	if !next.Valid() {
		return errs.E(op, errs.ErrInvalid, "role must be USER, LEADER or ADMIN")
	}
	if next == models.RoleAdmin {
		return nil
	}
	if actorID != "" && target.ID == actorID {
		return errs.E(op, errs.ErrForbidden, "you cannot remove your own admin role")
	}
	if target.Role != models.RoleAdmin {
		return nil
	}
	return g.requireAnotherAdmin(ctx, op, "cannot demote the last admin")
}

// CheckDelete validates deleting target on behalf of actorID.
func (g *Guard) CheckDelete(ctx context.Context, actorID string, target models.User) error {
	const op = "adminpolicy.CheckDelete"
	if actorID != "" && target.ID == actorID {
		return errs.E(op, errs.ErrForbidden, "you cannot delete your own account")
	}
	if target.Role != models.RoleAdmin {
		return nil
	}
	return g.requireAnotherAdmin(ctx, op, "cannot delete the last admin")
}

func (g *Guard) requireAnotherAdmin(ctx context.Context, op, msg string) error {
	n, err := g.users.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return errs.Unavailable(op, err)
	}
	if n <= 1 {
		return errs.E(op, errs.ErrConflict, msg)
	}
	return nil
}

// ConfirmAdminRemains reports Conflict when no ADMIN is left. Callers run it
// after writing a demotion and restore the target's role when it fails.
func (g *Guard) ConfirmAdminRemains(ctx context.Context, msg string) error {
	const op = "adminpolicy.ConfirmAdminRemains"
	n, err := g.users.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return errs.Unavailable(op, err)
	}
	if n < 1 {
		return errs.E(op, errs.ErrConflict, msg)
	}
	return nil
}
