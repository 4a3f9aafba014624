// internal/app/service/users.go
package service

import (
	"context"
	"strings"

	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/app/system/inputval"
	"github.com/dalemusser/coursehub/internal/app/system/paging"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// NewUser is the payload for CreateUser.
type NewUser struct {
	Name     string `json:"name" validate:"max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"omitempty,role"`
}

// CreateUser adds an account. The role defaults to USER.
func (s *Service) CreateUser(ctx context.Context, actor models.Actor, in NewUser) (models.User, error) {
	const op = "service.CreateUser"
	if err := requireAdmin(op, actor); err != nil {
		return models.User{}, err
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := inputval.Struct(op, in); err != nil {
		return models.User{}, err
	}
	role := models.RoleUser
	if in.Role != "" {
		role, _ = models.ParseRole(in.Role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return models.User{}, errs.Wrap(op, errs.ErrInvalid, err)
	}
	u, err := s.repos.Users.Create(ctx, models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		return models.User{}, errs.Unavailable(op, err)
	}
	s.audit.UserCreated(ctx, actor, u)
	return u, nil
}

// FindUserByEmail looks an account up for admin tooling.
func (s *Service) FindUserByEmail(ctx context.Context, actor models.Actor, email string) (*models.User, error) {
	const op = "service.FindUserByEmail"
	if err := requireAdmin(op, actor); err != nil {
		return nil, err
	}
	u, err := s.repos.Users.GetByEmail(ctx, email)
	return u, errs.Unavailable(op, err)
}

// guarded records a refused last-admin or self action before returning err.
func (s *Service) guarded(ctx context.Context, actor models.Actor, userID, action string, err error) error {
	if errs.IsConflict(err) || errs.IsForbidden(err) {
		s.audit.LastAdminProtected(ctx, actor, userID, action, errs.Message(err))
	}
	return err
}

// demoteAdmin writes next for an ADMIN and re-counts. Without a transaction
// a concurrent demotion may have passed the same pre-check, so when no ADMIN
// remains the role is put back and Conflict returned.
func (s *Service) demoteAdmin(ctx context.Context, userID string, next models.Role, msg string) error {
	if err := s.repos.Users.SetRole(ctx, userID, next); err != nil {
		return err
	}
	if err := s.admins.ConfirmAdminRemains(ctx, msg); err != nil {
		if rerr := s.repos.Users.SetRole(ctx, userID, models.RoleAdmin); rerr != nil {
			s.log.Error("restore admin role failed", zap.String("user_id", userID), zap.Error(rerr))
		}
		return err
	}
	return nil
}

// ChangeRole sets the role of userID. Demoting the last ADMIN, or changing
// your own role, is refused.
func (s *Service) ChangeRole(ctx context.Context, actor models.Actor, userID, role string) (models.User, error) {
	const op = "service.ChangeRole"
	if err := requireAdmin(op, actor); err != nil {
		return models.User{}, err
	}
	next, ok := models.ParseRole(role)
	if !ok {
		return models.User{}, errs.E(op, errs.ErrInvalid, "role must be USER, LEADER or ADMIN")
	}
	u, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, errs.Unavailable(op, err)
	}
	if u.Role == next {
		return *u, nil
	}

	err = s.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.admins.CheckRoleChange(ctx, actor.ID, *u, next); err != nil {
			return err
		}
		if u.Role == models.RoleAdmin {
			return s.demoteAdmin(ctx, u.ID, next, "cannot demote the last admin")
		}
		return s.repos.Users.SetRole(ctx, u.ID, next)
	})
	if err != nil {
		return models.User{}, s.guarded(ctx, actor, u.ID, "role_change", errs.Unavailable(op, err))
	}
	s.audit.RoleChanged(ctx, actor, u.ID, u.Role, next)
	prev := u.Role
	u.Role = next
	s.log.Info("role changed", zap.String("user_id", u.ID), zap.String("from", string(prev)), zap.String("to", string(next)))
	return *u, nil
}

// DeleteUser removes userID with their enrollments and completions.
func (s *Service) DeleteUser(ctx context.Context, actor models.Actor, userID string) error {
	const op = "service.DeleteUser"
	if err := requireAdmin(op, actor); err != nil {
		return err
	}
	u, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return errs.Unavailable(op, err)
	}
	err = s.repos.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.admins.CheckDelete(ctx, actor.ID, *u); err != nil {
			return err
		}
		if u.Role == models.RoleAdmin {
			if err := s.demoteAdmin(ctx, u.ID, models.RoleUser, "cannot delete the last admin"); err != nil {
				return err
			}
		}
		if _, err := s.repos.Completions.DeleteAllForUser(ctx, u.ID); err != nil {
			return err
		}
		if _, err := s.repos.Enrollments.DeleteForUser(ctx, u.ID); err != nil {
			return err
		}
		return s.repos.Users.Delete(ctx, u.ID)
	})
	if err != nil {
		return s.guarded(ctx, actor, u.ID, "delete", errs.Unavailable(op, err))
	}
	s.audit.UserDeleted(ctx, actor, *u)
	return nil
}

// UserRow is a user on the admin list.
type UserRow struct {
	User        models.User `json:"user"`
	Completions int64       `json:"completions"`
}

type UserList struct {
	Users      []UserRow   `json:"users"`
	AdminCount int64       `json:"admin_count"`
	Meta       paging.Meta `json:"paging"`
}

// ListUsers pages users newest first. q matches e-mail, name or role.
func (s *Service) ListUsers(ctx context.Context, actor models.Actor, q string, page int) (*UserList, error) {
	const op = "service.ListUsers"
	if err := requireAdmin(op, actor); err != nil {
		return nil, err
	}
	users, total, err := s.repos.Users.List(ctx, repo.UserFilter{Q: q, Page: paging.Window(page, paging.UserPageSize)})
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	counts, err := s.repos.Completions.CountByUsers(ctx, ids)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	admins, err := s.repos.Users.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, errs.Unavailable(op, err)
	}
	out := &UserList{
		Users:      make([]UserRow, 0, len(users)),
		AdminCount: admins,
		Meta:       paging.ComputeMeta(page, paging.UserPageSize, total, len(users)),
	}
	for _, u := range users {
		out.Users = append(out.Users, UserRow{User: u, Completions: counts[u.ID]})
	}
	return out, nil
}

// EnsureAdmin makes sure email belongs to an ADMIN, creating the account with
// password when it does not exist. It reports whether anything changed.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	const op = "service.EnsureAdmin"
	u, err := s.repos.Users.GetByEmail(ctx, email)
	switch {
	case errs.IsNotFound(err):
		if password == "" {
			return false, errs.E(op, errs.ErrInvalid, "admin_password is required to create the admin account")
		}
		_, err := s.CreateUser(ctx, System, NewUser{Email: email, Password: password, Role: string(models.RoleAdmin)})
		return err == nil, err
	case err != nil:
		return false, errs.Unavailable(op, err)
	case u.Role == models.RoleAdmin:
		return false, nil
	}
	if _, err := s.ChangeRole(ctx, System, u.ID, string(models.RoleAdmin)); err != nil {
		return false, err
	}
	return true, nil
}
