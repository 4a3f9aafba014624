package pgstore

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/app/system/search"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userCols = `id, name, email, password_hash, role, created_at, updated_at`

type Users struct{ c *Connection }

var _ repo.Users = (*Users)(nil)

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func collectUsers(rows pgx.Rows) ([]models.User, error) {
	defer rows.Close()
	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Users) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if !u.Role.Valid() {
		return models.User{}, errs.E("users.Create", errs.ErrInvalid, "role must be USER, LEADER or ADMIN")
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	_, err := s.c.q(ctx).Exec(ctx,
		`INSERT INTO users (`+userCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return models.User{}, wrap("users.Create", "a user with this email already exists", err)
	}
	return u, nil
}

func (s *Users) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(s.c.q(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, wrap("users.GetByID", "user not found", err)
	}
	return &u, nil
}

func (s *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(s.c.q(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, wrap("users.GetByEmail", "user not found", err)
	}
	return &u, nil
}

func (s *Users) GetByEmails(ctx context.Context, emails []string) ([]models.User, error) {
	if len(emails) == 0 {
		return []models.User{}, nil
	}
	rows, err := s.c.q(ctx).Query(ctx, `SELECT `+userCols+` FROM users WHERE email = ANY($1)`, emails)
	if err != nil {
		return nil, wrap("users.GetByEmails", "", err)
	}
	out, err := collectUsers(rows)
	return out, wrap("users.GetByEmails", "", err)
}

func (s *Users) SetRole(ctx context.Context, id string, role models.Role) error {
	if !role.Valid() {
		return errs.E("users.SetRole", errs.ErrInvalid, "role must be USER, LEADER or ADMIN")
	}
	return s.update(ctx, "users.SetRole", `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, role)
}

func (s *Users) SetPassword(ctx context.Context, id, hash string) error {
	return s.update(ctx, "users.SetPassword", `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
}

func (s *Users) update(ctx context.Context, op, sql string, args ...any) error {
	tag, err := s.c.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return wrap(op, "", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.E(op, errs.ErrNotFound, "user not found")
	}
	return nil
}

func (s *Users) Delete(ctx context.Context, id string) error {
	return s.update(ctx, "users.Delete", `DELETE FROM users WHERE id = $1`, id)
}

func (s *Users) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	var n int64
	err := s.c.q(ctx).QueryRow(ctx, `SELECT count(*) FROM users WHERE role = $1`, role).Scan(&n)
	return n, wrap("users.CountByRole", "", err)
}

func (s *Users) List(ctx context.Context, f repo.UserFilter) ([]models.User, int64, error) {
	const op = "users.List"
	where, args := "", []any{}
	if q := strings.TrimSpace(f.Q); q != "" {
		where = ` WHERE email ILIKE $1 OR name ILIKE $1 OR role ILIKE $1`
		args = append(args, search.LikePattern(q))
	}

	var total int64
	if err := s.c.q(ctx).QueryRow(ctx, `SELECT count(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, wrap(op, "", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	n := len(args)
	args = append(args, limit, f.Offset)
	rows, err := s.c.q(ctx).Query(ctx,
		`SELECT id, name, email, '' AS password_hash, role, created_at, updated_at FROM users`+where+
			` ORDER BY created_at DESC, id LIMIT $`+itoa(n+1)+` OFFSET $`+itoa(n+2), args...)
	if err != nil {
		return nil, 0, wrap(op, "", err)
	}
	out, err := collectUsers(rows)
	if err != nil {
		return nil, 0, wrap(op, "", err)
	}
	return out, total, nil
}
