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

const courseCols = `id, slug, title, summary, thumbnail, is_published, created_at, updated_at`

type Courses struct{ c *Connection }

var _ repo.Courses = (*Courses)(nil)

func scanCourse(row pgx.Row) (models.Course, error) {
	var c models.Course
	err := row.Scan(&c.ID, &c.Slug, &c.Title, &c.Summary, &c.Thumbnail, &c.Published, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Courses) list(ctx context.Context, op, sql string, args ...any) ([]models.Course, error) {
	rows, err := s.c.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, wrap(op, "", err)
	}
	defer rows.Close()
	out := []models.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, wrap(op, "", err)
		}
		out = append(out, c)
	}
	return out, wrap(op, "", rows.Err())
}

func normalizeCourse(op string, c *models.Course) error {
	c.Slug = strings.ToLower(strings.TrimSpace(c.Slug))
	c.Title = strings.TrimSpace(c.Title)
	if !models.ValidSlug(c.Slug) {
		return errs.E(op, errs.ErrInvalid, "slug must be lower-case letters, digits and dashes")
	}
	if c.Title == "" {
		return errs.E(op, errs.ErrInvalid, "title is required")
	}
	return nil
}

func (s *Courses) Create(ctx context.Context, c models.Course) (models.Course, error) {
	const op = "courses.Create"
	if err := normalizeCourse(op, &c); err != nil {
		return models.Course{}, err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	_, err := s.c.q(ctx).Exec(ctx,
		`INSERT INTO courses (`+courseCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Slug, c.Title, c.Summary, c.Thumbnail, c.Published, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return models.Course{}, wrap(op, "a course with this slug already exists", err)
	}
	return c, nil
}

func (s *Courses) UpsertBySlug(ctx context.Context, c models.Course) (models.Course, error) {
	const op = "courses.UpsertBySlug"
	if err := normalizeCourse(op, &c); err != nil {
		return models.Course{}, err
	}
	now := time.Now().UTC()
	out, err := scanCourse(s.c.q(ctx).QueryRow(ctx, `
		INSERT INTO courses (`+courseCols+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			thumbnail = EXCLUDED.thumbnail,
			is_published = EXCLUDED.is_published,
			updated_at = EXCLUDED.updated_at
		RETURNING `+courseCols,
		uuid.NewString(), c.Slug, c.Title, c.Summary, c.Thumbnail, c.Published, now))
	if err != nil {
		return models.Course{}, wrap(op, "", err)
	}
	return out, nil
}

func (s *Courses) GetByID(ctx context.Context, id string) (*models.Course, error) {
	c, err := scanCourse(s.c.q(ctx).QueryRow(ctx, `SELECT `+courseCols+` FROM courses WHERE id = $1`, id))
	if err != nil {
		return nil, wrap("courses.GetByID", "course not found", err)
	}
	return &c, nil
}

func (s *Courses) GetBySlug(ctx context.Context, slug string) (*models.Course, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	c, err := scanCourse(s.c.q(ctx).QueryRow(ctx, `SELECT `+courseCols+` FROM courses WHERE slug = $1`, slug))
	if err != nil {
		return nil, wrap("courses.GetBySlug", "course not found", err)
	}
	return &c, nil
}

func (s *Courses) ListPublished(ctx context.Context) ([]models.Course, error) {
	return s.list(ctx, "courses.ListPublished",
		`SELECT `+courseCols+` FROM courses WHERE is_published ORDER BY lower(title), id`)
}

func (s *Courses) ListAll(ctx context.Context) ([]models.Course, error) {
	return s.list(ctx, "courses.ListAll",
		`SELECT `+courseCols+` FROM courses ORDER BY created_at DESC, id`)
}

func (s *Courses) ListByIDs(ctx context.Context, ids []string) ([]models.Course, error) {
	if len(ids) == 0 {
		return []models.Course{}, nil
	}
	return s.list(ctx, "courses.ListByIDs",
		`SELECT `+courseCols+` FROM courses WHERE id = ANY($1) ORDER BY lower(title), id`, ids)
}

func (s *Courses) SearchIDs(ctx context.Context, q string) ([]string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	rows, err := s.c.q(ctx).Query(ctx, `SELECT id FROM courses WHERE title ILIKE $1`, search.LikePattern(q))
	if err != nil {
		return nil, wrap("courses.SearchIDs", "", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	return ids, wrap("courses.SearchIDs", "", err)
}

func (s *Courses) SetPublished(ctx context.Context, id string, published bool) error {
	tag, err := s.c.q(ctx).Exec(ctx,
		`UPDATE courses SET is_published = $2, updated_at = NOW() WHERE id = $1`, id, published)
	if err != nil {
		return wrap("courses.SetPublished", "", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.E("courses.SetPublished", errs.ErrNotFound, "course not found")
	}
	return nil
}

func (s *Courses) Delete(ctx context.Context, id string) error {
	tag, err := s.c.q(ctx).Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return wrap("courses.Delete", "", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.E("courses.Delete", errs.ErrNotFound, "course not found")
	}
	return nil
}
