// internal/domain/models/course.go
package models

import (
	"regexp"
	"time"
)

// Course owns an ordered list of sessions.
type Course struct {
	ID        string    `bson:"_id" json:"id"`
	Slug      string    `bson:"slug" json:"slug"` // unique
	Title     string    `bson:"title" json:"title"`
	TitleCI   string    `bson:"title_ci" json:"-"`
	Summary   string    `bson:"summary,omitempty" json:"summary,omitempty"`
	Thumbnail string    `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Published bool      `bson:"is_published" json:"is_published"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

var slugRE = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether s is a lower-case, URL-safe slug.
func ValidSlug(s string) bool {
	return len(s) <= 64 && slugRE.MatchString(s)
}
