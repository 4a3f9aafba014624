// internal/domain/models/user.go
package models

import "time"

// User is an account known to the application. Credentials are checked by the
// identity provider; PasswordHash is only written by admin tooling.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	NameCI       string    `bson:"name_ci" json:"-"`   // folded for search
	Email        string    `bson:"email" json:"email"` // lower-cased, unique
	PasswordHash string    `bson:"password_hash,omitempty" json:"-"`
	Role         Role      `bson:"role" json:"role"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}
