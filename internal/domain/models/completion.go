// internal/domain/models/completion.go
package models

import "time"

// Completion marks one session as done by one user. The row's existence is the
// whole signal; there is at most one per (user, session).
type Completion struct {
	ID          string    `bson:"_id" json:"id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	SessionID   string    `bson:"session_id" json:"session_id"`
	CompletedAt time.Time `bson:"completed_at" json:"completed_at"`
}
