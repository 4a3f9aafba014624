// internal/domain/models/enrollment.go
package models

import (
	"strings"
	"time"
)

type EnrollmentStatus string

const (
	EnrollmentActive   EnrollmentStatus = "ACTIVE"
	EnrollmentInactive EnrollmentStatus = "INACTIVE"
)

// ParseEnrollmentStatus accepts any casing.
func ParseEnrollmentStatus(s string) (EnrollmentStatus, bool) {
	st := EnrollmentStatus(strings.ToUpper(strings.TrimSpace(s)))
	return st, st == EnrollmentActive || st == EnrollmentInactive
}

// Enrollment is the single (user, course) membership row.
type Enrollment struct {
	ID        string           `bson:"_id" json:"id"`
	UserID    string           `bson:"user_id" json:"user_id"`
	CourseID  string           `bson:"course_id" json:"course_id"`
	Status    EnrollmentStatus `bson:"status" json:"status"`
	CreatedAt time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time        `bson:"updated_at" json:"updated_at"`
}

func (e Enrollment) Active() bool { return e.Status == EnrollmentActive }
