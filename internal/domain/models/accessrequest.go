// internal/domain/models/accessrequest.go
package models

import (
	"strings"
	"time"
)

type AccessRequestStatus string

const (
	RequestPending  AccessRequestStatus = "PENDING"
	RequestApproved AccessRequestStatus = "APPROVED"
	RequestRejected AccessRequestStatus = "REJECTED"
)

// ParseAccessRequestStatus accepts any casing. "ALL" and "" yield ("", true),
// meaning no status filter.
func ParseAccessRequestStatus(s string) (AccessRequestStatus, bool) {
	st := AccessRequestStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case "", "ALL":
		return "", true
	case RequestPending, RequestApproved, RequestRejected:
		return st, true
	}
	return "", false
}

// AccessRequest asks a leader or admin to enroll the sender in a course.
type AccessRequest struct {
	ID        string              `bson:"_id" json:"id"`
	CourseID  string              `bson:"course_id" json:"course_id"`
	Name      string              `bson:"name,omitempty" json:"name,omitempty"`
	Email     string              `bson:"email" json:"email"`
	Message   string              `bson:"message,omitempty" json:"message,omitempty"`
	Status    AccessRequestStatus `bson:"status" json:"status"`
	DecidedBy string              `bson:"decided_by,omitempty" json:"decided_by,omitempty"`
	DecidedAt *time.Time          `bson:"decided_at,omitempty" json:"decided_at,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
}

func (r AccessRequest) Pending() bool { return r.Status == RequestPending }
