// Package coursepolicy decides whether a user may view a course.
//
// Authorization rules:
//   - Admins and leaders can view every course
//   - Users can view a course only while they hold an ACTIVE enrollment in it
//
// The check does not look at whether the course exists or is published; callers
// resolve the course first.
package coursepolicy

import (
	"context"

	"github.com/dalemusser/coursehub/internal/app/store/repo"
	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/dalemusser/coursehub/internal/domain/models"
)

// EnrollmentFinder is the slice of the enrollment store the engine reads.
type EnrollmentFinder interface {
	Find(ctx context.Context, userID, courseID string) (*models.Enrollment, error)
}

var _ EnrollmentFinder = (repo.Enrollments)(nil)

// Engine evaluates course access.
type Engine struct {
	enrollments EnrollmentFinder
}

func New(enrollments EnrollmentFinder) *Engine {
	return &Engine{enrollments: enrollments}
}

// CanAccessCourse reports whether userID with role may view courseID.
// A store failure is returned as an error; callers treat it as a denial.
func (e *Engine) CanAccessCourse(ctx context.Context, userID string, role models.Role, courseID string) (bool, error) {
	if role.IsStaff() {
		return true, nil
	}
	if userID == "" {
		return false, nil
	}
	en, err := e.enrollments.Find(ctx, userID, courseID)
	if errs.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, errs.Unavailable("coursepolicy.CanAccessCourse", err)
	}
	return en.Active(), nil
}

// Require is CanAccessCourse folded into one error: nil when allowed,
// errs.ErrForbidden when denied, the store error otherwise.
func (e *Engine) Require(ctx context.Context, userID string, role models.Role, courseID string) error {
	ok, err := e.CanAccessCourse(ctx, userID, role, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.E("coursepolicy.Require", errs.ErrForbidden, "you are not enrolled in this course")
	}
	return nil
}
