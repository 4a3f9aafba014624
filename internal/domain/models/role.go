// internal/domain/models/role.go
package models

import "strings"

// Role is the closed set of account roles. Stored and transmitted upper-case.
type Role string

const (
	RoleUser   Role = "USER"
	RoleLeader Role = "LEADER"
	RoleAdmin  Role = "ADMIN"
)

// Roles lists every role in ascending privilege.
var Roles = []Role{RoleUser, RoleLeader, RoleAdmin}

// ParseRole accepts any casing and surrounding space.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleLeader, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role bypasses enrollment checks.
func (r Role) IsStaff() bool {
	return r == RoleLeader || r == RoleAdmin
}

func (r Role) String() string { return string(r) }
