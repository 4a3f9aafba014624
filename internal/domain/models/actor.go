// internal/domain/models/actor.go
package models

// Actor is the caller of an operation as reported by the identity provider.
// The zero Actor is anonymous.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) SignedIn() bool { return a.ID != "" }

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

func (a Actor) IsStaff() bool { return a.Role.IsStaff() }
