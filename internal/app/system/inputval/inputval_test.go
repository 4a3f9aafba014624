package inputval

import (
	"testing"

	"github.com/dalemusser/coursehub/internal/domain/errs"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"user.name+tag@example.co.uk", true},
		{"", false},
		{"   ", false},
		{"user", false},
		{"user@", false},
		{"@example.com", false},
		{"User Name <user@example.com>", false},
		{"user @example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

type createUser struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8"`
	Role     string `json:"role" validate:"omitempty,role"`
	Name     string `json:"name" validate:"notblank"`
}

func TestStruct(t *testing.T) {
	ok := createUser{Email: "a@b.co", Password: "12345678", Role: "leader", Name: "Ann"}
	if err := Struct("test", ok); err != nil {
		t.Fatalf("valid payload: got %v", err)
	}

	err := Struct("test", createUser{Email: "nope", Password: "short", Role: "OWNER", Name: "  "})
	if !errs.IsInvalid(err) {
		t.Fatalf("kind: got %v, want invalid", err)
	}
	fields := Fields(err)
	for _, f := range []string{"email", "password", "role", "name"} {
		if fields[f] == "" {
			t.Errorf("expected a message for %q, got %v", f, fields)
		}
	}
	if fields["role"] != "role must be USER, LEADER or ADMIN" {
		t.Errorf("role message: got %q", fields["role"])
	}
}

func TestSlugTag(t *testing.T) {
	type course struct {
		Slug string `json:"slug" validate:"slug"`
	}
	if err := Struct("test", course{Slug: "intro-to-go"}); err != nil {
		t.Errorf("good slug: got %v", err)
	}
	if err := Struct("test", course{Slug: "Intro to Go!"}); Fields(err)["slug"] == "" {
		t.Errorf("bad slug: got %v", err)
	}
}
