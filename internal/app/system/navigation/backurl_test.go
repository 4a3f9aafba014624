package navigation

import (
	"net/http/httptest"
	"testing"
)

func TestSafeBackURL(t *testing.T) {
	tests := []struct {
		name   string
		target string
		opts   BackURLOptions
		want   string
	}{
		{"no return", "/forbidden", ForbiddenBackURL, "/courses"},
		{"local return", "/forbidden?return=/catalog", ForbiddenBackURL, "/catalog"},
		{"off-site return", "/forbidden?return=https://evil.example/x", ForbiddenBackURL, "/courses"},
		{"excluded subpath", "/forbidden?return=/admin/users", ForbiddenBackURL, "/courses"},
		{"outside prefix", "/x?return=/catalog", BackURLOptions{AllowedPrefix: "/courses/", Fallback: "/courses/basics/1"}, "/courses/basics/1"},
		{"inside prefix", "/x?return=/courses/basics/2", BackURLOptions{AllowedPrefix: "/courses/", Fallback: "/courses/basics/1"}, "/courses/basics/2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tc.target, nil)
			if got := SafeBackURL(r, tc.opts); got != tc.want {
				t.Errorf("SafeBackURL() = %q, want %q", got, tc.want)
			}
		})
	}
}
