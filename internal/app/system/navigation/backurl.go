// Package navigation provides helpers for safe URL navigation and redirects.
package navigation

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// BackURLOptions configures the behavior of SafeBackURL.
type BackURLOptions struct {
	// AllowedPrefix is the required URL prefix (e.g., "/courses").
	// If empty, any safe URL is allowed.
	AllowedPrefix string

	// ExcludedSubpaths are substrings that disqualify a return URL.
	ExcludedSubpaths []string

	// Fallback is the default URL if no valid return URL is found.
	Fallback string
}

// SafeBackURL extracts and validates the "return" query parameter.
//
// Only local paths are accepted, so the result never redirects off-site.
func SafeBackURL(r *http.Request, opts BackURLOptions) string {
	ret := urlutil.SafeReturn(strings.TrimSpace(query.Get(r, "return")), "", "")
	if ret == "" {
		return opts.Fallback
	}
	if opts.AllowedPrefix != "" && !strings.HasPrefix(ret, opts.AllowedPrefix) {
		return opts.Fallback
	}
	for _, excluded := range opts.ExcludedSubpaths {
		if strings.Contains(ret, excluded) {
			return opts.Fallback
		}
	}
	return ret
}

var (
	// ForbiddenBackURL sends a refused caller back anywhere outside the
	// staff area.
	ForbiddenBackURL = BackURLOptions{
		ExcludedSubpaths: []string{"/admin", "/forbidden"},
		Fallback:         "/courses",
	}

	// SessionBackURL keeps a learner inside the course pages after marking
	// a session complete.
	SessionBackURL = BackURLOptions{
		AllowedPrefix: "/courses/",
		Fallback:      "",
	}
)
