// Package htmlsanitize cleans user-supplied text with bluemonday.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// Sanitize keeps safe formatting markup and drops scripts, handlers and
// unsafe URLs. Used for session summaries and transcripts.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(ugc.Sanitize(s))
}

// PlainText removes all markup and returns unescaped text. Used for
// anonymous input such as access-request names and messages.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
